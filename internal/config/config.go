package config

import (
	"fmt"
	"os"
	"time"

	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	defaultDatabase       = "neo4j"
	defaultWriteTimeout   = 10 * time.Second
	defaultMaxRecords     = 1000
	defaultSyntheticCount = 100
	defaultMailbox        = "INBOX"
	defaultLogLevel       = "info"
)

// LoadEnv loads variables from a .env file in the working directory, if one exists
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logging.Log.Debug("No .env file found, using system environment variables")
	}
}

// Load reads the configuration from the specified YAML file, applies defaults and
// environment overrides, and validates the result
func Load(filepath string) (*models.Config, error) {
	configFile, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	applyEnv(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = defaultDatabase
	}
	if cfg.Neo4j.WriteTimeout == 0 {
		cfg.Neo4j.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = models.SourceIMAP
	}
	if cfg.Source.MaxRecords == 0 {
		cfg.Source.MaxRecords = defaultMaxRecords
	}
	if cfg.Source.SyntheticCount == 0 {
		cfg.Source.SyntheticCount = defaultSyntheticCount
	}
	if cfg.Email.MailBox == "" {
		cfg.Email.MailBox = defaultMailbox
	}
}

// applyEnv lets credentials and the store target come from the environment instead of the file
func applyEnv(cfg *models.Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"NEO4J_URI", &cfg.Neo4j.URI},
		{"NEO4J_USERNAME", &cfg.Neo4j.Username},
		{"NEO4J_PASSWORD", &cfg.Neo4j.Password},
		{"IMAP_PASSWORD", &cfg.Email.Password},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.key); ok && value != "" {
			*o.target = value
		}
	}
}

// Validate checks that the configuration is complete for the selected source and store
func Validate(cfg *models.Config) error {
	if !cfg.Neo4j.DryRun && cfg.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required unless neo4j.dryRun is set")
	}
	if cfg.Neo4j.WriteTimeout < 0 {
		return fmt.Errorf("neo4j.writeTimeout must be positive, got %s", cfg.Neo4j.WriteTimeout)
	}
	if cfg.Source.MaxRecords < 0 {
		return fmt.Errorf("source.maxRecords must be positive, got %d", cfg.Source.MaxRecords)
	}

	switch cfg.Source.Kind {
	case models.SourceIMAP:
		if cfg.Email.Imap == "" || cfg.Email.Login == "" {
			return fmt.Errorf("email.imap and email.login are required for the imap source")
		}
	case models.SourceSynthetic:
		if cfg.Source.SyntheticCount < 0 {
			return fmt.Errorf("source.syntheticCount must be positive, got %d", cfg.Source.SyntheticCount)
		}
	case models.SourceMbox:
		if cfg.Source.MboxPath == "" {
			return fmt.Errorf("source.mboxPath is required for the mbox source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}

	return nil
}
