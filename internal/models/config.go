package models

import "time"

// Config represents the application configuration
type Config struct {
	LogLevel string       `yaml:"logLevel"`
	Neo4j    Neo4jConfig  `yaml:"neo4j"`
	Source   SourceConfig `yaml:"source"`
	Email    EmailConfig  `yaml:"email"`
}

// Neo4jConfig represents the graph store connection
type Neo4jConfig struct {
	URI          string        `yaml:"uri"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database"`
	WriteTimeout time.Duration `yaml:"writeTimeout"` // ex: "10s"
	DryRun       bool          `yaml:"dryRun"`
}

// SourceConfig selects where records are read from
type SourceConfig struct {
	Kind           string `yaml:"kind"` // imap, synthetic or mbox
	MaxRecords     int    `yaml:"maxRecords"`
	SyntheticCount int    `yaml:"syntheticCount"`
	MboxPath       string `yaml:"mboxPath"`
}

// EmailConfig represents IMAP email configuration
type EmailConfig struct {
	Imap     string `yaml:"imap"`
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	MailBox  string `yaml:"mailbox"`
}

const (
	SourceIMAP      = "imap"
	SourceSynthetic = "synthetic"
	SourceMbox      = "mbox"
)
