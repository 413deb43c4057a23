package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mail-graph-ingester/internal/config"
	"mail-graph-ingester/internal/graph"
	imapclient "mail-graph-ingester/internal/imap"
	"mail-graph-ingester/internal/ingest"
	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/models"
	"mail-graph-ingester/internal/source"

	"github.com/google/uuid"
)

const closeTimeout = 10 * time.Second

func main() {
	config.LoadEnv()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logging.Log.Fatalf("Error reading configuration file: %v", err)
	}
	logging.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		os.Exit(1)
	}

	fmt.Println("Done!")
}

// run opens the store, streams every record from the configured source into it and always closes the store
func run(ctx context.Context, cfg *models.Config) error {
	locallog := logging.Log.WithField("run_id", uuid.New().String())
	locallog.Infof("Starting mail graph ingest from %s source", cfg.Source.Kind)

	store, err := openStore(ctx, cfg.Neo4j)
	if err != nil {
		locallog.WithError(err).Error("Could not open graph store")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			locallog.WithError(err).Warn("Error closing graph store")
		}
	}()

	writer := graph.NewWriter(store, cfg.Neo4j.WriteTimeout)
	processor := ingest.NewProcessor(newSource(cfg), writer)

	stats, err := processor.Run(ctx)
	if err != nil {
		locallog.WithError(err).Errorf("Ingest interrupted: %s", stats)
		return err
	}

	locallog.Infof("Ingest complete: %s", stats)
	if mem, ok := store.(*graph.MemoryStore); ok {
		counts := mem.Counts()
		locallog.Infof("Dry run graph: %d people, %d emails, %d sent, %d received",
			counts.People, counts.Emails, counts.Sent, counts.Received)
	}

	return nil
}

// openStore connects to Neo4j, or returns an in-memory graph for dry runs
func openStore(ctx context.Context, cfg models.Neo4jConfig) (graph.Store, error) {
	if cfg.DryRun {
		logging.Log.Info("Dry run: records are merged into an in-memory graph only")
		return graph.NewMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.WriteTimeout)
	defer cancel()

	store, err := graph.NewNeo4jStore(connectCtx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newSource builds the record source selected in the configuration
func newSource(cfg *models.Config) source.Source {
	switch cfg.Source.Kind {
	case models.SourceSynthetic:
		return source.NewSynthetic(cfg.Source.SyntheticCount, nil)
	case models.SourceMbox:
		return source.NewMbox(cfg.Source.MboxPath, cfg.Source.MaxRecords)
	default:
		return source.NewMailbox(imapclient.NewStandardClient(), cfg.Email, cfg.Source.MaxRecords)
	}
}
