package ingest

import (
	"context"
	"errors"
	"fmt"

	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/models"
	"mail-graph-ingester/internal/source"
)

// RecordWriter writes a single record to the graph
type RecordWriter interface {
	Write(ctx context.Context, record models.Record) error
}

// Stats describes how far a run got
type Stats struct {
	Read    int
	Written int
	Skipped int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d read, %d written, %d skipped", s.Read, s.Written, s.Skipped)
}

type Processor struct {
	source source.Source
	writer RecordWriter
}

// NewProcessor creates a new Processor instance with the provided record source and writer
func NewProcessor(src source.Source, writer RecordWriter) *Processor {
	return &Processor{
		source: src,
		writer: writer,
	}
}

// Run orchestrates the ingest pass: read → write, one record at a time in source order.
// Malformed records are skipped; the first store failure aborts the run and is returned
// together with the statistics up to that point.
func (p *Processor) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	for record := range p.source.Records(ctx) {
		stats.Read++
		locallog := logging.Log.WithField("message_id", record.ID)

		err := p.writer.Write(ctx, record)
		switch {
		case err == nil:
			stats.Written++
			locallog.Debug("Message written")
		case errors.Is(err, models.ErrMalformedRecord):
			stats.Skipped++
			locallog.Infof("Skipping message: %v", err)
		default:
			locallog.WithError(err).Error("Write failed, aborting run")
			return stats, err
		}
	}

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("run interrupted: %w", err)
	}

	return stats, nil
}
