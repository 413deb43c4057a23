// Package graph writes communication records into a property graph of
// Person and Email nodes linked by SENT and RECEIVED relationships.
package graph

import (
	"context"

	"mail-graph-ingester/internal/models"
)

// Store merges one record into the graph as a single atomic unit: either every
// node and relationship of the record is persisted or none is.
type Store interface {
	Upsert(ctx context.Context, record models.Record) error
	Close(ctx context.Context) error
}
