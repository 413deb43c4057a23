package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mail-graph-ingester/internal/models"
)

// Writer applies one record at a time to a Store
type Writer struct {
	store   Store
	timeout time.Duration
}

// NewWriter creates a writer bounding each store round trip by timeout (0 disables it)
func NewWriter(store Store, timeout time.Duration) *Writer {
	return &Writer{
		store:   store,
		timeout: timeout,
	}
}

// Write merges the record into the store. Records without a sender address or message id
// are rejected with models.ErrMalformedRecord before the store is touched; store failures
// are wrapped in models.ErrStoreWrite.
func (w *Writer) Write(ctx context.Context, record models.Record) error {
	if !record.HasSender() {
		return fmt.Errorf("%w: message %q has no sender address", models.ErrMalformedRecord, record.ID)
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: message from %s has no id", models.ErrMalformedRecord, record.From.Email)
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("%w: message %q: %w", models.ErrStoreWrite, record.ID, err)
	}

	return nil
}
