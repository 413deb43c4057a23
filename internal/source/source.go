// Package source produces communication records from a mailbox, an mbox
// export or a synthetic generator.
package source

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"

	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/models"
)

// Source yields a finite sequence of records, one at a time, in source order.
// A source can be read once; construct a new one to read again.
type Source interface {
	Records(ctx context.Context) iter.Seq[models.Record]
}

// singleUse guards a source against being iterated twice
type singleUse struct {
	used atomic.Bool
}

func (s *singleUse) claim(name string) bool {
	if s.used.Swap(true) {
		logging.Log.Warnf("%s source already consumed, construct a new one to read again", name)
		return false
	}
	return true
}

// unavailable reports a source failure. The sequence ends after it, keeping what was already read.
func unavailable(name string, read int, err error) {
	logging.Log.
		WithError(fmt.Errorf("%w: %w", models.ErrSourceUnavailable, err)).
		WithField("source", name).
		Errorf("Source read interrupted after %d messages, ending record sequence", read)
}
