package source

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/mailparse"
	"mail-graph-ingester/internal/models"

	"github.com/emersion/go-mbox"
)

// Mbox reads records from an mbox export, at most maxRecords messages
type Mbox struct {
	path       string
	maxRecords int
	singleUse
}

// NewMbox creates an mbox source for the file at path
func NewMbox(path string, maxRecords int) *Mbox {
	return &Mbox{
		path:       path,
		maxRecords: maxRecords,
	}
}

// Records opens the mbox file and parses one message at a time. An unreadable file or message ends the sequence with the records read so far.
func (m *Mbox) Records(ctx context.Context) iter.Seq[models.Record] {
	return func(yield func(models.Record) bool) {
		if !m.claim("mbox") {
			return
		}

		file, err := os.Open(m.path)
		if err != nil {
			unavailable("mbox", 0, err)
			return
		}
		defer func(file *os.File) {
			_ = file.Close()
		}(file)

		reader := mbox.NewReader(file)
		for read := 0; m.maxRecords <= 0 || read < m.maxRecords; read++ {
			if ctx.Err() != nil {
				return
			}

			msg, err := reader.NextMessage()
			if err == io.EOF {
				return
			} else if err != nil {
				unavailable("mbox", read, err)
				return
			}

			record, err := mailparse.ParseReader(msg, time.Time{}, fmt.Sprintf("mbox:%d", read+1))
			if err != nil {
				logging.Log.WithError(err).Warnf("Skipping mbox message %d: header could not be parsed", read+1)
				continue
			}

			if !yield(*record) {
				return
			}
		}
	}
}
