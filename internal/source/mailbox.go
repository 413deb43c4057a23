package source

import (
	"context"
	"iter"

	imapclient "mail-graph-ingester/internal/imap"
	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/mailparse"
	"mail-graph-ingester/internal/models"
)

// Mailbox reads records from an IMAP mailbox, at most maxRecords messages in mailbox order
type Mailbox struct {
	client     imapclient.Client
	cfg        models.EmailConfig
	maxRecords int
	singleUse
}

// NewMailbox creates a mailbox source over the given IMAP client
func NewMailbox(client imapclient.Client, cfg models.EmailConfig, maxRecords int) *Mailbox {
	return &Mailbox{
		client:     client,
		cfg:        cfg,
		maxRecords: maxRecords,
	}
}

// Records connects, logs in and selects the mailbox, then fetches and parses one message at a time. A connection or fetch failure ends the sequence with the records read so far; the connection is always logged out.
func (m *Mailbox) Records(ctx context.Context) iter.Seq[models.Record] {
	return func(yield func(models.Record) bool) {
		if !m.claim("mailbox") {
			return
		}

		if err := m.client.Connect(m.cfg.Imap); err != nil {
			unavailable("mailbox", 0, err)
			return
		}
		defer func() {
			if err := m.client.Close(); err != nil {
				logging.Log.WithError(err).Warn("IMAP logout failed")
			}
		}()

		if err := m.client.Login(m.cfg.Login, m.cfg.Password); err != nil {
			unavailable("mailbox", 0, err)
			return
		}

		if err := m.client.SelectMailbox(m.cfg.MailBox); err != nil {
			unavailable("mailbox", 0, err)
			return
		}

		uids, err := m.client.ListUIDs(m.maxRecords)
		if err != nil {
			unavailable("mailbox", 0, err)
			return
		}

		logging.Log.Infof("Reading %d messages from %s", len(uids), m.cfg.MailBox)

		for i, uid := range uids {
			if ctx.Err() != nil {
				return
			}

			msg, err := m.client.FetchMessage(uid)
			if err != nil {
				unavailable("mailbox", i, err)
				return
			}

			record, err := mailparse.Parse(msg, imapclient.HeaderSection)
			if err != nil {
				logging.Log.WithError(err).Warnf("Skipping message UID %d: header could not be parsed", uid)
				continue
			}

			if !yield(*record) {
				return
			}
		}
	}
}
