package models

import "errors"

var (
	// ErrSourceUnavailable is reported when the mailbox cannot be reached or read
	ErrSourceUnavailable = errors.New("record source unavailable")
	// ErrMalformedRecord is returned for records that cannot be merged (no sender address)
	ErrMalformedRecord = errors.New("malformed record")
	// ErrStoreWrite is returned when the graph store rejects a write
	ErrStoreWrite = errors.New("graph store write failed")
)
