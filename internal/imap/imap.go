package imap

import (
	"github.com/emersion/go-imap"
)

type Client interface {
	Connect(server string) error
	Login(user, password string) error
	SelectMailbox(name string) error
	ListUIDs(limit int) ([]uint32, error)
	FetchMessage(uid uint32) (*imap.Message, error)
	Close() error
}

// HeaderSection is the part of each message fetched by the client: the RFC 5322 header only,
// read with PEEK so the server does not set \Seen
var HeaderSection = &imap.BodySectionName{
	BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
	Peek:         true,
}
