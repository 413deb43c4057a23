package models

import (
	"strings"
	"time"
)

// NoEmail is the key shared by every recipient whose address could not be read
const NoEmail = "none"

// Person represents a mail participant, identified by email address
type Person struct {
	Email string
	Name  string
}

// Key returns the natural key used to merge the person into the graph
func (p Person) Key() string {
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return NoEmail
	}
	return email
}

// Record represents the metadata extracted from a single message
type Record struct {
	ID             string
	From           Person
	To             []Person
	CC             []Person
	BCC            []Person
	Subject        string
	ConversationID string
	SentOn         time.Time
}

// HasSender reports whether the sender address can be used as a merge key
func (r Record) HasSender() bool {
	return strings.TrimSpace(r.From.Email) != ""
}
