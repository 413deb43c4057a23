package mailparse

import (
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"
	"time"

	"mail-graph-ingester/internal/models"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

var emailAddressRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Parse builds a record from the header section of a fetched IMAP message.
// The server's internal date is used when the message has no usable Date header.
func Parse(msg *imap.Message, section *imap.BodySectionName) (*models.Record, error) {
	r := msg.GetBody(section)
	if r == nil {
		return nil, fmt.Errorf("message UID %d has no header section", msg.Uid)
	}
	return ParseReader(r, msg.InternalDate, fmt.Sprintf("uid:%d", msg.Uid))
}

// ParseReader builds a record from an RFC 5322 message (or just its header) read from r.
// origin identifies the message within its mailbox (UID, mbox position) and only feeds the
// id derived for messages without a Message-ID.
func ParseReader(r io.Reader, received time.Time, origin string) (*models.Record, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, err
	}
	defer func() { _ = mr.Close() }()

	header := mr.Header
	record := &models.Record{
		From: extractSender(header),
		To:   addressList(header, "To"),
		CC:   addressList(header, "Cc"),
		BCC:  addressList(header, "Bcc"),
	}

	// Decode Subject, keeping the raw value when the charset is unknown
	rawSubject := header.Get("Subject")
	record.Subject = rawSubject
	if decodedSubject, err := DecodeHeader(rawSubject); err == nil {
		record.Subject = decodedSubject
	}

	record.SentOn = received
	if date, err := header.Date(); err == nil && !date.IsZero() {
		record.SentOn = date
	}

	record.ID = messageID(header)
	if record.ID == "" {
		record.ID = fallbackID(record, origin)
	}
	record.ConversationID = conversationID(header, record.ID)

	return record, nil
}

// extractSender reads the From header. A sender without a readable address is returned with an empty email.
func extractSender(header mail.Header) models.Person {
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		return models.Person{Email: from[0].Address, Name: from[0].Name}
	}
	return models.Person{Email: extractEmailAddress(header.Get("From"))}
}

// addressList reads a recipient header, falling back to semicolon splitting for
// lists that are not valid RFC 5322 (e.g. "a@x.com; b@x.com")
func addressList(header mail.Header, key string) []models.Person {
	addrs, err := header.AddressList(key)
	if err != nil {
		return SplitRecipients(header.Get(key))
	}

	people := make([]models.Person, 0, len(addrs))
	for _, addr := range addrs {
		people = append(people, models.Person{Email: addr.Address, Name: addr.Name})
	}
	return people
}

// conversationID returns the thread root: the first References id, then In-Reply-To, then the message itself
func conversationID(header mail.Header, messageID string) string {
	for _, key := range []string{"References", "In-Reply-To"} {
		if ids, err := header.MsgIDList(key); err == nil && len(ids) > 0 {
			return ids[0]
		}
	}
	return messageID
}

// messageID returns the Message-ID, keeping the raw value when it is not a valid msg-id (e.g. no angle brackets)
func messageID(header mail.Header) string {
	if id, err := header.MessageID(); err == nil && id != "" {
		return id
	}
	raw := strings.TrimSpace(header.Get("Message-Id"))
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">"))
}

// fallbackID derives a stable id for messages without a Message-ID, so re-ingesting them stays idempotent.
// Recipients and origin keep distinct messages with the same sender and subject apart.
func fallbackID(record *models.Record, origin string) string {
	parts := []string{
		origin,
		record.From.Email,
		record.SentOn.UTC().Format(time.RFC3339),
		record.Subject,
	}
	for _, group := range [][]models.Person{record.To, record.CC, record.BCC} {
		for _, p := range group {
			parts = append(parts, p.Email)
		}
		parts = append(parts, "")
	}
	name := strings.Join(parts, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// SplitRecipients splits a semicolon-delimited address string into people with only the email set.
// Entries may carry a display name ("Bob <b@x.com>"); only the address is kept.
// Empty entries are discarded, so "" or whitespace yields no one.
func SplitRecipients(addresses string) []models.Person {
	var people []models.Person
	for _, part := range strings.Split(addresses, ";") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		people = append(people, models.Person{Email: recipientAddress(entry)})
	}
	return people
}

// recipientAddress extracts the bare address from one list entry, keeping the raw text when none can be found
func recipientAddress(entry string) string {
	if addr, err := mail.ParseAddress(entry); err == nil && addr.Address != "" {
		return addr.Address
	}
	if email := extractEmailAddress(entry); email != "" {
		return email
	}
	return entry
}

// Simple regex to extract email address from "From" header, which may contain name and email
func extractEmailAddress(fromHeader string) string {
	return emailAddressRe.FindString(fromHeader)
}

// DecodeHeader decodes MIME-encoded headers (e.g., "=?UTF-8?B?...?=") to plain text
func DecodeHeader(encoded string) (string, error) {
	decoder := &mime.WordDecoder{CharsetReader: charset.Reader}
	decoded, err := decoder.DecodeHeader(encoded)
	if err != nil {
		return "", err
	}
	return decoded, nil
}
