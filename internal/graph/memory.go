package graph

import (
	"context"
	"sync"
	"time"

	"mail-graph-ingester/internal/models"
)

// EmailNode is an Email node as stored in the graph
type EmailNode struct {
	ID           string
	Subject      string
	Conversation string
	SentOn       time.Time
}

// Counts summarises the size of a graph
type Counts struct {
	People   int
	Emails   int
	Sent     int
	Received int
}

type edge struct {
	from, to string
}

// MemoryStore is an in-process Store with the same merge semantics as the Neo4j query.
// It backs dry runs, where nothing should reach the database.
type MemoryStore struct {
	mu       sync.RWMutex
	people   map[string]models.Person
	emails   map[string]EmailNode
	sent     map[edge]struct{} // person email -> email id
	received map[edge]struct{} // email id -> person email
}

// NewMemoryStore creates an empty in-memory graph
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		people:   make(map[string]models.Person),
		emails:   make(map[string]EmailNode),
		sent:     make(map[edge]struct{}),
		received: make(map[edge]struct{}),
	}
}

var _ Store = (*MemoryStore)(nil)

// Upsert merges the record: nodes are created on first sight and never updated, relationships are created once
func (s *MemoryStore) Upsert(ctx context.Context, record models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.mergePerson(record.From)

	if _, ok := s.emails[record.ID]; !ok {
		s.emails[record.ID] = EmailNode{
			ID:           record.ID,
			Subject:      record.Subject,
			Conversation: record.ConversationID,
			SentOn:       record.SentOn,
		}
	}
	s.sent[edge{from, record.ID}] = struct{}{}

	for _, to := range record.To {
		key := s.mergePerson(to)
		s.received[edge{record.ID, key}] = struct{}{}
	}

	return nil
}

// mergePerson creates the person on first sight only and returns its key
func (s *MemoryStore) mergePerson(p models.Person) string {
	key := p.Key()
	if _, ok := s.people[key]; !ok {
		s.people[key] = models.Person{Email: key, Name: p.Name}
	}
	return key
}

// Close is a no-op; the graph lives as long as the store
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Person returns the person stored under email
func (s *MemoryStore) Person(email string) (models.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[email]
	return p, ok
}

// Email returns the email node stored under id
func (s *MemoryStore) Email(id string) (EmailNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.emails[id]
	return e, ok
}

// Sent reports whether a SENT relationship links the person to the email
func (s *MemoryStore) Sent(email, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sent[edge{email, id}]
	return ok
}

// Received reports whether a RECEIVED relationship links the email to the person
func (s *MemoryStore) Received(id, email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.received[edge{id, email}]
	return ok
}

// Counts returns the number of nodes and relationships in the graph
func (s *MemoryStore) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		People:   len(s.people),
		Emails:   len(s.emails),
		Sent:     len(s.sent),
		Received: len(s.received),
	}
}
