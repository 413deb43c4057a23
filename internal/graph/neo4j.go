package graph

import (
	"context"
	"fmt"
	"time"

	"mail-graph-ingester/internal/logging"
	"mail-graph-ingester/internal/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// upsertQuery merges the sender, the email and every To recipient. Properties are only
// written ON CREATE so re-ingesting a message never changes existing nodes.
const upsertQuery = `
MERGE (from:Person {email: $from.email})
ON CREATE SET from.name = $from.name
MERGE (e:Email {id: $id})
ON CREATE SET e.subject = $subject, e.conversation = $conversation, e.sentOn = $sentOn
MERGE (from)-[:SENT]->(e)
WITH e
UNWIND $to AS to
MERGE (t:Person {email: to.email})
ON CREATE SET t.name = to.name
MERGE (e)-[:RECEIVED]->(t)
`

const sessionCloseTimeout = 5 * time.Second

// Neo4jStore is a Store backed by a Neo4j database over Bolt
type Neo4jStore struct {
	driver    neo4j.DriverWithContext
	database  string
	txTimeout time.Duration
}

// NewNeo4jStore opens a driver for the configured URI and verifies the server is reachable
func NewNeo4jStore(ctx context.Context, cfg models.Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver error: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connection error: %w", err)
	}

	return &Neo4jStore{
		driver:    driver,
		database:  cfg.Database,
		txTimeout: cfg.WriteTimeout,
	}, nil
}

// sessionCloseContext detaches from ctx so a session is closed even after the write deadline has passed
func sessionCloseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sessionCloseTimeout)
}

// Upsert runs the merge query for one record inside a managed write transaction
func (s *Neo4jStore) Upsert(ctx context.Context, record models.Record) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer func() {
		closeCtx, cancel := sessionCloseContext(ctx)
		defer cancel()
		_ = session.Close(closeCtx)
	}()

	var configurers []func(*neo4j.TransactionConfig)
	if s.txTimeout > 0 {
		configurers = append(configurers, neo4j.WithTxTimeout(s.txTimeout))
	}

	summary, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, upsertQuery, upsertParams(record))
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	}, configurers...)
	if err != nil {
		return err
	}

	if rs, ok := summary.(neo4j.ResultSummary); ok {
		counters := rs.Counters()
		logging.Log.WithField("message_id", record.ID).Debugf(
			"Merged message: %d nodes, %d relationships created",
			counters.NodesCreated(), counters.RelationshipsCreated(),
		)
	}

	return nil
}

// Close releases the driver and its connection pool
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// upsertParams binds a record to the query parameters by name
func upsertParams(record models.Record) map[string]any {
	to := make([]any, 0, len(record.To))
	for _, p := range record.To {
		to = append(to, personParams(p))
	}

	var sentOn any
	if !record.SentOn.IsZero() {
		sentOn = record.SentOn
	}

	return map[string]any{
		"from":         personParams(record.From),
		"id":           record.ID,
		"subject":      record.Subject,
		"conversation": nullable(record.ConversationID),
		"sentOn":       sentOn,
		"to":           to,
	}
}

func personParams(p models.Person) map[string]any {
	return map[string]any{
		"email": p.Key(),
		"name":  nullable(p.Name),
	}
}

// nullable maps empty strings to null so the property is left unset
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
