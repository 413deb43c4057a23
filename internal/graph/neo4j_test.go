package graph

import (
	"context"
	"strings"
	"testing"
	"time"

	"mail-graph-ingester/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertQuery_OrderOfClauses(t *testing.T) {
	clauses := []string{
		"MERGE (from:Person {email: $from.email})",
		"ON CREATE SET from.name = $from.name",
		"MERGE (e:Email {id: $id})",
		"ON CREATE SET e.subject = $subject, e.conversation = $conversation, e.sentOn = $sentOn",
		"MERGE (from)-[:SENT]->(e)",
		"WITH e",
		"UNWIND $to AS to",
		"MERGE (t:Person {email: to.email})",
		"ON CREATE SET t.name = to.name",
		"MERGE (e)-[:RECEIVED]->(t)",
	}

	last := -1
	for _, clause := range clauses {
		idx := strings.Index(upsertQuery, clause)
		require.GreaterOrEqual(t, idx, 0, "missing clause %q", clause)
		assert.Greater(t, idx, last, "clause %q out of order", clause)
		last = idx
	}
	assert.NotContains(t, upsertQuery, "ON MATCH", "existing nodes must never be updated")
}

func TestUpsertParams(t *testing.T) {
	record := aliceToBob()
	record.To = append(record.To, models.Person{Name: "No Address"})

	params := upsertParams(record)

	assert.Equal(t, map[string]any{"email": "a@x.com", "name": "Alice"}, params["from"])
	assert.Equal(t, "m1", params["id"])
	assert.Equal(t, "Hi", params["subject"])
	assert.Equal(t, "c1", params["conversation"])
	assert.Equal(t, sentOn, params["sentOn"])

	to, ok := params["to"].([]any)
	require.True(t, ok)
	require.Len(t, to, 2)
	assert.Equal(t, map[string]any{"email": "b@x.com", "name": nil}, to[0])
	assert.Equal(t, map[string]any{"email": models.NoEmail, "name": "No Address"}, to[1])
}

func TestUpsertParams_EmptyOptionalValues(t *testing.T) {
	params := upsertParams(models.Record{ID: "m1", From: models.Person{Email: "a@x.com"}})

	assert.Nil(t, params["conversation"])
	assert.Nil(t, params["sentOn"])
	assert.Equal(t, []any{}, params["to"])
}

func TestSessionCloseContext_OutlivesExpiredWriteContext(t *testing.T) {
	writeCtx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-writeCtx.Done()

	closeCtx, closeCancel := sessionCloseContext(writeCtx)
	defer closeCancel()

	require.NoError(t, closeCtx.Err())
	deadline, ok := closeCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(sessionCloseTimeout), deadline, time.Second)
}

func TestSessionCloseContext_OutlivesCancelledWriteContext(t *testing.T) {
	writeCtx, cancel := context.WithCancel(context.Background())
	closeCtx, closeCancel := sessionCloseContext(writeCtx)
	defer closeCancel()

	cancel()

	assert.NoError(t, closeCtx.Err())
}
