package ingest

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"mail-graph-ingester/internal/graph"
	"mail-graph-ingester/internal/models"
	"mail-graph-ingester/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	records []models.Record
}

func (s *sliceSource) Records(ctx context.Context) iter.Seq[models.Record] {
	return func(yield func(models.Record) bool) {
		for _, r := range s.records {
			if ctx.Err() != nil || !yield(r) {
				return
			}
		}
	}
}

type MockWriter struct {
	FailOn  string
	Err     error
	Written []string
}

func (m *MockWriter) Write(ctx context.Context, record models.Record) error {
	if record.ID == m.FailOn {
		return m.Err
	}
	m.Written = append(m.Written, record.ID)
	return nil
}

func newRecord(id, from string) models.Record {
	return models.Record{
		ID:     id,
		From:   models.Person{Email: from},
		To:     []models.Person{{Email: "b@x.com"}},
		SentOn: time.Now(),
	}
}

func TestRun_WritesInSourceOrder(t *testing.T) {
	writer := &MockWriter{}
	src := &sliceSource{records: []models.Record{newRecord("m1", "a@x.com"), newRecord("m2", "a@x.com"), newRecord("m3", "c@x.com")}}

	stats, err := NewProcessor(src, writer).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 3, Written: 3}, stats)
	assert.Equal(t, []string{"m1", "m2", "m3"}, writer.Written)
}

func TestRun_SkipsMalformedRecords(t *testing.T) {
	store := graph.NewMemoryStore()
	writer := graph.NewWriter(store, time.Second)
	src := &sliceSource{records: []models.Record{newRecord("m1", "a@x.com"), newRecord("m2", ""), newRecord("m3", "a@x.com")}}

	stats, err := NewProcessor(src, writer).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 3, Written: 2, Skipped: 1}, stats)
	_, ok := store.Email("m2")
	assert.False(t, ok)
}

func TestRun_AbortsOnStoreFailure(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", models.ErrStoreWrite)
	writer := &MockWriter{FailOn: "m2", Err: cause}
	src := &sliceSource{records: []models.Record{newRecord("m1", "a@x.com"), newRecord("m2", "a@x.com"), newRecord("m3", "a@x.com")}}

	stats, err := NewProcessor(src, writer).Run(context.Background())

	assert.ErrorIs(t, err, models.ErrStoreWrite)
	assert.Equal(t, Stats{Read: 2, Written: 1}, stats)
	assert.Equal(t, []string{"m1"}, writer.Written, "no record after the failure may be written")
}

func TestRun_UnclassifiedErrorAborts(t *testing.T) {
	writer := &MockWriter{FailOn: "m1", Err: errors.New("boom")}
	src := &sliceSource{records: []models.Record{newRecord("m1", "a@x.com"), newRecord("m2", "a@x.com")}}

	_, err := NewProcessor(src, writer).Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, writer.Written)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &sliceSource{records: []models.Record{newRecord("m1", "a@x.com")}}
	stats, err := NewProcessor(src, &MockWriter{}).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Read)
}

func TestRun_SyntheticTwiceIsIdempotent(t *testing.T) {
	store := graph.NewMemoryStore()
	writer := graph.NewWriter(store, time.Second)

	var records []models.Record
	for r := range source.NewSynthetic(50, nil).Records(context.Background()) {
		records = append(records, r)
	}

	_, err := NewProcessor(&sliceSource{records: records}, writer).Run(context.Background())
	require.NoError(t, err)
	first := store.Counts()

	stats, err := NewProcessor(&sliceSource{records: records}, writer).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Written)
	assert.Equal(t, first, store.Counts())
	assert.Equal(t, 50, first.Emails)
	assert.LessOrEqual(t, first.People, 50)
}
