package source

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"
	"time"

	"mail-graph-ingester/internal/models"

	"github.com/google/uuid"
)

const syntheticDomain = "testplace.com"

// Synthetic generates random traffic between count test users, for trying the pipeline without a mailbox
type Synthetic struct {
	count int
	rng   *rand.Rand
	now   func() time.Time
	singleUse
}

// NewSynthetic creates a generator of count records. A nil rng uses a randomly seeded one.
func NewSynthetic(count int, rng *rand.Rand) *Synthetic {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Synthetic{
		count: count,
		rng:   rng,
		now:   time.Now,
	}
}

// Records generates the records one at a time, each with a fresh id, stopping early when ctx is cancelled.
func (s *Synthetic) Records(ctx context.Context) iter.Seq[models.Record] {
	return func(yield func(models.Record) bool) {
		if !s.claim("synthetic") {
			return
		}

		start := s.now().Add(-time.Duration(s.count) * time.Minute)
		for i := 0; i < s.count; i++ {
			if ctx.Err() != nil {
				return
			}

			fi, ti := s.pair()
			id := uuid.New().String()
			record := models.Record{
				ID:             id,
				From:           syntheticPerson(fi),
				To:             []models.Person{syntheticPerson(ti)},
				Subject:        fmt.Sprintf("Subject %d", s.rng.IntN(s.count)),
				ConversationID: id,
				SentOn:         start.Add(time.Duration(i) * time.Minute),
			}
			if !yield(record) {
				return
			}
		}
	}
}

// pair draws a sender and a recipient index, distinct whenever there is more than one user
func (s *Synthetic) pair() (int, int) {
	from := s.rng.IntN(s.count)
	if s.count == 1 {
		return from, from
	}
	to := s.rng.IntN(s.count - 1)
	if to >= from {
		to++
	}
	return from, to
}

func syntheticPerson(i int) models.Person {
	return models.Person{
		Email: fmt.Sprintf("user%d@%s", i, syntheticDomain),
		Name:  fmt.Sprintf("Test Person_%d", i),
	}
}
