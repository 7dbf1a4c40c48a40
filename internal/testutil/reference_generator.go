package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/flexprice/feeledger/internal/domain/invoice"
	"github.com/flexprice/feeledger/internal/kid"
)

var _ invoice.ReferenceGenerator = (*CounterReferenceGenerator)(nil)

// CounterReferenceGenerator hands out sequential references like the database sequence does
type CounterReferenceGenerator struct {
	next   atomic.Uint64
	length int

	mu        sync.Mutex
	failAfter int
	failWith  error
}

func NewCounterReferenceGenerator(length int) *CounterReferenceGenerator {
	return &CounterReferenceGenerator{length: length}
}

func (g *CounterReferenceGenerator) Generate(ctx context.Context) (string, string, error) {
	g.mu.Lock()
	if g.failWith != nil {
		if g.failAfter <= 0 {
			err := g.failWith
			g.mu.Unlock()
			return "", "", err
		}
		g.failAfter--
	}
	g.mu.Unlock()
	return kid.Format(g.next.Add(1), g.length)
}

// FailAfter makes every call after the next n return err; a nil err clears it
func (g *CounterReferenceGenerator) FailAfter(n int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failAfter = n
	g.failWith = err
}

// Issued returns how many references were handed out
func (g *CounterReferenceGenerator) Issued() uint64 {
	return g.next.Load()
}
