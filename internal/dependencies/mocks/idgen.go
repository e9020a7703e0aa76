package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/mintworks-go/internal/dependencies/idgen"
)

// MockIDGenerator returns queued IDs, then falls back to a numbered sequence
type MockIDGenerator struct {
	mu     sync.Mutex
	queued []string
	next   int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewID returns the next queued ID, or "game-N" when the queue is empty
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("game-%d", g.next)
}

// Queue adds IDs to be returned by subsequent NewID calls
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}
