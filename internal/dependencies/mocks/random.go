package mocks

import (
	"github.com/mcoot/mintworks-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Shuffle is a no-op so decks keep their catalog order.
type MockRandom struct {
	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result (clamped to [0, n)), or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	if r.intnIndex >= len(r.IntnResults) || n <= 0 {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result % n
}

// Shuffle leaves the order unchanged
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}
