package factory

import (
	"time"

	"github.com/mcoot/mintworks-go/internal/dependencies/mocks"
	"github.com/mcoot/mintworks-go/internal/services/session"
	"github.com/mcoot/mintworks-go/internal/storage/memory"
	"github.com/mcoot/mintworks-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDGenerator
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The deck is never shuffled, so games always open with the same supply.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDGenerator()

	sessionCfg := session.DefaultConfig()
	sessionCfg.InitialInterval = time.Millisecond
	sessionCfg.MaxInterval = 2 * time.Millisecond

	app, err := newWithDependencies(store, mockClock, mockRandom, mockIDs, sessionCfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Memory:     store,
	}
}
