package factory

import (
	"time"

	"github.com/cityrunners/server/internal/dependencies/mocks"
	"github.com/cityrunners/server/internal/phase"
	"github.com/cityrunners/server/internal/services/auth"
	"github.com/cityrunners/server/internal/storage/memory"
	"github.com/cityrunners/server/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	authCfg := auth.DefaultConfig()
	authCfg.GameCode = "test-code"

	app := newWithDependencies(store, mockClock, authCfg, phase.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
