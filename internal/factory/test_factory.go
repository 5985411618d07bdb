package factory

import (
	"time"

	"github.com/rhale/trailtime/internal/dependencies/mocks"
	"github.com/rhale/trailtime/internal/services/auth"
	"github.com/rhale/trailtime/internal/services/station"
	"github.com/rhale/trailtime/internal/services/token"
	"github.com/rhale/trailtime/internal/storage/memory"
	"github.com/rhale/trailtime/internal/testutil"
)

// TestSecretKey signs tokens in test apps
const TestSecretKey = "test-secret-key-for-timing-tokens"

// TestStaffKey grants staff access in test apps
const TestStaffKey = "test-staff-key"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	codec, err := token.New(TestSecretKey)
	if err != nil {
		panic(err)
	}

	app := newWithDependencies(store, mockClock, codec, auth.Config{
		SessionDuration: 12 * time.Hour,
		StaffKey:        TestStaffKey,
	}, station.Config{
		BaseURL:     "http://localhost:8080",
		TokenExpiry: 300 * time.Second,
	}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
