package station

import (
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rhale/trailtime/internal/dependencies/mocks"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/token"
	"github.com/rhale/trailtime/internal/testutil"
)

type SessionSuite struct {
	suite.Suite
	codec   *token.Codec
	clock   *mocks.MockClock
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	codec, err := token.New("station-test-secret")
	s.Require().NoError(err)
	s.codec = codec
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	s.session = NewSession(codec, s.clock, Config{
		BaseURL:     "https://race.example.com",
		TokenExpiry: 90 * time.Second,
	}, testutil.NopLogger())
}

// GetOrRotate tests

func (s *SessionSuite) TestFirstCallIssuesToken() {
	code, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.Equal(model.CheckpointStart, code.Checkpoint)
	s.NotEmpty(code.Token)
	s.Equal(s.clock.Now(), code.IssuedAt)
	s.Equal(90*time.Second, code.ExpiresIn)

	// The embedded token verifies back to the same checkpoint
	kind, err := s.codec.Verify(code.Token, s.clock.Now(), 90*time.Second)
	s.Require().NoError(err)
	s.Equal(model.CheckpointStart, kind)
}

func (s *SessionSuite) TestStableWithinWindow() {
	first, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Second)
	second, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.Equal(first.Token, second.Token)
	s.Equal(60*time.Second, second.ExpiresIn)
}

func (s *SessionSuite) TestRotatesOnCheckpointChange() {
	start, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	mid, err := s.session.GetOrRotate(model.CheckpointMid)
	s.Require().NoError(err)
	s.NotEqual(start.Token, mid.Token)
	s.Equal(model.CheckpointMid, mid.Checkpoint)

	// Switching back issues yet another token
	startAgain, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)
	s.NotEqual(start.Token, startAgain.Token)
}

func (s *SessionSuite) TestRotatesOnExpiry() {
	first, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.clock.Advance(91 * time.Second)
	second, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.NotEqual(first.Token, second.Token)
	s.Equal(90*time.Second, second.ExpiresIn)
}

func (s *SessionSuite) TestNoRotationAtExactWindowEdge() {
	first, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.clock.Advance(90 * time.Second)
	second, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.Equal(first.Token, second.Token)
	s.Zero(second.ExpiresIn)
}

func (s *SessionSuite) TestRotationKeepsOldTokenValid() {
	first, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	_, err = s.session.GetOrRotate(model.CheckpointMid)
	s.Require().NoError(err)

	// The superseded token still verifies within its own window
	kind, err := s.codec.Verify(first.Token, s.clock.Now(), 90*time.Second)
	s.Require().NoError(err)
	s.Equal(model.CheckpointStart, kind)
}

func (s *SessionSuite) TestRejectsInvalidCheckpoint() {
	_, err := s.session.GetOrRotate(model.CheckpointKind("SUMMIT"))
	s.ErrorIs(err, model.ErrInvalidCheckpoint)
}

func (s *SessionSuite) TestConcurrentPollsShareOneToken() {
	const pollers = 16
	codes := make([]*Code, pollers)
	var wg sync.WaitGroup
	for i := 0; i < pollers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			code, err := s.session.GetOrRotate(model.CheckpointFinish)
			if err == nil {
				codes[n] = code
			}
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		s.Require().NotNil(code)
		s.Equal(codes[0].Token, code.Token)
	}
}

// Scan URL tests

func (s *SessionSuite) TestScanURLForm() {
	code, err := s.session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)

	s.True(strings.HasPrefix(code.URL, "https://race.example.com/scan?token="))

	parsed, err := url.Parse(code.URL)
	s.Require().NoError(err)
	s.Equal(code.Token, parsed.Query().Get("token"))
}

func (s *SessionSuite) TestBaseURLTrailingSlashTrimmed() {
	session := NewSession(s.codec, s.clock, Config{
		BaseURL:     "https://race.example.com/",
		TokenExpiry: time.Minute,
	}, testutil.NopLogger())

	code, err := session.GetOrRotate(model.CheckpointStart)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(code.URL, "https://race.example.com/scan?token="))
}
