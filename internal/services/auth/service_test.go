package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhale/trailtime/internal/dependencies/mocks"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage/memory"
	"github.com/rhale/trailtime/internal/testutil"
)

const testStaffKey = "staff-key"

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, Config{
		SessionDuration: time.Hour,
		StaffKey:        testStaffKey,
	}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) storeCredential(id, passcode string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SaveCredential(s.ctx, &model.ParticipantCredential{
		ParticipantID: model.ParticipantID(id),
		PasscodeHash:  string(hash),
		CreatedAt:     s.clock.Now(),
	}))
}

// LoginAthlete tests

func (s *ServiceSuite) TestLoginAthleteSucceeds() {
	s.storeCredential("101", "hunter2")

	session, err := s.service.LoginAthlete(s.ctx, "101", "hunter2")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(RoleAthlete, session.Role)
	s.Equal(model.ParticipantID("101"), session.ParticipantID)
	s.Equal(s.clock.Now().Add(time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginAthleteWrongPasscode() {
	s.storeCredential("101", "hunter2")

	_, err := s.service.LoginAthlete(s.ctx, "101", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginAthleteUnknownBib() {
	_, err := s.service.LoginAthlete(s.ctx, "999", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// LoginStaff tests

func (s *ServiceSuite) TestLoginStaffSucceeds() {
	session, err := s.service.LoginStaff(testStaffKey)
	s.Require().NoError(err)

	s.Equal(RoleStaff, session.Role)
	s.Empty(session.ParticipantID)
}

func (s *ServiceSuite) TestLoginStaffWrongKey() {
	_, err := s.service.LoginStaff("wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginStaffDisabledWhenKeyUnset() {
	svc := New(s.storage, s.clock, Config{SessionDuration: time.Hour}, testutil.NopLogger())

	_, err := svc.LoginStaff("")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	s.storeCredential("101", "hunter2")
	session, err := s.service.LoginAthlete(s.ctx, "101", "hunter2")
	s.Require().NoError(err)

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.ParticipantID, validated.ParticipantID)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestValidateSessionExpired() {
	session, err := s.service.LoginStaff(testStaffKey)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Minute)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.LoginStaff(testStaffKey)
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, err := s.service.LoginStaff(testStaffKey)
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Hour)
	fresh, err := s.service.LoginStaff(testStaffKey)
	s.Require().NoError(err)

	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(old.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
