package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/rhale/trailtime/internal/dependencies/mocks"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/storage/memory"
	"github.com/rhale/trailtime/internal/testutil"
)

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
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	p, err := s.service.Register(s.ctx, "101", "Avery Hall", "ridge-runners", "hunter2")
	s.Require().NoError(err)

	s.Equal(model.ParticipantID("101"), p.ID)
	s.Equal("Avery Hall", p.DisplayName)
	s.Equal("ridge-runners", p.Team)
	s.Equal(s.clock.Now(), p.CreatedAt)
}

func (s *ServiceSuite) TestRegisterEmptyTeamDefaultsToIndividual() {
	p, err := s.service.Register(s.ctx, "101", "Avery Hall", "", "")
	s.Require().NoError(err)
	s.Equal(model.TeamIndividual, p.Team)
	s.False(p.HasTeam())
}

func (s *ServiceSuite) TestRegisterHashesPasscode() {
	_, err := s.service.Register(s.ctx, "101", "Avery Hall", "", "hunter2")
	s.Require().NoError(err)

	cred, err := s.storage.GetCredential(s.ctx, "101")
	s.Require().NoError(err)
	s.NotEqual("hunter2", cred.PasscodeHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(cred.PasscodeHash), []byte("hunter2")))
}

func (s *ServiceSuite) TestRegisterWithoutPasscodeStoresNoCredential() {
	_, err := s.service.Register(s.ctx, "101", "Avery Hall", "", "")
	s.Require().NoError(err)

	_, err = s.storage.GetCredential(s.ctx, "101")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

func (s *ServiceSuite) TestRegisterRejectsDuplicateBib() {
	_, err := s.service.Register(s.ctx, "101", "Avery Hall", "", "")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "101", "Other Person", "", "")
	s.ErrorIs(err, model.ErrParticipantExists)
}

func (s *ServiceSuite) TestRegisterRejectsEmptyBib() {
	_, err := s.service.Register(s.ctx, "", "Nobody", "", "")
	s.Error(err)
}

// Lookup tests

func (s *ServiceSuite) TestExists() {
	_, _ = s.service.Register(s.ctx, "101", "Avery Hall", "", "")

	ok, err := s.service.Exists(s.ctx, "101")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.service.Exists(s.ctx, "999")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServiceSuite) TestTeamLookup() {
	_, _ = s.service.Register(s.ctx, "101", "Avery Hall", "ridge-runners", "")
	_, _ = s.service.Register(s.ctx, "102", "Bela Kim", "", "")

	team, err := s.service.Team(s.ctx, "101")
	s.Require().NoError(err)
	s.Equal("ridge-runners", team)

	// Individuals have no team for aggregation purposes
	team, err = s.service.Team(s.ctx, "102")
	s.Require().NoError(err)
	s.Empty(team)
}

// ImportCSV tests

func (s *ServiceSuite) TestImportCSV() {
	roster := strings.Join([]string{
		"athlete_id,name,team,passcode",
		"101,Avery Hall,ridge-runners,hunter2",
		"102,Bela Kim,,",
		"103,Casey Ng,summit-club,pass3",
	}, "\n")

	imported, err := s.service.ImportCSV(s.ctx, strings.NewReader(roster))
	s.Require().NoError(err)
	s.Equal(3, imported)

	p, err := s.service.Get(s.ctx, "101")
	s.Require().NoError(err)
	s.Equal("ridge-runners", p.Team)

	p, err = s.service.Get(s.ctx, "102")
	s.Require().NoError(err)
	s.Equal(model.TeamIndividual, p.Team)

	// Passcode column became a credential
	_, err = s.storage.GetCredential(s.ctx, "103")
	s.NoError(err)
}

func (s *ServiceSuite) TestImportCSVSkipsDuplicates() {
	_, _ = s.service.Register(s.ctx, "101", "Avery Hall", "", "")

	roster := strings.Join([]string{
		"athlete_id,name,team",
		"101,Avery Hall,ridge-runners",
		"102,Bela Kim,",
	}, "\n")

	imported, err := s.service.ImportCSV(s.ctx, strings.NewReader(roster))
	s.Require().NoError(err)
	s.Equal(1, imported)

	// The original registration wins
	p, err := s.service.Get(s.ctx, "101")
	s.Require().NoError(err)
	s.Equal(model.TeamIndividual, p.Team)
}

func (s *ServiceSuite) TestImportCSVHeaderOnly() {
	imported, err := s.service.ImportCSV(s.ctx, strings.NewReader("athlete_id,name,team\n"))
	s.Require().NoError(err)
	s.Zero(imported)
}

func (s *ServiceSuite) TestImportCSVRejectsShortRow() {
	roster := "athlete_id,name\n101\n"
	_, err := s.service.ImportCSV(s.ctx, strings.NewReader(roster))
	s.Error(err)
}
