package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rhale/trailtime/internal/dependencies/mocks"
	"github.com/rhale/trailtime/internal/model"
	"github.com/rhale/trailtime/internal/services/registry"
	"github.com/rhale/trailtime/internal/storage/memory"
	"github.com/rhale/trailtime/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	registry *registry.Service
	service  *Service
	ctx      context.Context
	base     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	s.registry = registry.New(s.storage, clk, testutil.NopLogger())
	s.service = New(s.storage, s.registry, testutil.NopLogger())
	s.ctx = context.Background()
	s.base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) register(id, name, team string) {
	_, err := s.registry.Register(s.ctx, model.ParticipantID(id), name, team, "")
	s.Require().NoError(err)
}

func (s *ServiceSuite) record(id string, kind model.CheckpointKind, offset time.Duration) {
	s.Require().NoError(s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: model.ParticipantID(id),
		Checkpoint:    kind,
		RecordedAt:    s.base.Add(offset),
	}))
}

// ComputeResults tests

func (s *ServiceSuite) TestComputeResultsElapsedAndSegments() {
	s.register("101", "Avery Hall", "")
	s.record("101", model.CheckpointStart, 0)
	s.record("101", model.CheckpointMid, 15*time.Minute)
	s.record("101", model.CheckpointFinish, 30*time.Minute)

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)

	r := results[0]
	s.Equal(1, r.Rank)
	s.Equal("Avery Hall", r.DisplayName)
	s.Equal(30*time.Minute, r.TotalElapsed)
	s.True(r.HasSegments)
	s.Equal(15*time.Minute, r.StartToMid)
	s.Equal(15*time.Minute, r.MidToFinish)
}

func (s *ServiceSuite) TestComputeResultsExcludesUnfinished() {
	s.register("101", "Avery Hall", "")
	s.register("102", "Bela Kim", "")
	s.register("103", "Casey Ng", "")
	s.record("101", model.CheckpointStart, 0)                 // never finished
	s.record("102", model.CheckpointFinish, 30*time.Minute)   // never started
	s.record("103", model.CheckpointMid, 15*time.Minute)      // mid only

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *ServiceSuite) TestComputeResultsExcludesNonPositiveElapsed() {
	s.register("101", "Avery Hall", "")
	s.record("101", model.CheckpointStart, 30*time.Minute)
	s.record("101", model.CheckpointFinish, 10*time.Minute)

	s.register("102", "Bela Kim", "")
	s.record("102", model.CheckpointStart, 0)
	s.record("102", model.CheckpointFinish, 0) // identical timestamps

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Empty(results)
}

func (s *ServiceSuite) TestComputeResultsMidOutsideWindowDropsSegments() {
	s.register("101", "Avery Hall", "")
	s.record("101", model.CheckpointStart, 10*time.Minute)
	s.record("101", model.CheckpointMid, 5*time.Minute) // before the start
	s.record("101", model.CheckpointFinish, 40*time.Minute)

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)

	// The total still stands; only the split breakdown is withheld
	s.Equal(30*time.Minute, results[0].TotalElapsed)
	s.False(results[0].HasSegments)
}

func (s *ServiceSuite) TestComputeResultsRanking() {
	s.register("101", "Avery Hall", "")
	s.register("102", "Bela Kim", "")
	s.register("103", "Casey Ng", "")
	s.record("101", model.CheckpointStart, 0)
	s.record("101", model.CheckpointFinish, 45*time.Minute)
	s.record("102", model.CheckpointStart, 0)
	s.record("102", model.CheckpointFinish, 30*time.Minute)
	s.record("103", model.CheckpointStart, 5*time.Minute)
	s.record("103", model.CheckpointFinish, 40*time.Minute)

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 3)

	s.Equal(model.ParticipantID("102"), results[0].ParticipantID)
	s.Equal(1, results[0].Rank)
	s.Equal(model.ParticipantID("103"), results[1].ParticipantID)
	s.Equal(2, results[1].Rank)
	s.Equal(model.ParticipantID("101"), results[2].ParticipantID)
	s.Equal(3, results[2].Rank)
}

func (s *ServiceSuite) TestComputeResultsTieBreaks() {
	// Same elapsed: earlier start ranks first
	s.register("201", "Late Starter", "")
	s.record("201", model.CheckpointStart, 10*time.Minute)
	s.record("201", model.CheckpointFinish, 40*time.Minute)

	s.register("202", "Early Starter", "")
	s.record("202", model.CheckpointStart, 0)
	s.record("202", model.CheckpointFinish, 30*time.Minute)

	// Same elapsed and same start: lower bib ranks first
	s.register("105", "Same Time B", "")
	s.record("105", model.CheckpointStart, 0)
	s.record("105", model.CheckpointFinish, 30*time.Minute)

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 3)

	s.Equal(model.ParticipantID("105"), results[0].ParticipantID)
	s.Equal(model.ParticipantID("202"), results[1].ParticipantID)
	s.Equal(model.ParticipantID("201"), results[2].ParticipantID)
}

func (s *ServiceSuite) TestComputeResultsUnregisteredParticipantKeepsTimes() {
	// Events recorded for a bib the roster never saw still rank, just
	// without a display name
	s.record("999", model.CheckpointStart, 0)
	s.record("999", model.CheckpointFinish, 20*time.Minute)

	results, err := s.service.ComputeResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(model.ParticipantID("999"), results[0].ParticipantID)
	s.Empty(results[0].DisplayName)
}

// ComputeTeamResults tests

func (s *ServiceSuite) TestComputeTeamResultsMeanScore() {
	s.register("101", "Avery Hall", "ridge-runners")
	s.register("102", "Bela Kim", "ridge-runners")
	s.register("103", "Casey Ng", "summit-club")
	s.record("101", model.CheckpointStart, 0)
	s.record("101", model.CheckpointFinish, 30*time.Minute)
	s.record("102", model.CheckpointStart, 0)
	s.record("102", model.CheckpointFinish, 40*time.Minute)
	s.record("103", model.CheckpointStart, 0)
	s.record("103", model.CheckpointFinish, 36*time.Minute)

	teams, err := s.service.ComputeTeamResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)

	s.Equal("ridge-runners", teams[0].Team)
	s.Equal(1, teams[0].Rank)
	s.Equal(2, teams[0].MemberCount)
	s.Equal(35*time.Minute, teams[0].Score)

	s.Equal("summit-club", teams[1].Team)
	s.Equal(2, teams[1].Rank)
	s.Equal(1, teams[1].MemberCount)
	s.Equal(36*time.Minute, teams[1].Score)
}

func (s *ServiceSuite) TestComputeTeamResultsExcludesIndividuals() {
	s.register("101", "Avery Hall", "") // defaults to individual
	s.record("101", model.CheckpointStart, 0)
	s.record("101", model.CheckpointFinish, 30*time.Minute)

	teams, err := s.service.ComputeTeamResults(s.ctx)
	s.Require().NoError(err)
	s.Empty(teams)
}

func (s *ServiceSuite) TestComputeTeamResultsExcludesUnfinishedMembers() {
	s.register("101", "Avery Hall", "ridge-runners")
	s.register("102", "Bela Kim", "ridge-runners")
	s.record("101", model.CheckpointStart, 0)
	s.record("101", model.CheckpointFinish, 30*time.Minute)
	s.record("102", model.CheckpointStart, 0) // never finished

	teams, err := s.service.ComputeTeamResults(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)
	s.Equal(1, teams[0].MemberCount)
	s.Equal(30*time.Minute, teams[0].Score)
}

// FormatElapsed tests

func (s *ServiceSuite) TestFormatElapsed() {
	s.Equal("07:03.500", FormatElapsed(7*time.Minute+3*time.Second+500*time.Millisecond))
	s.Equal("30:00.000", FormatElapsed(30*time.Minute))
	s.Equal("00:00.001", FormatElapsed(time.Millisecond))
	s.Equal("90:00.000", FormatElapsed(90*time.Minute))
}

func (s *ServiceSuite) TestFormatElapsedNotApplicable() {
	s.Equal(NotApplicable, FormatElapsed(0))
	s.Equal(NotApplicable, FormatElapsed(-time.Second))
}
