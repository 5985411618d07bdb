package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rhale/trailtime/internal/model"
)

type StorageSuite struct {
	suite.Suite
	dir     string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.dir = s.T().TempDir()
	store, err := New(s.dir)
	s.Require().NoError(err)
	s.storage = store
	s.ctx = context.Background()
}

// reopen simulates a process restart by loading a fresh Storage from the
// same directory
func (s *StorageSuite) reopen() *Storage {
	store, err := New(s.dir)
	s.Require().NoError(err)
	return store
}

// Participant tests

func (s *StorageSuite) TestParticipantSurvivesReopen() {
	p := &model.Participant{
		ID:          "101",
		DisplayName: "Avery Hall",
		Team:        "ridge-runners",
		CreatedAt:   time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.storage.SaveParticipant(s.ctx, p))

	reopened := s.reopen()
	got, err := reopened.GetParticipant(s.ctx, "101")
	s.Require().NoError(err)
	s.Equal("Avery Hall", got.DisplayName)
	s.Equal("ridge-runners", got.Team)
	s.Equal(p.CreatedAt, got.CreatedAt)
}

func (s *StorageSuite) TestSaveParticipantRejectsDuplicateBib() {
	s.Require().NoError(s.storage.SaveParticipant(s.ctx, &model.Participant{ID: "101", DisplayName: "Avery"}))

	err := s.storage.SaveParticipant(s.ctx, &model.Participant{ID: "101", DisplayName: "Other"})
	s.ErrorIs(err, model.ErrParticipantExists)
}

func (s *StorageSuite) TestGetParticipantNotFound() {
	_, err := s.storage.GetParticipant(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrParticipantNotFound)
}

// Credential tests

func (s *StorageSuite) TestCredentialSurvivesReopen() {
	c := &model.ParticipantCredential{
		ParticipantID: "101",
		PasscodeHash:  "$2a$10$fakehash",
		CreatedAt:     time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.storage.SaveCredential(s.ctx, c))

	reopened := s.reopen()
	got, err := reopened.GetCredential(s.ctx, "101")
	s.Require().NoError(err)
	s.Equal(c.PasscodeHash, got.PasscodeHash)
}

// Timing event tests

func (s *StorageSuite) TestEventsSurviveReopen() {
	start := time.Date(2024, 6, 1, 9, 0, 0, 123456789, time.UTC)
	finish := start.Add(30 * time.Minute)

	s.Require().NoError(s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointStart, RecordedAt: start,
	}))
	s.Require().NoError(s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointFinish, RecordedAt: finish,
	}))

	reopened := s.reopen()
	events, err := reopened.EventsForParticipant(s.ctx, "101")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(model.CheckpointStart, events[0].Checkpoint)
	s.True(start.Equal(events[0].RecordedAt))
	s.Equal(model.CheckpointFinish, events[1].Checkpoint)
	s.True(finish.Equal(events[1].RecordedAt))
}

func (s *StorageSuite) TestAppendEventRejectsDuplicatePair() {
	first := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointStart, RecordedAt: first,
	}))

	err := s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointStart, RecordedAt: first.Add(time.Minute),
	})
	s.ErrorIs(err, model.ErrDuplicateCheckpoint)

	// Duplicate rejection holds across restarts too
	reopened := s.reopen()
	err = reopened.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointStart, RecordedAt: first.Add(time.Hour),
	})
	s.ErrorIs(err, model.ErrDuplicateCheckpoint)
}

func (s *StorageSuite) TestTimingFileUsesSpreadsheetLayout() {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointMid, RecordedAt: at,
	}))

	data, err := os.ReadFile(filepath.Join(s.dir, "timing.csv"))
	s.Require().NoError(err)
	s.Contains(string(data), "athlete_id,START_TIME,MID_TIME,FINISH_TIME")
	s.Contains(string(data), "101,,"+at.Format(time.RFC3339Nano)+",")
}

func (s *StorageSuite) TestArchiveEventsRotatesTimingFile() {
	s.Require().NoError(s.storage.AppendEvent(s.ctx, &model.TimingEvent{
		ParticipantID: "101", Checkpoint: model.CheckpointStart, RecordedAt: time.Now(),
	}))

	s.Require().NoError(s.storage.ArchiveEvents(s.ctx))

	events, err := s.storage.AllEvents(s.ctx)
	s.Require().NoError(err)
	s.Empty(events)

	// The old data was renamed aside, not deleted
	archives, err := filepath.Glob(filepath.Join(s.dir, "timing-*.csv"))
	s.Require().NoError(err)
	s.Len(archives, 1)

	// And the reset survives a reopen
	reopened := s.reopen()
	events, err = reopened.AllEvents(s.ctx)
	s.Require().NoError(err)
	s.Empty(events)
}
