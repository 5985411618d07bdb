package redis

import (
	"fmt"

	"github.com/rhale/trailtime/internal/model"
)

// Key prefix for all timing data
const keyPrefix = "trailtime"

// participantKey returns the Redis key for a Participant
func participantKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:participant:%s", keyPrefix, id)
}

// participantSetKey returns the Redis key of the set of all participant IDs
func participantSetKey() string {
	return fmt.Sprintf("%s:participants", keyPrefix)
}

// credentialKey returns the Redis key for a ParticipantCredential
func credentialKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, id)
}

// eventsKey returns the Redis key of the per-participant checkpoint hash.
// Fields are checkpoint kinds, values are RFC3339Nano timestamps.
func eventsKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:events:%s", keyPrefix, id)
}

// eventParticipantSetKey returns the Redis key of the set of participant IDs
// that have at least one recorded event
func eventParticipantSetKey() string {
	return fmt.Sprintf("%s:event_participants", keyPrefix)
}

// archivedEventsKey returns the Redis key a participant's events are moved to
// on archival
func archivedEventsKey(stamp string, id model.ParticipantID) string {
	return fmt.Sprintf("%s:archive:%s:events:%s", keyPrefix, stamp, id)
}
