package invalidation

import (
	"time"

	"github.com/google/uuid"
)

type Reason string

const (
	NoteCreated    Reason = "note.created"
	NoteUpdated    Reason = "note.updated"
	NoteDeleted    Reason = "note.deleted"
	NoteSummarized Reason = "note.summarized"
)

// Signal tells clients that a user's note list is stale and must be refetched.
type Signal struct {
	UserId     uuid.UUID `json:"user_id"`
	NoteId     uuid.UUID `json:"note_id"`
	Reason     Reason    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewSignal(userId, noteId uuid.UUID, reason Reason) Signal {
	return Signal{
		UserId:     userId,
		NoteId:     noteId,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
