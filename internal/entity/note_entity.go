package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Content   string
	Summary   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch moves UpdatedAt to now, keeping it strictly after the previous value
// even when the clock has not advanced past the stored precision.
func (n *Note) Touch(now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(n.UpdatedAt) {
		now = n.UpdatedAt.Add(time.Microsecond)
	}
	n.UpdatedAt = now
}
