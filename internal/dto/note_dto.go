package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,notblank"`
	Content string `json:"content" validate:"required,notblank"`
}

// UpdateNoteRequest is a partial update; nil fields are left unchanged.
type UpdateNoteRequest struct {
	Id      uuid.UUID `json:"-"`
	Title   *string   `json:"title" validate:"omitempty,notblank"`
	Content *string   `json:"content" validate:"omitempty,notblank"`
	Summary *string   `json:"summary"`
}

func (r *UpdateNoteRequest) IsEmpty() bool {
	return r.Title == nil && r.Content == nil && r.Summary == nil
}

type NoteResponse struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SummarizeNoteRequest struct {
	// Content overrides the stored content, e.g. unsaved editor text.
	Content *string `json:"content"`
}
