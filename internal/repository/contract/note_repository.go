package contract

import (
	"context"

	"note-summary-be/internal/entity"
	"note-summary-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	// Update writes title, content, summary and updated_at of a note owned by note.UserId.
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
}
