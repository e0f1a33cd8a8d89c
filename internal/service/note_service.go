package service

import (
	"context"
	"fmt"
	"time"

	"note-summary-be/internal/dto"
	"note-summary-be/internal/entity"
	"note-summary-be/internal/pkg/logger"
	"note-summary-be/internal/repository/specification"
	"note-summary-be/internal/repository/unitofwork"
	"note-summary-be/pkg/events"
	"note-summary-be/pkg/invalidation"

	"github.com/google/uuid"
)

type INoteService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	// SaveSummary is Update for the summary field, announced as a summarization.
	SaveSummary(ctx context.Context, userId uuid.UUID, id uuid.UUID, summary string) (*dto.NoteResponse, error)
}

type noteService struct {
	uowFactory     unitofwork.RepositoryFactory
	invalidations  invalidation.Publisher
	eventPublisher events.Publisher
	logger         logger.ILogger
	now            func() time.Time
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	invalidations invalidation.Publisher,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:     uowFactory,
		invalidations:  invalidations,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

func toNoteResponse(n *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        n.Id,
		UserId:    n.UserId,
		Title:     n.Title,
		Content:   n.Content,
		Summary:   n.Summary,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (c *noteService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, ErrUnauthorized
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NotesNewestFirst,
	)
	if err != nil {
		c.logger.Error("NoteService", "List notes failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err,
		})
		return nil, fmt.Errorf("%w: %w", ErrListFailed, err)
	}

	res := make([]*dto.NoteResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, toNoteResponse(n))
	}
	return res, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, ErrUnauthorized
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	return toNoteResponse(note), nil
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, ErrUnauthorized
	}

	now := c.now().UTC().Truncate(time.Microsecond)
	note := entity.Note{
		UserId:    userId,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		c.logger.Error("NoteService", "Create note failed", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err,
		})
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	c.announce(ctx, &note, invalidation.NoteCreated, events.NoteCreated)
	return toNoteResponse(&note), nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	return c.update(ctx, userId, req, invalidation.NoteUpdated, events.NoteUpdated)
}

func (c *noteService) SaveSummary(ctx context.Context, userId uuid.UUID, id uuid.UUID, summary string) (*dto.NoteResponse, error) {
	req := &dto.UpdateNoteRequest{Id: id, Summary: &summary}
	return c.update(ctx, userId, req, invalidation.NoteSummarized, events.NoteSummarized)
}

func (c *noteService) update(
	ctx context.Context,
	userId uuid.UUID,
	req *dto.UpdateNoteRequest,
	reason invalidation.Reason,
	eventType string,
) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, ErrUnauthorized
	}

	note, err := c.applyUpdate(ctx, userId, req)
	if err != nil {
		c.logger.Error("NoteService", "Update note failed", map[string]interface{}{
			"user_id": userId.String(),
			"note_id": req.Id.String(),
			"error":   err,
		})
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	c.announce(ctx, note, reason, eventType)
	return toNoteResponse(note), nil
}

func (c *noteService) applyUpdate(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (note *entity.Note, err error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	note, err = uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Summary != nil {
		summary := *req.Summary
		note.Summary = &summary
	}
	note.Touch(c.now())

	if err = uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}
	if err = uow.Commit(); err != nil {
		return nil, err
	}
	return note, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if userId == uuid.Nil {
		return ErrUnauthorized
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Delete(ctx, userId, id); err != nil {
		c.logger.Error("NoteService", "Delete note failed", map[string]interface{}{
			"user_id": userId.String(),
			"note_id": id.String(),
			"error":   err,
		})
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	c.announce(ctx, &entity.Note{Id: id, UserId: userId}, invalidation.NoteDeleted, events.NoteDeleted)
	return nil
}

// announce runs only after the store call succeeded. Neither channel can fail the request.
func (c *noteService) announce(ctx context.Context, note *entity.Note, reason invalidation.Reason, eventType string) {
	if c.invalidations != nil {
		sig := invalidation.NewSignal(note.UserId, note.Id, reason)
		if err := c.invalidations.Publish(ctx, sig); err != nil {
			c.logger.Warn("NoteService", "Failed to publish invalidation", map[string]interface{}{
				"reason":  string(reason),
				"note_id": note.Id.String(),
				"error":   err.Error(),
			})
		}
	}

	if c.eventPublisher != nil {
		data := map[string]interface{}{
			"note_id": note.Id.String(),
			"user_id": note.UserId.String(),
		}
		if note.Title != "" {
			data["title"] = note.Title
		}
		if err := c.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
			c.logger.Warn("NoteService", fmt.Sprintf("Failed to publish %s event", eventType), map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
