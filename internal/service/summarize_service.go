package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"note-summary-be/internal/dto"
	"note-summary-be/internal/pkg/logger"
	"note-summary-be/pkg/summarizer"

	"github.com/google/uuid"
)

type ISummarizeService interface {
	Summarize(ctx context.Context, content string) (string, error)
	// SummarizeNote summarizes a note (or the unsaved content in req) and stores the result on it.
	SummarizeNote(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.SummarizeNoteRequest) (*dto.NoteResponse, error)
}

type summarizeService struct {
	summarizer  summarizer.Summarizer
	noteService INoteService
	logger      logger.ILogger
}

func NewSummarizeService(s summarizer.Summarizer, noteService INoteService, logger logger.ILogger) ISummarizeService {
	return &summarizeService{
		summarizer:  s,
		noteService: noteService,
		logger:      logger,
	}
}

func (s *summarizeService) Summarize(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", summarizer.ErrContentRequired
	}

	summary, err := s.summarizer.Summarize(ctx, content)
	if err != nil {
		s.logger.Error("SummarizeService", "Summarization failed", map[string]interface{}{
			"provider":       s.summarizer.Name(),
			"content_length": len(content),
			"error":          err,
		})
		if !errors.Is(err, summarizer.ErrSummarizationFailed) {
			err = fmt.Errorf("%w: %w", summarizer.ErrSummarizationFailed, err)
		}
		return "", err
	}

	return summary, nil
}

func (s *summarizeService) SummarizeNote(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.SummarizeNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, ErrUnauthorized
	}

	var content string
	if req != nil && req.Content != nil {
		content = *req.Content
	} else {
		note, err := s.noteService.Show(ctx, userId, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSummarizeNoteFailed, err)
		}
		content = note.Content
	}

	summary, err := s.Summarize(ctx, content)
	if err != nil {
		if errors.Is(err, summarizer.ErrContentRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSummarizeNoteFailed, err)
	}

	note, err := s.noteService.SaveSummary(ctx, userId, id, summary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSummarizeNoteFailed, err)
	}
	return note, nil
}
