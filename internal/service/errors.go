package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyUpdate  = errors.New("at least one of title, content or summary is required")
	ErrListFailed   = errors.New("failed to load notes")
	ErrCreateFailed = errors.New("failed to create note")
	ErrUpdateFailed = errors.New("failed to update note")
	ErrDeleteFailed = errors.New("failed to delete note")

	ErrSummarizeNoteFailed = errors.New("failed to summarize note")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
