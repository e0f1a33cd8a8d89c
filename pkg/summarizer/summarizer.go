package summarizer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrContentRequired     = errors.New("content is required")
	ErrSummarizationFailed = errors.New("summarization failed")
	ErrMissingCredentials  = errors.New("missing provider credentials")
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// Summarizer turns note content into a short paragraph.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
	Name() string
}

// BuildPrompt wraps content in the instruction sent to chat-style models.
func BuildPrompt(content string) string {
	return fmt.Sprintf(
		"Summarize the following text in a concise paragraph:\n\n%s\n\nProvide only the summary paragraph without any introductory words or explanations.",
		content,
	)
}

// Failed wraps a provider error so callers can match ErrSummarizationFailed.
func Failed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSummarizationFailed, fmt.Sprintf(format, args...))
}

func MissingCredentials(provider string) error {
	return fmt.Errorf("%w: %w (%s)", ErrSummarizationFailed, ErrMissingCredentials, provider)
}
