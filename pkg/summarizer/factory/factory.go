package factory

import (
	"fmt"

	"note-summary-be/internal/config"
	"note-summary-be/pkg/summarizer"
	"note-summary-be/pkg/summarizer/gemini"
	"note-summary-be/pkg/summarizer/huggingface"
)

func NewSummarizer(cfg config.AIConfig) (summarizer.Summarizer, error) {
	switch cfg.SummarizerProvider {
	case "", "gemini":
		return gemini.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceAPIKey, cfg.HuggingFaceSummaryURL, cfg.SummaryMaxLength), nil
	default:
		return nil, fmt.Errorf("unsupported summarizer provider: %s", cfg.SummarizerProvider)
	}
}
