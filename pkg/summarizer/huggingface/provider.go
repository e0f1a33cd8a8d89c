package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"note-summary-be/pkg/summarizer"
)

const DefaultSummaryURL = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"

type parameters struct {
	MaxLength int `json:"max_length,omitempty"`
}

type summarizeRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type summarizeResponse []struct {
	SummaryText string `json:"summary_text"`
}

type HuggingFaceProvider struct {
	apiKey    string
	url       string
	maxLength int
	client    *http.Client
}

func NewHuggingFaceProvider(apiKey, url string, maxLength int) *HuggingFaceProvider {
	if url == "" {
		url = DefaultSummaryURL
	}
	return &HuggingFaceProvider{
		apiKey:    apiKey,
		url:       url,
		maxLength: maxLength,
		client:    &http.Client{Timeout: summarizer.DefaultTimeout},
	}
}

func (p *HuggingFaceProvider) Name() string {
	return "huggingface"
}

// Summarize sends the raw content; summarization models take no instruction prompt.
func (p *HuggingFaceProvider) Summarize(ctx context.Context, text string) (string, error) {
	if p.apiKey == "" {
		return "", summarizer.MissingCredentials(p.Name())
	}

	jsonData, err := json.Marshal(summarizeRequest{
		Inputs:     text,
		Parameters: parameters{MaxLength: p.maxLength},
	})
	if err != nil {
		return "", summarizer.Failed("marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", summarizer.Failed("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", summarizer.Failed("request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", summarizer.Failed("read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", summarizer.Failed("huggingface api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var out summarizeResponse
	if err := json.Unmarshal(bodyBytes, &out); err != nil {
		return "", summarizer.Failed("decode response: %v", err)
	}

	if len(out) == 0 || out[0].SummaryText == "" {
		return "", summarizer.Failed("empty summary from huggingface api")
	}

	return out[0].SummaryText, nil
}
