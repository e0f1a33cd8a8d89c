package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"note-summary-be/pkg/summarizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProvider_Summarize(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Buy milk, "},{"text":"eggs and bread."}]}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("key-1", srv.URL, "")
	out, err := p.Summarize(context.Background(), "Buy milk, eggs, and bread")
	require.NoError(t, err)

	assert.Equal(t, "Buy milk, eggs and bread.", out)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, summarizer.BuildPrompt("Buy milk, eggs, and bread"), gotPrompt)
}

func TestGeminiProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`},
		{"malformed", http.StatusOK, `not json`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"parts":[]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGeminiProvider("key", srv.URL, "").Summarize(context.Background(), "text")
			assert.ErrorIs(t, err, summarizer.ErrSummarizationFailed)
		})
	}
}

func TestGeminiProvider_MissingKeyMakesNoCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewGeminiProvider("", srv.URL, "").Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, summarizer.ErrMissingCredentials)
	assert.ErrorIs(t, err, summarizer.ErrSummarizationFailed)
	assert.False(t, called)
}

func TestGeminiProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewGeminiProvider("key", url, "").Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, summarizer.ErrSummarizationFailed)
}
