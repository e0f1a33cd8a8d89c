package serverutils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"note-summary-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchRequest struct {
	Title   *string `json:"title" validate:"omitempty,notblank"`
	Content *string `json:"content" validate:"omitempty,notblank"`
}

type createRequest struct {
	Title   string `json:"title" validate:"required,notblank"`
	Content string `json:"content" validate:"notblank"`
}

func strPtr(s string) *string { return &s }

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    interface{}
		fields []string
	}{
		{"valid create", createRequest{Title: "Groceries", Content: "milk"}, nil},
		{"blank content", createRequest{Title: "Groceries", Content: "   "}, []string{"content"}},
		{"missing both", createRequest{}, []string{"title", "content"}},
		{"nil pointers skipped", patchRequest{}, nil},
		{"blank pointer", patchRequest{Title: strPtr(" \t")}, []string{"title"}},
		{"valid pointer", patchRequest{Content: strPtr("eggs")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			var got []string
			for _, fe := range verr.Errors {
				got = append(got, fe.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/validation", func(c *fiber.Ctx) error {
		return NewValidationError("title", "title is required")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Note not found")
	})
	app.Get("/raw", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Len(t, body["data"], 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Note not found", decode(t, resp.Body)["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/raw", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.NotContains(t, decode(t, resp.Body)["message"], "pq")
}

type stubValidator struct {
	sessions map[string]*session.Session
	err      error
}

func (v stubValidator) Validate(ctx context.Context, token string) (*session.Session, error) {
	if v.err != nil {
		return nil, v.err
	}
	if s, ok := v.sessions[token]; ok {
		return s, nil
	}
	return nil, session.ErrUnauthorized
}

func TestSessionMiddleware(t *testing.T) {
	s := &session.Session{Id: "sid", UserId: uuid.New()}
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Use(SessionMiddleware(stubValidator{sessions: map[string]*session.Session{"good": s}}))
	app.Get("/me", func(c *fiber.Ctx) error {
		fromLocals, ok := CurrentSession(c)
		if !ok {
			return errors.New("no session in locals")
		}
		fromCtx, ok := session.FromContext(c.UserContext())
		if !ok || fromCtx != fromLocals {
			return errors.New("no session in context")
		}
		return c.SendString(c.Locals("user_id").(string))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, s.UserId.String(), string(raw))

	resp, err = app.Test(httptest.NewRequest("GET", "/me?token=good", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestSessionMiddleware_StoreFailure(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Use(SessionMiddleware(stubValidator{err: errors.New("redis down")}))
	app.Get("/me", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer any")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
