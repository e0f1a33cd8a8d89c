package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"note-summary-be/internal/bootstrap"
	"note-summary-be/internal/config"
	"note-summary-be/internal/controller"
	"note-summary-be/internal/pkg/logger"
	"note-summary-be/internal/server"
	"note-summary-be/internal/testutil"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groceriesSummary = "A shopping list for milk, eggs, and bread."

type fakeGemini struct {
	srv   *httptest.Server
	fail  atomic.Bool
	calls atomic.Int32
}

func newFakeGemini(t *testing.T) *fakeGemini {
	f := &fakeGemini{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if f.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"backend error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"` + groceriesSummary + `"}]}}]}`))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

type testEnv struct {
	app       *fiber.App
	container *bootstrap.Container
	gemini    *fakeGemini
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gemini := newFakeGemini(t)
	dir := t.TempDir()

	cfg := &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			LogFilePath:        filepath.Join(dir, "app.log"),
			WsLogFilePath:      filepath.Join(dir, "ws.log"),
			CorsAllowedOrigins: "http://localhost:5173",
			InvalidationTopic:  "NOTES_INVALIDATED",
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret", SessionTTL: time.Hour},
		Ai: config.AIConfig{
			SummarizerProvider: "gemini",
			GeminiAPIKey:       "test-key",
			GeminiModel:        "gemini-2.5-flash",
			GeminiBaseURL:      gemini.srv.URL,
		},
	}

	container, err := bootstrap.NewContainer(testutil.NewTestDB(t), cfg, bootstrap.WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = container.WebSocketHub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		container.Close()
	})

	return &testEnv{
		app:       server.New(cfg, container).GetApp(),
		container: container,
		gemini:    gemini,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type noteJSON struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) call(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	status, raw := e.do(t, method, path, token, body)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return status, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func (e *testEnv) signIn(t *testing.T, email string) string {
	t.Helper()
	status, _ := e.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": email, "password": "correct horse battery", "full_name": "Test User",
	})
	require.Equal(t, 200, status)

	status, env := e.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": email, "password": "correct horse battery",
	})
	require.Equal(t, 200, status)
	login := decodeData[struct {
		AccessToken string `json:"access_token"`
	}](t, env)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func TestGroceriesScenario(t *testing.T) {
	e := newTestEnv(t)
	token := e.signIn(t, "ana@example.com")

	status, env := e.call(t, "POST", "/api/notes", token, map[string]string{
		"title": "Groceries", "content": "Buy milk, eggs, and bread",
	})
	require.Equal(t, 200, status)
	assert.Equal(t, controller.MsgNoteCreated, env.Message)
	created := decodeData[noteJSON](t, env)
	assert.Nil(t, created.Summary)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	status, env = e.call(t, "GET", "/api/notes", token, nil)
	require.Equal(t, 200, status)
	list := decodeData[[]noteJSON](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, created.Id, list[0].Id)

	status, env = e.call(t, "POST", "/api/notes/"+created.Id+"/summarize", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, controller.MsgNoteSummarized, env.Message)
	summarized := decodeData[noteJSON](t, env)
	require.NotNil(t, summarized.Summary)
	assert.Equal(t, groceriesSummary, *summarized.Summary)
	assert.True(t, summarized.UpdatedAt.After(created.UpdatedAt))

	status, env = e.call(t, "PATCH", "/api/notes/"+created.Id, token, map[string]string{"title": "Weekly groceries"})
	require.Equal(t, 200, status)
	assert.Equal(t, controller.MsgNoteUpdated, env.Message)
	updated := decodeData[noteJSON](t, env)
	assert.Equal(t, "Weekly groceries", updated.Title)
	require.NotNil(t, updated.Summary, "summary survives a title edit")

	status, env = e.call(t, "DELETE", "/api/notes/"+created.Id, token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, controller.MsgNoteDeleted, env.Message)

	status, env = e.call(t, "GET", "/api/notes", token, nil)
	require.Equal(t, 200, status)
	assert.Empty(t, decodeData[[]noteJSON](t, env))

	status, env = e.call(t, "DELETE", "/api/notes/"+created.Id, token, nil)
	assert.Equal(t, 500, status)
	assert.Equal(t, controller.MsgDeleteFailed, env.Message)
}

func TestNotes_ValidationAndOwnership(t *testing.T) {
	e := newTestEnv(t)
	owner := e.signIn(t, "owner@example.com")
	intruder := e.signIn(t, "intruder@example.com")

	status, _ := e.call(t, "POST", "/api/notes", owner, map[string]string{"title": "  ", "content": "x"})
	assert.Equal(t, 400, status)

	_, env := e.call(t, "POST", "/api/notes", owner, map[string]string{"title": "Mine", "content": "secret"})
	note := decodeData[noteJSON](t, env)

	status, env = e.call(t, "PATCH", "/api/notes/"+note.Id, owner, map[string]string{})
	assert.Equal(t, 400, status)
	assert.Equal(t, controller.MsgEmptyUpdate, env.Message)

	status, env = e.call(t, "PATCH", "/api/notes/"+note.Id, intruder, map[string]string{"title": "stolen"})
	assert.Equal(t, 500, status)
	assert.Equal(t, controller.MsgUpdateFailed, env.Message)

	status, env = e.call(t, "PATCH", "/api/notes/not-a-uuid", owner, map[string]string{"title": "x"})
	assert.Equal(t, 500, status)
	assert.Equal(t, controller.MsgUpdateFailed, env.Message)

	status, _ = e.call(t, "GET", "/api/notes/"+note.Id, intruder, nil)
	assert.Equal(t, 404, status)

	status, env = e.call(t, "DELETE", "/api/notes/"+note.Id, intruder, nil)
	assert.Equal(t, 500, status)
	assert.Equal(t, controller.MsgDeleteFailed, env.Message)

	status, env = e.call(t, "GET", "/api/notes/"+note.Id, owner, nil)
	require.Equal(t, 200, status)
	kept := decodeData[noteJSON](t, env)
	assert.Equal(t, "Mine", kept.Title)
	assert.True(t, kept.UpdatedAt.Equal(note.UpdatedAt), "rejected updates leave the row untouched")

	_, env = e.call(t, "GET", "/api/notes", intruder, nil)
	assert.Empty(t, decodeData[[]noteJSON](t, env))
}

func TestNotes_SummarizeFailureKeepsNote(t *testing.T) {
	e := newTestEnv(t)
	token := e.signIn(t, "ana@example.com")

	_, env := e.call(t, "POST", "/api/notes", token, map[string]string{"title": "Groceries", "content": "milk"})
	note := decodeData[noteJSON](t, env)

	e.gemini.fail.Store(true)
	status, env := e.call(t, "POST", "/api/notes/"+note.Id+"/summarize", token, nil)
	assert.Equal(t, 500, status)
	assert.Equal(t, controller.MsgSummarizeFailed, env.Message)

	_, env = e.call(t, "GET", "/api/notes/"+note.Id, token, nil)
	assert.Nil(t, decodeData[noteJSON](t, env).Summary)
}

func TestSummarizeEndpoint(t *testing.T) {
	e := newTestEnv(t)
	token := e.signIn(t, "ana@example.com")

	tests := []struct {
		name       string
		token      string
		body       interface{}
		failing    bool
		wantStatus int
		wantBody   string
	}{
		{"no session", "", map[string]string{"content": "text"}, false, 401, `{"error":"Unauthorized"}`},
		{"bad token", "garbage", map[string]string{"content": "text"}, false, 401, `{"error":"Unauthorized"}`},
		{"missing content", token, map[string]string{}, false, 400, `{"error":"Content is required"}`},
		{"blank content", token, map[string]string{"content": "   "}, false, 400, `{"error":"Content is required"}`},
		{"non-string content", token, map[string]int{"content": 42}, false, 400, `{"error":"Content is required"}`},
		{"malformed json", token, "{not json", false, 500, `{"error":"Failed to summarize content"}`},
		{"provider down", token, map[string]string{"content": "text"}, true, 500, `{"error":"Failed to summarize content"}`},
		{"ok", token, map[string]string{"content": "Buy milk, eggs, and bread"}, false, 200, `{"summary":"` + groceriesSummary + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.gemini.fail.Store(tt.failing)
			status, raw := e.do(t, "POST", "/api/summarize", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.JSONEq(t, tt.wantBody, string(raw))
		})
	}
}

func TestSummarizeEndpoint_NoProviderCallWithoutContent(t *testing.T) {
	e := newTestEnv(t)
	token := e.signIn(t, "ana@example.com")

	e.do(t, "POST", "/api/summarize", token, map[string]string{"content": ""})
	e.do(t, "POST", "/api/summarize", "", map[string]string{"content": "text"})
	assert.EqualValues(t, 0, e.gemini.calls.Load())
}

func TestAuth_SessionAndLogout(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.call(t, "GET", "/api/notes", "", nil)
	assert.Equal(t, 401, status)

	token := e.signIn(t, "ana@example.com")

	status, env := e.call(t, "GET", "/api/auth/session", token, nil)
	require.Equal(t, 200, status)
	sess := decodeData[struct {
		Email string `json:"email"`
	}](t, env)
	assert.Equal(t, "ana@example.com", sess.Email)

	status, _ = e.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "ANA@example.com", "password": "another password",
	})
	assert.Equal(t, 400, status)

	status, _ = e.call(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong password",
	})
	assert.Equal(t, 401, status)

	status, _ = e.call(t, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, 200, status)

	status, _ = e.call(t, "GET", "/api/notes", token, nil)
	assert.Equal(t, 401, status)

	status, raw := e.do(t, "POST", "/api/summarize", token, map[string]string{"content": "text"})
	assert.Equal(t, 401, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(raw))
}

func TestNoteEvents_PushAndSignOut(t *testing.T) {
	e := newTestEnv(t)
	token := e.signIn(t, "ana@example.com")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = e.app.Listener(ln) }()
	t.Cleanup(func() { _ = e.app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/api/notes/events?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return e.container.WebSocketHub.ClientCount(mustUserId(t, e, token)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, env := e.call(t, "POST", "/api/notes", token, map[string]string{"title": "Groceries", "content": "milk"})
	note := decodeData[noteJSON](t, env)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string `json:"type"`
		Data struct {
			NoteId string `json:"note_id"`
			Reason string `json:"reason"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "notes.invalidated", msg.Type)
	assert.Equal(t, note.Id, msg.Data.NoteId)
	assert.Equal(t, "note.created", msg.Data.Reason)

	status, _ := e.call(t, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, 200, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestNoteEvents_RequiresSession(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(t, "GET", "/api/notes/events", "", nil)
	assert.Equal(t, 401, status)

	token := e.signIn(t, "ana@example.com")
	status, _ = e.do(t, "GET", "/api/notes/events", token, nil)
	assert.Equal(t, 426, status, "plain GET is not an upgrade")
}

func mustUserId(t *testing.T, e *testEnv, token string) uuid.UUID {
	t.Helper()
	s, err := e.container.Sessions.Validate(context.Background(), token)
	require.NoError(t, err)
	return s.UserId
}
