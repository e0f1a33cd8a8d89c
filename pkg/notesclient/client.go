// Package notesclient talks to the notes API the way the web client does: it
// keeps the note list in a short-lived cache and drops it whenever a mutation
// succeeds or the server pushes an invalidation.
package notesclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	notesKey = "notes"

	DefaultCacheTTL = 30 * time.Second
	DefaultTimeout  = 90 * time.Second
)

var ErrNotSignedIn = errors.New("not signed in")

// ErrBlankField is returned before any request when a title or content is empty
// after trimming.
var ErrBlankField = errors.New("title and content must not be blank")

// APIError is a non-2xx answer. Message is the server's message or error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Note struct {
	Id        uuid.UUID `json:"id"`
	UserId    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	Id       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

type Login struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type SessionInfo struct {
	SessionId string    `json:"session_id"`
	UserId    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NoteUpdate carries the fields to change. Nil fields are left alone.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string

	cache       *cache.Cache
	group       singleflight.Group
	invalidated chan struct{}

	// generation counts invalidations; guarded by mu.
	generation uint64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache = cache.New(ttl, 2*ttl) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: DefaultTimeout},
		cache:       cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		invalidated: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.Invalidate()
}

// Invalidated fires after the cached note list was dropped. Bursts collapse into one tick.
func (c *Client) Invalidated() <-chan struct{} {
	return c.invalidated
}

// Invalidate drops the cached note list. A fetch already in flight will not
// repopulate the cache, and later callers start a fresh request.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.cache.Flush()
	c.group.Forget(notesKey)
	c.mu.Unlock()

	select {
	case c.invalidated <- struct{}{}:
	default:
	}
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	body := map[string]string{"email": email, "password": password, "full_name": fullName}
	var user User
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Login, error) {
	body := map[string]string{"email": email, "password": password}
	var login Login
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", body, &login); err != nil {
		return nil, err
	}
	c.SetToken(login.AccessToken)
	return &login, nil
}

// Logout ends the session server side and forgets the token even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return ErrNotSignedIn
	}
	err := c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.call(ctx, http.MethodGet, "/api/auth/session", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Notes returns the signed-in user's notes, newest first. Concurrent misses share one request.
func (c *Client) Notes(ctx context.Context) ([]Note, error) {
	if cached, ok := c.cache.Get(notesKey); ok {
		return cached.([]Note), nil
	}

	v, err, _ := c.group.Do(notesKey, func() (interface{}, error) {
		started := c.currentGeneration()

		var notes []Note
		if err := c.call(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
			return nil, err
		}
		if notes == nil {
			notes = []Note{}
		}

		c.mu.Lock()
		if c.generation == started {
			c.cache.SetDefault(notesKey, notes)
		}
		c.mu.Unlock()
		return notes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Note), nil
}

func (c *Client) Note(ctx context.Context, id uuid.UUID) (*Note, error) {
	var note Note
	if err := c.call(ctx, http.MethodGet, "/api/notes/"+id.String(), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (*Note, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrBlankField
	}
	body := map[string]string{"title": title, "content": content}
	var note Note
	if err := c.call(ctx, http.MethodPost, "/api/notes", body, &note); err != nil {
		return nil, err
	}
	c.Invalidate()
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id uuid.UUID, update NoteUpdate) (*Note, error) {
	for _, field := range []*string{update.Title, update.Content} {
		if field == nil {
			continue
		}
		if *field = strings.TrimSpace(*field); *field == "" {
			return nil, ErrBlankField
		}
	}
	var note Note
	if err := c.call(ctx, http.MethodPatch, "/api/notes/"+id.String(), update, &note); err != nil {
		return nil, err
	}
	c.Invalidate()
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id uuid.UUID) error {
	if err := c.call(ctx, http.MethodDelete, "/api/notes/"+id.String(), nil, nil); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// SummarizeNote asks the server to summarize a stored note and keep the result.
func (c *Client) SummarizeNote(ctx context.Context, id uuid.UUID) (*Note, error) {
	var note Note
	if err := c.call(ctx, http.MethodPost, "/api/notes/"+id.String()+"/summarize", nil, &note); err != nil {
		return nil, err
	}
	c.Invalidate()
	return &note, nil
}

// Summarize calls the stateless endpoint, which answers {summary} or {error}.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/summarize", map[string]string{"content": content})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Summary string `json:"summary"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Message: out.Error}
	}
	return out.Summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.http.Do(req)
}

// call unwraps the {success, code, message, data} envelope into out.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
