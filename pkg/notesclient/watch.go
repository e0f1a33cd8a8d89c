package notesclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
)

const messageTypeInvalidated = "notes.invalidated"

// Push is one message from the notes event stream.
type Push struct {
	Type string   `json:"type"`
	Data PushData `json:"data"`
}

type PushData struct {
	NoteId uuid.UUID `json:"note_id"`
	Reason string    `json:"reason"`
}

func (c *Client) eventsURL() string {
	u := c.baseURL + "/api/notes/events"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// Watch listens on the notes event stream until ctx ends or the server closes
// the socket. Every invalidation drops the cached note list before onPush runs.
// A normal close, which the server sends on sign-out, returns nil.
func (c *Client) Watch(ctx context.Context, onPush func(Push)) error {
	token := c.Token()
	if token == "" {
		return ErrNotSignedIn
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.eventsURL(), header)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read events: %w", err)
		}

		var push Push
		if err := json.Unmarshal(raw, &push); err != nil {
			continue
		}
		if push.Type == messageTypeInvalidated {
			c.Invalidate()
		}
		if onPush != nil {
			onPush(push)
		}
	}
}
