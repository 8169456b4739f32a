package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Handshake query parameters carrying session credentials.
// The server side (pkg/stream) reads the same parameters.
const (
	ParamApplicationID  = "application_id"
	ParamSubscriberID   = "subscriber_id"
	ParamSubscriberHash = "subscriber_hash"
)

// Conn is a single established connection to the event channel.
type Conn interface {
	// ReadEvent blocks until the next event arrives or the connection
	// fails. Malformed frames are dropped, not returned as errors.
	ReadEvent() (event.Event, error)

	// Close closes the connection and unblocks any pending ReadEvent.
	Close() error
}

// Dialer establishes connections to the event channel. The session dials
// once on Connect and again after every network failure.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Credentials identify the subscriber during the channel handshake.
type Credentials struct {
	// ApplicationID is the tenant's public feed credential.
	ApplicationID string

	// SubscriberID is the plaintext subscriber identifier.
	SubscriberID string

	// SubscriberHash is the backend-computed HMAC of SubscriberID
	// (identity.ComputeSubscriberHash). Required when the tenant has
	// HMAC verification enabled.
	SubscriberHash string
}

// WSDialer dials the event channel over WebSocket.
type WSDialer struct {
	// URL is the channel endpoint, e.g. "wss://feed.example.com/ws".
	URL string

	// Credentials are appended to the endpoint as query parameters.
	Credentials Credentials

	// Header is sent with the handshake request. Optional.
	Header http.Header

	// Log records dropped frames. Defaults to slog.Default.
	Log *slog.Logger
}

// Dial establishes the WebSocket connection.
func (d WSDialer) Dial(ctx context.Context) (Conn, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set(ParamApplicationID, d.Credentials.ApplicationID)
	q.Set(ParamSubscriberID, d.Credentials.SubscriberID)
	if d.Credentials.SubscriberHash != "" {
		q.Set(ParamSubscriberHash, d.Credentials.SubscriberHash)
	}
	u.RawQuery = q.Encode()

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), d.Header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &wsConn{ws: ws, log: log}, nil
}

// wsConn adapts a gorilla WebSocket connection to the Conn interface.
type wsConn struct {
	ws  *websocket.Conn
	log *slog.Logger
}

// ReadEvent reads frames until one decodes into an event. Frames that fail
// to decode or carry no event name are dropped with a debug record so a
// single bad frame cannot tear down the session.
func (c *wsConn) ReadEvent() (event.Event, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return event.Event{}, err
		}

		var e event.Event
		if err := json.Unmarshal(data, &e); err != nil || e.Name == "" {
			c.log.LogAttrs(context.Background(), slog.LevelDebug, "dropping malformed channel frame",
				logger.Error(err),
			)
			continue
		}
		return e, nil
	}
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
