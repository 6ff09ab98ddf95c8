package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kinoplay/kinoplay/constant"
	"github.com/kinoplay/kinoplay/network"
)

const (
	// kinohub pings every 54s and expects a pong within 60s.
	pongWait = 60 * time.Second

	writeWait = 10 * time.Second

	// Maximum frame size accepted from the server.
	maxFrameSize = 64 * 1024
)

// WebSocket dials the control channel over gorilla/websocket.
type WebSocket struct {
	dialer   *websocket.Dialer
	jar      http.CookieJar
	clientID string
	pongWait time.Duration
}

// NewWebSocket creates a transport that presents clientID as the puid cookie
// on every handshake, the way the kinohub web client does.
func NewWebSocket(clientID string) (*WebSocket, error) {
	jar, err := network.NewJar()
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &WebSocket{
		dialer:   network.Dialer(jar),
		jar:      jar,
		clientID: clientID,
		pongWait: pongWait,
	}, nil
}

// Dial opens the channel at endpoint, a ws:// or wss:// URL.
func (w *WebSocket) Dial(ctx context.Context, endpoint string) (Conn, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	w.rememberClient(u)

	conn, resp, err := w.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", endpoint, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	c := &wsConn{conn: conn, pongWait: w.pongWait}
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(w.pongWait))
	conn.SetPingHandler(c.ping)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.pongWait))
	})

	c.stop = context.AfterFunc(ctx, func() { _ = conn.Close() })
	return c, nil
}

// rememberClient stores the puid cookie for the handshake URL.
func (w *WebSocket) rememberClient(endpoint *url.URL) {
	if w.clientID == "" {
		return
	}

	// the jar is keyed by the http form of the URL, which is what the dialer asks for
	u := *endpoint
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}

	w.jar.SetCookies(&u, []*http.Cookie{{
		Name:  constant.ClientIDCookie,
		Value: w.clientID,
		Path:  "/",
	}})
}

type wsConn struct {
	conn     *websocket.Conn
	pongWait time.Duration
	stop     func() bool
}

// ping answers a server ping and extends the read deadline.
func (c *wsConn) ping(appData string) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

	err := c.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}
	return err
}

// Read returns the next text or binary message. A close frame from the
// server is reported as ErrClosed.
func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return nil, err
	}

	// any traffic proves the server is alive
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	return data, nil
}

func (c *wsConn) Close() error {
	c.stop()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	return c.conn.Close()
}
