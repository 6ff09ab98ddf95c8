// Package channel keeps the control channel to kinohub open.
//
// A Manager dials a Transport, hands every frame to its handler and, when
// the channel closes for any reason, dials again after a fixed delay,
// indefinitely.
package channel

import (
	"context"
	"errors"
	"fmt"
)

// State is the lifecycle position of the control channel.
type State int32

const (
	Disconnected State = iota
	Connecting
	Open
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrClosed is returned by Conn.Read once the peer closed the channel gracefully.
var ErrClosed = errors.New("channel closed by peer")

// Conn is one open control channel.
type Conn interface {
	// Read blocks until the next frame arrives. Any error means the channel
	// is closed and will not deliver again.
	Read(ctx context.Context) ([]byte, error)

	// Close releases the channel. Pending reads return an error.
	Close() error
}

// Transport opens control channels.
type Transport interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, endpoint string) (Conn, error)

func (f TransportFunc) Dial(ctx context.Context, endpoint string) (Conn, error) {
	return f(ctx, endpoint)
}

// Transport names accepted by channel.transport.
const (
	TransportWebSocket = "websocket"
	TransportRedis     = "redis"
)

// Transports lists the available transport names.
func Transports() []string {
	return []string{TransportWebSocket, TransportRedis}
}
