// Package session provides the real-time media session the plugin core talks
// to: connection establishment over WebSocket signaling, a WebRTC peer
// connection, and per-kind data channels carrying decoded media units.
//
// The core only needs a push path for outbound units, a notification path for
// inbound tracks and frames, and a disconnect signal; everything else about
// the transport is private to this package.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/machinefabric/mediaplug-go/stream"
)

// Role selects the session direction.
type Role string

const (
	// RoleSendOnly publishes media units produced by the host.
	RoleSendOnly Role = "sendonly"
	// RoleRecvOnly receives media units and hands them to the output queue.
	RoleRecvOnly Role = "recvonly"
)

// DefaultConnectTimeout bounds connection establishment. Connect resolves on
// an explicit readiness signal from the peer connection, never a fixed delay.
const DefaultConnectTimeout = 10 * time.Second

// Config describes one session.
type Config struct {
	SignalingURLs []string
	ChannelID     string
	Role          Role
	Audio         bool
	Video         bool

	// ConnectTimeout bounds Connect. Zero means DefaultConnectTimeout.
	ConnectTimeout time.Duration
}

// Validate checks the config before dialing.
func (c *Config) Validate() error {
	if c.ChannelID == "" {
		return errors.New("session: channel id is required")
	}
	if len(c.SignalingURLs) == 0 {
		return errors.New("session: at least one signaling URL is required")
	}
	switch c.Role {
	case RoleSendOnly, RoleRecvOnly:
	default:
		return fmt.Errorf("session: invalid role %q", c.Role)
	}
	return nil
}

// ErrConnectTimeout is returned when the readiness signal does not arrive
// within the connect timeout.
var ErrConnectTimeout = errors.New("session: connect timed out")

// ErrNotConnected is returned when a unit is pushed before the session is
// established or after it closed.
var ErrNotConnected = errors.New("session: not connected")

// DisconnectError carries the collaborator's disconnect code and message.
// A disconnect is logged and converted into stream termination; it is not
// necessarily process-fatal.
type DisconnectError struct {
	Code    int
	Message string
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("session: disconnected (%d): %s", e.Code, e.Message)
}

// Track is one inbound media track. Unit callbacks fire on the session's
// internal thread and must only perform a synchronized hand-off.
type Track interface {
	Kind() stream.Kind
	Label() string
	OnUnit(func(*stream.Unit))
}

// Session is the collaborator surface the plugin loop owns. Connect blocks
// until the session is ready or ctx expires; Close is idempotent and must be
// called on every exit path.
type Session interface {
	Connect(ctx context.Context) error
	Close() error
}
