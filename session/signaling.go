package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Signaling message types.
const (
	sigConnect    = "connect"
	sigOffer      = "offer"
	sigAnswer     = "answer"
	sigCandidate  = "candidate"
	sigNotify     = "notify"
	sigDisconnect = "disconnect"
)

// signalMessage is the JSON envelope exchanged over the signaling socket.
// Notify messages are forwarded raw; the session does not interpret them.
type signalMessage struct {
	Type      string          `json:"type"`
	Role      string          `json:"role,omitempty"`
	ChannelID string          `json:"channel_id,omitempty"`
	ClientID  string          `json:"client_id,omitempty"`
	Audio     bool            `json:"audio,omitempty"`
	Video     bool            `json:"video,omitempty"`
	SDP       string          `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Code      int             `json:"code,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// signalingClient speaks the WebSocket signaling protocol. Writes are
// serialized; reads happen from a single goroutine owned by the session.
type signalingClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// dialSignaling tries each URL in order and returns the first that answers.
func dialSignaling(ctx context.Context, urls []string) (*signalingClient, error) {
	var lastErr error
	for _, url := range urls {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			lastErr = fmt.Errorf("dialing %s: %w", url, err)
			continue
		}
		return &signalingClient{conn: conn}, nil
	}
	return nil, fmt.Errorf("signaling: no URL reachable: %w", lastErr)
}

func (c *signalingClient) send(msg *signalMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("signaling send %s: %w", msg.Type, err)
	}
	return nil
}

// read blocks for the next signaling message and keeps the raw bytes so
// notify events can be forwarded verbatim.
func (c *signalingClient) read() (*signalMessage, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("signaling read: %w", err)
	}
	var msg signalMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("signaling parse: %w", err)
	}
	msg.Raw = data
	return &msg, nil
}

func (c *signalingClient) close() error {
	return c.conn.Close()
}
