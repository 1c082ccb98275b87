package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/machinefabric/mediaplug-go/stream"
)

// WebRTC is a Session backed by a pion peer connection. Media units travel
// over per-kind data channels as CBOR envelopes; signaling runs over a
// WebSocket. One WebRTC value serves exactly one connection.
type WebRTC struct {
	cfg Config

	mu       sync.Mutex
	pc       *webrtc.PeerConnection
	sig      *signalingClient
	channels map[stream.Kind]*webrtc.DataChannel

	ready          chan struct{}
	readyOnce      sync.Once
	closed         chan struct{}
	closeOnce      sync.Once
	disconnectOnce sync.Once

	onNotify     func(raw json.RawMessage)
	onDisconnect func(code int, message string)
	onTrack      func(t Track)
}

// NewWebRTC creates an unconnected session. Register callbacks before
// calling Connect.
func NewWebRTC(cfg Config) *WebRTC {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &WebRTC{
		cfg:      cfg,
		channels: make(map[stream.Kind]*webrtc.DataChannel),
		ready:    make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

// OnNotify registers a callback for raw notify events from the signaling
// channel.
func (s *WebRTC) OnNotify(cb func(raw json.RawMessage)) { s.onNotify = cb }

// OnDisconnect registers a callback for session loss. It fires at most once,
// on an internal thread, and must only perform a synchronized hand-off.
func (s *WebRTC) OnDisconnect(cb func(code int, message string)) { s.onDisconnect = cb }

// OnTrack registers a callback for inbound tracks (receive direction).
func (s *WebRTC) OnTrack(cb func(t Track)) { s.onTrack = cb }

// Connect dials signaling, performs the offer/answer exchange, and blocks
// until the ICE connection reports connected or the timeout expires. Failure
// here is fatal to the plugin.
func (s *WebRTC) Connect(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	sig, err := dialSignaling(ctx, s.cfg.SignalingURLs)
	if err != nil {
		return err
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		sig.close()
		return fmt.Errorf("creating peer connection: %w", err)
	}

	s.mu.Lock()
	s.sig = sig
	s.pc = pc
	s.mu.Unlock()

	if s.cfg.Role == RoleSendOnly {
		if s.cfg.Audio {
			if err := s.createChannel(stream.KindAudio); err != nil {
				s.teardown()
				return err
			}
		}
		if s.cfg.Video {
			if err := s.createChannel(stream.KindVideo); err != nil {
				s.teardown()
				return err
			}
		}
	} else {
		pc.OnDataChannel(func(dc *webrtc.DataChannel) {
			t := newRemoteTrack(dc)
			fmt.Fprintf(os.Stderr, "[Session] inbound %s track %q\n", t.Kind(), t.Label())
			if s.onTrack != nil {
				s.onTrack(t)
			}
		})
	}

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		switch state {
		case webrtc.ICEConnectionStateConnected:
			s.readyOnce.Do(func() { close(s.ready) })
		case webrtc.ICEConnectionStateFailed, webrtc.ICEConnectionStateDisconnected:
			s.fireDisconnect(1, "ice connection "+state.String())
		}
	})

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		init, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		if err := sig.send(&signalMessage{Type: sigCandidate, Candidate: init}); err != nil {
			fmt.Fprintf(os.Stderr, "[Session] sending candidate: %v\n", err)
		}
	})

	connect := &signalMessage{
		Type:      sigConnect,
		Role:      string(s.cfg.Role),
		ChannelID: s.cfg.ChannelID,
		ClientID:  uuid.NewString(),
		Audio:     s.cfg.Audio,
		Video:     s.cfg.Video,
	}
	if err := sig.send(connect); err != nil {
		s.teardown()
		return err
	}

	go s.readLoop()

	select {
	case <-s.ready:
		return nil
	case <-s.closed:
		return fmt.Errorf("%w: session closed during connect", ErrNotConnected)
	case <-ctx.Done():
		s.teardown()
		return fmt.Errorf("%w after %s", ErrConnectTimeout, s.cfg.ConnectTimeout)
	}
}

func (s *WebRTC) createChannel(kind stream.Kind) error {
	dc, err := s.pc.CreateDataChannel(kind.String(), nil)
	if err != nil {
		return fmt.Errorf("creating %s channel: %w", kind, err)
	}
	s.mu.Lock()
	s.channels[kind] = dc
	s.mu.Unlock()
	return nil
}

// readLoop drains the signaling socket until the session ends.
func (s *WebRTC) readLoop() {
	for {
		msg, err := s.sig.read()
		if err != nil {
			select {
			case <-s.closed:
			default:
				s.fireDisconnect(1, err.Error())
			}
			return
		}

		switch msg.Type {
		case sigOffer:
			if err := s.handleOffer(msg.SDP); err != nil {
				fmt.Fprintf(os.Stderr, "[Session] offer: %v\n", err)
			}
		case sigCandidate:
			var init webrtc.ICECandidateInit
			if err := json.Unmarshal(msg.Candidate, &init); err != nil {
				fmt.Fprintf(os.Stderr, "[Session] candidate parse: %v\n", err)
				continue
			}
			if err := s.pc.AddICECandidate(init); err != nil {
				fmt.Fprintf(os.Stderr, "[Session] adding candidate: %v\n", err)
			}
		case sigNotify:
			if s.onNotify != nil {
				s.onNotify(msg.Raw)
			}
		case sigDisconnect:
			s.fireDisconnect(msg.Code, msg.Reason)
			return
		default:
			fmt.Fprintf(os.Stderr, "[Session] ignoring signaling message %q\n", msg.Type)
		}
	}
}

func (s *WebRTC) handleOffer(sdp string) error {
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp}
	if err := s.pc.SetRemoteDescription(offer); err != nil {
		return fmt.Errorf("setting remote description: %w", err)
	}
	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("creating answer: %w", err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("setting local description: %w", err)
	}
	return s.sig.send(&signalMessage{Type: sigAnswer, SDP: answer.SDP})
}

// SendUnit pushes one media unit onto the data channel for its kind.
func (s *WebRTC) SendUnit(u *stream.Unit) error {
	s.mu.Lock()
	dc := s.channels[u.Kind]
	s.mu.Unlock()

	if dc == nil || dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrNotConnected
	}
	data, err := EncodeUnit(u)
	if err != nil {
		return err
	}
	if err := dc.Send(data); err != nil {
		return fmt.Errorf("sending %s unit: %w", u.Kind, err)
	}
	return nil
}

func (s *WebRTC) fireDisconnect(code int, message string) {
	s.disconnectOnce.Do(func() {
		fmt.Fprintf(os.Stderr, "[Session] disconnected (%d): %s\n", code, message)
		if s.onDisconnect != nil {
			s.onDisconnect(code, message)
		}
	})
}

func (s *WebRTC) teardown() {
	s.mu.Lock()
	sig, pc := s.sig, s.pc
	s.mu.Unlock()
	if sig != nil {
		sig.close()
	}
	if pc != nil {
		pc.Close()
	}
}

// Close releases the session. Idempotent; safe on every exit path including
// a session that never connected.
func (s *WebRTC) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.mu.Lock()
		sig, pc := s.sig, s.pc
		s.mu.Unlock()
		if sig != nil {
			// Best effort: let the peer see a clean departure.
			sig.send(&signalMessage{Type: sigDisconnect})
			if cerr := sig.close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		if pc != nil {
			if cerr := pc.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}

// remoteTrack wraps an inbound data channel as a Track. The channel label is
// the kind name assigned by the publishing side.
type remoteTrack struct {
	dc   *webrtc.DataChannel
	kind stream.Kind
}

func newRemoteTrack(dc *webrtc.DataChannel) *remoteTrack {
	kind := stream.KindVideo
	if dc.Label() == stream.KindAudio.String() {
		kind = stream.KindAudio
	}
	return &remoteTrack{dc: dc, kind: kind}
}

func (t *remoteTrack) Kind() stream.Kind { return t.kind }

func (t *remoteTrack) Label() string { return t.dc.Label() }

func (t *remoteTrack) OnUnit(cb func(u *stream.Unit)) {
	t.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		u, err := DecodeUnit(msg.Data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Session] dropping inbound unit: %v\n", err)
			return
		}
		cb(u)
	})
}
