package mediaplug

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/machinefabric/mediaplug-go/rpc"
	"github.com/machinefabric/mediaplug-go/session"
	"github.com/machinefabric/mediaplug-go/wire"
)

// ErrSessionConnect wraps failure to establish the collaborator session; it is
// the one startup error that exits the process non-zero.
var ErrSessionConnect = errors.New("establishing session")

// State is the plugin loop lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateRunning
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Loop owns the frame codec, the dispatcher, and the collaborator session,
// and runs the read-dispatch-respond cycle until the input stream closes.
//
// Exactly one goroutine executes the cycle; its only suspension point is the
// blocking read on the input stream. Requests are processed strictly in
// arrival order, and a response is written before the next frame is read.
type Loop struct {
	reader     *wire.FrameReader
	writer     *wire.FrameWriter
	dispatcher *rpc.Dispatcher
	session    session.Session
	state      atomic.Int32
}

// NewLoop assembles a plugin loop. The loop takes ownership of the session
// and releases it on every path out of Run.
func NewLoop(in io.Reader, out io.Writer, d *rpc.Dispatcher, sess session.Session) *Loop {
	return &Loop{
		reader:     wire.NewFrameReader(in),
		writer:     wire.NewFrameWriter(out),
		dispatcher: d,
		session:    sess,
	}
}

// State returns the loop's current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	l.state.Store(int32(s))
}

// Run drives the loop to completion. It returns nil on graceful close of the
// input stream, ErrSessionConnect (wrapped) when the session cannot be
// established, and an unrecoverable framing or write error otherwise. The
// session is released before Run returns, on every path.
func (l *Loop) Run(ctx context.Context) error {
	l.setState(StateConnecting)
	if err := l.session.Connect(ctx); err != nil {
		l.session.Close()
		l.setState(StateClosed)
		return fmt.Errorf("%w: %w", ErrSessionConnect, err)
	}

	defer func() {
		l.setState(StateDraining)
		if err := l.session.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[Loop] releasing session: %v\n", err)
		}
		l.setState(StateClosed)
	}()

	l.setState(StateRunning)
	for {
		frame, err := l.reader.ReadFrame()
		if err == io.EOF {
			return nil // peer closed input, drain and exit clean
		}
		if err != nil {
			var fe *wire.FramingError
			if errors.As(err, &fe) && fe.Recoverable {
				fmt.Fprintf(os.Stderr, "[Loop] dropping frame: %v\n", fe)
				continue
			}
			return err
		}

		if !frame.IsControl() {
			// A payload frame arriving unrequested.
			fmt.Fprintf(os.Stderr, "[Loop] dropping unexpected %s frame (%d bytes)\n", frame.ContentType(), len(frame.Body))
			continue
		}

		req, err := rpc.ParseRequest(frame.Body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Loop] dropping message: %v\n", err)
			continue
		}

		var payload []byte
		if rpc.ExpectsPayload(req.Method) {
			pf, err := l.reader.ReadFrame()
			if err == io.EOF {
				fmt.Fprintf(os.Stderr, "[Loop] input closed before %s payload\n", req.Method)
				return nil
			}
			if err != nil {
				var fe *wire.FramingError
				if errors.As(err, &fe) && fe.Recoverable {
					fmt.Fprintf(os.Stderr, "[Loop] dropping %s exchange: %v\n", req.Method, fe)
					continue
				}
				return err
			}
			if !pf.IsPayload() {
				fmt.Fprintf(os.Stderr, "[Loop] dropping %s exchange: second frame is %s, not a payload\n", req.Method, pf.ContentType())
				continue
			}
			payload = pf.Body
		}

		out, err := l.dispatcher.Dispatch(req, payload)
		if err != nil {
			// Validation and protocol failures are isolated per request.
			fmt.Fprintf(os.Stderr, "[Loop] dropping request: %v\n", err)
			continue
		}
		if out == nil || out.Response == nil {
			continue
		}

		body, err := json.Marshal(out.Response)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Loop] encoding response: %v\n", err)
			continue
		}
		if err := l.writer.WriteFrame(body, wire.ContentTypeJSON); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
		if out.Payload != nil {
			if err := l.writer.WriteFrame(out.Payload, wire.ContentTypeOctet); err != nil {
				return fmt.Errorf("writing payload: %w", err)
			}
		}
	}
}
