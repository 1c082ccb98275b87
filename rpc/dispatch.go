package rpc

import (
	"fmt"
	"os"

	"github.com/machinefabric/mediaplug-go/stream"
)

// Sink receives validated media units bound for the collaborator session.
// Implementations run on the dispatch thread and must not block indefinitely.
type Sink interface {
	HandleAudio(params AudioParams, data []byte) error
	HandleVideo(params VideoParams, data []byte) error
}

// Outcome is what the loop writes back after a dispatch: at most one response
// frame, optionally followed by one binary payload frame.
type Outcome struct {
	Response *Response
	Payload  []byte
}

// Dispatcher validates one control message per call and applies it to the
// registry, the sink, and the poller. It runs on the single dispatch thread.
type Dispatcher struct {
	registry *stream.Registry
	sink     Sink
	poller   Poller
}

// NewDispatcher creates a dispatcher. sink may be nil in the receive
// direction, where inbound media units are not forwarded anywhere.
func NewDispatcher(registry *stream.Registry, sink Sink, poller Poller) *Dispatcher {
	return &Dispatcher{registry: registry, sink: sink, poller: poller}
}

// ExpectsPayload reports whether a method's control frame is followed by one
// binary payload frame.
func ExpectsPayload(method string) bool {
	return method == MethodNotifyAudio || method == MethodNotifyVideo
}

// Dispatch handles one parsed control message and its optional payload.
//
// Validation and protocol errors are returned for the caller to log; they
// drop the specific exchange only. A nil Outcome means no response is due —
// the four notify methods never produce one, even when the request carries an
// id.
func (d *Dispatcher) Dispatch(req *Request, payload []byte) (*Outcome, error) {
	switch req.Method {
	case MethodNotifyAudio:
		return nil, d.notifyAudio(req, payload)
	case MethodNotifyVideo:
		return nil, d.notifyVideo(req, payload)
	case MethodNotifyEOS:
		return nil, d.notifyEOS(req)
	case MethodPollOutput:
		return d.pollOutput(req), nil
	default:
		return nil, &ProtocolError{Msg: fmt.Sprintf("unexpected method %q", req.Method)}
	}
}

func (d *Dispatcher) notifyAudio(req *Request, payload []byte) error {
	var params AudioParams
	required := []string{"stream_id", "stereo", "sample_rate", "timestamp_us", "duration_us"}
	if err := decodeParams(req.Method, req.Params, required, &params); err != nil {
		return err
	}

	d.registry.Upsert(params.StreamID, stream.KindAudio)

	if payload == nil {
		// A notify without its payload frame upserts the stream but the unit
		// itself is dropped, never forwarded with an empty body.
		fmt.Fprintf(os.Stderr, "[Dispatcher] notify_audio stream_id=%d without payload, unit dropped\n", params.StreamID)
		return nil
	}
	if d.sink == nil {
		return nil
	}
	if err := d.sink.HandleAudio(params, payload); err != nil {
		return fmt.Errorf("audio sink: %w", err)
	}
	return nil
}

func (d *Dispatcher) notifyVideo(req *Request, payload []byte) error {
	var params VideoParams
	required := []string{"stream_id", "width", "height", "timestamp_us", "duration_us"}
	if err := decodeParams(req.Method, req.Params, required, &params); err != nil {
		return err
	}

	d.registry.Upsert(params.StreamID, stream.KindVideo)

	if payload == nil {
		fmt.Fprintf(os.Stderr, "[Dispatcher] notify_video stream_id=%d without payload, unit dropped\n", params.StreamID)
		return nil
	}
	if len(payload) != params.PayloadSize() {
		return &ValidationError{
			Method: req.Method,
			Reason: fmt.Sprintf("payload is %d bytes, want %d for %dx%d", len(payload), params.PayloadSize(), params.Width, params.Height),
		}
	}
	if d.sink == nil {
		return nil
	}
	if err := d.sink.HandleVideo(params, payload); err != nil {
		return fmt.Errorf("video sink: %w", err)
	}
	return nil
}

func (d *Dispatcher) notifyEOS(req *Request) error {
	var params EOSParams
	if err := decodeParams(req.Method, req.Params, []string{"stream_id"}, &params); err != nil {
		return err
	}
	// Unconditional and idempotent: removing an absent id is a no-op.
	d.registry.Remove(params.StreamID)
	return nil
}

func (d *Dispatcher) pollOutput(req *Request) *Outcome {
	if !req.HasID() {
		// Fire-and-forget poll: nothing to answer, and no unit is consumed
		// for a response that could never be delivered.
		return nil
	}
	reply := d.poller.Poll()
	return &Outcome{
		Response: NewResponse(req.ID, reply.Result),
		Payload:  reply.Payload,
	}
}
