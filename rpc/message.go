// Package rpc parses the JSON-RPC control envelope, validates per-method
// parameters, and dispatches requests against the stream registry, the media
// sink, and the output queue.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC version string carried by every envelope.
const Version = "2.0"

// Method names recognized by the dispatcher.
const (
	MethodNotifyAudio = "notify_audio"
	MethodNotifyVideo = "notify_video"
	MethodNotifyEOS   = "notify_eos"
	MethodPollOutput  = "poll_output"
)

// Request is the logical envelope of a control frame. Presence of a non-null
// id distinguishes a request (response expected) from a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// HasID reports whether the request carries a non-null id.
func (r *Request) HasID() bool {
	return len(r.ID) > 0 && !bytes.Equal(r.ID, []byte("null"))
}

// Response answers a request. ID must equal the id of the request it answers.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// NewResponse builds a response echoing the request's id verbatim.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// ParseRequest decodes a control frame body. A body that is not valid JSON is
// an error the caller drops; it never terminates the loop.
func ParseRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("parsing control frame: %w", err)
	}
	return &req, nil
}

// AudioParams are the required fields of notify_audio.
type AudioParams struct {
	StreamID    int64 `json:"stream_id"`
	Stereo      bool  `json:"stereo"`
	SampleRate  int   `json:"sample_rate"`
	TimestampUs int64 `json:"timestamp_us"`
	DurationUs  int64 `json:"duration_us"`
}

// VideoParams are the required fields of notify_video.
type VideoParams struct {
	StreamID    int64 `json:"stream_id"`
	Width       int   `json:"width"`
	Height      int   `json:"height"`
	TimestampUs int64 `json:"timestamp_us"`
	DurationUs  int64 `json:"duration_us"`
}

// PayloadSize returns the exact byte count a packed 3-channel image for these
// dimensions must have.
func (p *VideoParams) PayloadSize() int {
	return p.Width * p.Height * 3
}

// EOSParams are the required fields of notify_eos.
type EOSParams struct {
	StreamID int64 `json:"stream_id"`
}

// ValidationError reports missing or mistyped required params, or a payload
// whose size contradicts its declared geometry. The specific request is
// dropped, never the process.
type ValidationError struct {
	Method string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %s: %s", e.Method, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Reason)
}

// ProtocolError reports an unexpected method or a payload frame arriving
// unrequested. The offending exchange is dropped.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Msg
}

// decodeParams unmarshals params into a map of raw fields, then checks each
// required field is present and of the right JSON type before filling dst.
// encoding/json alone would silently zero-fill missing fields.
func decodeParams(method string, params json.RawMessage, required []string, dst any) error {
	if len(params) == 0 {
		return &ValidationError{Method: method, Reason: "missing params"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(params, &fields); err != nil {
		return &ValidationError{Method: method, Reason: "params is not an object"}
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return &ValidationError{Method: method, Field: name, Reason: "missing"}
		}
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Method: method, Reason: err.Error()}
	}
	return nil
}
