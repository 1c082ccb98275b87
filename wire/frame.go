package wire

import (
	"fmt"
)

// Content types carried in the Content-Type header.
const (
	// ContentTypeJSON marks a control frame whose body is a JSON-RPC envelope.
	ContentTypeJSON = "application/json"
	// ContentTypeOctet marks a payload frame whose body is raw media bytes.
	ContentTypeOctet = "application/octet-stream"
)

// Well-known header keys. Keys are case-sensitive on the wire.
const (
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
)

// Header is a single `Key: Value` line from a frame's header block.
// Key and value are trimmed around the colon; nothing else is normalized.
type Header struct {
	Key   string
	Value string
}

// Frame is one header-block-plus-body unit on the wire: ASCII header lines
// terminated by a blank line, followed by exactly Content-Length raw bytes.
// Headers preserve wire order. Body bytes are verbatim, no transcoding.
type Frame struct {
	Headers []Header
	Body    []byte
}

// Get returns the value of the first header with the given key.
func (f *Frame) Get(key string) (string, bool) {
	for _, h := range f.Headers {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

// ContentType returns the Content-Type header value, or ContentTypeJSON when
// the header is absent (a bare frame defaults to a JSON control frame).
func (f *Frame) ContentType() string {
	if ct, ok := f.Get(HeaderContentType); ok {
		return ct
	}
	return ContentTypeJSON
}

// IsControl reports whether this frame carries a JSON control body.
func (f *Frame) IsControl() bool {
	return f.ContentType() == ContentTypeJSON
}

// IsPayload reports whether this frame carries raw media bytes.
func (f *Frame) IsPayload() bool {
	return f.ContentType() == ContentTypeOctet
}

// FramingError reports a malformed or incomplete frame.
//
// Recoverable means the reader consumed the broken frame in full and the
// stream is still positioned at a frame boundary: the exchange is dropped and
// the loop may keep reading. When Recoverable is false the byte position is
// lost (short body read, header block with no usable Content-Length) and the
// stream cannot be resynchronized.
type FramingError struct {
	Msg         string
	Recoverable bool
	Err         error
}

func (e *FramingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("framing: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("framing: %s", e.Msg)
}

func (e *FramingError) Unwrap() error {
	return e.Err
}
