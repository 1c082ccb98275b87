package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FrameReader reads header-plus-body frames from a byte stream.
//
// A clean end of stream before any header byte is io.EOF (graceful close).
// Everything else that goes wrong is a *FramingError; see its Recoverable
// flag for whether the stream can still be read after the failure.
type FrameReader struct {
	reader *bufio.Reader
	limits Limits
}

// NewFrameReader creates a FrameReader with default limits.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{
		reader: bufio.NewReader(r),
		limits: DefaultLimits(),
	}
}

// SetLimits updates the reader's limits.
func (fr *FrameReader) SetLimits(limits Limits) {
	fr.limits = limits
}

// ReadFrame reads a single frame: header lines to a blank line, then exactly
// Content-Length body bytes, verbatim.
//
// A header line without a colon does not abort parsing immediately: the
// header block is consumed to its blank line and, when a valid Content-Length
// is present, the body is skipped so the stream stays at a frame boundary.
// The returned error is then recoverable.
func (fr *FrameReader) ReadFrame() (*Frame, error) {
	frame := &Frame{}
	var badLine string

	first := true
	for {
		line, err := fr.reader.ReadString('\n')
		if err == io.EOF {
			if first && line == "" {
				// Peer closed the stream between frames.
				return nil, io.EOF
			}
			return nil, &FramingError{Msg: "stream ended inside header block", Err: io.ErrUnexpectedEOF}
		}
		if err != nil {
			return nil, &FramingError{Msg: "reading header line", Err: err}
		}
		first = false

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // blank line ends the header block
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			if badLine == "" {
				badLine = line
			}
			continue
		}
		frame.Headers = append(frame.Headers, Header{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}

	lengthStr, ok := frame.Get(HeaderContentLength)
	if !ok {
		return nil, &FramingError{Msg: "missing Content-Length header"}
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil || length < 0 {
		return nil, &FramingError{Msg: fmt.Sprintf("invalid Content-Length %q", lengthStr)}
	}

	if length > fr.limits.MaxBody || length > MaxBodyHardLimit {
		if err := fr.discard(length); err != nil {
			return nil, err
		}
		return nil, &FramingError{
			Msg:         fmt.Sprintf("body size %d exceeds limit %d", length, min(fr.limits.MaxBody, MaxBodyHardLimit)),
			Recoverable: true,
		}
	}

	if badLine != "" {
		// Header block was malformed but the body length is known: skip the
		// body so the next ReadFrame starts at a frame boundary.
		if err := fr.discard(length); err != nil {
			return nil, err
		}
		return nil, &FramingError{
			Msg:         fmt.Sprintf("header line %q has no colon", badLine),
			Recoverable: true,
		}
	}

	frame.Body = make([]byte, length)
	if n, err := io.ReadFull(fr.reader, frame.Body); err != nil {
		return nil, &FramingError{
			Msg: fmt.Sprintf("stream ended %d bytes into a %d byte body", n, length),
			Err: io.ErrUnexpectedEOF,
		}
	}

	return frame, nil
}

// discard skips length body bytes after a dropped header block.
func (fr *FrameReader) discard(length int) error {
	if _, err := io.CopyN(io.Discard, fr.reader, int64(length)); err != nil {
		return &FramingError{Msg: "stream ended inside skipped body", Err: io.ErrUnexpectedEOF}
	}
	return nil
}

// FrameWriter writes header-plus-body frames to a byte stream.
//
// Every WriteFrame flushes: the peer performs a blocking read after each frame
// and a buffered partial write would stall it indefinitely.
type FrameWriter struct {
	writer *bufio.Writer
	limits Limits
}

// NewFrameWriter creates a FrameWriter with default limits.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{
		writer: bufio.NewWriter(w),
		limits: DefaultLimits(),
	}
}

// SetLimits updates the writer's limits.
func (fw *FrameWriter) SetLimits(limits Limits) {
	fw.limits = limits
}

// WriteFrame emits Content-Length, Content-Type, a blank line, the body, and
// flushes. The body is written verbatim with no terminator after it.
func (fw *FrameWriter) WriteFrame(body []byte, contentType string) error {
	if len(body) > fw.limits.MaxBody || len(body) > MaxBodyHardLimit {
		return &FramingError{
			Msg:         fmt.Sprintf("body size %d exceeds limit %d", len(body), min(fw.limits.MaxBody, MaxBodyHardLimit)),
			Recoverable: true,
		}
	}

	if _, err := fmt.Fprintf(fw.writer, "%s: %d\n", HeaderContentLength, len(body)); err != nil {
		return fmt.Errorf("writing %s: %w", HeaderContentLength, err)
	}
	if _, err := fmt.Fprintf(fw.writer, "%s: %s\n\n", HeaderContentType, contentType); err != nil {
		return fmt.Errorf("writing %s: %w", HeaderContentType, err)
	}
	if _, err := fw.writer.Write(body); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}
	if err := fw.writer.Flush(); err != nil {
		return fmt.Errorf("flushing frame: %w", err)
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
