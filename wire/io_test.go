package wire

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func roundtrip(t *testing.T, body []byte, contentType string) *Frame {
	t.Helper()

	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	if err := w.WriteFrame(body, contentType); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	r := NewFrameReader(&buf)
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	return frame
}

func TestRoundtripEmptyBody(t *testing.T) {
	frame := roundtrip(t, []byte{}, ContentTypeJSON)
	if len(frame.Body) != 0 {
		t.Errorf("expected empty body, got %d bytes", len(frame.Body))
	}
	if !frame.IsControl() {
		t.Error("expected control frame")
	}
}

func TestRoundtripSingleByte(t *testing.T) {
	frame := roundtrip(t, []byte{0x7f}, ContentTypeOctet)
	if len(frame.Body) != 1 || frame.Body[0] != 0x7f {
		t.Errorf("body mismatch: %v", frame.Body)
	}
	if !frame.IsPayload() {
		t.Error("expected payload frame")
	}
}

func TestRoundtripLargeBody(t *testing.T) {
	body := make([]byte, 70_000) // past 64 KiB
	for i := range body {
		body[i] = byte(i % 251)
	}
	frame := roundtrip(t, body, ContentTypeOctet)
	if !bytes.Equal(frame.Body, body) {
		t.Error("large body not preserved byte for byte")
	}
	if cl, _ := frame.Get(HeaderContentLength); cl != "70000" {
		t.Errorf("Content-Length header: got %q", cl)
	}
}

func TestRoundtripHeadersPreserved(t *testing.T) {
	frame := roundtrip(t, []byte("x"), ContentTypeJSON)
	if len(frame.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(frame.Headers))
	}
	if frame.Headers[0].Key != HeaderContentLength || frame.Headers[1].Key != HeaderContentType {
		t.Errorf("header order not preserved: %+v", frame.Headers)
	}
}

func TestGracefulCloseOnEmptyInput(t *testing.T) {
	r := NewFrameReader(strings.NewReader(""))
	_, err := r.ReadFrame()
	if err != io.EOF {
		t.Errorf("expected io.EOF for clean close, got %v", err)
	}
}

func TestGracefulCloseBetweenFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	if err := w.WriteFrame([]byte("hi"), ContentTypeJSON); err != nil {
		t.Fatal(err)
	}

	r := NewFrameReader(&buf)
	if _, err := r.ReadFrame(); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if _, err := r.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestHeaderLineWithoutColonIsRecoverable(t *testing.T) {
	input := "garbage line\nContent-Length: 3\n\nabc" +
		"Content-Length: 2\nContent-Type: application/json\n\nhi"
	r := NewFrameReader(strings.NewReader(input))

	_, err := r.ReadFrame()
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FramingError, got %v", err)
	}
	if !fe.Recoverable {
		t.Fatal("malformed header with known body length must be recoverable")
	}

	// The broken frame's body was skipped; the stream is still positioned.
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("next frame after recoverable error: %v", err)
	}
	if string(frame.Body) != "hi" {
		t.Errorf("next frame body: got %q", frame.Body)
	}
}

func TestMissingContentLengthIsFatal(t *testing.T) {
	r := NewFrameReader(strings.NewReader("Content-Type: application/json\n\n"))
	_, err := r.ReadFrame()
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FramingError, got %v", err)
	}
	if fe.Recoverable {
		t.Error("missing Content-Length loses position and must not be recoverable")
	}
}

func TestInvalidContentLengthIsFatal(t *testing.T) {
	for _, bad := range []string{"abc", "-1", "3.5", ""} {
		r := NewFrameReader(strings.NewReader("Content-Length: " + bad + "\n\n"))
		_, err := r.ReadFrame()
		var fe *FramingError
		if !errors.As(err, &fe) || fe.Recoverable {
			t.Errorf("Content-Length %q: expected fatal FramingError, got %v", bad, err)
		}
	}
}

func TestTruncatedBodyIsFatal(t *testing.T) {
	r := NewFrameReader(strings.NewReader("Content-Length: 10\n\nabc"))
	_, err := r.ReadFrame()
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FramingError, got %v", err)
	}
	if fe.Recoverable {
		t.Error("short body read must not be recoverable")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected wrapped io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestEOFInsideHeaderBlockIsFatal(t *testing.T) {
	r := NewFrameReader(strings.NewReader("Content-Length: 3\n"))
	_, err := r.ReadFrame()
	var fe *FramingError
	if !errors.As(err, &fe) || fe.Recoverable {
		t.Errorf("expected fatal FramingError, got %v", err)
	}
}

func TestOversizeBodyIsSkippedAndRecoverable(t *testing.T) {
	input := "Content-Length: 8\n\n12345678" +
		"Content-Length: 2\n\nok"
	r := NewFrameReader(strings.NewReader(input))
	r.SetLimits(Limits{MaxBody: 4})

	_, err := r.ReadFrame()
	var fe *FramingError
	if !errors.As(err, &fe) || !fe.Recoverable {
		t.Fatalf("expected recoverable FramingError, got %v", err)
	}

	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("next frame: %v", err)
	}
	if string(frame.Body) != "ok" {
		t.Errorf("next frame body: got %q", frame.Body)
	}
}

func TestHeaderTrimming(t *testing.T) {
	r := NewFrameReader(strings.NewReader("Content-Length:   3  \nContent-Type:\tapplication/json\n\nabc"))
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(frame.Body) != "abc" {
		t.Errorf("body: got %q", frame.Body)
	}
	if frame.ContentType() != ContentTypeJSON {
		t.Errorf("content type: got %q", frame.ContentType())
	}
}

func TestCarriageReturnLineEndings(t *testing.T) {
	r := NewFrameReader(strings.NewReader("Content-Length: 3\r\nContent-Type: application/octet-stream\r\n\r\nabc"))
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if string(frame.Body) != "abc" || !frame.IsPayload() {
		t.Errorf("frame mismatch: body=%q type=%q", frame.Body, frame.ContentType())
	}
}

func TestWriteFlushesImmediately(t *testing.T) {
	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	if err := w.WriteFrame([]byte("abc"), ContentTypeJSON); err != nil {
		t.Fatal(err)
	}
	// The peer's blocking read must unblock after WriteFrame returns: the
	// full frame has to be in the underlying writer already.
	want := "Content-Length: 3\nContent-Type: application/json\n\nabc"
	if buf.String() != want {
		t.Errorf("wire bytes:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteRejectsOversizeBody(t *testing.T) {
	w := NewFrameWriter(&bytes.Buffer{})
	w.SetLimits(Limits{MaxBody: 4})
	err := w.WriteFrame([]byte("12345"), ContentTypeOctet)
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Errorf("expected FramingError, got %v", err)
	}
}

func TestMissingContentTypeDefaultsToControl(t *testing.T) {
	r := NewFrameReader(strings.NewReader("Content-Length: 2\n\n{}"))
	frame, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !frame.IsControl() {
		t.Error("frame without Content-Type should default to a control frame")
	}
}
