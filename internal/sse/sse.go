// Package sse frames stream events for Server-Sent Events delivery.
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/abhisek/examlens/internal/stream"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("sse writer is closed")

type flusher interface {
	Flush()
}

// envelope is the wire shape of one event.
type envelope struct {
	Type string       `json:"type"`
	Data stream.Event `json:"data"`
}

// Writer writes events as `data: {"type":...,"data":...}` frames. When the
// underlying writer can flush, every frame is flushed.
type Writer struct {
	w      io.Writer
	f      flusher
	closed bool
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	f, _ := w.(flusher)
	return &Writer{w: w, f: f}
}

// NewHTTPWriter sets the event-stream headers on w and wraps it. It fails
// when w cannot flush, since buffered frames would defeat streaming.
func NewHTTPWriter(w http.ResponseWriter) (*Writer, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, errors.New("streaming not supported by response writer")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	return NewWriter(w), nil
}

// WriteEvent writes one frame.
func (s *Writer) WriteEvent(e stream.Event) error {
	if s.closed {
		return ErrClosed
	}
	var buf bytes.Buffer
	buf.WriteString("data: ")
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(envelope{Type: e.Type(), Data: e}); err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type(), err)
	}
	// Encode ends with one newline; a frame ends with a blank line.
	buf.WriteByte('\n')
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return err
	}
	if s.f != nil {
		s.f.Flush()
	}
	return nil
}

// Close marks the writer closed. It writes nothing: the terminal event of
// the sequence already tells the client the stream is over.
func (s *Writer) Close() error {
	s.closed = true
	return nil
}

// Pipe writes every event of seq. A write failure stops the sequence,
// which releases the upstream source.
func Pipe(w *Writer, seq iter.Seq[stream.Event]) error {
	for e := range seq {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}
