package stream

import (
	"io"
	"sync"
)

// ChunkSource is an upstream stream of text chunks. Recv returns io.EOF once
// the stream is exhausted. Close releases the upstream connection and must
// be safe to call more than once.
type ChunkSource interface {
	Recv() (string, error)
	Close() error
}

// StaticSource replays a fixed list of chunks. It records how many chunks
// were requested and whether it was closed, which tests use to check
// cancellation.
type StaticSource struct {
	mu     sync.Mutex
	chunks []string
	next   int
	err    error
	closed bool
}

// NewStaticSource returns a source that yields chunks in order, then io.EOF.
func NewStaticSource(chunks ...string) *StaticSource {
	return &StaticSource{chunks: chunks}
}

// FailAfter makes the source return err instead of io.EOF once the chunks
// run out.
func (s *StaticSource) FailAfter(err error) *StaticSource {
	s.err = err
	return s
}

func (s *StaticSource) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if s.next >= len(s.chunks) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[s.next]
	s.next++
	return c, nil
}

func (s *StaticSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Requested returns how many chunks have been handed out.
func (s *StaticSource) Requested() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// IsClosed reports whether Close was called.
func (s *StaticSource) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FuncSource adapts a receive function and an optional close function.
type FuncSource struct {
	RecvFunc  func() (string, error)
	CloseFunc func() error
	once      sync.Once
}

func (f *FuncSource) Recv() (string, error) { return f.RecvFunc() }

func (f *FuncSource) Close() error {
	var err error
	f.once.Do(func() {
		if f.CloseFunc != nil {
			err = f.CloseFunc()
		}
	})
	return err
}
