package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examlens/internal/store"
	"github.com/abhisek/examlens/internal/stream"
)

// usageReporter is implemented by chunk sources that learn token counts
// from the upstream stream.
type usageReporter interface {
	Usage() Usage
}

// LoggingProvider is a decorator that records every LLM request as an event.
// Streams are recorded once, when they finish or are closed.
type LoggingProvider struct {
	inner     StreamingProvider
	provider  string
	eventRepo store.EventRepo
}

// WithLogging wraps a StreamingProvider with event logging. A nil repo
// disables recording.
func WithLogging(p StreamingProvider, provider string, repo store.EventRepo) StreamingProvider {
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := l.eventData(ctx, req, time.Since(start))
	data.Success = err == nil
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	l.record(ctx, data)

	return resp, err
}

func (l *LoggingProvider) Stream(ctx context.Context, req Request) (stream.ChunkSource, error) {
	start := time.Now()

	src, err := l.inner.Stream(ctx, req)
	if err != nil {
		data := l.eventData(ctx, req, time.Since(start))
		data.Streamed = true
		data.ErrorMessage = err.Error()
		l.record(ctx, data)
		return nil, err
	}

	return &loggedChunks{
		inner: src,
		ctx:   context.WithoutCancel(ctx),
		start: start,
		owner: l,
		req:   req,
	}, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) eventData(ctx context.Context, req Request, elapsed time.Duration) store.LLMRequestEventData {
	return store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		GroupID:     GroupFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		RequestBody: serializeRequest(req),
	}
}

// record saves the event but never fails the request.
func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData) {
	if l.eventRepo == nil {
		return
	}
	if err := l.eventRepo.AppendLLMRequest(ctx, data); err != nil {
		zap.L().Warn("failed to record LLM request event",
			zap.String("purpose", data.Purpose),
			zap.Error(err))
	}
}

// loggedChunks tees a chunk stream into a buffer and records one event
// when the stream reaches EOF, fails, or is closed early.
type loggedChunks struct {
	inner stream.ChunkSource
	ctx   context.Context
	start time.Time
	owner *LoggingProvider
	req   Request

	buf     strings.Builder
	failure error
	once    sync.Once
}

func (c *loggedChunks) Recv() (string, error) {
	chunk, err := c.inner.Recv()
	c.buf.WriteString(chunk)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.failure = err
		}
		c.flush()
	}
	return chunk, err
}

func (c *loggedChunks) Close() error {
	err := c.inner.Close()
	c.flush()
	return err
}

func (c *loggedChunks) flush() {
	c.once.Do(func() {
		data := c.owner.eventData(c.ctx, c.req, time.Since(c.start))
		data.Streamed = true
		data.Success = c.failure == nil
		data.ResponseBody = c.buf.String()
		if c.failure != nil {
			data.ErrorMessage = c.failure.Error()
		}
		if u, ok := c.inner.(usageReporter); ok {
			usage := u.Usage()
			data.InputTokens = usage.InputTokens
			data.OutputTokens = usage.OutputTokens
		}
		c.owner.record(c.ctx, data)
	})
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
