// Package bridge routes commands arriving from the host UI into the
// session. Each command carries a JSON payload; handlers can be wrapped
// with buffering and logging at registration time.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Request represents an incoming command from the host.
type Request struct {
	Command   string
	Payload   json.RawMessage
	Timestamp time.Time
}

// HandlerFunc processes a request and returns a result.
type HandlerFunc func(Request) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Bridge routes requests to registered handlers.
type Bridge struct {
	handlers map[string]HandlerFunc
	logger   Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	buffers map[string]chan Request
}

// New creates a new Bridge with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Bridge, error) {
	b := &Bridge{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Request),
		logger:   logger,
	}

	m := meter()

	var err error

	b.queueSize, err = m.Int64ObservableGauge(
		"bridge.queue.size",
		metric.WithDescription("Current number of requests in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			b.mu.RLock()
			defer b.mu.RUnlock()
			for cmd, buf := range b.buffers {
				o.ObserveInt64(b.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("command", cmd)))
			}
			return nil
		},
		b.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	b.processed, err = m.Int64Counter(
		"bridge.requests.processed",
		metric.WithDescription("Total requests processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	b.dropped, err = m.Int64Counter(
		"bridge.requests.dropped",
		metric.WithDescription("Total requests dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return b, nil
}

// Register adds a handler for the given command with optional configuration.
func (b *Bridge) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.bufferSize > 0 {
		handler = b.withBuffer(command, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = b.withLogging(command, handler)
	}

	b.handlers[command] = handler
}

// Dispatch routes a request to its registered handler.
func (b *Bridge) Dispatch(r Request) (any, error) {
	h, ok := b.handlers[r.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", r.Command)
	}
	return h(r)
}

// HasHandler returns true if a handler is registered for the command.
func (b *Bridge) HasHandler(command string) bool {
	_, ok := b.handlers[command]
	return ok
}

func (b *Bridge) withBuffer(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Request, size)

	b.mu.Lock()
	b.buffers[command] = buffer
	b.mu.Unlock()

	cmdAttr := attribute.String("command", command)

	go func() {
		for r := range buffer {
			h(r)
			b.processed.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
		}
	}()

	if blocking {
		return func(r Request) (any, error) {
			buffer <- r
			return "queued", nil
		}
	}

	return func(r Request) (any, error) {
		select {
		case buffer <- r:
			return "queued", nil
		default:
			b.dropped.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (b *Bridge) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(r Request) (any, error) {
		start := time.Now()
		b.logger.Debug("handling request", "command", command, "payload", len(r.Payload))

		result, err := h(r)

		if err != nil {
			b.logger.Error("request failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			b.logger.Debug("request complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
