package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/storyvault/internal/store"
)

// Bridge queues requests and executes them against a store on a single
// worker goroutine.
type Bridge struct {
	store    *store.Store
	queue    *requestQueue
	ids      IDGenerator
	log      *slog.Logger
	handlers map[string]handler
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithIDGenerator sets the generator for requests submitted without an id.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *Bridge) { b.ids = g }
}

// WithLogger sets the logger for request failures and lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// New creates a Bridge over s. Run must be started before submitted
// requests are answered.
func New(s *store.Store, opts ...Option) *Bridge {
	b := &Bridge{
		store:    s,
		queue:    newRequestQueue(),
		ids:      UUIDv7Generator{},
		log:      slog.Default(),
		handlers: commands(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Commands lists every command name the bridge accepts.
func (b *Bridge) Commands() []string {
	return CommandNames()
}

// Submit queues req and returns the channel its Response will arrive on.
// The channel is buffered, so the caller may read it at any time or never.
// A request without an ID gets one from the bridge's IDGenerator.
func (b *Bridge) Submit(req Request) <-chan Response {
	if req.ID == "" {
		req.ID = b.ids.Generate()
	}
	reply := make(chan Response, 1)
	if !b.queue.Enqueue(job{req: req, reply: reply}) {
		reply <- Response{
			ID:      req.ID,
			Command: req.Command,
			Error:   &Error{Code: CodeClosed, Message: "bridge is not accepting requests"},
		}
	}
	return reply
}

// Call submits a command with the given arguments, each encoded as JSON,
// and waits for its result. ctx bounds only the wait: a request that was
// queued still runs. A failed request returns its *Error.
func (b *Bridge) Call(ctx context.Context, command string, args ...any) (json.RawMessage, error) {
	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encode argument %d of %s: %w", i, command, err)
		}
		raw[i] = data
	}

	select {
	case resp := <-b.Submit(Request{Command: command, Args: raw}):
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CallInto is Call followed by decoding the result into out.
func (b *Bridge) CallInto(ctx context.Context, out any, command string, args ...any) error {
	result, err := b.Call(ctx, command, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("decode result of %s: %w", command, err)
	}
	return nil
}

// Run is the single worker loop. It executes queued requests in FIFO order
// until ctx is cancelled or Stop is called. Either way, requests already
// queued are executed before Run returns.
//
// Run returns ctx.Err() after cancellation and nil after Stop.
func (b *Bridge) Run(ctx context.Context) error {
	b.log.Debug("bridge starting")
	work := context.WithoutCancel(ctx)

	for {
		if j, ok := b.queue.TryDequeue(); ok {
			b.execute(work, j)
			continue
		}

		select {
		case <-ctx.Done():
			b.log.Debug("bridge stopping: context cancelled")
			b.queue.Close()
			b.drain(work)
			return ctx.Err()

		case <-b.queue.Wait():
			// The signal channel is closed by Stop; an empty queue then
			// means there is nothing left to do.
			if b.queue.Len() == 0 && b.closed() {
				b.log.Debug("bridge stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue to new requests. Run drains the queue and returns.
func (b *Bridge) Stop() {
	b.queue.Close()
}

func (b *Bridge) closed() bool {
	b.queue.mu.Lock()
	defer b.queue.mu.Unlock()
	return b.queue.closed
}

func (b *Bridge) drain(ctx context.Context) {
	for {
		j, ok := b.queue.TryDequeue()
		if !ok {
			return
		}
		b.execute(ctx, j)
	}
}

// execute runs one job and always sends exactly one response.
func (b *Bridge) execute(ctx context.Context, j job) {
	j.reply <- b.dispatch(ctx, j.req)
}

func (b *Bridge) dispatch(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID, Command: req.Command}

	h, ok := b.handlers[req.Command]
	if !ok {
		resp.Error = &Error{Code: CodeUnknownCommand, Message: fmt.Sprintf("unknown command %q", req.Command)}
		b.logFailure(req, resp.Error)
		return resp
	}

	result, err := h(ctx, b, args(req.Args))
	if err == nil {
		resp.Result, err = json.Marshal(result)
	}
	if err != nil {
		resp.Result = nil
		resp.Error = toError(err)
		b.logFailure(req, resp.Error)
	}
	return resp
}

// logFailure logs and continues; the error travels back in the response.
func (b *Bridge) logFailure(req Request, e *Error) {
	b.log.Warn("request failed",
		"id", req.ID,
		"command", req.Command,
		"code", e.Code,
		"error", e.Message,
	)
}
