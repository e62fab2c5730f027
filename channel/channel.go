package channel

import (
	"context"
	"sync"

	"github.com/wippyai/remote-object/errors"
	"github.com/wippyai/remote-object/wire"
)

// Channel is the host end of a connection.
type Channel interface {
	// Receive blocks until a request arrives, the channel closes or ctx ends.
	Receive(ctx context.Context) (*wire.Request, error)

	// Send delivers a response.
	Send(ctx context.Context, resp *wire.Response) error

	// Close releases the channel. Pending and later calls fail.
	Close() error
}

// ClientChannel is the script end of a connection.
type ClientChannel interface {
	Send(ctx context.Context, req *wire.Request) error
	Receive(ctx context.Context) (*wire.Response, error)
	Close() error
}

// ErrClosed is returned by operations on a closed channel.
var ErrClosed = errors.Closed(errors.PhaseTransport, "channel")

// pipe is the shared state of two connected in-memory ends.
// Requests are handed over synchronously. Responses are queued so the
// server never waits on a client that abandoned its call.
type pipe struct {
	requests  chan *wire.Request
	responses responseQueue
	done      chan struct{}
	once      sync.Once
}

func (p *pipe) close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

// Pipe returns two connected in-memory ends. Closing either end closes both.
func Pipe() (ClientChannel, Channel) {
	p := &pipe{
		requests:  make(chan *wire.Request),
		responses: responseQueue{ready: make(chan struct{}, 1)},
		done:      make(chan struct{}),
	}
	return &pipeClient{p}, &pipeServer{p}
}

type pipeServer struct{ p *pipe }

func (s *pipeServer) Receive(ctx context.Context) (*wire.Request, error) {
	return recv(ctx, s.p.done, s.p.requests)
}

func (s *pipeServer) Send(ctx context.Context, resp *wire.Response) error {
	select {
	case <-s.p.done:
		return ErrClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.p.responses.push(resp)
	return nil
}

func (s *pipeServer) Close() error { return s.p.close() }

type pipeClient struct{ p *pipe }

func (c *pipeClient) Send(ctx context.Context, req *wire.Request) error {
	return send(ctx, c.p.done, c.p.requests, req)
}

func (c *pipeClient) Receive(ctx context.Context) (*wire.Response, error) {
	return c.p.responses.pop(ctx, c.p.done)
}

func (c *pipeClient) Close() error { return c.p.close() }

// responseQueue is an unbounded FIFO. ready holds a token while items may
// be pending.
type responseQueue struct {
	items []*wire.Response
	ready chan struct{}
	mu    sync.Mutex
}

func (q *responseQueue) push(resp *wire.Response) {
	q.mu.Lock()
	q.items = append(q.items, resp)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *responseQueue) pop(ctx context.Context, done <-chan struct{}) (*wire.Response, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			resp := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				select {
				case q.ready <- struct{}{}:
				default:
				}
			}
			return resp, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-done:
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func recv[T any](ctx context.Context, done <-chan struct{}, ch <-chan T) (T, error) {
	var zero T
	select {
	case v := <-ch:
		return v, nil
	case <-done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func send[T any](ctx context.Context, done <-chan struct{}, ch chan<- T, v T) error {
	select {
	case <-done:
		return ErrClosed
	default:
	}
	select {
	case ch <- v:
		return nil
	case <-done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
