package channel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/remote-object/wire"
)

// Client issues requests over a ClientChannel, one at a time.
type Client struct {
	ch  ClientChannel
	log *zap.Logger
	mu  sync.Mutex
	seq uint64
}

// NewClient wraps ch. A nil logger discards output.
func NewClient(ch ClientChannel, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{ch: ch, log: log}
}

// Call sends req with a fresh sequence number and waits for its response.
// Responses to earlier abandoned calls are discarded. A request that gets
// no response blocks until ctx ends.
func (c *Client) Call(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	req.Seq = c.seq
	if err := c.ch.Send(ctx, req); err != nil {
		return nil, err
	}
	for {
		resp, err := c.ch.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if resp.Seq == req.Seq {
			return resp, nil
		}
		c.log.Debug("stale response discarded", zap.Uint64("seq", resp.Seq), zap.Uint64("want", req.Seq))
	}
}

// Invoke calls method on object with args.
func (c *Client) Invoke(ctx context.Context, object wire.ObjectID, method string, args ...wire.Value) (wire.Result, error) {
	resp, err := c.Call(ctx, &wire.Request{Op: wire.OpInvoke, Object: object, Method: method, Args: args})
	if err != nil {
		return wire.Result{}, err
	}
	return resp.Result, nil
}

// HasMethod reports whether object exposes a method called name.
func (c *Client) HasMethod(ctx context.Context, object wire.ObjectID, name string) (bool, error) {
	resp, err := c.Call(ctx, &wire.Request{Op: wire.OpHasMethod, Object: object, Method: name})
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

// Methods lists the method names object exposes.
func (c *Client) Methods(ctx context.Context, object wire.ObjectID) ([]string, error) {
	resp, err := c.Call(ctx, &wire.Request{Op: wire.OpGetMethods, Object: object})
	if err != nil {
		return nil, err
	}
	return resp.Methods, nil
}

// Acquire adds a reference to object.
func (c *Client) Acquire(ctx context.Context, object wire.ObjectID) (bool, error) {
	resp, err := c.Call(ctx, &wire.Request{Op: wire.OpAcquire, Object: object})
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

// Release drops a reference to object.
func (c *Client) Release(ctx context.Context, object wire.ObjectID) (bool, error) {
	resp, err := c.Call(ctx, &wire.Request{Op: wire.OpRelease, Object: object})
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

// Close closes the underlying channel.
func (c *Client) Close() error {
	return c.ch.Close()
}
