package channel

import (
	"context"
	stderrors "errors"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/errors"
	"github.com/wippyai/remote-object/host"
	"github.com/wippyai/remote-object/wire"
)

// Server answers requests for the objects of one registry.
type Server struct {
	registry *host.Registry
	log      *zap.Logger
}

// NewServer creates a server for reg. A nil logger discards output.
func NewServer(reg *host.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{registry: reg, log: log}
}

// Registry returns the registry requests are routed to.
func (s *Server) Registry() *host.Registry {
	return s.registry
}

// Serve handles requests from ch until the channel fails or ctx ends.
// Requests are processed one at a time in arrival order.
//
// The channel is closed when Serve returns. When the channel fails, every
// bridge in the registry gets OnConnectionError and Serve returns nil for a
// clean close (io.EOF or ErrClosed) and the channel error otherwise. When
// ctx ends, Serve returns ctx.Err().
func (s *Server) Serve(ctx context.Context, ch Channel) error {
	defer ch.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ch.Close()
		case <-stop:
		}
	}()

	for {
		req, err := ch.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.connectionLost()
				return ctx.Err()
			}
			return s.fail(err)
		}

		resp, ok, err := s.handle(ctx, req)
		if err != nil {
			return s.fail(err)
		}
		if !ok {
			continue
		}
		if err := ch.Send(ctx, resp); err != nil {
			if ctx.Err() != nil {
				s.connectionLost()
				return ctx.Err()
			}
			return s.fail(err)
		}
	}
}

func (s *Server) fail(err error) error {
	s.connectionLost()
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, ErrClosed) {
		s.log.Debug("connection closed")
		return nil
	}
	s.log.Warn("connection failed", zap.Error(err))
	return err
}

func (s *Server) connectionLost() {
	s.registry.Each(func(_ wire.ObjectID, b *bridge.Bridge) bool {
		b.OnConnectionError()
		return true
	})
}

// handle produces the response for req. ok is false when no response must
// be sent. A non-nil error is a protocol violation that ends the connection.
func (s *Server) handle(ctx context.Context, req *wire.Request) (*wire.Response, bool, error) {
	resp := &wire.Response{Seq: req.Seq}

	switch req.Op {
	case wire.OpAcquire:
		resp.Found = s.registry.Acquire(req.Object)
		return resp, true, nil
	case wire.OpRelease:
		resp.Found = s.registry.Release(req.Object)
		return resp, true, nil
	case wire.OpInvoke, wire.OpHasMethod, wire.OpGetMethods:
	default:
		return nil, false, errors.InvalidInput(errors.PhaseTransport, "unknown request op "+req.Op.String())
	}

	b, found := s.registry.Get(req.Object)
	if !found {
		s.log.Debug("unknown object", zap.Uint32("object", uint32(req.Object)), zap.Stringer("op", req.Op))
		if req.Op == wire.OpInvoke {
			resp.Result = wire.Failure(wire.MethodNotFound)
		}
		return resp, true, nil
	}

	switch req.Op {
	case wire.OpHasMethod:
		resp.Found = b.HasMethod(req.Method)
	case wire.OpGetMethods:
		resp.Methods = b.Methods()
	case wire.OpInvoke:
		res, respond := b.InvokeMethod(ctx, req.Method, req.Args)
		if !respond {
			s.log.Debug("invocation dropped",
				zap.Uint32("object", uint32(req.Object)),
				zap.String("method", req.Method),
				zap.Uint64("seq", req.Seq))
			return nil, false, nil
		}
		resp.Result = res
	}
	return resp, true, nil
}
