package channel

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/wippyai/remote-object/errors"
	"github.com/wippyai/remote-object/wire"
)

// DefaultMaxFrameSize bounds a single encoded message.
const DefaultMaxFrameSize = 1 << 20

// framer reads and writes length-prefixed frames: a 4-byte big-endian
// length followed by that many bytes of CBOR.
type framer struct {
	rwc      io.ReadWriteCloser
	r        *bufio.Reader
	maxFrame uint32
	wmu      sync.Mutex
	once     sync.Once
	closed   chan struct{}
}

func newFramer(rwc io.ReadWriteCloser, maxFrame uint32) *framer {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &framer{
		rwc:      rwc,
		r:        bufio.NewReader(rwc),
		maxFrame: maxFrame,
		closed:   make(chan struct{}),
	}
}

func (f *framer) readFrame(ctx context.Context) ([]byte, error) {
	if err := f.check(ctx); err != nil {
		return nil, err
	}
	var hdr [4]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		return nil, f.ioError(err, "read frame header")
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > f.maxFrame {
		return nil, errors.FrameTooLarge(n, f.maxFrame)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return nil, f.ioError(err, "read frame body")
	}
	return buf, nil
}

func (f *framer) writeFrame(ctx context.Context, data []byte) error {
	if err := f.check(ctx); err != nil {
		return err
	}
	if uint64(len(data)) > uint64(f.maxFrame) {
		return errors.FrameTooLarge(uint32(min(uint64(len(data)), math.MaxUint32)), f.maxFrame)
	}

	f.wmu.Lock()
	defer f.wmu.Unlock()

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := f.rwc.Write(hdr[:]); err != nil {
		return f.ioError(err, "write frame header")
	}
	if _, err := f.rwc.Write(data); err != nil {
		return f.ioError(err, "write frame body")
	}
	return nil
}

func (f *framer) check(ctx context.Context) error {
	select {
	case <-f.closed:
		return ErrClosed
	default:
	}
	return ctx.Err()
}

func (f *framer) ioError(err error, detail string) error {
	select {
	case <-f.closed:
		return ErrClosed
	default:
	}
	if err == io.EOF {
		return io.EOF
	}
	return errors.Wrap(errors.PhaseTransport, errors.KindInvalidData, err, detail)
}

func (f *framer) close() error {
	var err error
	f.once.Do(func() {
		close(f.closed)
		err = f.rwc.Close()
	})
	return err
}

// ServerStream is a Channel over a byte stream.
type ServerStream struct {
	f *framer
}

// NewServerStream wraps rwc as the host end. maxFrame of 0 uses DefaultMaxFrameSize.
func NewServerStream(rwc io.ReadWriteCloser, maxFrame uint32) *ServerStream {
	return &ServerStream{f: newFramer(rwc, maxFrame)}
}

func (s *ServerStream) Receive(ctx context.Context) (*wire.Request, error) {
	data, err := s.f.readFrame(ctx)
	if err != nil {
		return nil, err
	}
	return wire.UnmarshalRequest(data)
}

func (s *ServerStream) Send(ctx context.Context, resp *wire.Response) error {
	data, err := wire.MarshalResponse(resp)
	if err != nil {
		return err
	}
	return s.f.writeFrame(ctx, data)
}

func (s *ServerStream) Close() error { return s.f.close() }

// ClientStream is a ClientChannel over a byte stream.
type ClientStream struct {
	f *framer
}

// NewClientStream wraps rwc as the script end. maxFrame of 0 uses DefaultMaxFrameSize.
func NewClientStream(rwc io.ReadWriteCloser, maxFrame uint32) *ClientStream {
	return &ClientStream{f: newFramer(rwc, maxFrame)}
}

func (c *ClientStream) Send(ctx context.Context, req *wire.Request) error {
	data, err := wire.MarshalRequest(req)
	if err != nil {
		return err
	}
	return c.f.writeFrame(ctx, data)
}

func (c *ClientStream) Receive(ctx context.Context) (*wire.Response, error) {
	data, err := c.f.readFrame(ctx)
	if err != nil {
		return nil, err
	}
	return wire.UnmarshalResponse(data)
}

func (c *ClientStream) Close() error { return c.f.close() }
