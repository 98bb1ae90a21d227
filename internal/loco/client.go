package loco

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
)

// DefaultEventBuffer is the capacity of the event channel.
const DefaultEventBuffer = 256

// Options controls how the connection is established and written to.
type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	EventBuffer      int
	ReadLimit        int64
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		EventBuffer:      DefaultEventBuffer,
		ReadLimit:        4 << 20,
	}
}

// Client multiplexes requests and server pushes over one websocket.
// Requests may be issued from any number of goroutines.
type Client struct {
	ws     *websocket.Conn
	opts   Options
	log    *zerolog.Logger
	events chan Event
	done   chan struct{}

	nextID atomic.Int32

	mu      sync.Mutex
	pending map[int32]chan Packet
	closed  bool

	closeOnce sync.Once
}

// Dial connects to the gateway and starts the read loop.
func Dial(ctx context.Context, endpoint string, opts Options, logger *zerolog.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("loco: empty endpoint")
	}
	dialCtx := ctx
	if opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, opts.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return NewClient(ws, opts, logger), nil
}

// NewClient wraps an established websocket and starts the read loop.
func NewClient(ws *websocket.Conn, opts Options, logger *zerolog.Logger) *Client {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.ReadLimit > 0 {
		ws.SetReadLimit(opts.ReadLimit)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	c := &Client{
		ws:      ws,
		opts:    opts,
		log:     logger,
		events:  make(chan Event, opts.EventBuffer),
		done:    make(chan struct{}),
		pending: make(map[int32]chan Packet),
	}
	go c.readLoop()
	return c
}

// Events returns the receive end of the event channel.
// It is closed once the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Close shuts the connection down. Pending requests fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close(websocket.StatusNormalClosure, "client close")
	})
	return err
}

// Request sends method with req as payload and decodes the response data into resp.
// resp may be nil when only the acknowledgement matters.
func (c *Client) Request(ctx context.Context, method string, req, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", method, err)
	}

	id := c.allocID()
	ch := make(chan Packet, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.forget(id)

	if err := c.write(ctx, Packet{ID: id, Method: method, Data: data}); err != nil {
		if c.isClosing() {
			return ErrClosed
		}
		return fmt.Errorf("write %s: %w", method, err)
	}

	select {
	case p, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if p.Status != StatusOK {
			return &RequestError{Method: method, Status: p.Status}
		}
		if resp != nil && len(p.Data) > 0 {
			if err := json.Unmarshal(p.Data, resp); err != nil {
				return fmt.Errorf("unmarshal %s: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// allocID returns the next request id. Ids stay positive so a response is
// never mistaken for a push; the counter restarts at 1 after overflow.
func (c *Client) allocID() int32 {
	for {
		id := c.nextID.Add(1)
		if id > 0 {
			return id
		}
		c.nextID.CompareAndSwap(id, 0)
	}
}

func (c *Client) write(ctx context.Context, p Packet) error {
	if c.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.WriteTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.ws, p)
}

func (c *Client) forget(id int32) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	defer c.shutdown()

	// Close unblocks the read by closing the socket.
	ctx := context.Background()
	for {
		var p Packet
		if err := wsjson.Read(ctx, c.ws, &p); err != nil {
			if !c.isClosing() && !isExpectedDisconnect(ctx, err) {
				c.log.Warn().Err(err).Msg("loco read loop exit")
			}
			return
		}

		if p.IsPush() {
			ev := DecodePush(p)
			select {
			case c.events <- ev:
			case <-c.done:
				return
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[p.ID]
		delete(c.pending, p.ID)
		c.mu.Unlock()
		if !ok {
			c.log.Debug().Int32("id", p.ID).Str("method", p.Method).Msg("response without pending request")
			continue
		}
		ch <- p
	}
}

func (c *Client) isClosing() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// shutdown runs once the read loop exits: no further packets will be delivered.
func (c *Client) shutdown() {
	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	close(c.events)
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
