// Package transporttest provides a scripted in-memory ArduControl board for
// tests, in the manner of net/http/httptest.
package transporttest

import (
	"bytes"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Reply is what the controller sends back for one frame
type Reply struct {
	// Ack is the acknowledgement byte. Zero means stay silent.
	Ack byte
	// Answer is written verbatim after Ack
	Answer string
}

// Ack is the reply to an accepted command
func Ack() Reply { return Reply{Ack: protocol.ACK} }

// Nack is the reply to a rejected command
func Nack() Reply { return Reply{Ack: protocol.NACK} }

// Silence never answers
func Silence() Reply { return Reply{} }

// Answer acknowledges and sends text as a delimited line
func Answer(text string) Reply {
	return Reply{Ack: protocol.ACK, Answer: text + protocol.AnswerDelimiter}
}

// Controller is an in-memory Port that behaves like the firmware: every
// complete frame is recorded and answered. By default commands are
// acknowledged and the identity and version queries answer "MM-AC" and 2.
type Controller struct {
	mu sync.Mutex

	identity string
	version  int
	handlers map[byte]Reply

	partial []byte
	output  []byte
	frames  []protocol.Frame
	purges  int
	closed  bool

	writeErr error
	purgeErr error

	// Poll is how long Read waits before reporting no data
	Poll time.Duration
}

// New returns a controller running firmware "MM-AC" version 2
func New() *Controller {
	return &Controller{
		identity: protocol.FirmwareID,
		version:  protocol.MaxVersion,
		handlers: make(map[byte]Reply),
		Poll:     time.Millisecond,
	}
}

// SetIdentity changes the firmware identity answer
func (c *Controller) SetIdentity(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = id
}

// SetVersion changes the firmware version answer
func (c *Controller) SetVersion(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = v
}

// Handle replaces the reply for every later frame with header
func (c *Controller) Handle(header byte, r Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[header] = r
}

// Restore returns header to the default behaviour
func (c *Controller) Restore(header byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, header)
}

// SetWriteError makes every Write fail with err (nil clears it)
func (c *Controller) SetWriteError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// SetPurgeError makes every Purge fail with err (nil clears it)
func (c *Controller) SetPurgeError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeErr = err
}

// Inject queues bytes for the host as if the board had sent them unprompted
func (c *Controller) Inject(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output = append(c.output, data...)
}

// Read returns queued output, or (0, nil) after Poll when there is none
func (c *Controller) Read(b []byte) (int, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	if len(c.output) > 0 {
		n := copy(b, c.output)
		c.output = c.output[n:]
		c.mu.Unlock()
		return n, nil
	}
	poll := c.Poll
	c.mu.Unlock()

	time.Sleep(poll)
	return 0, nil
}

// Write accepts host bytes and answers every complete frame
func (c *Controller) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.partial = append(c.partial, b...)
	frames, rest := protocol.SplitFrames(c.partial)
	c.partial = append([]byte(nil), rest...)

	for _, f := range frames {
		f.Payload = append([]byte(nil), f.Payload...)
		c.frames = append(c.frames, f)
		c.respond(f)
	}
	return len(b), nil
}

func (c *Controller) respond(f protocol.Frame) {
	r, ok := c.handlers[f.Header]
	if !ok {
		switch f.Header {
		case protocol.HeaderFirmware:
			r = Answer(c.identity)
		case protocol.HeaderVersion:
			r = Answer(strconv.Itoa(c.version))
		default:
			r = Ack()
		}
	}
	if r.Ack == 0 {
		return
	}
	c.output = append(c.output, r.Ack)
	c.output = append(c.output, r.Answer...)
}

// Purge drops queued output
func (c *Controller) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.purgeErr != nil {
		return c.purgeErr
	}
	c.purges++
	c.output = nil
	return nil
}

// Close marks the port closed
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Frames returns every frame received so far
func (c *Controller) Frames() []protocol.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// Headers returns the received headers in order, e.g. "FVR"
func (c *Controller) Headers() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b bytes.Buffer
	for _, f := range c.frames {
		b.WriteByte(f.Header)
	}
	return b.String()
}

// Last returns the most recent frame with header
func (c *Controller) Last(header byte) (protocol.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Header == header {
			return c.frames[i], true
		}
	}
	return protocol.Frame{}, false
}

// Count returns how many frames with header were received
func (c *Controller) Count(header byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.frames {
		if f.Header == header {
			n++
		}
	}
	return n
}

// ClearFrames forgets received frames
func (c *Controller) ClearFrames() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

// Purges returns how many times the input was purged
func (c *Controller) Purges() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purges
}
