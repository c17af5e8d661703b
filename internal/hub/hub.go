package hub

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport"
)

// Config holds the link timing
type Config struct {
	// AckTimeout bounds the wait for the ACK/NACK byte
	AckTimeout time.Duration

	// AnswerTimeout bounds the wait for a complete answer line after ACK
	AnswerTimeout time.Duration

	// SettleDelay is waited after the port opens, before the first exchange
	SettleDelay time.Duration
}

// DefaultConfig returns the timing the firmware needs
func DefaultConfig() *Config {
	return &Config{
		AckTimeout:    protocol.DefaultAckTimeout,
		AnswerTimeout: protocol.DefaultAnswerTimeout,
		SettleDelay:   protocol.DefaultSettleDelay,
	}
}

// SequenceObserver is notified when its modulation tables became stale
type SequenceObserver interface {
	ResetModulation()
}

// Hub is the protocol client for one controller
type Hub struct {
	cfg Config

	// mu is the transport lock. It is held for a whole exchange and for
	// the commit of any state that exchange changes.
	mu   sync.Mutex
	port transport.Port

	stateMu   sync.RWMutex
	state     SequenceState
	trigger   Trigger
	version   int
	connected bool

	observers  []SequenceObserver
	resetHooks []func()
}

// New creates a hub on an open port. A nil port gives a hub whose exchanges
// fail with a not-connected error.
func New(port transport.Port, cfg *Config) *Hub {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Hub{
		cfg:     *cfg,
		port:    port,
		state:   DefaultState(),
		trigger: DefaultTrigger,
	}
}

// Session is handed to Exchange callbacks. It is only valid inside the
// callback.
type Session struct {
	h *Hub
}

// Send performs one command exchange
func (s *Session) Send(header byte, payload []byte) error {
	return s.h.sendLocked(header, payload)
}

// Ask performs one query exchange and returns the answer line
func (s *Session) Ask(header byte) (string, error) {
	return s.h.askLocked(header)
}

// SequenceLength returns the current steps*frames product
func (s *Session) SequenceLength() int {
	return s.h.SequenceLength()
}

// Exchange runs fn with exclusive use of the transport. Sequence-shape
// changes and resets cannot interleave with it.
func (h *Hub) Exchange(fn func(s *Session) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(&Session{h: h})
}

// SendCommand sends a command frame and waits for the acknowledgement.
// Headers outside the command set are refused before any I/O.
func (h *Hub) SendCommand(header byte, payload []byte) error {
	if !protocol.IsKnownHeader(header) {
		return protocol.NewInvalidValueError(fmt.Sprintf("unknown command header %q", header))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sendLocked(header, payload)
}

// AskAnswer sends a query frame, waits for the acknowledgement and returns
// the answer line without its delimiter
func (h *Hub) AskAnswer(header byte) (string, error) {
	if !protocol.IsKnownHeader(header) {
		return "", protocol.NewInvalidValueError(fmt.Sprintf("unknown query header %q", header))
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.askLocked(header)
}

// Register adds a channel to be told about stale modulation tables
func (h *Hub) Register(obs SequenceObserver) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.observers = append(h.observers, obs)
}

// OnReset adds a hook that runs after every successful controller reset
func (h *Hub) OnReset(fn func()) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.resetHooks = append(h.resetHooks, fn)
}

func (h *Hub) sendLocked(header byte, payload []byte) error {
	start := time.Now()
	err := h.transactLocked(header, protocol.EncodeCommand(header, payload))
	logging.LogExchange(header, outcome(err), time.Since(start))
	return err
}

func (h *Hub) askLocked(header byte) (string, error) {
	start := time.Now()
	if err := h.transactLocked(header, protocol.EncodeQuery(header)); err != nil {
		logging.LogExchange(header, outcome(err), time.Since(start))
		return "", err
	}
	answer, err := h.readAnswerLocked(header)
	logging.LogExchange(header, outcome(err), time.Since(start))
	return answer, err
}

// transactLocked purges stale input, writes frame and waits for the ACK
func (h *Hub) transactLocked(header byte, frame []byte) error {
	if h.port == nil {
		return protocol.NewNotConnectedError()
	}
	if err := h.port.Purge(); err != nil {
		return protocol.NewIOError("failed to purge input", err)
	}

	logging.LogFrame("tx", frame)
	if _, err := h.port.Write(frame); err != nil {
		return protocol.NewIOError(fmt.Sprintf("failed to write %s frame", protocol.HeaderName(header)), err)
	}

	return h.waitAckLocked(header)
}

func (h *Hub) waitAckLocked(header byte) error {
	deadline := time.Now().Add(h.cfg.AckTimeout)
	buf := make([]byte, 1)
	for {
		n, err := h.port.Read(buf)
		if err != nil {
			return protocol.NewIOError("failed to read acknowledgement", err)
		}
		if n == 1 {
			logging.LogFrame("rx", buf)
			if buf[0] != protocol.ACK {
				return protocol.NewCommunicationError(header, buf[0])
			}
			return nil
		}
		if !time.Now().Before(deadline) {
			return protocol.NewTimeoutError(header, fmt.Sprintf("no acknowledgement within %v", h.cfg.AckTimeout))
		}
	}
}

func (h *Hub) readAnswerLocked(header byte) (string, error) {
	deadline := time.Now().Add(h.cfg.AnswerTimeout)
	delim := []byte(protocol.AnswerDelimiter)
	var line []byte
	buf := make([]byte, 64)
	for {
		n, err := h.port.Read(buf)
		if err != nil {
			return "", protocol.NewIOError("failed to read answer", err)
		}
		line = append(line, buf[:n]...)
		if i := bytes.Index(line, delim); i >= 0 {
			logging.LogFrame("rx", line[:i+len(delim)])
			return string(line[:i]), nil
		}
		if !time.Now().Before(deadline) {
			return "", protocol.NewTimeoutError(header,
				fmt.Sprintf("no complete answer within %v (got %q)", h.cfg.AnswerTimeout, strings.TrimSpace(string(line))))
		}
	}
}

func outcome(err error) string {
	if err == nil {
		return "ack"
	}
	if t, ok := protocol.TypeOf(err); ok {
		return t.String()
	}
	return "error"
}
