package transport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Port is the link to a controller
type Port interface {
	io.ReadWriteCloser

	// Purge discards any unread input
	Purge() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (the firmware runs at 9600)
	Baud int

	// ReadPoll bounds a single Read call. A Read that sees no byte within
	// ReadPoll returns (0, nil).
	ReadPoll time.Duration
}

// DefaultConfig returns the configuration the firmware expects
func DefaultConfig(device string) *Config {
	return &Config{
		Device:   device,
		Baud:     protocol.BaudRate,
		ReadPoll: 10 * time.Millisecond,
	}
}

// SerialPort wraps a go.bug.st/serial port
type SerialPort struct {
	port serial.Port
	cfg  *Config
}

// Open opens and configures a serial port. 8N1 framing is fixed.
func Open(cfg *Config) (*SerialPort, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if IsUndefinedPortName(cfg.Device) {
		return nil, protocol.NewIOError(fmt.Sprintf("no serial port configured (%q)", cfg.Device), nil)
	}

	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, protocol.NewIOError(fmt.Sprintf("failed to open serial port %s", cfg.Device), err)
	}

	poll := cfg.ReadPoll
	if poll <= 0 {
		poll = DefaultConfig(cfg.Device).ReadPoll
	}
	if err := port.SetReadTimeout(poll); err != nil {
		port.Close()
		return nil, protocol.NewIOError("failed to set read timeout", err)
	}

	logging.Debug("Serial port opened",
		zap.String("device", cfg.Device),
		zap.Int("baud", cfg.Baud),
		zap.Duration("read_poll", poll))
	return &SerialPort{port: port, cfg: cfg}, nil
}

// Read reads available bytes, returning (0, nil) when the poll interval passes
func (p *SerialPort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write writes data to the serial port
func (p *SerialPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Purge discards buffered input
func (p *SerialPort) Purge() error {
	return p.port.ResetInputBuffer()
}

// Close closes the serial port
func (p *SerialPort) Close() error {
	if p.port == nil {
		return nil
	}
	logging.Debug("Closing serial port", zap.String("device", p.cfg.Device))
	return p.port.Close()
}

// Device returns the path the port was opened with
func (p *SerialPort) Device() string {
	return p.cfg.Device
}

// IsUndefinedPortName reports whether name is one of the placeholder values
// a device framework uses for "no port selected".
func IsUndefinedPortName(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "undefined", "unknown":
		return true
	}
	return false
}
