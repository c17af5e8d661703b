package hub

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/transport"
)

// DetectionStatus is the coarse verdict of a device check
type DetectionStatus int

const (
	// Misconfigured means no usable port name was given
	Misconfigured DetectionStatus = iota
	// CanNotCommunicate means the port was tried but no ArduControl answered
	CanNotCommunicate
	// CanCommunicate means an ArduControl board answered the identity queries
	CanCommunicate
)

func (s DetectionStatus) String() string {
	switch s {
	case Misconfigured:
		return "misconfigured"
	case CanNotCommunicate:
		return "cannot communicate"
	case CanCommunicate:
		return "can communicate"
	default:
		return fmt.Sprintf("DetectionStatus(%d)", int(s))
	}
}

// OpenFunc opens the named port
type OpenFunc func(device string) (transport.Port, error)

// SerialOpener opens device with the default serial settings
func SerialOpener(device string) (transport.Port, error) {
	return transport.Open(transport.DefaultConfig(device))
}

// Detect checks device for an ArduControl board: open, settle, query the
// identity and version, close. Failures, panics included, are logged and
// reduced to a status. The version range is not checked here; Connect does.
func Detect(ctx context.Context, device string, open OpenFunc, cfg *Config) (status DetectionStatus) {
	if transport.IsUndefinedPortName(device) {
		return Misconfigured
	}
	status = CanNotCommunicate

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Device detection panicked",
				zap.String("device", device),
				zap.Any("panic", r))
			status = CanNotCommunicate
		}
	}()

	port, err := open(device)
	if err != nil {
		logging.Warn("Detection could not open port", zap.String("device", device), zap.Error(err))
		return CanNotCommunicate
	}
	defer port.Close()

	h := New(port, cfg)
	if err := h.Settle(ctx); err != nil {
		logging.Warn("Detection cancelled", zap.String("device", device), zap.Error(err))
		return CanNotCommunicate
	}

	version, err := h.ControllerVersion()
	if err != nil {
		logging.Warn("Detection failed", zap.String("device", device), zap.Error(err))
		return CanNotCommunicate
	}

	logging.Debug("Controller detected", zap.String("device", device), zap.Int("firmware_version", version))
	return CanCommunicate
}
