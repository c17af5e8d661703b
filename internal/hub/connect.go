package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Settle waits out the bootloader window after the port opened
func (h *Hub) Settle(ctx context.Context) error {
	return sleep(ctx, h.cfg.SettleDelay)
}

// ControllerVersion checks the firmware identity and reads the version
func (h *Hub) ControllerVersion() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.controllerVersionLocked()
}

func (h *Hub) controllerVersionLocked() (int, error) {
	id, err := h.askLocked(protocol.HeaderFirmware)
	if err != nil {
		return 0, err
	}
	if id != protocol.FirmwareID {
		return 0, protocol.NewBoardNotFoundError(id)
	}

	answer, err := h.askLocked(protocol.HeaderVersion)
	if err != nil {
		return 0, err
	}
	return protocol.DecodeAnswerInt(answer)
}

// Connect settles the link, validates the firmware and resets the
// controller. The shared state is at its defaults afterwards.
func (h *Hub) Connect(ctx context.Context) error {
	if err := h.Settle(ctx); err != nil {
		return err
	}
	return h.Handshake()
}

// Handshake is Connect without the settle delay, for callers that waited
// on Settle themselves.
func (h *Hub) Handshake() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	version, err := h.controllerVersionLocked()
	if err != nil {
		return err
	}
	if version < protocol.MinVersion || version > protocol.MaxVersion {
		return protocol.NewVersionMismatchError(version)
	}

	if err := h.resetLocked(); err != nil {
		return err
	}

	h.stateMu.Lock()
	h.version = version
	h.connected = true
	h.stateMu.Unlock()

	logging.Info("Controller connected", zap.Int("firmware_version", version))
	return nil
}

// Reset sends the reset command and returns all cached state to defaults
func (h *Hub) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resetLocked()
}

func (h *Hub) resetLocked() error {
	if err := h.sendLocked(protocol.HeaderReset, nil); err != nil {
		return err
	}

	h.stateMu.Lock()
	h.state = DefaultState()
	h.trigger = DefaultTrigger
	observers := append([]SequenceObserver(nil), h.observers...)
	hooks := append([]func(){}, h.resetHooks...)
	h.stateMu.Unlock()

	for _, obs := range observers {
		obs.ResetModulation()
	}
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// Shutdown resets the controller if Connect succeeded earlier. The port
// stays open.
func (h *Hub) Shutdown() error {
	if !h.Connected() {
		return nil
	}

	err := h.Reset()

	h.stateMu.Lock()
	h.connected = false
	h.stateMu.Unlock()
	return err
}

// Close shuts down the controller and closes the port
func (h *Hub) Close() error {
	err := h.Shutdown()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.port != nil {
		if cerr := h.port.Close(); cerr != nil && err == nil {
			err = protocol.NewIOError("failed to close port", cerr)
		}
		h.port = nil
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
