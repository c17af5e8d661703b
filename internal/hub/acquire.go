package hub

import (
	"fmt"
	"math"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Acquire requests frames from the internal trigger. A positive count
// acquires that many frames, a negative count (AcquireContinuous) runs
// until stopped and 0 stops. Only a stop is accepted while another trigger
// source is selected.
func (h *Hub) Acquire(frames int) error {
	if frames > math.MaxUint16 {
		return protocol.NewInvalidValueError(fmt.Sprintf("frame count %d exceeds %d", frames, math.MaxUint16))
	}

	wire := uint16(math.MaxUint16)
	if frames >= 0 {
		wire = uint16(frames)
	} else {
		frames = AcquireContinuous
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if trig := h.Trigger(); frames != 0 && trig != TriggerInternal {
		return protocol.NewTriggerNotInternalError(trig.String())
	}
	if err := h.sendLocked(protocol.HeaderAcquire, protocol.CountPayload(wire)); err != nil {
		return err
	}
	h.update(func(s *SequenceState) { s.Acquire = frames })
	return nil
}
