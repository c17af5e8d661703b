package hub

import (
	"errors"
	"fmt"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// sendDurationLocked sends a millisecond duration as microseconds
func (h *Hub) sendDurationLocked(header byte, ms float64) error {
	us, err := protocol.MillisToMicros(ms)
	if err != nil {
		return err
	}
	return h.sendLocked(header, protocol.DurationPayload(us))
}

// pushStepTimeLocked sends the step time derived from next and commits it
// together with commit. Nothing is committed if the send fails.
func (h *Hub) pushStepTimeLocked(next SequenceState, commit func(s *SequenceState)) error {
	stepTime := next.ComputeStepTime()
	if err := h.sendDurationLocked(protocol.HeaderStepTime, stepTime); err != nil {
		return err
	}
	h.update(func(s *SequenceState) {
		if commit != nil {
			commit(s)
		}
		s.StepTimeMs = stepTime
	})
	return nil
}

// SetExposure sends the exposure time and recomputes the step time. The
// exposure stays committed when only the step time update fails.
func (h *Hub) SetExposure(ms float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sendDurationLocked(protocol.HeaderExposure, ms); err != nil {
		return err
	}
	h.update(func(s *SequenceState) { s.ExposureMs = ms })
	return h.pushStepTimeLocked(h.State(), nil)
}

// SetFramePeriod changes the frame period. The controller has no frame
// period command; only the derived step time is sent.
func (h *Hub) SetFramePeriod(ms float64) error {
	if !(ms > 0) {
		return protocol.NewInvalidValueError(fmt.Sprintf("frame period %v ms must be > 0", ms))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.State()
	next.FramePeriodMs = ms
	return h.pushStepTimeLocked(next, func(s *SequenceState) { s.FramePeriodMs = ms })
}

// SetWaitBefore sends the delay before exposure
func (h *Hub) SetWaitBefore(ms float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sendDurationLocked(protocol.HeaderWaitBefore, ms); err != nil {
		return err
	}
	h.update(func(s *SequenceState) { s.WaitBeforeMs = ms })
	return nil
}

// SetWaitAfter sends the delay after exposure
func (h *Hub) SetWaitAfter(ms float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sendDurationLocked(protocol.HeaderWaitAfter, ms); err != nil {
		return err
	}
	h.update(func(s *SequenceState) { s.WaitAfterMs = ms })
	return nil
}

// SetLoopFrame switches frame looping and recomputes the step time
func (h *Hub) SetLoopFrame(on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sendLocked(protocol.HeaderLoopFrame, protocol.BoolPayload(on)); err != nil {
		return err
	}
	h.update(func(s *SequenceState) { s.LoopFrame = on })
	return h.pushStepTimeLocked(h.State(), nil)
}

// SetDigitalModulation enables digital modulation on the controller
func (h *Hub) SetDigitalModulation(on bool) error {
	return h.setModulationEnable(protocol.HeaderDigitalModulation, on, func(s *SequenceState) { s.DigitalModulation = on })
}

// SetAnalogModulation enables analog modulation on the controller
func (h *Hub) SetAnalogModulation(on bool) error {
	return h.setModulationEnable(protocol.HeaderAnalogModulation, on, func(s *SequenceState) { s.AnalogModulation = on })
}

func (h *Hub) setModulationEnable(header byte, on bool, commit func(s *SequenceState)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.State()
	if on && (st.Length() == 0 || st.StepTimeMs == 0) {
		return protocol.NewSequenceEmptyError(header)
	}
	if err := h.sendLocked(header, protocol.BoolPayload(on)); err != nil {
		return err
	}
	h.update(commit)
	return nil
}

func validateCount(name string, n int) error {
	if n < 0 || n > 255 {
		return protocol.NewInvalidValueError(fmt.Sprintf("%s %d out of range 0..255", name, n))
	}
	return nil
}

// SetSteps sets the number of steps per frame
func (h *Hub) SetSteps(steps int) error {
	if err := validateCount("NSteps", steps); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.State()
	if steps == cur.Steps && steps != 0 {
		return nil
	}
	return h.setShapeLocked(cur, steps, cur.Frames, true, false)
}

// SetFrames sets the number of frames per sequence
func (h *Hub) SetFrames(frames int) error {
	if err := validateCount("NFrames", frames); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.State()
	if frames == cur.Frames && frames != 0 {
		return nil
	}
	return h.setShapeLocked(cur, cur.Steps, frames, false, true)
}

// SetSequenceShape sets steps and frames together. A field that is
// unchanged and nonzero is not resent; a request that changes nothing is a
// no-op.
func (h *Hub) SetSequenceShape(steps, frames int) error {
	if err := validateCount("NSteps", steps); err != nil {
		return err
	}
	if err := validateCount("NFrames", frames); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.State()
	sendSteps := steps != cur.Steps || steps == 0
	sendFrames := frames != cur.Frames || frames == 0
	if !sendSteps && !sendFrames {
		return nil
	}
	return h.setShapeLocked(cur, steps, frames, sendSteps, sendFrames)
}

type shapeField struct {
	header byte
	value  int
	commit func(s *SequenceState)
}

// setShapeLocked rejects an oversized sequence before any I/O, then sends
// the fields. When both change, the one that shrinks goes first so the
// controller never holds a product above the limit. If the second field
// fails, the first stays committed and the step time is still pushed.
func (h *Hub) setShapeLocked(cur SequenceState, steps, frames int, sendSteps, sendFrames bool) error {
	if steps*frames > protocol.MaxSequenceLength {
		return protocol.NewSequenceTooLongError(steps, frames)
	}

	var fields []shapeField
	if sendSteps {
		fields = append(fields, shapeField{protocol.HeaderNSteps, steps, func(s *SequenceState) { s.Steps = steps }})
	}
	if sendFrames {
		f := shapeField{protocol.HeaderNFrames, frames, func(s *SequenceState) { s.Frames = frames }}
		if frames < cur.Frames {
			fields = append([]shapeField{f}, fields...)
		} else {
			fields = append(fields, f)
		}
	}

	for i, f := range fields {
		if err := h.sendLocked(f.header, protocol.BytePayload(uint8(f.value))); err != nil {
			if i == 0 {
				return err
			}
			// the controller holds the fields acked so far; keep T in step with them
			return errors.Join(err, h.pushStepTimeLocked(h.State(), nil))
		}
		h.update(func(s *SequenceState) {
			f.commit(s)
			s.DigitalModulation = false
			s.AnalogModulation = false
		})
		h.invalidateLocked()
	}

	return h.pushStepTimeLocked(h.State(), nil)
}

// invalidateLocked clears every registered channel's tables
func (h *Hub) invalidateLocked() {
	h.stateMu.RLock()
	observers := append([]SequenceObserver(nil), h.observers...)
	h.stateMu.RUnlock()

	for _, obs := range observers {
		obs.ResetModulation()
	}
}
