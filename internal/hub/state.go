package hub

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Defaults the controller returns to after a reset
const (
	DefaultExposureMs    = 10.0
	DefaultFramePeriodMs = 10.0
	DefaultWaitBeforeMs  = 10.0
	DefaultWaitAfterMs   = 10.0
)

// AcquireContinuous starts an acquisition that runs until stopped
const AcquireContinuous = -1

// SequenceState is the shared timing and sequencing state of a controller
type SequenceState struct {
	Steps  int `json:"nsteps"`
	Frames int `json:"nframes"`

	ExposureMs    float64 `json:"exposure_ms"`
	FramePeriodMs float64 `json:"frame_period_ms"`
	WaitBeforeMs  float64 `json:"wait_before_ms"`
	WaitAfterMs   float64 `json:"wait_after_ms"`
	StepTimeMs    float64 `json:"step_time_ms"`

	LoopFrame         bool `json:"loop_frame"`
	DigitalModulation bool `json:"digital_modulation"`
	AnalogModulation  bool `json:"analog_modulation"`

	// Acquire is the last accepted acquisition request
	Acquire int `json:"acquire"`
}

// DefaultState returns the state after a controller reset
func DefaultState() SequenceState {
	return SequenceState{
		ExposureMs:    DefaultExposureMs,
		FramePeriodMs: DefaultFramePeriodMs,
		WaitBeforeMs:  DefaultWaitBeforeMs,
		WaitAfterMs:   DefaultWaitAfterMs,
	}
}

// Length returns the sequence length, steps*frames
func (s SequenceState) Length() int {
	return s.Steps * s.Frames
}

// ComputeStepTime derives the step duration. The master period is the
// exposure, or the frame period when looping frames or when exposure is 0.
func (s SequenceState) ComputeStepTime() float64 {
	if s.Steps == 0 {
		return 0
	}
	master := s.ExposureMs
	if s.LoopFrame || s.ExposureMs == 0 {
		master = s.FramePeriodMs
	}
	return master / float64(s.Steps)
}

// State returns a snapshot of the shared state
func (h *Hub) State() SequenceState {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.state
}

// SequenceLength returns steps*frames
func (h *Hub) SequenceLength() int {
	return h.State().Length()
}

// Version returns the firmware version read at connect (0 before)
func (h *Hub) Version() int {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.version
}

// Connected reports whether Connect succeeded and Shutdown has not run
func (h *Hub) Connected() bool {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.connected
}

func (h *Hub) update(fn func(s *SequenceState)) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	fn(&h.state)
}

// Trigger is a trigger source position
type Trigger int

// Trigger sources, in firmware position order
const (
	TriggerAux Trigger = iota
	TriggerCamFire1
	TriggerCamFireN
	TriggerCamFireAll
	TriggerInternal
)

// DefaultTrigger is selected after a reset
const DefaultTrigger = TriggerInternal

// NumTriggers is the number of trigger positions
const NumTriggers = 5

var triggerLabels = [NumTriggers]string{"Aux.", "CamFire1", "CamFireN", "CamFireAll", "Internal"}

// TriggerLabels returns the labels of all positions in order
func TriggerLabels() []string {
	labels := make([]string, NumTriggers)
	copy(labels, triggerLabels[:])
	return labels
}

// Valid reports whether t is a known position
func (t Trigger) Valid() bool {
	return t >= 0 && t < NumTriggers
}

func (t Trigger) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
	return triggerLabels[t]
}

// ParseTrigger accepts a position ("4") or a label ("Internal", any case;
// the trailing dot of "Aux." is optional).
func ParseTrigger(s string) (Trigger, error) {
	s = strings.TrimSpace(s)
	if pos, err := strconv.Atoi(s); err == nil {
		t := Trigger(pos)
		if !t.Valid() {
			return 0, protocol.NewInvalidValueError(fmt.Sprintf("trigger position %d out of range 0..%d", pos, NumTriggers-1))
		}
		return t, nil
	}
	for i, label := range triggerLabels {
		if strings.EqualFold(s, label) || strings.EqualFold(s+".", label) {
			return Trigger(i), nil
		}
	}
	return 0, protocol.NewInvalidValueError(fmt.Sprintf("unknown trigger %q (want one of %s)", s, strings.Join(triggerLabels[:], ", ")))
}

// Trigger returns the last committed trigger selection
func (h *Hub) Trigger() Trigger {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.trigger
}

// SelectTrigger records the trigger selection. It does no I/O; the trigger
// selector calls it after the controller acknowledged the change.
func (h *Hub) SelectTrigger(t Trigger) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.trigger = t
}
