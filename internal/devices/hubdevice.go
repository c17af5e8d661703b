package devices

import (
	"strconv"

	"github.com/openlightcontrol/arductl/internal/hub"
)

// HubDevice exposes the hub's shared state
type HubDevice struct {
	propertySet
	hub *hub.Hub
}

// NewHubDevice wraps h
func NewHubDevice(h *hub.Hub) *HubDevice {
	d := &HubDevice{hub: h}

	d.add(d.durationProperty("Exposure", func(s hub.SequenceState) float64 { return s.ExposureMs }, h.SetExposure))
	d.add(d.durationProperty("FramePeriod", func(s hub.SequenceState) float64 { return s.FramePeriodMs }, h.SetFramePeriod))
	d.add(&Property{
		Name:     "StepTime",
		ReadOnly: true,
		get:      func() string { return formatFloat(h.State().StepTimeMs) },
	})
	d.add(d.durationProperty("WaitBefore", func(s hub.SequenceState) float64 { return s.WaitBeforeMs }, h.SetWaitBefore))
	d.add(d.durationProperty("WaitAfter", func(s hub.SequenceState) float64 { return s.WaitAfterMs }, h.SetWaitAfter))
	d.add(d.countProperty("NSteps", func(s hub.SequenceState) int { return s.Steps }, h.SetSteps))
	d.add(d.countProperty("NFrames", func(s hub.SequenceState) int { return s.Frames }, h.SetFrames))
	d.add(d.boolProperty("DigitalModulation", func(s hub.SequenceState) bool { return s.DigitalModulation }, h.SetDigitalModulation))
	d.add(d.boolProperty("AnalogModulation", func(s hub.SequenceState) bool { return s.AnalogModulation }, h.SetAnalogModulation))
	d.add(d.boolProperty("LoopFrame", func(s hub.SequenceState) bool { return s.LoopFrame }, h.SetLoopFrame))
	d.add(&Property{
		Name: "AcquireFrames",
		get:  func() string { return strconv.Itoa(h.State().Acquire) },
		set: func(v string) error {
			n, err := ParseAcquireCount(v)
			if err != nil {
				return err
			}
			return h.Acquire(n)
		},
	})
	d.add(&Property{
		Name:     "FirmwareVersion",
		ReadOnly: true,
		get:      func() string { return strconv.Itoa(h.Version()) },
	})

	return d
}

func (d *HubDevice) Name() string { return NameHub }
func (d *HubDevice) Kind() Kind   { return KindHub }

// Hub returns the wrapped hub
func (d *HubDevice) Hub() *hub.Hub { return d.hub }

func (d *HubDevice) durationProperty(name string, get func(hub.SequenceState) float64, set func(float64) error) *Property {
	return &Property{
		Name: name,
		get:  func() string { return formatFloat(get(d.hub.State())) },
		set: func(v string) error {
			ms, err := parseFloat(v)
			if err != nil {
				return err
			}
			return set(ms)
		},
	}
}

func (d *HubDevice) countProperty(name string, get func(hub.SequenceState) int, set func(int) error) *Property {
	return &Property{
		Name: name,
		get:  func() string { return strconv.Itoa(get(d.hub.State())) },
		set: func(v string) error {
			n, err := parseInt(v)
			if err != nil {
				return err
			}
			return set(n)
		},
	}
}

func (d *HubDevice) boolProperty(name string, get func(hub.SequenceState) bool, set func(bool) error) *Property {
	return &Property{
		Name:    name,
		Allowed: binaryValues,
		get:     func() string { return formatBool(get(d.hub.State())) },
		set: func(v string) error {
			on, err := parseBool(v)
			if err != nil {
				return err
			}
			return set(on)
		},
	}
}

// ParseAcquireCount accepts a frame count, "continuous" or "stop"
func ParseAcquireCount(s string) (int, error) {
	switch s {
	case "continuous", "start":
		return hub.AcquireContinuous, nil
	case "stop":
		return 0, nil
	}
	return parseInt(s)
}
