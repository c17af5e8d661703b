package devices

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Device names
const (
	NameHub      = "ArduControl-Hub"
	NameTrigger  = "ArduControl-TriggerSelect"
	NameEnable   = "ArduControl-Enable"
	NameOutputP1 = "ArduControl-OutputP1"
	NameOutputP2 = "ArduControl-OutputP2"
	NameOutputO1 = "ArduControl-OutputO1"
	NameOutputO2 = "ArduControl-OutputO2"
)

// Outputs in board connector order, with their firmware channel
var outputs = []struct {
	name    string
	alias   string
	channel int
}{
	{NameOutputP1, "P1", 2},
	{NameOutputP2, "P2", 0},
	{NameOutputO1, "O1", 1},
	{NameOutputO2, "O2", 3},
}

// Set is every device of one controller
type Set struct {
	Hub     *HubDevice
	Trigger *TriggerSelect
	Enable  *EnableGate
	Outputs []*Modulator
}

// Install creates the devices of h. Channels register with the hub here.
func Install(h *hub.Hub) *Set {
	s := &Set{
		Hub:     NewHubDevice(h),
		Trigger: NewTriggerSelect(h),
		Enable:  NewEnableGate(h),
	}
	for _, o := range outputs {
		m, err := NewModulator(h, o.name, o.channel)
		if err != nil {
			// channels in the table are always valid
			panic(err)
		}
		s.Outputs = append(s.Outputs, m)
	}
	return s
}

// Devices returns all devices, hub first
func (s *Set) Devices() []Device {
	devs := []Device{s.Hub, s.Trigger, s.Enable}
	for _, m := range s.Outputs {
		devs = append(devs, m)
	}
	return devs
}

// Lookup finds a device by name or short alias ("hub", "trigger",
// "enable", "P1", ...), ignoring case
func (s *Set) Lookup(name string) (Device, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "hub":
		return s.Hub, nil
	case "trigger", "triggerselect":
		return s.Trigger, nil
	case "enable", "shutter":
		return s.Enable, nil
	}
	for _, d := range s.Devices() {
		if strings.ToLower(d.Name()) == key {
			return d, nil
		}
	}
	if m, err := s.Output(name); err == nil {
		return m, nil
	}
	return nil, protocol.NewInvalidValueError(fmt.Sprintf("unknown device %q", name))
}

// Output finds an output channel by name, alias ("P1", "OutputP1") or
// firmware channel index ("0".."3")
func (s *Set) Output(name string) (*Modulator, error) {
	key := strings.TrimSpace(name)
	if ch, err := strconv.Atoi(key); err == nil {
		for _, m := range s.Outputs {
			if m.Channel() == ch {
				return m, nil
			}
		}
		return nil, protocol.NewInvalidValueError(fmt.Sprintf("channel %d out of range 0..%d", ch, protocol.MaxChannel))
	}
	for i, o := range outputs {
		if strings.EqualFold(key, o.name) || strings.EqualFold(key, o.alias) || strings.EqualFold(key, "Output"+o.alias) {
			return s.Outputs[i], nil
		}
	}
	return nil, protocol.NewInvalidValueError(fmt.Sprintf("unknown output %q (want P1, P2, O1 or O2)", name))
}

// Get reads a property of a device by name
func (s *Set) Get(device, property string) (string, error) {
	p, err := s.property(device, property)
	if err != nil {
		return "", err
	}
	return p.Get(), nil
}

// SetProperty writes a property of a device by name
func (s *Set) SetProperty(device, property, value string) error {
	p, err := s.property(device, property)
	if err != nil {
		return err
	}
	return p.Set(value)
}

func (s *Set) property(device, property string) (*Property, error) {
	d, err := s.Lookup(device)
	if err != nil {
		return nil, err
	}
	return d.Property(property)
}
