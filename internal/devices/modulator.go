package devices

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Modulator is one output channel. It holds an amplitude, a gate and the
// analog and digital modulation tables last accepted by the controller.
type Modulator struct {
	propertySet
	hub     *hub.Hub
	name    string
	channel int

	mu        sync.Mutex
	amplitude int
	gate      bool
	analog    string
	digital   string
}

// NewModulator creates the channel and registers it with h
func NewModulator(h *hub.Hub, name string, channel int) (*Modulator, error) {
	if err := protocol.ValidateChannel(channel); err != nil {
		return nil, err
	}

	m := &Modulator{hub: h, name: name, channel: channel}
	h.Register(m)
	h.OnReset(func() {
		m.mu.Lock()
		m.amplitude = 0
		m.gate = false
		m.mu.Unlock()
	})

	m.add(&Property{
		Name: "Amplitude",
		get:  func() string { return strconv.Itoa(m.Amplitude()) },
		set: func(v string) error {
			a, err := parseInt(v)
			if err != nil {
				return err
			}
			return m.SetAmplitude(a)
		},
	})
	m.add(&Property{
		Name:    "Gate",
		Allowed: binaryValues,
		get:     func() string { return formatBool(m.Gate()) },
		set: func(v string) error {
			open, err := parseBool(v)
			if err != nil {
				return err
			}
			return m.SetGate(open)
		},
	})
	m.add(&Property{
		Name: "ModulationA",
		get:  m.AnalogTable,
		set:  m.SetAnalogTable,
	})
	m.add(&Property{
		Name: "ModulationD",
		get:  m.DigitalTable,
		set:  m.SetDigitalTable,
	})
	return m, nil
}

func (m *Modulator) Name() string { return m.name }
func (m *Modulator) Kind() Kind   { return KindSignal }

// Channel returns the firmware channel index
func (m *Modulator) Channel() int { return m.channel }

// Amplitude returns the cached amplitude (0..255)
func (m *Modulator) Amplitude() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.amplitude
}

// Gate returns the cached gate state
func (m *Modulator) Gate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gate
}

// AnalogTable returns the accepted analog table text, "" when none
func (m *Modulator) AnalogTable() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.analog
}

// DigitalTable returns the accepted digital table text, "" when none
func (m *Modulator) DigitalTable() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.digital
}

// ResetModulation forgets both tables. The hub calls it when the sequence
// length changes.
func (m *Modulator) ResetModulation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analog = ""
	m.digital = ""
}

// SetAmplitude sets the channel amplitude. A cached analog table is resent
// scaled to the new amplitude in the same exchange.
func (m *Modulator) SetAmplitude(amplitude int) error {
	if amplitude < 0 || amplitude > protocol.MaxAnalogValue {
		return protocol.NewInvalidValueError(fmt.Sprintf("amplitude %d out of range 0..%d", amplitude, protocol.MaxAnalogValue))
	}
	payload, err := protocol.ChannelPayload(m.channel, protocol.BytePayload(uint8(amplitude)))
	if err != nil {
		return err
	}

	return m.hub.Exchange(func(s *hub.Session) error {
		if err := s.Send(protocol.HeaderAmplitude, payload); err != nil {
			return err
		}
		m.mu.Lock()
		m.amplitude = amplitude
		table := m.analog
		m.mu.Unlock()

		if table == "" {
			return nil
		}
		values, err := protocol.ParseAnalogTable(table)
		if err != nil {
			return err
		}
		return m.sendAnalog(s, values, amplitude)
	})
}

// SetGate opens or closes the channel gate
func (m *Modulator) SetGate(open bool) error {
	payload, err := protocol.ChannelPayload(m.channel, protocol.BoolPayload(open))
	if err != nil {
		return err
	}
	return m.hub.Exchange(func(s *hub.Session) error {
		if err := s.Send(protocol.HeaderGate, payload); err != nil {
			return err
		}
		m.mu.Lock()
		m.gate = open
		m.mu.Unlock()
		return nil
	})
}

// SetSignal sets the amplitude from a level in [0, 1]
func (m *Modulator) SetSignal(volts float64) error {
	if math.IsNaN(volts) || volts < 0 || volts > 1 {
		return protocol.NewInvalidValueError(fmt.Sprintf("signal %v out of range 0..1", volts))
	}
	return m.SetAmplitude(int(volts*protocol.MaxAnalogValue + 0.5))
}

// Signal returns the amplitude as a level in [0, 1]
func (m *Modulator) Signal() float64 {
	return float64(m.Amplitude()) / protocol.MaxAnalogValue
}

// SetAnalogTable sends a dash-separated table of 0..255 values. It must
// hold exactly one value per sequence step; values are scaled by
// amplitude/255 on the wire.
func (m *Modulator) SetAnalogTable(text string) error {
	values, err := protocol.ParseAnalogTable(text)
	if err != nil {
		return err
	}
	return m.hub.Exchange(func(s *hub.Session) error {
		if want := s.SequenceLength(); len(values) != want {
			return protocol.NewSequenceLengthMismatchError(protocol.HeaderAnalogTable, len(values), want)
		}
		if err := m.sendAnalog(s, values, m.Amplitude()); err != nil {
			return err
		}
		m.mu.Lock()
		m.analog = text
		m.mu.Unlock()
		return nil
	})
}

func (m *Modulator) sendAnalog(s *hub.Session, values []int, amplitude int) error {
	payload, err := protocol.AnalogTablePayload(m.channel, protocol.ScaleAnalog(values, amplitude))
	if err != nil {
		return err
	}
	return s.Send(protocol.HeaderAnalogTable, payload)
}

// SetDigitalTable sends a dash-separated table of 0/1 values, one per
// sequence step
func (m *Modulator) SetDigitalTable(text string) error {
	values, err := protocol.ParseDigitalTable(text)
	if err != nil {
		return err
	}
	return m.hub.Exchange(func(s *hub.Session) error {
		if want := s.SequenceLength(); len(values) != want {
			return protocol.NewSequenceLengthMismatchError(protocol.HeaderDigitalTable, len(values), want)
		}
		payload, err := protocol.DigitalTablePayload(m.channel, values)
		if err != nil {
			return err
		}
		if err := s.Send(protocol.HeaderDigitalTable, payload); err != nil {
			return err
		}
		m.mu.Lock()
		m.digital = text
		m.mu.Unlock()
		return nil
	})
}
