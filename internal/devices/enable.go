package devices

import (
	"sync"

	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// EnableGate is the global output enable
type EnableGate struct {
	propertySet
	hub *hub.Hub

	mu      sync.Mutex
	enabled bool
}

// NewEnableGate creates the gate, closed
func NewEnableGate(h *hub.Hub) *EnableGate {
	d := &EnableGate{hub: h}
	h.OnReset(func() {
		d.mu.Lock()
		d.enabled = false
		d.mu.Unlock()
	})

	d.add(&Property{
		Name:    "Enable",
		Allowed: binaryValues,
		get:     func() string { return formatBool(d.IsOpen()) },
		set: func(v string) error {
			on, err := parseBool(v)
			if err != nil {
				return err
			}
			return d.SetOpen(on)
		},
	})
	return d
}

func (d *EnableGate) Name() string { return NameEnable }
func (d *EnableGate) Kind() Kind   { return KindShutter }

// IsOpen returns the cached gate state
func (d *EnableGate) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// SetOpen enables or disables all outputs
func (d *EnableGate) SetOpen(open bool) error {
	return d.hub.Exchange(func(s *hub.Session) error {
		if err := s.Send(protocol.HeaderEnable, protocol.BoolPayload(open)); err != nil {
			return err
		}
		d.mu.Lock()
		d.enabled = open
		d.mu.Unlock()
		return nil
	})
}

// Open enables the outputs
func (d *EnableGate) Open() error { return d.SetOpen(true) }

// Close disables the outputs
func (d *EnableGate) Close() error { return d.SetOpen(false) }
