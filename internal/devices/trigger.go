package devices

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// TriggerSelect chooses the trigger source of the controller
type TriggerSelect struct {
	propertySet
	hub *hub.Hub

	mu       sync.Mutex
	position hub.Trigger
}

// NewTriggerSelect creates the selector. The cached position follows the
// hub through resets.
func NewTriggerSelect(h *hub.Hub) *TriggerSelect {
	d := &TriggerSelect{hub: h, position: hub.DefaultTrigger}
	h.OnReset(func() {
		d.mu.Lock()
		d.position = hub.DefaultTrigger
		d.mu.Unlock()
	})

	positions := make([]string, hub.NumTriggers)
	for i := range positions {
		positions[i] = strconv.Itoa(i)
	}

	d.add(&Property{
		Name:    "State",
		Allowed: positions,
		get:     func() string { return strconv.Itoa(int(d.Position())) },
		set:     d.setFromText,
	})
	d.add(&Property{
		Name:    "Label",
		Allowed: hub.TriggerLabels(),
		get:     func() string { return d.Position().String() },
		set:     d.setFromText,
	})
	return d
}

func (d *TriggerSelect) Name() string { return NameTrigger }
func (d *TriggerSelect) Kind() Kind   { return KindState }

// Position returns the cached trigger source
func (d *TriggerSelect) Position() hub.Trigger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

// SetPosition selects a trigger source on the controller
func (d *TriggerSelect) SetPosition(t hub.Trigger) error {
	if !t.Valid() {
		return protocol.NewInvalidValueError(fmt.Sprintf("trigger position %d out of range 0..%d", int(t), hub.NumTriggers-1))
	}
	return d.hub.Exchange(func(s *hub.Session) error {
		if err := s.Send(protocol.HeaderTrigger, protocol.BytePayload(uint8(t))); err != nil {
			return err
		}
		d.mu.Lock()
		d.position = t
		d.mu.Unlock()
		d.hub.SelectTrigger(t)
		return nil
	})
}

func (d *TriggerSelect) setFromText(v string) error {
	t, err := hub.ParseTrigger(v)
	if err != nil {
		return err
	}
	return d.SetPosition(t)
}
