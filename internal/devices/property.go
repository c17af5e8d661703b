package devices

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Kind is the capability class of a device
type Kind int

const (
	KindHub Kind = iota
	KindState
	KindShutter
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindHub:
		return "hub"
	case KindState:
		return "state"
	case KindShutter:
		return "shutter"
	case KindSignal:
		return "signal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Property is one controllable attribute
type Property struct {
	Name     string
	ReadOnly bool
	// Allowed lists the accepted values when the set is small
	Allowed []string

	get func() string
	set func(string) error
}

// Get returns the cached value
func (p *Property) Get() string {
	return p.get()
}

// Set validates value and applies it to the controller
func (p *Property) Set(value string) error {
	if p.ReadOnly || p.set == nil {
		return protocol.NewInvalidValueError(fmt.Sprintf("property %s is read-only", p.Name))
	}
	return p.set(strings.TrimSpace(value))
}

// Device is a named set of properties
type Device interface {
	Name() string
	Kind() Kind
	Properties() []*Property
	Property(name string) (*Property, error)
}

// propertySet implements the property half of Device
type propertySet struct {
	props []*Property
}

func (ps *propertySet) add(p *Property) {
	ps.props = append(ps.props, p)
}

func (ps *propertySet) Properties() []*Property {
	out := make([]*Property, len(ps.props))
	copy(out, ps.props)
	return out
}

func (ps *propertySet) Property(name string) (*Property, error) {
	for _, p := range ps.props {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, protocol.NewInvalidValueError(fmt.Sprintf("unknown property %q", name))
}

// Snapshot returns every property value of d
func Snapshot(d Device) map[string]string {
	values := make(map[string]string)
	for _, p := range d.Properties() {
		values[p.Name] = p.Get()
	}
	return values
}

// PropertyNames returns the property names of d, sorted
func PropertyNames(d Device) []string {
	var names []string
	for _, p := range d.Properties() {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

var binaryValues = []string{"0", "1"}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return false, protocol.NewInvalidValueError(fmt.Sprintf("%q is not 0 or 1", s))
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, protocol.NewInvalidValueError(fmt.Sprintf("%q is not an integer", s))
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, protocol.NewInvalidValueError(fmt.Sprintf("%q is not a number", s))
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
