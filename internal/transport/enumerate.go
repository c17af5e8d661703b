package transport

import (
	"sort"

	"go.bug.st/serial/enumerator"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

// PortInfo describes a serial port found on the host
type PortInfo struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
}

// Description returns a one-line summary for listings
func (p PortInfo) Description() string {
	if !p.IsUSB {
		return p.Name
	}
	desc := p.Name + " (USB " + p.VID + ":" + p.PID
	if p.Product != "" {
		desc += " " + p.Product
	}
	return desc + ")"
}

// ListPorts returns the serial ports on this host, USB ports first
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, protocol.NewIOError("failed to enumerate serial ports", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sortPorts(ports)
	return ports, nil
}

func sortPorts(ports []PortInfo) {
	sort.SliceStable(ports, func(i, j int) bool {
		if ports[i].IsUSB != ports[j].IsUSB {
			return ports[i].IsUSB
		}
		return ports[i].Name < ports[j].Name
	})
}
