package bridge

import (
	"fmt"
	"strings"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Request operations
const (
	OpList = "list"
	OpGet  = "get"
	OpSet  = "set"
)

// Request is one client message
type Request struct {
	ID       string `json:"id"`
	Op       string `json:"op"`
	Device   string `json:"device,omitempty"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Response answers exactly one Request
type Response struct {
	ID        string `json:"id"`
	OK        bool   `json:"ok"`
	Value     any    `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// DeviceInfo is the JSON form of one device
type DeviceInfo struct {
	Name       string            `json:"name"`
	Kind       string            `json:"kind"`
	Properties map[string]string `json:"properties"`
	ReadOnly   []string          `json:"read_only,omitempty"`
}

// Describe snapshots one device
func Describe(d devices.Device) DeviceInfo {
	info := DeviceInfo{
		Name:       d.Name(),
		Kind:       d.Kind().String(),
		Properties: devices.Snapshot(d),
	}
	for _, p := range d.Properties() {
		if p.ReadOnly {
			info.ReadOnly = append(info.ReadOnly, p.Name)
		}
	}
	return info
}

// DescribeAll snapshots every device of set, hub first
func DescribeAll(set *devices.Set) []DeviceInfo {
	devs := set.Devices()
	infos := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		infos = append(infos, Describe(d))
	}
	return infos
}

// Dispatch executes req against set
func Dispatch(set *devices.Set, req Request) Response {
	resp := Response{ID: req.ID}

	var err error
	switch strings.ToLower(req.Op) {
	case OpList:
		resp.Value = DescribeAll(set)
	case OpGet:
		var v string
		v, err = set.Get(req.Device, req.Property)
		resp.Value = v
	case OpSet:
		if err = set.SetProperty(req.Device, req.Property, req.Value); err == nil {
			// report what the device holds after the write
			resp.Value, err = set.Get(req.Device, req.Property)
		}
	default:
		err = protocol.NewInvalidValueError(fmt.Sprintf("unknown op %q (want list, get or set)", req.Op))
	}

	if err != nil {
		resp.Value = nil
		resp.Error = err.Error()
		if t, ok := protocol.TypeOf(err); ok {
			resp.ErrorType = t.String()
		}
		return resp
	}
	resp.OK = true
	return resp
}
