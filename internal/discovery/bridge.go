package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge is an arductl-server found on the network
type Bridge struct {
	// Instance is the advertised instance name (e.g. "lab-rig")
	Instance string

	// Hostname is the mDNS hostname (e.g. "scope-pc.local.")
	Hostname string

	// IP is the first IPv4 address, or IPv6 if the bridge has none
	IP string

	Port int

	// Metadata holds the TXT record (fw, devices, path)
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("ArduControl bridge %s (%s) at %s", b.Instance, b.Hostname, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// BaseURL returns the HTTP base URL of the bridge
func (b *Bridge) BaseURL() string {
	return "http://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// WebSocketURL returns the property protocol endpoint
func (b *Bridge) WebSocketURL() string {
	path := b.GetMetadata("path")
	if path == "" {
		path = DefaultPath
	}
	return "ws://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port)) + path
}

// FirmwareVersion returns the advertised firmware version, 0 if unknown
func (b *Bridge) FirmwareVersion() int {
	v, err := strconv.Atoi(b.GetMetadata("fw"))
	if err != nil {
		return 0
	}
	return v
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
