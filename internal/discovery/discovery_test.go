package discovery

import (
	"net"
	"reflect"
	"strings"
	"testing"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = txt
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:     "IPv4 bridge",
			entry:    entry("lab-rig", "scope-pc.local.", 8780, []net.IP{net.ParseIP("192.168.4.16")}, nil, "fw=2", "devices=7"),
			wantIP:   "192.168.4.16",
			wantPort: 8780,
		},
		{
			name:     "no port uses default",
			entry:    entry("lab-rig", "scope-pc.local.", 0, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantIP:   "10.0.0.5",
			wantPort: DefaultPort,
		},
		{
			name:     "IPv6 only",
			entry:    entry("lab-rig", "scope-pc.local.", 9000, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantIP:   "fe80::1",
			wantPort: 9000,
		},
		{
			name:     "prefers IPv4",
			entry:    entry("lab-rig", "scope-pc.local.", 8780, []net.IP{net.ParseIP("192.168.1.50")}, []net.IP{net.ParseIP("fe80::2")}),
			wantIP:   "192.168.1.50",
			wantPort: 8780,
		},
		{
			name:    "no address",
			entry:   entry("lab-rig", "scope-pc.local.", 8780, nil, nil),
			wantNil: true,
		},
		{
			name:    "no instance",
			entry:   entry("", "scope-pc.local.", 8780, []net.IP{net.ParseIP("192.168.1.1")}, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if b != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", b)
				}
				return
			}
			if b == nil {
				t.Fatal("parseServiceEntry() = nil")
			}
			if b.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", b.IP, tt.wantIP)
			}
			if b.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", b.Port, tt.wantPort)
			}
			if b.Instance != "lab-rig" {
				t.Errorf("Instance = %v, want lab-rig", b.Instance)
			}
			if b.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt not set")
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"fw=2", "path=/ws", "flag", "eq=a=b"})
	want := map[string]string{"fw": "2", "path": "/ws", "flag": "", "eq": "a=b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseTXT() = %v, want %v", got, want)
	}
}

func TestFormatTXT(t *testing.T) {
	got := FormatTXT(map[string]string{"path": "/ws", "fw": "2", "devices": "7"})
	want := []string{"devices=7", "fw=2", "path=/ws"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatTXT() = %v, want %v", got, want)
	}
	if got := FormatTXT(nil); len(got) != 0 {
		t.Errorf("FormatTXT(nil) = %v, want empty", got)
	}
}

func TestBridgeURLs(t *testing.T) {
	tests := []struct {
		name    string
		bridge  *Bridge
		wantWS  string
		wantURL string
	}{
		{
			name:    "default path",
			bridge:  &Bridge{IP: "192.168.4.16", Port: 8780},
			wantURL: "http://192.168.4.16:8780",
			wantWS:  "ws://192.168.4.16:8780/ws",
		},
		{
			name:    "advertised path",
			bridge:  &Bridge{IP: "10.0.0.5", Port: 9000, Metadata: map[string]string{"path": "/arductl/ws"}},
			wantURL: "http://10.0.0.5:9000",
			wantWS:  "ws://10.0.0.5:9000/arductl/ws",
		},
		{
			name:    "IPv6",
			bridge:  &Bridge{IP: "fe80::1", Port: 8780},
			wantURL: "http://[fe80::1]:8780",
			wantWS:  "ws://[fe80::1]:8780/ws",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bridge.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantURL)
			}
			if got := tt.bridge.WebSocketURL(); got != tt.wantWS {
				t.Errorf("WebSocketURL() = %v, want %v", got, tt.wantWS)
			}
		})
	}
}

func TestBridgeMetadata(t *testing.T) {
	b := &Bridge{Instance: "lab-rig", Hostname: "scope-pc.local.", IP: "192.168.4.16", Port: 8780,
		Metadata: map[string]string{"fw": "2"}}

	if got := b.FirmwareVersion(); got != 2 {
		t.Errorf("FirmwareVersion() = %d, want 2", got)
	}
	want := "ArduControl bridge lab-rig (scope-pc.local.) at 192.168.4.16:8780"
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	empty := &Bridge{}
	if empty.GetMetadata("fw") != "" || empty.FirmwareVersion() != 0 {
		t.Error("nil metadata should read as empty")
	}
}

func TestSortBridges(t *testing.T) {
	got := sortBridges(map[string]*Bridge{
		"rig-b": {Instance: "rig-b"},
		"rig-a": {Instance: "rig-a"},
		"bench": {Instance: "bench"},
	})
	var names []string
	for _, b := range got {
		names = append(names, b.Instance)
	}
	if strings.Join(names, ",") != "bench,rig-a,rig-b" {
		t.Errorf("sortBridges() order = %v", names)
	}
}

func TestDefaultInstance(t *testing.T) {
	got := DefaultInstance()
	if !strings.HasPrefix(got, "arductl") || strings.Contains(got, ".") {
		t.Errorf("DefaultInstance() = %q", got)
	}
}
