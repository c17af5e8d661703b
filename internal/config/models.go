package config

import (
	"fmt"
	"time"

	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport"
)

// CurrentVersion is the settings file version this build reads and writes
const CurrentVersion = 1

// Settings represents the entire settings file
type Settings struct {
	Version  int              `yaml:"version" toml:"version"`
	Serial   SerialSettings   `yaml:"serial" toml:"serial"`
	Protocol ProtocolSettings `yaml:"protocol" toml:"protocol"`
	Bridge   BridgeSettings   `yaml:"bridge" toml:"bridge"`
	LogLevel string           `yaml:"log_level,omitempty" toml:"log_level,omitempty"` // debug, info, warn, error; empty is silent
}

// SerialSettings selects and configures the serial port
type SerialSettings struct {
	Port       string `yaml:"port" toml:"port"`                 // e.g. /dev/ttyACM0 or COM3
	BaudRate   int    `yaml:"baud_rate" toml:"baud_rate"`       // firmware runs at 9600
	ReadPollMs int    `yaml:"read_poll_ms" toml:"read_poll_ms"` // single read timeout
}

// ProtocolSettings holds the link timing
type ProtocolSettings struct {
	AckTimeoutMs    int `yaml:"ack_timeout_ms" toml:"ack_timeout_ms"`
	AnswerTimeoutMs int `yaml:"answer_timeout_ms" toml:"answer_timeout_ms"`
	SettleDelayMs   int `yaml:"settle_delay_ms" toml:"settle_delay_ms"`
}

// BridgeSettings configures arductl-server
type BridgeSettings struct {
	Host      string `yaml:"host" toml:"host"`
	Port      int    `yaml:"port" toml:"port"`
	Advertise bool   `yaml:"advertise" toml:"advertise"` // announce over mDNS
	Instance  string `yaml:"instance,omitempty" toml:"instance,omitempty"`
}

// Default returns settings matching the firmware defaults
func Default() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Serial: SerialSettings{
			BaudRate:   protocol.BaudRate,
			ReadPollMs: 10,
		},
		Protocol: ProtocolSettings{
			AckTimeoutMs:    int(protocol.DefaultAckTimeout / time.Millisecond),
			AnswerTimeoutMs: int(protocol.DefaultAnswerTimeout / time.Millisecond),
			SettleDelayMs:   int(protocol.DefaultSettleDelay / time.Millisecond),
		},
		Bridge: BridgeSettings{
			Host:      "0.0.0.0",
			Port:      8780,
			Advertise: true,
		},
	}
}

// Validate checks the settings for values the tool cannot run with
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if s.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be > 0, got %d", s.Serial.BaudRate)
	}
	if s.Serial.ReadPollMs <= 0 {
		return fmt.Errorf("serial.read_poll_ms must be > 0, got %d", s.Serial.ReadPollMs)
	}
	if s.Protocol.AckTimeoutMs <= 0 || s.Protocol.AnswerTimeoutMs <= 0 {
		return fmt.Errorf("protocol timeouts must be > 0 (ack %d ms, answer %d ms)", s.Protocol.AckTimeoutMs, s.Protocol.AnswerTimeoutMs)
	}
	if s.Protocol.SettleDelayMs < 0 {
		return fmt.Errorf("protocol.settle_delay_ms must be >= 0, got %d", s.Protocol.SettleDelayMs)
	}
	if s.Bridge.Port <= 0 || s.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port must be in 1..65535, got %d", s.Bridge.Port)
	}
	return nil
}

// HubConfig converts the protocol timing for hub.New
func (s *Settings) HubConfig() *hub.Config {
	return &hub.Config{
		AckTimeout:    time.Duration(s.Protocol.AckTimeoutMs) * time.Millisecond,
		AnswerTimeout: time.Duration(s.Protocol.AnswerTimeoutMs) * time.Millisecond,
		SettleDelay:   time.Duration(s.Protocol.SettleDelayMs) * time.Millisecond,
	}
}

// TransportConfig converts the serial settings for transport.Open
func (s *Settings) TransportConfig() *transport.Config {
	return &transport.Config{
		Device:   s.Serial.Port,
		Baud:     s.Serial.BaudRate,
		ReadPoll: time.Duration(s.Serial.ReadPollMs) * time.Millisecond,
	}
}
