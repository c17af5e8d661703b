// Package modfile reads and writes modulation files and applies them to an
// output channel.
//
// A modulation file carries the sequence shape and one table of each kind:
//
//	{"nframes": 2, "nsteps": 5, "digital": "1-1-0-...", "analog": "0-25-..."}
//
// JSON and YAML are accepted; the format is chosen by file extension.
package modfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/protocol"
)

// Format of a modulation file
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension; anything that is not
// YAML is read as JSON
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// File is one modulation
type File struct {
	NFrames int    `json:"nframes" yaml:"nframes"`
	NSteps  int    `json:"nsteps" yaml:"nsteps"`
	Digital string `json:"digital" yaml:"digital"`
	Analog  string `json:"analog" yaml:"analog"`
}

// Length returns the sequence length the tables must match
func (f *File) Length() int {
	return f.NFrames * f.NSteps
}

// Validate checks the shape and both tables. An empty table is allowed and
// leaves that table of the channel untouched.
func (f *File) Validate() error {
	if f.NFrames < 0 || f.NFrames > 255 || f.NSteps < 0 || f.NSteps > 255 {
		return protocol.NewInvalidValueError(fmt.Sprintf("nframes %d and nsteps %d must be in 0..255", f.NFrames, f.NSteps))
	}
	if f.Length() > protocol.MaxSequenceLength {
		return protocol.NewSequenceTooLongError(f.NSteps, f.NFrames)
	}
	if f.Length() == 0 {
		return protocol.NewSequenceEmptyError(0)
	}

	if f.Analog != "" {
		values, err := protocol.ParseAnalogTable(f.Analog)
		if err != nil {
			return fmt.Errorf("analog table: %w", err)
		}
		if len(values) != f.Length() {
			return protocol.NewSequenceLengthMismatchError(protocol.HeaderAnalogTable, len(values), f.Length())
		}
	}
	if f.Digital != "" {
		values, err := protocol.ParseDigitalTable(f.Digital)
		if err != nil {
			return fmt.Errorf("digital table: %w", err)
		}
		if len(values) != f.Length() {
			return protocol.NewSequenceLengthMismatchError(protocol.HeaderDigitalTable, len(values), f.Length())
		}
	}
	return nil
}

// Parse decodes data in the given format and validates it
func Parse(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, protocol.NewParseError("invalid modulation file", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and validates a modulation file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modulation file: %w", err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save writes f in the format matching the path's extension
func Save(path string, f *File) error {
	var data []byte
	var err error
	switch FormatFor(path) {
	case FormatYAML:
		data, err = yaml.Marshal(f)
	default:
		data, err = json.MarshalIndent(f, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode modulation file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write modulation file: %w", err)
	}
	return nil
}

// Export captures the current shape and tables of a channel
func Export(h *hub.Hub, m *devices.Modulator) *File {
	st := h.State()
	return &File{
		NFrames: st.Frames,
		NSteps:  st.Steps,
		Digital: m.DigitalTable(),
		Analog:  m.AnalogTable(),
	}
}

// Apply loads f onto channel m. When the hub has no sequence yet the
// shape is set from the file in one change, so a half-set shape left on the
// hub does not get in the way; a different existing shape is rejected. The analog table is sent before the digital one.
func Apply(h *hub.Hub, m *devices.Modulator, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}

	st := h.State()
	if st.Length() != 0 && (st.Frames != f.NFrames || st.Steps != f.NSteps) {
		return protocol.NewSequenceLengthMismatchError(0, f.Length(), st.Length())
	}
	if st.Length() == 0 {
		if err := h.SetSequenceShape(f.NSteps, f.NFrames); err != nil {
			return fmt.Errorf("set shape: %w", err)
		}
	}

	if f.Analog != "" {
		if err := m.SetAnalogTable(f.Analog); err != nil {
			return fmt.Errorf("analog table: %w", err)
		}
	}
	if f.Digital != "" {
		if err := m.SetDigitalTable(f.Digital); err != nil {
			return fmt.Errorf("digital table: %w", err)
		}
	}

	logging.Info("Modulation applied",
		zap.String("channel", m.Name()),
		zap.Int("nframes", f.NFrames),
		zap.Int("nsteps", f.NSteps))
	return nil
}

// Clear drops the sequence, which clears every channel's tables
func Clear(h *hub.Hub) error {
	if err := h.SetFrames(0); err != nil {
		return fmt.Errorf("set nframes: %w", err)
	}
	if err := h.SetSteps(0); err != nil {
		return fmt.Errorf("set nsteps: %w", err)
	}
	return nil
}
