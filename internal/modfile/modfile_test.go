package modfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport/transporttest"
)

const demoJSON = `{"nframes": 2, "nsteps": 3, "digital": "1-1-0-0-1-1", "analog": "0-51-102-153-204-255"}`

const demoYAML = `nframes: 2
nsteps: 3
digital: 1-1-0-0-1-1
analog: 0-51-102-153-204-255
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func newTestChannel(t *testing.T) (*hub.Hub, *devices.Modulator, *transporttest.Controller) {
	t.Helper()
	ctrl := transporttest.New()
	h := hub.New(ctrl, &hub.Config{AckTimeout: 50 * time.Millisecond, AnswerTimeout: 50 * time.Millisecond})
	set := devices.Install(h)
	m, err := set.Output("P2")
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	return h, m, ctrl
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "demo.json", demoJSON},
		{"yaml", "demo.yaml", demoYAML},
		{"yml", "demo.yml", demoYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if f.NFrames != 2 || f.NSteps != 3 || f.Length() != 6 {
				t.Errorf("Load() shape = %dx%d", f.NFrames, f.NSteps)
			}
			if f.Digital != "1-1-0-0-1-1" || f.Analog != "0-51-102-153-204-255" {
				t.Errorf("Load() tables = %q, %q", f.Digital, f.Analog)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{"bad json", `{"nframes": 2,`, protocol.IsParseError},
		{"too long", `{"nframes": 26, "nsteps": 10}`, protocol.IsSequenceTooLong},
		{"empty", `{"nframes": 0, "nsteps": 4}`, protocol.IsSequenceEmpty},
		{"short analog", `{"nframes": 1, "nsteps": 3, "analog": "1-2"}`, protocol.IsSequenceLengthMismatch},
		{"bad digital", `{"nframes": 1, "nsteps": 3, "digital": "1-2-0"}`, protocol.IsInvalidValue},
		{"range", `{"nframes": 300, "nsteps": 0}`, protocol.IsInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "mod.json", tt.content))
			if !tt.check(err) {
				t.Errorf("Load() error = %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	orig := &File{NFrames: 1, NSteps: 2, Digital: "1-0", Analog: "7-8"}
	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(path, orig); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if *got != *orig {
			t.Errorf("Load(%s) = %+v, want %+v", name, got, orig)
		}
	}
}

func TestApplySetsShapeWhenEmpty(t *testing.T) {
	h, m, ctrl := newTestChannel(t)
	f, err := Parse([]byte(demoJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := Apply(h, m, f); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := ctrl.Headers(); got != "NMTOP" {
		t.Errorf("Headers() = %q, want NMTOP", got)
	}
	if st := h.State(); st.Frames != 2 || st.Steps != 3 {
		t.Errorf("shape = %dx%d, want 3x2", st.Steps, st.Frames)
	}
	if m.AnalogTable() != f.Analog || m.DigitalTable() != f.Digital {
		t.Error("tables not committed to the channel")
	}

	exported := Export(h, m)
	if *exported != *f {
		t.Errorf("Export() = %+v, want %+v", exported, f)
	}
}

func TestApplyOverHalfSetShape(t *testing.T) {
	h, m, ctrl := newTestChannel(t)
	// steps without frames leave the sequence empty
	if err := h.SetSteps(100); err != nil {
		t.Fatalf("SetSteps(100) error = %v", err)
	}
	ctrl.ClearFrames()

	// 100 steps x 5 frames would exceed the controller limit on the way
	f, err := Parse([]byte(`{"nframes": 5, "nsteps": 2, "digital": "1-0-1-0-1-0-1-0-1-0", "analog": "0-10-20-30-40-50-60-70-80-90"}`), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := Apply(h, m, f); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if st := h.State(); st.Frames != 5 || st.Steps != 2 {
		t.Errorf("shape = %dx%d, want 2x5", st.Steps, st.Frames)
	}
	if got := ctrl.Headers(); got != "NMTOP" {
		t.Errorf("Headers() = %q, want NMTOP", got)
	}
}

func TestApplyRejectsOtherShape(t *testing.T) {
	h, m, ctrl := newTestChannel(t)
	if err := h.SetSequenceShape(5, 2); err != nil {
		t.Fatalf("SetSequenceShape() error = %v", err)
	}
	ctrl.ClearFrames()

	f, _ := Parse([]byte(demoJSON), FormatJSON)
	if err := Apply(h, m, f); !protocol.IsSequenceLengthMismatch(err) {
		t.Fatalf("Apply() error = %v, want length mismatch", err)
	}
	if len(ctrl.Frames()) != 0 {
		t.Error("mismatched modulation reached the controller")
	}
}

func TestApplyKeepsMatchingShape(t *testing.T) {
	h, m, ctrl := newTestChannel(t)
	h.SetSequenceShape(3, 2)
	ctrl.ClearFrames()

	f, _ := Parse([]byte(demoJSON), FormatJSON)
	if err := Apply(h, m, f); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := ctrl.Headers(); got != "OP" {
		t.Errorf("Headers() = %q, want OP", got)
	}
}

func TestClear(t *testing.T) {
	h, m, _ := newTestChannel(t)
	f, _ := Parse([]byte(demoJSON), FormatJSON)
	Apply(h, m, f)

	if err := Clear(h); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if h.SequenceLength() != 0 || m.AnalogTable() != "" || m.DigitalTable() != "" {
		t.Error("Clear() left a sequence behind")
	}
}
