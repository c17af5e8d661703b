package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/openlightcontrol/arductl/internal/transport"
)

var testPorts = []transport.PortInfo{
	{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043", Product: "Arduino Uno"},
	{Name: "/dev/ttyS0"},
}

func scanned(t *testing.T, ports []transport.PortInfo, err error) PortPickerModel {
	t.Helper()
	m := NewPortPickerModel(func() ([]transport.PortInfo, error) { return ports, err })
	next, _ := m.Update(portsMsg{ports: ports, err: err})
	return next.(PortPickerModel)
}

func press(m PortPickerModel, keys ...tea.KeyMsg) PortPickerModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(PortPickerModel)
	}
	return m
}

func runes(s string) []tea.KeyMsg {
	var keys []tea.KeyMsg
	for _, r := range s {
		keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return keys
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestPortPickerChoose(t *testing.T) {
	m := scanned(t, testPorts, nil)
	if m.Scanning {
		t.Fatal("still scanning after ports arrived")
	}

	if got := press(m, enterKey).Choice; got != "/dev/ttyACM0" {
		t.Errorf("Choice = %q, want /dev/ttyACM0", got)
	}
	if got := press(m, downKey, enterKey).Choice; got != "/dev/ttyS0" {
		t.Errorf("Choice after down = %q, want /dev/ttyS0", got)
	}
}

func TestPortPickerIgnoresKeysWhileScanning(t *testing.T) {
	m := NewPortPickerModel(func() ([]transport.PortInfo, error) { return testPorts, nil })
	m = press(m, enterKey)
	if m.Choice != "" || !m.Scanning {
		t.Errorf("Choice = %q, Scanning = %v during scan", m.Choice, m.Scanning)
	}
}

func TestPortPickerManualEntry(t *testing.T) {
	m := scanned(t, nil, nil)
	m = press(m, runes("m")...)
	if !m.Manual {
		t.Fatal("m did not open manual entry")
	}
	m = press(m, runes("COM7")...)
	m = press(m, enterKey)
	if m.Choice != "COM7" {
		t.Errorf("Choice = %q, want COM7", m.Choice)
	}
}

func TestPortPickerManualCancel(t *testing.T) {
	m := scanned(t, testPorts, nil)
	m = press(m, runes("m")...)
	m = press(m, escKey)
	if m.Manual || m.Cancelled {
		t.Errorf("Manual = %v, Cancelled = %v after esc in manual entry", m.Manual, m.Cancelled)
	}
}

func TestPortPickerQuit(t *testing.T) {
	m := press(scanned(t, testPorts, nil), runes("q")...)
	if !m.Cancelled || m.Choice != "" {
		t.Errorf("Cancelled = %v, Choice = %q after q", m.Cancelled, m.Choice)
	}
}

func TestPortPickerView(t *testing.T) {
	tests := []struct {
		name  string
		ports []transport.PortInfo
		err   error
		want  string
	}{
		{"ports", testPorts, nil, "/dev/ttyACM0"},
		{"empty", nil, nil, "No serial ports found"},
		{"error", nil, errors.New("enumeration failed"), "Listing ports failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := scanned(t, tt.ports, tt.err).View()
			if !strings.Contains(view, tt.want) {
				t.Errorf("View() missing %q:\n%s", tt.want, view)
			}
		})
	}
}

func TestPortItem(t *testing.T) {
	usb := portItem{port: testPorts[0]}
	if got := usb.Description(); got != "USB 2341:0043 Arduino Uno" {
		t.Errorf("Description() = %q", got)
	}
	if got := (portItem{port: testPorts[1]}).Description(); got != "not USB" {
		t.Errorf("Description() = %q, want not USB", got)
	}
}

func TestSpinnerModelFinishes(t *testing.T) {
	want := errors.New("scan failed")
	m := NewSpinnerModel("Scanning", func() error { return want })
	if !strings.Contains(m.View(), "Scanning") {
		t.Errorf("View() = %q, want label", m.View())
	}

	next, cmd := m.Update(workDoneMsg{err: want})
	done := next.(SpinnerModel)
	if cmd == nil {
		t.Error("Update(workDoneMsg) returned no quit command")
	}
	if done.err != want || done.View() != "" {
		t.Errorf("err = %v, View() = %q after completion", done.err, done.View())
	}
}
