package main

import (
	"testing"

	"github.com/openlightcontrol/arductl/internal/hub"
)

func TestDescribeAcquire(t *testing.T) {
	tests := []struct {
		frames int
		want   string
	}{
		{0, "stopped"},
		{hub.AcquireContinuous, "continuous"},
		{25, "25 frames"},
	}
	for _, tt := range tests {
		if got := describeAcquire(tt.frames); got != tt.want {
			t.Errorf("describeAcquire(%d) = %q, want %q", tt.frames, got, tt.want)
		}
	}
}

func TestSetArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"one pair", []string{"hub", "NSteps", "5"}, false},
		{"two pairs", []string{"hub", "NFrames", "1", "NSteps", "5"}, false},
		{"missing value", []string{"hub", "NSteps"}, true},
		{"dangling property", []string{"hub", "NSteps", "5", "NFrames"}, true},
		{"nothing", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setCmd.Args(setCmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Args(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "ports", "detect", "info", "get", "set", "modulate",
		"acquire", "reset", "run", "bridges", "config"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
}
