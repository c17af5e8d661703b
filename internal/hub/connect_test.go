package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport"
	"github.com/openlightcontrol/arductl/internal/transport/transporttest"
)

type countingObserver struct {
	resets int
}

func (o *countingObserver) ResetModulation() { o.resets++ }

func TestConnect(t *testing.T) {
	h, ctrl := newTestHub(t)

	if err := h.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if got := ctrl.Headers(); got != "FVR" {
		t.Errorf("Headers() = %q, want FVR", got)
	}
	if !h.Connected() {
		t.Error("Connected() = false after Connect()")
	}
	if h.Version() != 2 {
		t.Errorf("Version() = %d, want 2", h.Version())
	}
	if h.State() != DefaultState() {
		t.Errorf("State() = %+v, want defaults", h.State())
	}
	if h.Trigger() != TriggerInternal {
		t.Errorf("Trigger() = %v, want Internal", h.Trigger())
	}
}

func TestConnectFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(c *transporttest.Controller)
		check   func(error) bool
		headers string
	}{
		{
			name:    "wrong board",
			setup:   func(c *transporttest.Controller) { c.SetIdentity("ARDUINO") },
			check:   protocol.IsBoardNotFound,
			headers: "F",
		},
		{
			name:    "version too new",
			setup:   func(c *transporttest.Controller) { c.SetVersion(3) },
			check:   protocol.IsVersionMismatch,
			headers: "FV",
		},
		{
			name:    "version too old",
			setup:   func(c *transporttest.Controller) { c.SetVersion(0) },
			check:   protocol.IsVersionMismatch,
			headers: "FV",
		},
		{
			name:    "silent board",
			setup:   func(c *transporttest.Controller) { c.Handle(protocol.HeaderFirmware, transporttest.Silence()) },
			check:   protocol.IsTimeout,
			headers: "F",
		},
		{
			name:    "reset rejected",
			setup:   func(c *transporttest.Controller) { c.Handle(protocol.HeaderReset, transporttest.Nack()) },
			check:   protocol.IsCommunicationError,
			headers: "FVR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ctrl := newTestHub(t)
			tt.setup(ctrl)

			err := h.Connect(context.Background())
			if !tt.check(err) {
				t.Fatalf("Connect() error = %v", err)
			}
			if h.Connected() {
				t.Error("Connected() = true after failed Connect()")
			}
			if got := ctrl.Headers(); got != tt.headers {
				t.Errorf("Headers() = %q, want %q", got, tt.headers)
			}
		})
	}
}

func TestConnectHonoursContext(t *testing.T) {
	ctrl := transporttest.New()
	cfg := testConfig()
	cfg.SettleDelay = time.Hour
	h := New(ctrl, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Connect(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Connect() error = %v, want context.Canceled", err)
	}
	if len(ctrl.Frames()) != 0 {
		t.Error("frames sent before the settle delay elapsed")
	}
}

func TestHandshakeSkipsSettle(t *testing.T) {
	ctrl := transporttest.New()
	cfg := testConfig()
	cfg.SettleDelay = time.Hour
	h := New(ctrl, cfg)

	done := make(chan error, 1)
	go func() { done <- h.Handshake() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Handshake() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Handshake() waited for the settle delay")
	}
	if got := ctrl.Headers(); got != "FVR" {
		t.Errorf("Headers() = %q, want FVR", got)
	}
	if !h.Connected() {
		t.Error("Connected() = false after Handshake()")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	h, ctrl := newTestHub(t)
	obs := &countingObserver{}
	h.Register(obs)
	hookRuns := 0
	h.OnReset(func() { hookRuns++ })

	if err := h.SetSequenceShape(5, 2); err != nil {
		t.Fatalf("SetSequenceShape() error = %v", err)
	}
	h.SelectTrigger(TriggerAux)
	if err := h.SetExposure(30); err != nil {
		t.Fatalf("SetExposure() error = %v", err)
	}
	resetsBefore := obs.resets

	if err := h.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if h.State() != DefaultState() {
		t.Errorf("State() = %+v, want defaults", h.State())
	}
	if h.Trigger() != DefaultTrigger {
		t.Errorf("Trigger() = %v, want %v", h.Trigger(), DefaultTrigger)
	}
	if obs.resets != resetsBefore+1 {
		t.Errorf("observer resets = %d, want %d", obs.resets, resetsBefore+1)
	}
	if hookRuns != 1 {
		t.Errorf("reset hook ran %d times, want 1", hookRuns)
	}

	// A rejected reset leaves everything as it was
	h.SelectTrigger(TriggerAux)
	ctrl.Handle(protocol.HeaderReset, transporttest.Nack())
	if err := h.Reset(); !protocol.IsCommunicationError(err) {
		t.Fatalf("Reset() error = %v", err)
	}
	if h.Trigger() != TriggerAux || hookRuns != 1 {
		t.Error("failed reset changed cached state")
	}
}

func TestShutdown(t *testing.T) {
	h, ctrl := newTestHub(t)

	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown() before Connect() error = %v", err)
	}
	if ctrl.Count(protocol.HeaderReset) != 0 {
		t.Error("Shutdown() sent a reset without a connection")
	}

	if err := h.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if ctrl.Count(protocol.HeaderReset) != 2 {
		t.Errorf("resets = %d, want 2 (connect + shutdown)", ctrl.Count(protocol.HeaderReset))
	}
	if h.Connected() {
		t.Error("Connected() = true after Close()")
	}
	if !ctrl.Closed() {
		t.Error("port not closed")
	}
}

func TestDetect(t *testing.T) {
	good := func(string) (transport.Port, error) { return transporttest.New(), nil }

	tests := []struct {
		name   string
		device string
		open   OpenFunc
		want   DetectionStatus
	}{
		{"empty", "", good, Misconfigured},
		{"undefined", "Undefined", good, Misconfigured},
		{"unknown", "UNKNOWN", good, Misconfigured},
		{"board", "/dev/ttyACM0", good, CanCommunicate},
		{
			name:   "open fails",
			device: "/dev/ttyACM0",
			open:   func(string) (transport.Port, error) { return nil, errors.New("busy") },
			want:   CanNotCommunicate,
		},
		{
			name:   "other firmware",
			device: "/dev/ttyACM0",
			open: func(string) (transport.Port, error) {
				c := transporttest.New()
				c.SetIdentity("GRBL")
				return c, nil
			},
			want: CanNotCommunicate,
		},
		{
			name:   "out of range version still answers",
			device: "/dev/ttyACM0",
			open: func(string) (transport.Port, error) {
				c := transporttest.New()
				c.SetVersion(9)
				return c, nil
			},
			want: CanCommunicate,
		},
		{
			name:   "panic",
			device: "/dev/ttyACM0",
			open:   func(string) (transport.Port, error) { panic("driver bug") },
			want:   CanNotCommunicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(context.Background(), tt.device, tt.open, testConfig())
			if got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectClosesPort(t *testing.T) {
	ctrl := transporttest.New()
	open := func(string) (transport.Port, error) { return ctrl, nil }

	if got := Detect(context.Background(), "COM3", open, testConfig()); got != CanCommunicate {
		t.Fatalf("Detect() = %v", got)
	}
	if !ctrl.Closed() {
		t.Error("Detect() left the port open")
	}
	if got := ctrl.Headers(); got != "FV" {
		t.Errorf("Headers() = %q, want FV", got)
	}
}
