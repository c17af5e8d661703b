package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport"
	"github.com/openlightcontrol/arductl/internal/ui"
)

// connectSteps are the progress lines every controller command starts with
var connectSteps = []string{"Open port", "Wait for board", "Identify and reset"}

// session is one connected controller
type session struct {
	hub      *hub.Hub
	devices  *devices.Set
	recorder *transport.Recorder
}

// connect opens the configured port and brings the controller to its
// defaults, reporting connectSteps through onStep
func connect(ctx context.Context, recorder *transport.Recorder, onStep ui.StepCallback) (*session, error) {
	tc := settings.TransportConfig()
	if transport.IsUndefinedPortName(tc.Device) {
		onStep(1, "", ui.StepFailed, "no port")
		return nil, protocol.NewIOError("no serial port given (use --port or set serial.port in the config file)", nil)
	}

	onStep(1, "", ui.StepRunning, tc.Device)
	port, err := transport.Open(tc)
	if err != nil {
		onStep(1, "", ui.StepFailed, "")
		return nil, err
	}
	onStep(1, "", ui.StepComplete, tc.Device)

	var p transport.Port = port
	if recorder != nil {
		recorder.Port = port
		p = recorder
	}
	h := hub.New(p, settings.HubConfig())
	set := devices.Install(h)

	onStep(2, "", ui.StepRunning, settings.HubConfig().SettleDelay.String())
	if err := h.Settle(ctx); err != nil {
		onStep(2, "", ui.StepFailed, "")
		_ = h.Close()
		return nil, err
	}
	onStep(2, "", ui.StepComplete, settings.HubConfig().SettleDelay.String())

	onStep(3, "", ui.StepRunning, "")
	if err := h.Handshake(); err != nil {
		onStep(3, "", ui.StepFailed, "")
		_ = h.Close()
		return nil, err
	}
	onStep(3, "", ui.StepComplete, fmt.Sprintf("%s v%d", protocol.FirmwareID, h.Version()))

	return &session{hub: h, devices: set, recorder: recorder}, nil
}

// close resets the controller and releases the port. With --hold it first
// waits for ctx to end.
func (s *session) close(ctx context.Context) error {
	if hold {
		fmt.Println()
		fmt.Println(ui.StepNoteStyle.Render("  Holding controller state, press Ctrl-C to release"))
		<-ctx.Done()
	}
	return s.hub.Close()
}

// newRecorder returns a recorder when --trace is set, nil otherwise. The
// port is attached by connect.
func newRecorder() *transport.Recorder {
	if !trace {
		return nil
	}
	return &transport.Recorder{}
}

// controllerCommand runs op on a connected controller inside a Runner.
// op gets the step number after the connect steps.
func controllerCommand(ctx context.Context, title, command string, extraSteps []string,
	op func(s *session, onStep ui.StepCallback, first int) (map[string]string, error)) error {

	recorder := newRecorder()
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:     title,
		Command:   command,
		Params:    map[string]string{"Port": settings.Serial.Port, "Baud": strconv.Itoa(settings.Serial.BaudRate)},
		StepNames: append(append([]string{}, connectSteps...), extraSteps...),
		Trace:     recorder,
	})

	_, err := runner.Run(ctx, func(onStep ui.StepCallback) (map[string]string, error) {
		s, err := connect(ctx, recorder, onStep)
		if err != nil {
			return nil, err
		}
		details, opErr := op(s, onStep, len(connectSteps)+1)
		if opErr != nil {
			_ = s.hub.Close()
			return nil, opErr
		}
		return details, s.close(ctx)
	})
	return err
}
