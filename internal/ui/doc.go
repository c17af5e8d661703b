// Package ui renders arductl's terminal output.
//
// Output follows a "run once and exit" pattern: each command prints a
// header, reports progress while it talks to the controller, and ends with
// a success or failure box. The interactive parts are the reset
// confirmation prompt and the serial port picker of 'arductl config init'.
//
// # Components
//
//   - Header: command banner with the port and other parameters
//   - Progress: step list with a bubbles progress bar
//   - Result: success, failure and warning boxes; failures carry the
//     troubleshooting hints of the controller error
//   - TraceBox: the recorded wire traffic, one line per frame (--trace)
//   - PortPickerModel: list of serial ports with manual entry (PickPort)
//   - SpinnerModel: spinner around a blocking call (RunWithSpinner)
//
// Runner ties them together for connect-style operations:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Detect",
//	    Command:   "arductl detect",
//	    Params:    map[string]string{"Port": "/dev/ttyACM0"},
//	    StepNames: []string{"Open port", "Wait for board", "Identify firmware"},
//	})
//	details, err := runner.Run(ctx, func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    ...
//	})
//
// # Logging Integration
//
// zap logging is silent unless ARDUCTL_LOG_LEVEL or --log-level is set, so
// the styled output is not interleaved with log lines by default.
package ui
