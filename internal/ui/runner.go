package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openlightcontrol/arductl/internal/transport"
)

// RunnerConfig describes one command run
type RunnerConfig struct {
	Title     string            // e.g. "Detect"
	Command   string            // e.g. "arductl detect"
	Params    map[string]string // shown in the header
	StepNames []string

	// Trace, when set, is printed after the result box
	Trace *transport.Recorder

	Output io.Writer // default os.Stdout
}

// Runner prints header, step progress and result for a controller operation
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// Operation does the work and reports steps through onStep. The returned
// details are shown in the success box.
type Operation func(onStep StepCallback) (map[string]string, error)

// NewRunner creates a runner sized to the terminal
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	r := &Runner{
		config: config,
		header: NewHeader(config.Title, config.Command, config.Params).SetWidth(width),
		output: config.Output,
		width:  width,
	}
	if len(config.StepNames) > 0 {
		r.progress = NewProgress(config.StepNames).SetWidth(width)
	}
	return r
}

// Run executes op and prints the outcome box. A cancelled ctx turns a
// successful op into ctx.Err().
func (r *Runner) Run(ctx context.Context, op Operation) (map[string]string, error) {
	start := time.Now()
	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := op(r.onStep)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		_, _ = fmt.Fprintln(r.output, NewFailureResult(r.config.Title+" failed", err, nil).SetWidth(r.width).Render())
	} else {
		if details == nil {
			details = make(map[string]string)
		}
		details["Duration"] = time.Since(start).Round(time.Millisecond).String()
		_, _ = fmt.Fprintln(r.output, NewSuccessResult(r.config.Title+" complete", details).SetWidth(r.width).Render())
	}

	if r.config.Trace != nil {
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, NewTraceBox(r.config.Trace.Records()).SetWidth(r.width).Render())
	}
	return details, err
}

func (r *Runner) onStep(n int, name string, status StepStatus, message string) {
	if r.progress == nil || n < 1 || n > r.progress.Total() {
		return
	}
	if name != "" {
		r.progress.Steps[n-1].Name = name
	}
	r.progress.UpdateStep(n, status, message)

	line := r.progress.RenderStep(r.progress.Steps[n-1])
	if status == StepRunning {
		// overwritten when the step finishes
		_, _ = fmt.Fprint(r.output, line+"\r")
		return
	}
	_, _ = fmt.Fprintln(r.output, line)
}
