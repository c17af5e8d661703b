// Package script runs batch files of controller commands.
//
// One statement per line, tokenized with shell quoting rules; blank lines
// and lines starting with # are skipped:
//
//	set hub NSteps 5
//	set P1 ModulationA "0-64-128-192-255"
//	get hub StepTime
//	modulate O1 pulse.json
//	acquire 10
//	wait 500ms
//	reset
//
// A run stops at the first failing statement.
package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/modfile"
)

// Statement is one parsed line
type Statement struct {
	Line int
	Text string
	Verb string
	Args []string
}

// LineError ties an error to its script line
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// argument counts per verb (min, max)
var verbs = map[string][2]int{
	"set":      {3, 3},
	"get":      {2, 2},
	"acquire":  {1, 1},
	"modulate": {2, 2},
	"wait":     {1, 1},
	"reset":    {0, 0},
}

// Parse reads a script and checks every statement's shape
func Parse(r io.Reader) ([]Statement, error) {
	var stmts []Statement
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		tokens, err := shlex.Split(text)
		if err != nil {
			return nil, &LineError{Line: line, Text: text, Err: err}
		}
		if len(tokens) == 0 {
			continue
		}

		st := Statement{Line: line, Text: text, Verb: strings.ToLower(tokens[0]), Args: tokens[1:]}
		limits, ok := verbs[st.Verb]
		if !ok {
			return nil, &LineError{Line: line, Text: text, Err: fmt.Errorf("unknown command %q", tokens[0])}
		}
		if len(st.Args) < limits[0] || len(st.Args) > limits[1] {
			return nil, &LineError{Line: line, Text: text, Err: fmt.Errorf("%s takes %d argument(s), got %d", st.Verb, limits[0], len(st.Args))}
		}
		stmts = append(stmts, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return stmts, nil
}

// Runner executes statements against one controller
type Runner struct {
	Hub     *hub.Hub
	Devices *devices.Set

	// Out receives the output of get statements
	Out io.Writer

	// Dir resolves relative modulation file paths
	Dir string
}

// Run executes stmts in order, stopping at the first error
func (r *Runner) Run(ctx context.Context, stmts []Statement) error {
	for _, st := range stmts {
		if err := ctx.Err(); err != nil {
			return &LineError{Line: st.Line, Text: st.Text, Err: err}
		}
		logging.Debug("Script statement", zap.Int("line", st.Line), zap.String("text", st.Text))
		if err := r.exec(ctx, st); err != nil {
			return &LineError{Line: st.Line, Text: st.Text, Err: err}
		}
	}
	return nil
}

func (r *Runner) exec(ctx context.Context, st Statement) error {
	switch st.Verb {
	case "set":
		return r.Devices.SetProperty(st.Args[0], st.Args[1], st.Args[2])

	case "get":
		value, err := r.Devices.Get(st.Args[0], st.Args[1])
		if err != nil {
			return err
		}
		if r.Out != nil {
			fmt.Fprintf(r.Out, "%s %s = %s\n", st.Args[0], st.Args[1], value)
		}
		return nil

	case "acquire":
		n, err := devices.ParseAcquireCount(st.Args[0])
		if err != nil {
			return err
		}
		return r.Hub.Acquire(n)

	case "modulate":
		m, err := r.Devices.Output(st.Args[0])
		if err != nil {
			return err
		}
		path := st.Args[1]
		if !filepath.IsAbs(path) && r.Dir != "" {
			path = filepath.Join(r.Dir, path)
		}
		f, err := modfile.Load(path)
		if err != nil {
			return err
		}
		return modfile.Apply(r.Hub, m, f)

	case "wait":
		d, err := ParseWait(st.Args[0])
		if err != nil {
			return err
		}
		return sleep(ctx, d)

	case "reset":
		return r.Hub.Reset()
	}
	return fmt.Errorf("unknown command %q", st.Verb)
}

// ParseWait accepts a Go duration ("1.5s") or a bare number of milliseconds
func ParseWait(s string) (time.Duration, error) {
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative wait %q", s)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid wait %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative wait %q", s)
	}
	return d, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
