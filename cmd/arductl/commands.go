package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/modfile"
	"github.com/openlightcontrol/arductl/internal/script"
	"github.com/openlightcontrol/arductl/internal/ui"
)

func init() {
	for _, cmd := range []*cobra.Command{setCmd, modulateCmd, acquireCmd, runCmd} {
		cmd.Flags().BoolVar(&hold, "hold", false, "Keep the port open (and the controller state) until Ctrl-C")
	}
	modulateCmd.Flags().StringVar(&modulateSave, "save", "", "Write the applied modulation back to this file")
	modulateCmd.Flags().BoolVar(&modulateClear, "clear", false, "Clear the sequence before applying")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(modulateCmd)
	rootCmd.AddCommand(acquireCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(runCmd)
}

var (
	modulateSave  string
	modulateClear bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show every device property after a reset",
	Long: `Connect to the controller and list the properties of every device.

Values are the defaults the controller takes after the connect reset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows [][]string
		err := controllerCommand(cmd.Context(), "Controller Info", "arductl info", []string{"Read properties"},
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				onStep(n, "", ui.StepRunning, "")
				for _, d := range s.devices.Devices() {
					values := devices.Snapshot(d)
					for _, name := range devices.PropertyNames(d) {
						rows = append(rows, []string{d.Name(), name, values[name]})
					}
				}
				onStep(n, "", ui.StepComplete, fmt.Sprintf("%d devices", len(s.devices.Devices())))
				return map[string]string{"Firmware": fmt.Sprintf("v%d", s.hub.Version())}, nil
			})
		if err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).PrintTable([]string{"DEVICE", "PROPERTY", "VALUE"}, rows)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <device> [property]",
	Short: "Read device properties",
	Example: `  arductl get hub StepTime
  arductl get P1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controllerCommand(cmd.Context(), "Get", "arductl get "+strings.Join(args, " "), []string{"Read property"},
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				onStep(n, "", ui.StepRunning, "")
				d, err := s.devices.Lookup(args[0])
				if err != nil {
					onStep(n, "", ui.StepFailed, "")
					return nil, err
				}
				values := devices.Snapshot(d)
				if len(args) == 2 {
					p, err := d.Property(args[1])
					if err != nil {
						onStep(n, "", ui.StepFailed, "")
						return nil, err
					}
					values = map[string]string{p.Name: p.Get()}
				}
				onStep(n, "", ui.StepComplete, d.Name())
				return values, nil
			})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <device> <property> <value> [<property> <value>...]",
	Short: "Change device properties",
	Long: `Connect, reset and apply property changes in the order given.

The controller returns to its defaults when arductl exits; use --hold to
keep the new state while the port stays open.`,
	Example: `  arductl set hub NFrames 1 NSteps 5 Exposure 2.5
  arductl set P1 ModulationA 0-64-128-192-255 --hold
  arductl set trigger Label CamFire1`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 3 || (len(args)-1)%2 != 0 {
			return fmt.Errorf("want a device followed by property/value pairs, got %d argument(s)", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := args[1:]
		return controllerCommand(cmd.Context(), "Set", "arductl set "+strings.Join(args, " "), []string{"Apply properties"},
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				details := make(map[string]string)
				for i := 0; i < len(pairs); i += 2 {
					onStep(n, "", ui.StepRunning, pairs[i])
					if err := s.devices.SetProperty(args[0], pairs[i], pairs[i+1]); err != nil {
						onStep(n, "", ui.StepFailed, pairs[i])
						return nil, fmt.Errorf("%s %s: %w", args[0], pairs[i], err)
					}
					value, err := s.devices.Get(args[0], pairs[i])
					if err != nil {
						return nil, err
					}
					details[pairs[i]] = value
				}
				onStep(n, "", ui.StepComplete, fmt.Sprintf("%d change(s)", len(pairs)/2))
				return details, nil
			})
	},
}

var modulateCmd = &cobra.Command{
	Use:   "modulate <output> <file>",
	Short: "Load a modulation file onto an output",
	Long: `Load a JSON or YAML modulation file onto one output channel.

File format:

  {"nframes": 1, "nsteps": 5, "analog": "0-64-128-192-255", "digital": "1-1-0-0-1"}

When the controller has no sequence the shape is taken from the file.`,
	Example: `  arductl modulate P1 ramp.json --hold
  arductl modulate O2 pulse.yaml --save pulse.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := modfile.Load(args[1])
		if err != nil {
			return err
		}
		steps := []string{"Apply modulation"}
		if modulateSave != "" {
			steps = append(steps, "Save modulation")
		}
		return controllerCommand(cmd.Context(), "Modulate", "arductl modulate "+strings.Join(args, " "), steps,
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				m, err := s.devices.Output(args[0])
				if err != nil {
					onStep(n, "", ui.StepFailed, "")
					return nil, err
				}
				onStep(n, "", ui.StepRunning, m.Name())
				if modulateClear {
					if err := modfile.Clear(s.hub); err != nil {
						onStep(n, "", ui.StepFailed, "clear")
						return nil, err
					}
				}
				if err := modfile.Apply(s.hub, m, f); err != nil {
					onStep(n, "", ui.StepFailed, "")
					return nil, err
				}
				onStep(n, "", ui.StepComplete, fmt.Sprintf("%d x %d", f.NFrames, f.NSteps))

				details := map[string]string{
					"Output":   m.Name(),
					"Shape":    fmt.Sprintf("%d frames x %d steps", f.NFrames, f.NSteps),
					"StepTime": strconv.FormatFloat(s.hub.State().StepTimeMs, 'f', -1, 64) + " ms",
				}
				if modulateSave != "" {
					onStep(n+1, "", ui.StepRunning, modulateSave)
					if err := modfile.Save(modulateSave, modfile.Export(s.hub, m)); err != nil {
						onStep(n+1, "", ui.StepFailed, "")
						return nil, err
					}
					onStep(n+1, "", ui.StepComplete, modulateSave)
					details["Saved"] = modulateSave
				}
				return details, nil
			})
	},
}

var acquireCmd = &cobra.Command{
	Use:   "acquire <frames|continuous|stop>",
	Short: "Start or stop an acquisition on the internal trigger",
	Example: `  arductl acquire 100 --hold
  arductl acquire continuous --hold`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frames, err := devices.ParseAcquireCount(args[0])
		if err != nil {
			return err
		}
		return controllerCommand(cmd.Context(), "Acquire", "arductl acquire "+args[0], []string{"Start acquisition"},
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				onStep(n, "", ui.StepRunning, args[0])
				if err := s.hub.Acquire(frames); err != nil {
					onStep(n, "", ui.StepFailed, "")
					return nil, err
				}
				onStep(n, "", ui.StepComplete, describeAcquire(frames))
				return map[string]string{"Acquire": describeAcquire(frames)}, nil
			})
	},
}

func describeAcquire(frames int) string {
	switch {
	case frames == 0:
		return "stopped"
	case frames == hub.AcquireContinuous:
		return "continuous"
	default:
		return fmt.Sprintf("%d frames", frames)
	}
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the controller to its defaults",
	Long: `Reset the controller: sequence, tables, trigger and gates return to
their defaults and any running acquisition stops.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !assumeYes && !ui.ConfirmReset(os.Stdin, os.Stdout, settings.Serial.Port) {
			fmt.Println("Aborted.")
			return nil
		}
		// connect already resets; a second reset confirms the link is healthy
		return controllerCommand(cmd.Context(), "Reset", "arductl reset", []string{"Reset controller"},
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				onStep(n, "", ui.StepRunning, "")
				if err := s.hub.Reset(); err != nil {
					onStep(n, "", ui.StepFailed, "")
					return nil, err
				}
				onStep(n, "", ui.StepComplete, "")
				return map[string]string{"Trigger": s.hub.Trigger().String()}, nil
			})
	},
}

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a batch file of controller commands",
	Long: `Run a script against one connection. One statement per line:

  set <device> <property> <value>
  get <device> <property>
  modulate <output> <file>
  acquire <frames|continuous|stop>
  wait <duration>
  reset

Lines starting with # are comments. Modulation file paths are relative to
the script. The run stops at the first failing line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		stmts, err := script.Parse(file)
		file.Close()
		if err != nil {
			return err
		}

		return controllerCommand(cmd.Context(), "Run Script", "arductl run "+args[0], []string{"Run script"},
			func(s *session, onStep ui.StepCallback, n int) (map[string]string, error) {
				onStep(n, "", ui.StepComplete, fmt.Sprintf("%d statement(s)", len(stmts)))
				runner := &script.Runner{
					Hub:     s.hub,
					Devices: s.devices,
					Out:     os.Stdout,
					Dir:     filepath.Dir(args[0]),
				}
				if err := runner.Run(cmd.Context(), stmts); err != nil {
					return nil, err
				}
				return map[string]string{"Statements": strconv.Itoa(len(stmts))}, nil
			})
	},
}
