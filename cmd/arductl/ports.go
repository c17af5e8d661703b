package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/openlightcontrol/arductl/internal/discovery"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/transport"
	"github.com/openlightcontrol/arductl/internal/ui"
)

var scanTimeout time.Duration

func init() {
	bridgesCmd.Flags().DurationVar(&scanTimeout, "timeout", discovery.DefaultScanTimeout, "How long to listen for answers")

	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(bridgesCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := transport.ListPorts()
		if err != nil {
			return err
		}
		p := ui.NewPrinter(os.Stdout)
		if len(ports) == 0 {
			p.PrintWarning("No serial ports found", nil)
			return nil
		}
		rows := make([][]string, 0, len(ports))
		for _, port := range ports {
			usb := ""
			if port.IsUSB {
				usb = port.VID + ":" + port.PID
			}
			rows = append(rows, []string{port.Name, usb, port.SerialNumber, port.Product})
		}
		p.PrintTable([]string{"PORT", "USB ID", "SERIAL", "PRODUCT"}, rows)
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [port...]",
	Short: "Scan ports for an ArduControl board",
	Long: `Open each port, wait for the board and ask for the firmware identity.

Without arguments the configured port is checked, or every serial port
when none is configured. Detection does not reset the controller.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates := args
		if len(candidates) == 0 && !transport.IsUndefinedPortName(settings.Serial.Port) {
			candidates = []string{settings.Serial.Port}
		}
		if len(candidates) == 0 {
			ports, err := transport.ListPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				candidates = append(candidates, p.Name)
			}
		}
		if len(candidates) == 0 {
			ui.NewPrinter(os.Stdout).PrintWarning("No serial ports found", nil)
			return nil
		}

		var found []string
		runner := ui.NewRunner(ui.RunnerConfig{
			Title:     "Detect",
			Command:   "arductl detect",
			Params:    map[string]string{"Ports": strconv.Itoa(len(candidates))},
			StepNames: candidates,
		})
		_, err := runner.Run(cmd.Context(), func(onStep ui.StepCallback) (map[string]string, error) {
			for i, name := range candidates {
				if cmd.Context().Err() != nil {
					onStep(i+1, "", ui.StepSkipped, "cancelled")
					continue
				}
				onStep(i+1, "", ui.StepRunning, "")
				status := hub.Detect(cmd.Context(), name, openConfigured, settings.HubConfig())
				if status == hub.CanCommunicate {
					found = append(found, name)
					onStep(i+1, "", ui.StepComplete, status.String())
				} else {
					onStep(i+1, "", ui.StepFailed, status.String())
				}
			}
			if len(found) == 0 {
				return nil, fmt.Errorf("no ArduControl board answered on %d port(s)", len(candidates))
			}
			details := make(map[string]string)
			for i, name := range found {
				details[fmt.Sprintf("Board %d", i+1)] = name
			}
			return details, nil
		})
		return err
	},
}

// openConfigured opens device with the configured link settings
func openConfigured(device string) (transport.Port, error) {
	tc := settings.TransportConfig()
	tc.Device = device
	return transport.Open(tc)
}

var bridgesCmd = &cobra.Command{
	Use:   "bridges",
	Short: "Find arductl-server bridges on the local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := discovery.NewScanner()
		scanner.Timeout = scanTimeout
		var bridges []*discovery.Bridge
		err := ui.RunWithSpinner("Browsing for "+discovery.ServiceType+" bridges...", func() error {
			var err error
			bridges, err = scanner.Scan(cmd.Context())
			return err
		})
		if err != nil {
			return err
		}

		p := ui.NewPrinter(os.Stdout)
		if len(bridges) == 0 {
			p.PrintWarning("No bridges found", map[string]string{"Timeout": scanTimeout.String()})
			return nil
		}
		rows := make([][]string, 0, len(bridges))
		for _, b := range bridges {
			fw := "-"
			if v := b.FirmwareVersion(); v > 0 {
				fw = "v" + strconv.Itoa(v)
			}
			rows = append(rows, []string{b.Instance, b.Hostname, b.BaseURL(), fw})
		}
		p.PrintTable([]string{"INSTANCE", "HOST", "URL", "FIRMWARE"}, rows)
		return nil
	},
}
