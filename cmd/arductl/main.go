// Arductl drives an ArduControl illumination/trigger controller over its
// serial link.
//
// Each command opens the port, waits for the board to boot, checks the
// firmware and resets the controller before doing its work. The controller
// is reset again on exit unless --hold keeps the port open until Ctrl-C.
//
// Usage:
//
//	arductl [command] [flags]
//
// See 'arductl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openlightcontrol/arductl/internal/config"
	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	portName   string
	baudRate   int
	configPath string
	logLevel   string
	trace      bool
	assumeYes  bool
	hold       bool

	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "arductl",
	Short: "ArduControl controller utility",
	Long: `Command-line control for ArduControl illumination and trigger boards.

The board is reached over USB serial at 9600 baud. Settings such as the
default port live in the arductl config file (see 'arductl config show').`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port (default from config)")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 0, "Baud rate (default from config, 9600)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Print the serial traffic after the command")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(versionCmd)
}

// loadSettings reads the config file and applies flag overrides
func loadSettings(cmd *cobra.Command, args []string) error {
	s, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		s.Serial.Port = portName
	}
	if cmd.Flags().Changed("baud") {
		s.Serial.BaudRate = baudRate
	}
	if cmd.Flags().Changed("log-level") {
		s.LogLevel = logLevel
	}
	if err := logging.Initialize(s.LogLevel); err != nil {
		return err
	}
	settings = s
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner("arductl"))
	},
}
