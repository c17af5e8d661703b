// Arductl-server holds one ArduControl controller open and serves its
// device properties over HTTP and WebSocket.
//
// The bridge is advertised over mDNS as _arductl._tcp so 'arductl bridges'
// can find it. The controller is reset when the server stops.
//
// Usage:
//
//	arductl-server [flags]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openlightcontrol/arductl/internal/bridge"
	"github.com/openlightcontrol/arductl/internal/config"
	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/discovery"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/logging"
	"github.com/openlightcontrol/arductl/internal/transport"
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

var (
	configPath  string
	portName    string
	host        string
	listenPort  int
	noAdvertise bool
	instance    string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "arductl-server",
	Short: "ArduControl property bridge",
	Long: `Serve the devices of one ArduControl controller to the network.

Endpoints:
  GET /devices         snapshot of every device
  GET /devices/{name}  one device
  GET /ws              WebSocket property protocol (list, get, set)

Defaults come from the arductl config file; flags override them.`,
	Example: `  # Serve /dev/ttyACM0 on the default port
  arductl-server --port /dev/ttyACM0

  # Loopback only, no mDNS
  arductl-server --port COM3 --host 127.0.0.1 --no-advertise --log-level debug`,
	Version:      version.Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runServer,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (default: platform config dir)")
	rootCmd.Flags().StringVarP(&portName, "port", "p", "", "Serial port of the controller")
	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (default from config, 0.0.0.0)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 0, "Listen port (default from config, 8780)")
	rootCmd.Flags().BoolVar(&noAdvertise, "no-advertise", false, "Do not announce the bridge over mDNS")
	rootCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (default arductl-<hostname>)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		s.Serial.Port = portName
	}
	if cmd.Flags().Changed("host") {
		s.Bridge.Host = host
	}
	if cmd.Flags().Changed("listen-port") {
		s.Bridge.Port = listenPort
	}
	if cmd.Flags().Changed("instance") {
		s.Bridge.Instance = instance
	}
	if noAdvertise {
		s.Bridge.Advertise = false
	}
	if cmd.Flags().Changed("log-level") {
		s.LogLevel = logLevel
	}
	if s.LogLevel == "" {
		// a server without logs is hard to operate
		s.LogLevel = "info"
	}
	return s, s.Validate()
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := logging.Initialize(settings.LogLevel); err != nil {
		return err
	}
	logging.Info("Starting", zap.String("version", version.Banner("arductl-server")))

	port, err := transport.Open(settings.TransportConfig())
	if err != nil {
		return err
	}
	h := hub.New(port, settings.HubConfig())
	set := devices.Install(h)
	defer func() {
		if err := h.Close(); err != nil {
			logging.Warn("Controller shutdown failed", zap.Error(err))
		}
	}()

	if err := h.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", settings.Serial.Port, err)
	}

	srv := bridge.New(&bridge.Config{Host: settings.Bridge.Host, Port: settings.Bridge.Port}, set)
	if err := srv.Listen(); err != nil {
		return err
	}

	if settings.Bridge.Advertise {
		adv, err := discovery.Advertise(settings.Bridge.Instance, settings.Bridge.Port, map[string]string{
			"fw":      strconv.Itoa(h.Version()),
			"devices": strconv.Itoa(len(set.Devices())),
			"path":    discovery.DefaultPath,
		})
		if err != nil {
			// the bridge is still reachable by address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	return srv.Serve(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Banner("arductl-server"))
	},
}
