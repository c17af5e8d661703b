package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openlightcontrol/arductl/internal/config"
	"github.com/openlightcontrol/arductl/internal/transport"
	"github.com/openlightcontrol/arductl/internal/ui"
)

var (
	configForce bool
	configTOML  bool
)

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configTOML, "toml", false, "Write config.toml instead of config.yaml")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage arductl settings",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the current values",
	Long: `Write the effective settings to the config file.

Without --port on a terminal, a list of serial ports is shown to pick from.`,
	Example: `  arductl config init --port /dev/ttyACM0
  arductl config init --toml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if settings.Serial.Port == "" && ui.IsTerminal() {
			port, err := ui.PickPort(transport.ListPorts)
			if err != nil {
				return err
			}
			settings.Serial.Port = port
		}
		if err := settings.Save(path); err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Settings written", map[string]string{
			"File": path,
			"Port": settings.Serial.Port,
		})
		return nil
	},
}

// initPath is --config when given, else config.yaml or config.toml in the
// config directory
func initPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	name := "config.yaml"
	if configTOML {
		name = "config.toml"
	}
	return filepath.Join(dir, name), nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}
		fmt.Printf("# %s\n", path)
		fmt.Print(settings.String())
		return nil
	},
}
