// Package config manages the arductl settings file.
//
// The settings hold tool preferences only: which serial port to use, link
// timing, bridge listen address and log level. Controller state is never
// persisted; every connection starts from a reset.
//
// # Configuration File Location
//
// The file is looked up in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/arductl/config.yaml or $HOME/.config/arductl/config.yaml
//   - macOS: $HOME/.config/arductl/config.yaml
//   - Windows: %LOCALAPPDATA%\arductl\config.yaml
//
// A config.toml in the same directory is used when no config.yaml exists.
// The format of an explicit path is chosen by its extension.
//
// # Usage Example
//
//	settings, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	h := hub.New(port, settings.HubConfig())
package config
