// Package discovery finds arductl bridges on the local network over mDNS.
//
// Controllers themselves sit on a serial line and cannot be discovered
// this way; arductl-server announces the bridge that fronts one. The
// service type is "_arductl._tcp" and the TXT record carries the
// firmware version and device count:
//
//	fw=2 devices=7 path=/ws
//
// # Usage Example
//
//	// On the server
//	adv, err := discovery.Advertise("lab-rig", 8780, map[string]string{"fw": "2"})
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	// On a client
//	bridges, err := discovery.NewScanner().Scan(ctx)
//
// # Network Requirements
//
//   - Requires multicast support on the network interface
//   - Bridges must be on the same local network segment
//   - Firewall must allow mDNS (UDP port 5353)
package discovery
