// Package transport provides the byte link to an ArduControl board.
//
// A Port is a duplex byte stream with an input purge. Reads are polling:
// a Read that times out returns (0, nil) so callers can check their own
// deadline and try again.
//
// Basic Usage:
//
//	port, err := transport.Open(transport.DefaultConfig("/dev/ttyACM0"))
//	if err != nil {
//		return err
//	}
//	defer port.Close()
//
// The serial implementation is backed by go.bug.st/serial. Tests use the
// scripted controller in package transporttest instead.
package transport
