// Package protocol implements the ArduControl serial command protocol.
//
// The controller is an Arduino-class board running the "MM-AC" firmware. It
// speaks a small framed ASCII protocol at 9600 baud. This package holds the
// pure parts of that protocol: wire constants, frame construction and
// parsing, payload encodings, modulation table codecs, and the error taxonomy
// shared by every layer above. Nothing here performs I/O.
//
// # Frame Format
//
// Every request is a single frame:
//
//	[0x01] START
//	[hdr]  command header, one ASCII letter (see Header* constants)
//	[...]  payload, fixed-width lowercase hex or '0'/'1' (may be empty)
//	[0x04] END
//
// A query frame has no payload. The controller acknowledges each frame with
// one byte, 0x06 (ACK) or 0x15 (NACK). Queries are followed, after ACK, by an
// ASCII answer line terminated with "\r\n".
//
// # Payload Encodings
//
//   - bool: '0' or '1'
//   - byte: 2 hex digits ("%02x")
//   - count: 4 hex digits ("%04x"), used by the acquire command
//   - duration: 8 hex digits ("%08x") holding microseconds
//   - channel payloads: one decimal channel digit followed by the value
//   - modulation tables: channel digit then one value per step, 2 hex digits
//     for analog steps and '0'/'1' for digital steps
//
// # Usage Example
//
//	frame := protocol.EncodeCommand(protocol.HeaderNSteps, protocol.BytePayload(5))
//	// frame == []byte{0x01, 'N', '0', '5', 0x04}
//
//	version, err := protocol.DecodeAnswerInt("2\r\n")
//
// # Errors
//
// All failures surface as *ControllerError values carrying an ErrorType.
// Use the IsXxx helpers rather than comparing messages.
package protocol
