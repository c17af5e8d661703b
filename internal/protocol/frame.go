package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrShortFrame is returned when a frame is shorter than START+header+END
	ErrShortFrame = errors.New("frame too short")
	// ErrBadMarkers is returned when a frame does not start with START or end with END
	ErrBadMarkers = errors.New("frame markers missing")
)

// Frame is a decoded request frame
type Frame struct {
	Header  byte
	Payload []byte
}

// EncodeCommand wraps header and payload in START/END markers.
//
// Frame Structure:
//
//	[0]     0x01      START
//	[1]     header    command letter
//	[2..n]  payload   pre-encoded ASCII payload (may be empty)
//	[n+1]   0x04      END
//
// A nil or empty payload produces a header-only frame.
func EncodeCommand(header byte, payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+3)
	frame = append(frame, StartMarker, header)
	frame = append(frame, payload...)
	frame = append(frame, EndMarker)
	return frame
}

// EncodeQuery builds a header-only frame for a command that is answered with
// a text line.
func EncodeQuery(header byte) []byte {
	return []byte{StartMarker, header, EndMarker}
}

// parseFrame decodes a single complete frame. The payload aliases data.
func parseFrame(data []byte) (Frame, error) {
	if len(data) < 3 {
		return Frame{}, ErrShortFrame
	}
	if data[0] != StartMarker || data[len(data)-1] != EndMarker {
		return Frame{}, ErrBadMarkers
	}
	return Frame{Header: data[1], Payload: data[2 : len(data)-1]}, nil
}

// SplitFrames cuts a byte stream into complete frames, returning the frames
// and any trailing partial data. Bytes before a START marker are dropped.
func SplitFrames(stream []byte) ([]Frame, []byte) {
	var frames []Frame
	for {
		start := bytes.IndexByte(stream, StartMarker)
		if start < 0 {
			return frames, nil
		}
		stream = stream[start:]
		end := bytes.IndexByte(stream, EndMarker)
		if end < 0 {
			return frames, stream
		}
		if f, err := parseFrame(stream[:end+1]); err == nil {
			frames = append(frames, f)
		}
		stream = stream[end+1:]
	}
}

// String returns a readable representation such as "NSteps(N) 05"
func (f Frame) String() string {
	if len(f.Payload) == 0 {
		return fmt.Sprintf("%s(%c)", HeaderName(f.Header), f.Header)
	}
	payload := string(f.Payload)
	if len(payload) > 40 {
		payload = payload[:40] + "..."
	}
	return fmt.Sprintf("%s(%c) %s", HeaderName(f.Header), f.Header, payload)
}

// Bytes re-encodes the frame
func (f Frame) Bytes() []byte {
	return EncodeCommand(f.Header, f.Payload)
}
