package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BoolPayload encodes a boolean as '0' or '1'
func BoolPayload(v bool) []byte {
	if v {
		return []byte{'1'}
	}
	return []byte{'0'}
}

// BytePayload encodes a byte as 2 lowercase hex digits
func BytePayload(v uint8) []byte {
	return []byte(fmt.Sprintf("%02x", v))
}

// CountPayload encodes a 16-bit count as 4 lowercase hex digits
func CountPayload(v uint16) []byte {
	return []byte(fmt.Sprintf("%04x", v))
}

// DurationPayload encodes a 32-bit microsecond duration as 8 lowercase hex digits
func DurationPayload(us uint32) []byte {
	return []byte(fmt.Sprintf("%08x", us))
}

// ChannelPayload prefixes an encoded value with a one-digit channel index.
func ChannelPayload(channel int, value []byte) ([]byte, error) {
	if err := ValidateChannel(channel); err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(value)+1)
	payload = append(payload, byte('0'+channel))
	return append(payload, value...), nil
}

// ValidateChannel checks a channel index against 0..MaxChannel
func ValidateChannel(channel int) error {
	if channel < 0 || channel > MaxChannel {
		return NewInvalidValueError(fmt.Sprintf("channel %d out of range 0..%d", channel, MaxChannel))
	}
	return nil
}

// MillisToMicros converts a millisecond duration into the microsecond value
// sent on the wire, rounding to the nearest microsecond. Negative, NaN and
// values that overflow 32 bits are rejected.
func MillisToMicros(ms float64) (uint32, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		return 0, NewInvalidValueError(fmt.Sprintf("duration %v ms must be a non-negative number", ms))
	}
	us := math.Floor(ms*1000 + 0.5)
	if us > math.MaxUint32 {
		return 0, NewInvalidValueError(fmt.Sprintf("duration %v ms too large", ms))
	}
	return uint32(us), nil
}

// DecodeHex parses a fixed-width hex payload (byte, count or duration) back
// into its value.
func DecodeHex(payload []byte) (uint32, error) {
	switch len(payload) {
	case 2, 4, 8:
	default:
		return 0, NewParseError(fmt.Sprintf("hex payload of width %d", len(payload)), nil)
	}
	v, err := strconv.ParseUint(string(payload), 16, 32)
	if err != nil {
		return 0, NewParseError(fmt.Sprintf("invalid hex payload %q", payload), err)
	}
	return uint32(v), nil
}

// DecodeBool parses a '0'/'1' payload
func DecodeBool(payload []byte) (bool, error) {
	if len(payload) == 1 {
		switch payload[0] {
		case '0':
			return false, nil
		case '1':
			return true, nil
		}
	}
	return false, NewParseError(fmt.Sprintf("invalid bool payload %q", payload), nil)
}

// DecodeAnswerInt parses a decimal integer from an answer line. The line may
// still carry its "\r\n" delimiter and surrounding blanks.
func DecodeAnswerInt(text string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(text, AnswerDelimiter))
	if trimmed == "" {
		return 0, NewParseError("empty answer", nil)
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, NewParseError(fmt.Sprintf("answer %q is not an integer", trimmed), err)
	}
	return v, nil
}
