package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// TableSeparator separates step values in the textual form of a modulation
// table, e.g. "0-128-255".
const TableSeparator = "-"

// Value ranges of the two table kinds
const (
	MaxAnalogValue  = 255
	MaxDigitalValue = 1
)

// ParseTable parses a dash-separated list of integers in 0..max. The whole
// table is validated before anything is returned; an empty string is an
// empty table.
func ParseTable(text string, max int) ([]int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []int{}, nil
	}

	fields := strings.Split(text, TableSeparator)
	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, NewInvalidValueError(fmt.Sprintf("step %d: %q is not an integer", i, field))
		}
		if v < 0 || v > max {
			return nil, NewInvalidValueError(fmt.Sprintf("step %d: %d out of range 0..%d", i, v, max))
		}
		values[i] = v
	}
	return values, nil
}

// ParseAnalogTable parses an analog table (values 0..255)
func ParseAnalogTable(text string) ([]int, error) {
	return ParseTable(text, MaxAnalogValue)
}

// ParseDigitalTable parses a digital table (values 0 or 1)
func ParseDigitalTable(text string) ([]int, error) {
	return ParseTable(text, MaxDigitalValue)
}

// FormatTable renders values in the dash-separated textual form
func FormatTable(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, TableSeparator)
}

// ScaleAnalog scales each value by amplitude/255 using integer arithmetic,
// so full amplitude leaves the table unchanged and zero amplitude zeroes it.
func ScaleAnalog(values []int, amplitude int) []int {
	scaled := make([]int, len(values))
	for i, v := range values {
		scaled[i] = v * amplitude / MaxAnalogValue
	}
	return scaled
}

// AnalogTablePayload encodes the channel digit followed by two hex digits per step
func AnalogTablePayload(channel int, values []int) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(values) * 2)
	for i, v := range values {
		if v < 0 || v > MaxAnalogValue {
			return nil, NewInvalidValueError(fmt.Sprintf("step %d: %d out of range 0..%d", i, v, MaxAnalogValue))
		}
		fmt.Fprintf(&b, "%02x", v)
	}
	return ChannelPayload(channel, []byte(b.String()))
}

// DigitalTablePayload encodes the channel digit followed by '0'/'1' per step
func DigitalTablePayload(channel int, values []int) ([]byte, error) {
	steps := make([]byte, len(values))
	for i, v := range values {
		switch v {
		case 0:
			steps[i] = '0'
		case 1:
			steps[i] = '1'
		default:
			return nil, NewInvalidValueError(fmt.Sprintf("step %d: %d is not 0 or 1", i, v))
		}
	}
	return ChannelPayload(channel, steps)
}

// DecodeAnalogTable splits an analog table payload into channel and step values
func DecodeAnalogTable(payload []byte) (int, []int, error) {
	channel, rest, err := splitChannel(payload)
	if err != nil {
		return 0, nil, err
	}
	if len(rest)%2 != 0 {
		return 0, nil, NewParseError(fmt.Sprintf("analog table of odd width %d", len(rest)), nil)
	}
	values := make([]int, len(rest)/2)
	for i := range values {
		v, err := DecodeHex(rest[2*i : 2*i+2])
		if err != nil {
			return 0, nil, err
		}
		values[i] = int(v)
	}
	return channel, values, nil
}

// DecodeDigitalTable splits a digital table payload into channel and step values
func DecodeDigitalTable(payload []byte) (int, []int, error) {
	channel, rest, err := splitChannel(payload)
	if err != nil {
		return 0, nil, err
	}
	values := make([]int, len(rest))
	for i, c := range rest {
		on, err := DecodeBool([]byte{c})
		if err != nil {
			return 0, nil, err
		}
		if on {
			values[i] = 1
		}
	}
	return channel, values, nil
}

func splitChannel(payload []byte) (int, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, NewParseError("missing channel digit", nil)
	}
	channel := int(payload[0]) - '0'
	if channel < 0 || channel > MaxChannel {
		return 0, nil, NewParseError(fmt.Sprintf("invalid channel digit %q", payload[0]), nil)
	}
	return channel, payload[1:], nil
}
