package protocol

import (
	"reflect"
	"testing"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		max     int
		want    []int
		wantErr bool
	}{
		{"empty", "", MaxAnalogValue, []int{}, false},
		{"single", "7", MaxAnalogValue, []int{7}, false},
		{"analog", "0-128-255", MaxAnalogValue, []int{0, 128, 255}, false},
		{"blanks tolerated", " 1 - 2 -3 ", MaxAnalogValue, []int{1, 2, 3}, false},
		{"digital", "0-1-1-0", MaxDigitalValue, []int{0, 1, 1, 0}, false},
		{"analog above range", "0-256", MaxAnalogValue, nil, true},
		{"negative", "0--1", MaxAnalogValue, nil, true},
		{"digital above range", "0-1-2", MaxDigitalValue, nil, true},
		{"not a number", "0-x-1", MaxDigitalValue, nil, true},
		{"empty step", "1--1", MaxDigitalValue, nil, true},
		{"trailing separator", "1-0-", MaxDigitalValue, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTable(tt.text, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTable(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if err != nil {
				if !IsInvalidValue(err) {
					t.Errorf("ParseTable(%q) error = %v, want invalid value", tt.text, err)
				}
				if got != nil {
					t.Errorf("ParseTable(%q) returned partial values %v", tt.text, got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTable(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScaleAnalog(t *testing.T) {
	values := []int{0, 1, 127, 128, 255}

	tests := []struct {
		amplitude int
		want      []int
	}{
		{255, []int{0, 1, 127, 128, 255}},
		{0, []int{0, 0, 0, 0, 0}},
		{128, []int{0, 0, 63, 64, 128}},
	}

	for _, tt := range tests {
		got := ScaleAnalog(values, tt.amplitude)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ScaleAnalog(amplitude=%d) = %v, want %v", tt.amplitude, got, tt.want)
		}
	}
}

func TestAnalogTablePayload(t *testing.T) {
	values := []int{0, 25, 50, 75, 100, 125, 150, 175, 200, 255}

	payload, err := AnalogTablePayload(1, values)
	if err != nil {
		t.Fatalf("AnalogTablePayload() error = %v", err)
	}
	want := "1" + "00" + "19" + "32" + "4b" + "64" + "7d" + "96" + "af" + "c8" + "ff"
	if string(payload) != want {
		t.Errorf("AnalogTablePayload() = %q, want %q", payload, want)
	}

	channel, decoded, err := DecodeAnalogTable(payload)
	if err != nil {
		t.Fatalf("DecodeAnalogTable() error = %v", err)
	}
	if channel != 1 || !reflect.DeepEqual(decoded, values) {
		t.Errorf("DecodeAnalogTable() = %d, %v, want 1, %v", channel, decoded, values)
	}

	if _, err := AnalogTablePayload(0, []int{300}); !IsInvalidValue(err) {
		t.Errorf("AnalogTablePayload(300) error = %v, want invalid value", err)
	}
}

func TestDigitalTablePayload(t *testing.T) {
	payload, err := DigitalTablePayload(3, []int{1, 0, 0, 1})
	if err != nil {
		t.Fatalf("DigitalTablePayload() error = %v", err)
	}
	if string(payload) != "31001" {
		t.Errorf("DigitalTablePayload() = %q, want %q", payload, "31001")
	}

	channel, values, err := DecodeDigitalTable(payload)
	if err != nil || channel != 3 || !reflect.DeepEqual(values, []int{1, 0, 0, 1}) {
		t.Errorf("DecodeDigitalTable() = %d, %v, %v", channel, values, err)
	}

	if _, err := DigitalTablePayload(0, []int{2}); !IsInvalidValue(err) {
		t.Errorf("DigitalTablePayload(2) error = %v, want invalid value", err)
	}
}

func TestDecodeTableErrors(t *testing.T) {
	if _, _, err := DecodeAnalogTable(nil); !IsParseError(err) {
		t.Errorf("DecodeAnalogTable(nil) error = %v", err)
	}
	if _, _, err := DecodeAnalogTable([]byte("1abc")); !IsParseError(err) {
		t.Errorf("DecodeAnalogTable(odd width) error = %v", err)
	}
	if _, _, err := DecodeDigitalTable([]byte("7")); !IsParseError(err) {
		t.Errorf("DecodeDigitalTable(bad channel) error = %v", err)
	}
}

func TestFormatTable(t *testing.T) {
	if got := FormatTable([]int{0, 25, 255}); got != "0-25-255" {
		t.Errorf("FormatTable() = %q", got)
	}
	if got := FormatTable(nil); got != "" {
		t.Errorf("FormatTable(nil) = %q, want empty", got)
	}
}
