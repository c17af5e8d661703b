package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		header  byte
		payload []byte
		want    []byte
	}{
		{
			name:   "header only",
			header: HeaderReset,
			want:   []byte{0x01, 'R', 0x04},
		},
		{
			name:    "byte payload",
			header:  HeaderNSteps,
			payload: BytePayload(5),
			want:    []byte{0x01, 'N', '0', '5', 0x04},
		},
		{
			name:    "bool payload",
			header:  HeaderEnable,
			payload: BoolPayload(true),
			want:    []byte{0x01, 'H', '1', 0x04},
		},
		{
			name:    "duration payload",
			header:  HeaderExposure,
			payload: DurationPayload(10000),
			want:    append(append([]byte{0x01, 'E'}, []byte("00002710")...), 0x04),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeCommand(tt.header, tt.payload)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeQuery(t *testing.T) {
	got := EncodeQuery(HeaderFirmware)
	want := []byte{StartMarker, 'F', EndMarker}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeQuery() = %v, want %v", got, want)
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantErr     error
		wantHeader  byte
		wantPayload string
	}{
		{"command", []byte{0x01, 'I', '2', 'f', 'f', 0x04}, nil, HeaderAmplitude, "2ff"},
		{"query", []byte{0x01, 'V', 0x04}, nil, HeaderVersion, ""},
		{"too short", []byte{0x01, 0x04}, ErrShortFrame, 0, ""},
		{"no start", []byte{'N', '0', '5', 0x04}, ErrBadMarkers, 0, ""},
		{"no end", []byte{0x01, 'N', '0', '5'}, ErrBadMarkers, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseFrame(tt.data)
			if err != tt.wantErr {
				t.Fatalf("parseFrame() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if f.Header != tt.wantHeader {
				t.Errorf("Header = %c, want %c", f.Header, tt.wantHeader)
			}
			if string(f.Payload) != tt.wantPayload {
				t.Errorf("Payload = %q, want %q", f.Payload, tt.wantPayload)
			}
		})
	}
}

func TestSplitFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, 'x', 'y') // line noise before the first frame
	stream = append(stream, EncodeCommand(HeaderNSteps, BytePayload(5))...)
	stream = append(stream, EncodeQuery(HeaderVersion)...)
	stream = append(stream, StartMarker, HeaderGate, '1')

	frames, rest := SplitFrames(stream)
	if len(frames) != 2 {
		t.Fatalf("SplitFrames() returned %d frames, want 2", len(frames))
	}
	if frames[0].Header != HeaderNSteps || string(frames[0].Payload) != "05" {
		t.Errorf("frames[0] = %v", frames[0])
	}
	if frames[1].Header != HeaderVersion || len(frames[1].Payload) != 0 {
		t.Errorf("frames[1] = %v", frames[1])
	}
	if !bytes.Equal(rest, []byte{StartMarker, HeaderGate, '1'}) {
		t.Errorf("rest = %v, want partial gate frame", rest)
	}
}

func TestFrameString(t *testing.T) {
	f := Frame{Header: HeaderNSteps, Payload: []byte("05")}
	if got := f.String(); got != "NSteps(N) 05" {
		t.Errorf("String() = %q, want %q", got, "NSteps(N) 05")
	}
	q := Frame{Header: HeaderFirmware}
	if got := q.String(); got != "Firmware(F)" {
		t.Errorf("String() = %q, want %q", got, "Firmware(F)")
	}
}

func TestHeaderName(t *testing.T) {
	if got := HeaderName('Z'); got != "Unknown(Z)" {
		t.Errorf("HeaderName('Z') = %q", got)
	}
	if IsKnownHeader('Z') {
		t.Error("IsKnownHeader('Z') = true, want false")
	}
	if !IsKnownHeader(HeaderWaitAfter) {
		t.Error("IsKnownHeader('X') = false, want true")
	}
}
