package transport

import (
	"bytes"
	"testing"

	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport/transporttest"
)

func TestRecorder(t *testing.T) {
	ctrl := transporttest.New()
	rec := NewRecorder(ctrl)

	frame := protocol.EncodeCommand(protocol.HeaderNSteps, protocol.BytePayload(5))
	if _, err := rec.Write(frame); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	buf := make([]byte, 8)
	n, err := rec.Read(buf)
	if err != nil || n != 1 || buf[0] != protocol.ACK {
		t.Fatalf("Read() = %d, %v (%x), want ACK", n, err, buf[:n])
	}

	// An empty poll is not recorded
	if n, _ := rec.Read(buf); n != 0 {
		t.Fatalf("second Read() = %d bytes, want 0", n)
	}

	records := rec.Records()
	if len(records) != 2 {
		t.Fatalf("len(Records()) = %d, want 2", len(records))
	}
	if records[0].Direction != DirectionTX || !bytes.Equal(records[0].Data, frame) {
		t.Errorf("records[0] = %s %x, want tx %x", records[0].Direction, records[0].Data, frame)
	}
	if records[1].Direction != DirectionRX || !bytes.Equal(records[1].Data, []byte{protocol.ACK}) {
		t.Errorf("records[1] = %s %x, want rx 06", records[1].Direction, records[1].Data)
	}

	frame[1] = 'Z'
	if rec.Records()[0].Data[1] != protocol.HeaderNSteps {
		t.Error("Records() should hold a copy of the written bytes")
	}

	rec.Reset()
	if len(rec.Records()) != 0 {
		t.Error("Reset() should clear records")
	}
}
