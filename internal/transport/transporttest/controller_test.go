package transporttest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/openlightcontrol/arductl/internal/protocol"
)

func readAll(t *testing.T, c *Controller) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 16)
	for {
		n, err := c.Read(buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if n == 0 {
			return out
		}
		out = append(out, buf[:n]...)
	}
}

func TestControllerDefaults(t *testing.T) {
	c := New()

	c.Write(protocol.EncodeQuery(protocol.HeaderFirmware))
	if got := readAll(t, c); string(got) != "\x06MM-AC\r\n" {
		t.Errorf("firmware reply = %q", got)
	}

	c.Write(protocol.EncodeQuery(protocol.HeaderVersion))
	if got := readAll(t, c); string(got) != "\x062\r\n" {
		t.Errorf("version reply = %q", got)
	}

	c.Write(protocol.EncodeCommand(protocol.HeaderExposure, protocol.DurationPayload(10000)))
	if got := readAll(t, c); !bytes.Equal(got, []byte{protocol.ACK}) {
		t.Errorf("command reply = %x, want 06", got)
	}

	if c.Headers() != "FVE" {
		t.Errorf("Headers() = %q, want FVE", c.Headers())
	}
	f, ok := c.Last(protocol.HeaderExposure)
	if !ok || string(f.Payload) != "00002710" {
		t.Errorf("Last(E) = %v, %v", f, ok)
	}
}

func TestControllerSplitWrites(t *testing.T) {
	c := New()
	frame := protocol.EncodeCommand(protocol.HeaderNSteps, protocol.BytePayload(5))
	c.Write(frame[:2])
	if c.Count(protocol.HeaderNSteps) != 0 {
		t.Fatal("partial frame should not be answered")
	}
	c.Write(frame[2:])
	if c.Count(protocol.HeaderNSteps) != 1 {
		t.Fatal("completed frame should be recorded")
	}
}

func TestControllerHandlers(t *testing.T) {
	c := New()
	c.Handle(protocol.HeaderReset, Nack())
	c.Write(protocol.EncodeQuery(protocol.HeaderReset))
	if got := readAll(t, c); !bytes.Equal(got, []byte{protocol.NACK}) {
		t.Errorf("reply = %x, want 15", got)
	}

	c.Handle(protocol.HeaderReset, Silence())
	c.Write(protocol.EncodeQuery(protocol.HeaderReset))
	if got := readAll(t, c); len(got) != 0 {
		t.Errorf("reply = %x, want nothing", got)
	}

	c.Restore(protocol.HeaderReset)
	c.Write(protocol.EncodeQuery(protocol.HeaderReset))
	if got := readAll(t, c); !bytes.Equal(got, []byte{protocol.ACK}) {
		t.Errorf("reply = %x, want 06", got)
	}
}

func TestControllerPurgeAndErrors(t *testing.T) {
	c := New()
	c.Inject([]byte{protocol.ACK, protocol.ACK})
	if err := c.Purge(); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if got := readAll(t, c); len(got) != 0 {
		t.Errorf("after Purge() read %x", got)
	}
	if c.Purges() != 1 {
		t.Errorf("Purges() = %d, want 1", c.Purges())
	}

	boom := errors.New("boom")
	c.SetWriteError(boom)
	if _, err := c.Write([]byte{1}); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want boom", err)
	}
	c.SetPurgeError(boom)
	if err := c.Purge(); !errors.Is(err, boom) {
		t.Errorf("Purge() error = %v, want boom", err)
	}

	c.Close()
	if !c.Closed() {
		t.Error("Closed() = false after Close()")
	}
	if _, err := c.Read(make([]byte, 1)); err == nil {
		t.Error("Read() after Close() should fail")
	}
}
