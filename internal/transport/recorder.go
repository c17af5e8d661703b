package transport

import (
	"sync"
	"time"
)

// Direction of a recorded transfer
const (
	DirectionTX = "tx"
	DirectionRX = "rx"
)

// Record is one write or non-empty read seen by a Recorder
type Record struct {
	Time      time.Time
	Direction string
	Data      []byte
}

// Recorder wraps a Port and keeps a copy of every transfer. It backs the
// --trace output of the CLI.
type Recorder struct {
	Port

	mu      sync.Mutex
	records []Record
}

// NewRecorder wraps port
func NewRecorder(port Port) *Recorder {
	return &Recorder{Port: port}
}

func (r *Recorder) Write(b []byte) (int, error) {
	n, err := r.Port.Write(b)
	if n > 0 {
		r.add(DirectionTX, b[:n])
	}
	return n, err
}

func (r *Recorder) Read(b []byte) (int, error) {
	n, err := r.Port.Read(b)
	if n > 0 {
		r.add(DirectionRX, b[:n])
	}
	return n, err
}

func (r *Recorder) add(direction string, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	r.mu.Lock()
	r.records = append(r.records, Record{Time: time.Now(), Direction: direction, Data: cp})
	r.mu.Unlock()
}

// Records returns a copy of everything recorded so far
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Reset forgets all records
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}
