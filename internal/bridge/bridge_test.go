package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openlightcontrol/arductl/internal/devices"
	"github.com/openlightcontrol/arductl/internal/hub"
	"github.com/openlightcontrol/arductl/internal/protocol"
	"github.com/openlightcontrol/arductl/internal/transport/transporttest"
)

func newTestBridge(t *testing.T) (*Server, *httptest.Server, *transporttest.Controller) {
	t.Helper()
	ctrl := transporttest.New()
	h := hub.New(ctrl, &hub.Config{AckTimeout: 50 * time.Millisecond, AnswerTimeout: 50 * time.Millisecond})
	srv := New(&Config{Host: "127.0.0.1"}, devices.Install(h))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts, ctrl
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req Request) Response {
	t.Helper()
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if resp.ID != req.ID {
		t.Errorf("reply id = %q, want %q", resp.ID, req.ID)
	}
	return resp
}

func TestGetDevices(t *testing.T) {
	_, ts, _ := newTestBridge(t)

	res, err := http.Get(ts.URL + "/devices")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var infos []DeviceInfo
	if err := json.NewDecoder(res.Body).Decode(&infos); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(infos) != 7 {
		t.Fatalf("got %d devices, want 7", len(infos))
	}
	if infos[0].Name != devices.NameHub || infos[0].Kind != "hub" {
		t.Errorf("first device = %s (%s), want hub", infos[0].Name, infos[0].Kind)
	}
	if infos[0].Properties["NSteps"] != "0" {
		t.Errorf("hub NSteps = %q, want 0", infos[0].Properties["NSteps"])
	}
	found := false
	for _, name := range infos[0].ReadOnly {
		if name == "StepTime" {
			found = true
		}
	}
	if !found {
		t.Errorf("StepTime not listed read-only: %v", infos[0].ReadOnly)
	}
}

func TestGetDevice(t *testing.T) {
	_, ts, _ := newTestBridge(t)

	tests := []struct {
		path       string
		wantStatus int
		wantName   string
	}{
		{"/devices/p1", http.StatusOK, devices.NameOutputP1},
		{"/devices/ArduControl-Enable", http.StatusOK, devices.NameEnable},
		{"/devices/nosuch", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer res.Body.Close()
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if tt.wantName == "" {
				return
			}
			var info DeviceInfo
			if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
				t.Fatal(err)
			}
			if info.Name != tt.wantName {
				t.Errorf("name = %q, want %q", info.Name, tt.wantName)
			}
		})
	}
}

func TestWebSocketSetAndGet(t *testing.T) {
	_, ts, ctrl := newTestBridge(t)
	conn := dial(t, ts)

	resp := roundTrip(t, conn, Request{ID: "1", Op: OpSet, Device: "hub", Property: "NSteps", Value: "5"})
	if !resp.OK || resp.Value != "5" {
		t.Fatalf("set NSteps reply = %+v", resp)
	}
	if f, ok := ctrl.Last(protocol.HeaderNSteps); !ok || string(f.Payload) != "05" {
		t.Errorf("N frame = %v, %v", f, ok)
	}

	resp = roundTrip(t, conn, Request{ID: "2", Op: OpGet, Device: "hub", Property: "NSteps"})
	if !resp.OK || resp.Value != "5" {
		t.Errorf("get NSteps reply = %+v", resp)
	}

	resp = roundTrip(t, conn, Request{ID: "3", Op: OpSet, Device: "hub", Property: "NFrames", Value: "100"})
	if resp.OK || resp.ErrorType != "Sequence Too Long" {
		t.Errorf("set NFrames 100 reply = %+v, want Sequence Too Long", resp)
	}
	if ctrl.Count(protocol.HeaderNFrames) != 0 {
		t.Errorf("rejected shape reached the controller")
	}
}

func TestWebSocketErrors(t *testing.T) {
	_, ts, ctrl := newTestBridge(t)
	conn := dial(t, ts)

	tests := []struct {
		name     string
		req      Request
		wantType string
	}{
		{"unknown op", Request{ID: "a", Op: "delete"}, "Invalid Value"},
		{"unknown device", Request{ID: "b", Op: OpGet, Device: "laser", Property: "Power"}, "Invalid Value"},
		{"read-only", Request{ID: "c", Op: OpSet, Device: "hub", Property: "StepTime", Value: "1"}, "Invalid Value"},
		{"length mismatch", Request{ID: "d", Op: OpSet, Device: "P1", Property: "ModulationA", Value: "1-2-3"}, "Sequence Length Mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := roundTrip(t, conn, tt.req)
			if resp.OK {
				t.Fatalf("reply ok, want error")
			}
			if resp.ErrorType != tt.wantType {
				t.Errorf("error_type = %q, want %q (%s)", resp.ErrorType, tt.wantType, resp.Error)
			}
			if resp.Value != nil {
				t.Errorf("failed reply carries value %v", resp.Value)
			}
		})
	}

	ctrl.Handle(protocol.HeaderEnable, transporttest.Nack())
	resp := roundTrip(t, conn, Request{ID: "e", Op: OpSet, Device: "enable", Property: "Enable", Value: "1"})
	if resp.OK || resp.ErrorType != "Communication Error" {
		t.Errorf("NACKed set reply = %+v", resp)
	}
}

func TestWebSocketList(t *testing.T) {
	_, ts, _ := newTestBridge(t)
	conn := dial(t, ts)

	resp := roundTrip(t, conn, Request{ID: "l", Op: "LIST"})
	if !resp.OK {
		t.Fatalf("list reply = %+v", resp)
	}
	list, ok := resp.Value.([]any)
	if !ok || len(list) != 7 {
		t.Fatalf("list value = %T %v, want 7 devices", resp.Value, resp.Value)
	}
}

func TestDispatchGetAfterReset(t *testing.T) {
	ctrl := transporttest.New()
	h := hub.New(ctrl, &hub.Config{AckTimeout: 50 * time.Millisecond, AnswerTimeout: 50 * time.Millisecond})
	set := devices.Install(h)

	if resp := Dispatch(set, Request{Op: OpSet, Device: "trigger", Property: "Label", Value: "CamFire1"}); !resp.OK {
		t.Fatalf("set Label reply = %+v", resp)
	}
	if err := h.Reset(); err != nil {
		t.Fatal(err)
	}
	resp := Dispatch(set, Request{Op: OpGet, Device: "trigger", Property: "Label"})
	if resp.Value != "Internal" {
		t.Errorf("Label after reset = %v, want Internal", resp.Value)
	}
}

func TestServeAndShutdown(t *testing.T) {
	ctrl := transporttest.New()
	h := hub.New(ctrl, &hub.Config{AckTimeout: 50 * time.Millisecond, AnswerTimeout: 50 * time.Millisecond})
	srv := New(&Config{Host: "127.0.0.1", Port: 0}, devices.Install(h))

	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	url := "ws://" + srv.Addr().String() + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Request{ID: "1", Op: OpGet, Device: "hub", Property: "Exposure"}); err != nil {
		t.Fatal(err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Value != "10" {
		t.Errorf("Exposure = %v, want 10", resp.Value)
	}
	if n := srv.GetActiveConnections(); n != 1 {
		t.Errorf("GetActiveConnections() = %d, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if n := srv.GetActiveConnections(); n != 0 {
		t.Errorf("GetActiveConnections() after shutdown = %d, want 0", n)
	}
}
