// bridge/bridge_test.go
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
	"actuatorcode-go/types"
)

// pipeTransport hands out one end of a net.Pipe per Open and passes the
// other end to the test.
type pipeTransport struct{ remotes chan net.Conn }

func (p *pipeTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	lc, rc := net.Pipe()
	p.remotes <- rc
	return lc, nil
}
func (p *pipeTransport) String() string { return "pipe" }

func withPipe(t *testing.T, name string) *pipeTransport {
	t.Helper()
	pt := &pipeTransport{remotes: make(chan net.Conn, 4)}
	RegisterTransport(name, func(types.TransportConfig) (Transport, error) { return pt, nil })
	return pt
}

// fakeActuator answers get_position on act/j1/control/+ and rejects the rest.
func fakeActuator(ctx context.Context, conn *bus.Connection, sub *bus.Subscription) {
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-sub.Channel():
			if m.Topic.At(3) == "get_position" {
				v := fixed.MustParse("1.25")
				conn.Reply(m, types.ActuatorReply{OK: true, Value: &v}, false)
				continue
			}
			conn.Reply(m, types.ActuatorReply{Error: string(errcode.Unsupported)}, false)
		}
	}
}

func startBridge(t *testing.T, cfg types.BridgeConfig) (*bus.Connection, *bus.Subscription) {
	t.Helper()
	b := bus.NewBus(16)
	conn := b.NewConnection("bridge_test")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Start(ctx, b.NewConnection("bridge"))
	act := b.NewConnection("act")
	go fakeActuator(ctx, act, act.Subscribe(bus.T("act", "j1", "control", bus.SingleWild)))

	stateSub := conn.Subscribe(bus.T("bridge", "state"))
	t.Cleanup(func() { conn.Unsubscribe(stateSub) })
	assertState(t, stateSub, "idle", "awaiting_config")

	conn.Publish(conn.NewMessage(bus.T("config", "bridge"), cfg, false))
	return conn, stateSub
}

func TestBridge_ForwardsRequestsToBus(t *testing.T) {
	pt := withPipe(t, "pipe-forward")
	_, stateSub := startBridge(t, types.BridgeConfig{Transport: types.TransportConfig{Type: "pipe-forward"}})

	remote := <-pt.remotes
	defer remote.Close()
	assertState(t, stateSub, "up", "link_established")

	rd, wr := newFramedReader(remote), newFramedWriter(remote)
	roundTrip := func(req types.LinkRequest) types.LinkReply {
		t.Helper()
		b, _ := json.Marshal(req)
		if err := wr.WriteFrame(Frame{Type: frameRequest, Payload: b}); err != nil {
			t.Fatal(err)
		}
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				t.Fatal(err)
			}
			if f.Type != frameReply {
				continue
			}
			var rep types.LinkReply
			if err := json.Unmarshal(f.Payload, &rep); err != nil {
				t.Fatal(err)
			}
			return rep
		}
	}

	rep := roundTrip(types.LinkRequest{ID: 7, Actuator: "j1", Verb: "get_position"})
	if rep.ID != 7 || !rep.Reply.OK || rep.Reply.Value == nil || rep.Reply.Value.String() != "1.25" {
		t.Fatalf("reply = %+v", rep)
	}
	rep = roundTrip(types.LinkRequest{ID: 8, Actuator: "j1", Verb: "enable"})
	if rep.ID != 8 || rep.Reply.OK || rep.Reply.Error != string(errcode.Unsupported) {
		t.Fatalf("reply = %+v", rep)
	}
	rep = roundTrip(types.LinkRequest{ID: 9})
	if rep.Reply.Error != string(errcode.InvalidTopic) {
		t.Fatalf("reply = %+v", rep)
	}
}

func TestBridge_AnswersPing(t *testing.T) {
	pt := withPipe(t, "pipe-ping")
	startBridge(t, types.BridgeConfig{Transport: types.TransportConfig{Type: "pipe-ping"}})

	remote := <-pt.remotes
	defer remote.Close()
	if err := newFramedWriter(remote).WriteFrame(Frame{Type: framePing}); err != nil {
		t.Fatal(err)
	}
	f, err := newFramedReader(remote).ReadFrame()
	if err != nil || f.Type != framePong {
		t.Fatalf("frame = %+v, %v", f, err)
	}
}

func TestBridge_LinkLossDegrades(t *testing.T) {
	pt := withPipe(t, "pipe-loss")
	_, stateSub := startBridge(t, types.BridgeConfig{Transport: types.TransportConfig{Type: "pipe-loss"}})

	remote := <-pt.remotes
	assertState(t, stateSub, "up", "link_established")
	_ = remote.Close()
	assertState(t, stateSub, "degraded", "link_lost_retrying")
}

func TestBridge_UnknownTransportYieldsErrorState(t *testing.T) {
	_, stateSub := startBridge(t, types.BridgeConfig{Transport: types.TransportConfig{Type: "bogus"}})
	assertState(t, stateSub, "error", "transport_init_failed")
}

func TestBridge_ConfigDecoding(t *testing.T) {
	for _, p := range []any{
		`{"transport":{"type":"serial","serial":{"port":"/dev/null","baud":9600}}}`,
		[]byte(`{"transport":{"type":"serial","serial":{"port":"/dev/null","baud":9600}}}`),
		map[string]any{"transport": map[string]any{"type": "serial", "serial": map[string]any{"port": "/dev/null", "baud": 9600}}},
		types.BridgeConfig{Transport: types.TransportConfig{Type: "serial", Serial: &types.SerialConfig{Port: "/dev/null", Baud: 9600}}},
	} {
		cfg, err := decodeConfig(p)
		if err != nil || cfg.Transport.Serial == nil || cfg.Transport.Serial.Baud != 9600 {
			t.Fatalf("%T: %+v, %v", p, cfg, err)
		}
	}
	if _, err := decodeConfig(42); err == nil {
		t.Fatal("int accepted")
	}
	if _, err := newTransport(types.TransportConfig{Type: "serial"}); err == nil {
		t.Fatal("serial without port accepted")
	}
	if _, err := newTransport(types.TransportConfig{Type: "ws"}); err == nil {
		t.Fatal("ws without url accepted")
	}
}

func TestFrameSizeLimit(t *testing.T) {
	var buf bytes.Buffer
	w := newFramedWriter(&buf)
	if err := w.WriteFrame(Frame{Type: frameRequest, Payload: make([]byte, maxPayload+1)}); errcode.Of(err) != errcode.Overflow {
		t.Fatalf("err = %v", err)
	}
	if err := w.WriteFrame(Frame{Type: frameReply, Payload: []byte("ok")}); err != nil {
		t.Fatal(err)
	}
	f, err := newFramedReader(&buf).ReadFrame()
	if err != nil || f.Type != frameReply || string(f.Payload) != "ok" {
		t.Fatalf("frame = %+v, %v", f, err)
	}
}

func TestWSTransportCarriesFrames(t *testing.T) {
	up := websocket.Upgrader{}
	got := make(chan Frame, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := newWSStream(c)
		defer s.Close()
		f, err := newFramedReader(s).ReadFrame()
		if err != nil {
			return
		}
		got <- f
		_ = newFramedWriter(s).WriteFrame(Frame{Type: framePong})
	}))
	defer srv.Close()

	tr, err := newTransport(types.TransportConfig{Type: "ws", WS: &types.WSConfig{URL: "ws" + strings.TrimPrefix(srv.URL, "http")}})
	if err != nil {
		t.Fatal(err)
	}
	rwc, err := tr.Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer rwc.Close()

	if err := newFramedWriter(rwc).WriteFrame(Frame{Type: framePing, Payload: []byte("hi")}); err != nil {
		t.Fatal(err)
	}
	select {
	case f := <-got:
		if f.Type != framePing || string(f.Payload) != "hi" {
			t.Fatalf("server got %+v", f)
		}
	case <-time.After(time.Second):
		t.Fatal("server got nothing")
	}
	f, err := newFramedReader(rwc).ReadFrame()
	if err != nil || f.Type != framePong {
		t.Fatalf("client got %+v, %v", f, err)
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func assertState(t *testing.T, sub *bus.Subscription, wantLevel, wantStatus string) {
	t.Helper()
	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()

	select {
	case m := <-sub.Channel():
		st, ok := m.Payload.(types.ServiceState)
		if !ok {
			t.Fatalf("state payload type: got %T", m.Payload)
		}
		if st.Level != wantLevel || st.Status != wantStatus {
			t.Fatalf("unexpected state: level=%q status=%q, want level=%q status=%q (err=%q)",
				st.Level, st.Status, wantLevel, wantStatus, st.Error)
		}
	case <-timer.C:
		t.Fatalf("timeout waiting for bridge/state %s/%s", wantLevel, wantStatus)
	}
}
