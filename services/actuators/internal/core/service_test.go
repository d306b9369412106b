package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"actuatorcode-go/actuator"
	"actuatorcode-go/bus"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
	"actuatorcode-go/services/actuators/internal/core"
	"actuatorcode-go/types"

	_ "actuatorcode-go/services/actuators/devices/sim"
)

// positionOnly is a builder for an actuator that can only report position.
type positionOnly struct{}

func (positionOnly) Build(ctx context.Context, in core.BuilderInput) (actuator.Actuator, error) {
	return &actuator.Funcs{
		Name:         in.ID,
		PositionFunc: func() (fixed.Value, error) { return fixed.MustParse("0.25"), nil },
	}, nil
}

var registerOnce sync.Once

func startService(t *testing.T) (*bus.Connection, context.CancelFunc) {
	t.Helper()
	return startServiceWith(t, core.Resources{})
}

func startServiceWith(t *testing.T, res core.Resources) (*bus.Connection, context.CancelFunc) {
	t.Helper()
	registerOnce.Do(func() { core.RegisterBuilder("test_position_only", positionOnly{}) })

	b := bus.NewBus(16)
	ctx, cancel := context.WithCancel(context.Background())
	go core.NewService(b.NewConnection("act"), res).Run(ctx)
	t.Cleanup(cancel)
	return b.NewConnection("test"), cancel
}

func configure(conn *bus.Connection, devs ...types.Device) {
	conn.Publish(conn.NewMessage(core.TopicConfigActuator(), types.ActuatorConfig{
		PollIntervalMs: 5,
		Devices:        devs,
	}, true))
}

func request(t *testing.T, conn *bus.Connection, id, verb string, cmd types.ActuatorCommand) types.ActuatorReply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m, err := conn.RequestWait(ctx, conn.NewMessage(core.TopicControl(id, verb), cmd, false))
	if err != nil {
		t.Fatalf("%s/%s: %v", id, verb, err)
	}
	rep, ok := m.Payload.(types.ActuatorReply)
	if !ok {
		t.Fatalf("%s/%s: payload %T", id, verb, m.Payload)
	}
	return rep
}

func waitFor(t *testing.T, conn *bus.Connection, topic bus.Topic) *bus.Message {
	t.Helper()
	sub := conn.Subscribe(topic)
	defer conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %s", topic)
		return nil
	}
}

func TestControlBeforeConfigIsNotReady(t *testing.T) {
	conn, _ := startService(t)
	waitFor(t, conn, bus.T("act", "state"))

	rep := request(t, conn, "j1", "enable", types.ActuatorCommand{})
	if rep.OK || rep.Error != string(errcode.NotReady) {
		t.Fatalf("reply = %+v", rep)
	}
}

func TestSimActuatorOverBus(t *testing.T) {
	conn, _ := startService(t)
	configure(conn, types.Device{
		ID:       "j1",
		Type:     "sim",
		Params:   map[string]any{"tick_ms": 1},
		Settings: map[string]string{"position_kp": "12"},
	})

	info, _ := waitFor(t, conn, bus.T("act", "j1", "info")).Payload.(types.ActuatorInfo)
	if info.Driver != "sim" || len(info.Caps) != len(actuator.AllOps()) {
		t.Fatalf("info = %+v", info)
	}

	if rep := request(t, conn, "j1", "get_setting", types.ActuatorCommand{Setting: "position_kp"}); !rep.OK || rep.Value == nil || *rep.Value != fixed.FromInt(12) {
		t.Fatalf("configured setting = %+v", rep)
	}
	if rep := request(t, conn, "j1", "set_mode", types.ActuatorCommand{Mode: "position"}); !rep.OK {
		t.Fatalf("set_mode = %+v", rep)
	}
	target := fixed.MustParse("0.5")
	if rep := request(t, conn, "j1", "set_position_target", types.ActuatorCommand{Value: target}); !rep.OK {
		t.Fatalf("set target = %+v", rep)
	}
	if rep := request(t, conn, "j1", "enable", types.ActuatorCommand{}); !rep.OK {
		t.Fatalf("enable = %+v", rep)
	}
	rep := request(t, conn, "j1", "is_enabled", types.ActuatorCommand{})
	if !rep.OK || rep.Enabled == nil || !*rep.Enabled {
		t.Fatalf("is_enabled = %+v", rep)
	}
	rep = request(t, conn, "j1", "get_mode", types.ActuatorCommand{})
	if rep.Mode != "position" {
		t.Fatalf("get_mode = %+v", rep)
	}
	rep = request(t, conn, "j1", "get_position_target", types.ActuatorCommand{})
	if rep.Value == nil || *rep.Value != target {
		t.Fatalf("get target = %+v", rep)
	}

	tel, ok := waitFor(t, conn, bus.T("act", "j1", "value")).Payload.(types.ActuatorTelemetry)
	if !ok || tel.Position == nil || tel.Velocity == nil || tel.Torque == nil {
		t.Fatalf("telemetry = %+v", tel)
	}
}

func TestControlErrors(t *testing.T) {
	conn, _ := startService(t)
	configure(conn, types.Device{ID: "p1", Type: "test_position_only"})
	waitFor(t, conn, bus.T("act", "p1", "info"))

	cases := []struct {
		id, verb string
		cmd      types.ActuatorCommand
		want     errcode.Code
	}{
		{"nope", "enable", types.ActuatorCommand{}, errcode.UnknownActuator},
		{"p1", "spin", types.ActuatorCommand{}, errcode.Unsupported},
		{"p1", "enable", types.ActuatorCommand{}, errcode.Unsupported},
		{"p1", "set_torque_target", types.ActuatorCommand{Value: fixed.FromInt(1)}, errcode.Unsupported},
		{"p1", "set_mode", types.ActuatorCommand{Mode: "sideways"}, errcode.InvalidMode},
		{"p1", "get_setting", types.ActuatorCommand{Setting: "bogus"}, errcode.InvalidSetting},
	}
	for _, c := range cases {
		rep := request(t, conn, c.id, c.verb, c.cmd)
		if rep.OK || rep.Error != string(c.want) {
			t.Errorf("%s/%s: got %+v, want %s", c.id, c.verb, rep, c.want)
		}
	}

	rep := request(t, conn, "p1", "get_position", types.ActuatorCommand{})
	if !rep.OK || rep.Value == nil || *rep.Value != fixed.MustParse("0.25") {
		t.Fatalf("get_position = %+v", rep)
	}
}

func TestBadSettingDegradesStatus(t *testing.T) {
	conn, _ := startService(t)
	configure(conn, types.Device{
		ID:       "j2",
		Type:     "sim",
		Settings: map[string]string{"pole_pairs": "0"},
	})
	st, _ := waitFor(t, conn, bus.T("act", "j2", "status")).Payload.(types.Status)
	if st.Link != types.LinkDegraded || st.Error != string(errcode.OutOfRange) {
		t.Fatalf("status = %+v", st)
	}
}

func TestStopPublishesStoppedState(t *testing.T) {
	conn, cancel := startService(t)
	configure(conn, types.Device{ID: "p1", Type: "test_position_only"})
	waitFor(t, conn, bus.T("act", "p1", "info"))

	sub := conn.Subscribe(bus.T("act", "state"))
	defer conn.Unsubscribe(sub)
	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st, _ := m.Payload.(types.ServiceState); st.Level == "stopped" {
				return
			}
		case <-deadline:
			t.Fatal("no stopped state")
		}
	}
}
