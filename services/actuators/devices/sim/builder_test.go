package simdev

import (
	"context"
	"testing"
	"time"

	"actuatorcode-go/actuator"
	"actuatorcode-go/drivers/simact"
	"actuatorcode-go/errcode"
	"actuatorcode-go/services/actuators/internal/core"
)

func build(t *testing.T, params map[string]any) *simact.Device {
	t.Helper()
	a, err := builder{}.Build(context.Background(), core.BuilderInput{ID: "m1", Type: "sim", Params: params})
	if err != nil {
		t.Fatalf("build %v: %v", params, err)
	}
	d, ok := a.(*simact.Device)
	if !ok {
		t.Fatalf("build returned %T", a)
	}
	return d
}

func TestBuildPeriod(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]any
		want   time.Duration
	}{
		{"rate_hz", map[string]any{"rate_hz": 500}, 2 * time.Millisecond},
		{"tick_ms", map[string]any{"tick_ms": 2}, 2 * time.Millisecond},
		{"rate_hz wins", map[string]any{"tick_ms": 10, "rate_hz": 1000}, time.Millisecond},
		{"default", nil, time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := build(t, tc.params).Period(); got != tc.want {
				t.Fatalf("period = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildCapsAndMode(t *testing.T) {
	d := build(t, map[string]any{
		"caps":    []any{"state", "position"},
		"mode":    "position",
		"inertia": "0.02",
		"damping": 0.1,
	})
	want := actuator.StateOps | actuator.PositionOps
	for _, op := range actuator.AllOps() {
		if d.Supports(op) != want.Has(op) {
			t.Fatalf("Supports(%v) = %v", op, d.Supports(op))
		}
	}
	m, err := d.ControlMode()
	if err != nil || m != actuator.ModePosition {
		t.Fatalf("mode = %v, %v", m, err)
	}
}

func TestBuildRejectsBadParams(t *testing.T) {
	for _, params := range []map[string]any{
		{"tick_ms": 1, "rate": 5},
		{"mode": "spin"},
		{"caps": []any{"warp"}},
		{"inertia": "abc"},
	} {
		_, err := builder{}.Build(context.Background(), core.BuilderInput{ID: "m1", Params: params})
		if errcode.Of(err) == errcode.OK {
			t.Fatalf("build %v: want error", params)
		}
	}
}
