// services/actuators/devices/sim/builder.go
package simdev

import (
	"context"
	"time"

	"actuatorcode-go/actuator"
	"actuatorcode-go/drivers/simact"
	"actuatorcode-go/fixed"
	"actuatorcode-go/services/actuators/internal/core"
	"actuatorcode-go/x/strx"
	"actuatorcode-go/x/timex"
)

func init() { core.RegisterBuilder("sim", builder{}) }

type Params struct {
	Caps    []string    `mapstructure:"caps"`    // op names or groups; empty => all
	Mode    string      `mapstructure:"mode"`    // initial mode, default "torque"
	Inertia fixed.Value `mapstructure:"inertia"` // kg·m²
	Damping fixed.Value `mapstructure:"damping"` // N·m·s/rad
	TickMs  int         `mapstructure:"tick_ms"` // control period
	RateHz  uint32      `mapstructure:"rate_hz"` // control rate; wins over tick_ms
}

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (actuator.Actuator, error) {
	p, err := core.DecodeParams[Params](in.Params)
	if err != nil {
		return nil, err
	}
	caps := actuator.All
	if len(p.Caps) > 0 {
		if caps, err = actuator.ParseSet(p.Caps...); err != nil {
			return nil, err
		}
	}
	mode, err := actuator.ParseMode(strx.Coalesce(p.Mode, "torque"))
	if err != nil {
		return nil, err
	}
	tick := time.Duration(p.TickMs) * time.Millisecond
	if p.RateHz > 0 {
		tick = timex.PeriodFromHz(p.RateHz)
	}
	return simact.New(in.ID, simact.Config{
		Caps:    caps,
		Mode:    mode,
		Inertia: p.Inertia,
		Damping: p.Damping,
		Tick:    tick,
	}), nil
}
