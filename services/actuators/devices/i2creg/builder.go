// services/actuators/devices/i2creg/builder.go
package i2cregdev

import (
	"context"

	"actuatorcode-go/actuator"
	"actuatorcode-go/drivers/regact"
	"actuatorcode-go/errcode"
	"actuatorcode-go/services/actuators/internal/core"
	"actuatorcode-go/x/strx"
)

func init() { core.RegisterBuilder("i2creg", builder{}) }

type Params struct {
	Bus       string         `mapstructure:"bus"`  // falls back to the device bus_ref
	Addr      uint16         `mapstructure:"addr"` // defaults to regact.AddressDefault
	Registers map[string]int `mapstructure:"registers"`
}

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (actuator.Actuator, error) {
	p, err := core.DecodeParams[Params](in.Params)
	if err != nil {
		return nil, err
	}
	busID := strx.Coalesce(p.Bus, in.BusRef)
	if busID == "" || len(p.Registers) == 0 {
		return nil, errcode.InvalidParams
	}
	if in.Res.I2C == nil {
		return nil, errcode.NotReady
	}
	i2c, ok := in.Res.I2C.ByID(busID)
	if !ok {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "i2creg", Msg: "unknown bus " + busID}
	}
	regs, err := regact.RegisterMap(p.Registers)
	if err != nil {
		return nil, err
	}
	return regact.New(in.ID, i2c, regact.Config{Address: p.Addr, Registers: regs}), nil
}
