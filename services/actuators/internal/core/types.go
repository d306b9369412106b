package core

import (
	"context"

	"tinygo.org/x/drivers"

	"actuatorcode-go/actuator"
)

// ---- Service-injected resources ----

// I2CBusFactory injects configured I²C buses by id.
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

type Resources struct {
	I2C I2CBusFactory // optional
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   map[string]any
	BusRef   string
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (actuator.Actuator, error)
}

// Runner is implemented by actuators that own a control loop goroutine.
type Runner interface {
	Run(ctx context.Context)
}

// Closer is implemented by actuators holding resources to release.
type Closer interface {
	Close() error
}
