// Package simact is a simulated actuator: a rigid rotor with viscous damping
// driven through cascaded position, velocity and torque loops.
//
// Units are SI (N·m, rad/s, rad). The torque loop output is a torque slew rate
// in N·m/s, so TorqueMaxOutput bounds how fast applied torque can change.
//
// Targets are kept per mode. Setting the target of an inactive mode stages it;
// it takes effect when that mode becomes active. Disable drops applied torque
// to zero and resets the loop integrators but keeps mode and targets.
package simact

import (
	"context"
	"sync"
	"time"

	"actuatorcode-go/actuator"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

// Private settings understood by this driver.
var (
	SettingInertia = actuator.Private(0) // kg·m², > 0
	SettingDamping = actuator.Private(1) // N·m·s/rad, >= 0
)

// Config holds construction parameters. Zero fields take defaults.
type Config struct {
	Caps    actuator.Set  // 0 => actuator.All
	Mode    actuator.Mode // initial mode; ModeUnspecified => torque
	Inertia fixed.Value
	Damping fixed.Value
	Tick    time.Duration // Run period; 0 => 1ms
}

// DefaultSettings are the values a fresh actuator reports.
func DefaultSettings() map[actuator.Setting]fixed.Value {
	return map[actuator.Setting]fixed.Value{
		actuator.TorqueKp:                fixed.FromInt(500),
		actuator.TorqueMaxOutput:         fixed.FromInt(2000),
		actuator.VelocityKp:              fixed.MustParse("0.5"),
		actuator.VelocityKi:              fixed.FromInt(2),
		actuator.VelocityIntegratorLimit: fixed.FromInt(1),
		actuator.VelocityMaxOutput:       fixed.FromInt(2),
		actuator.PositionKp:              fixed.FromInt(10),
		actuator.PositionMaxOutput:       fixed.FromInt(10),
		actuator.PolePairs:               fixed.FromInt(7),
	}
}

type Device struct {
	id   string
	caps actuator.Set
	tick time.Duration

	mu       sync.Mutex
	enabled  bool
	mode     actuator.Mode
	targets  [actuator.ModePosition + 1]fixed.Value
	settings map[actuator.Setting]fixed.Value
	inertia  fixed.Value
	damping  fixed.Value

	loops [actuator.ModePosition + 1]pid // indexed by the quantity each loop regulates
	g     [actuator.ModePosition + 1]gains

	pos, vel, torque float64
}

func New(id string, cfg Config) *Device {
	d := &Device{
		id:       id,
		caps:     cfg.Caps,
		tick:     cfg.Tick,
		mode:     cfg.Mode,
		settings: DefaultSettings(),
		inertia:  cfg.Inertia,
		damping:  cfg.Damping,
	}
	if d.caps == 0 {
		d.caps = actuator.All
	}
	if d.tick <= 0 {
		d.tick = time.Millisecond
	}
	if !d.mode.Valid() {
		d.mode = actuator.ModeTorque
	}
	if d.inertia.Sign() <= 0 {
		d.inertia = fixed.MustParse("0.01")
	}
	if d.damping.Sign() <= 0 {
		d.damping = fixed.MustParse("0.05")
	}
	d.refreshGains()
	return d
}

func (d *Device) ID() string { return d.id }

// Period is the step interval used by Run.
func (d *Device) Period() time.Duration { return d.tick }

func (d *Device) Supports(op actuator.Op) bool { return d.caps.Has(op) }

// ---- State ----

func (d *Device) SetControlMode(m actuator.Mode) error {
	if !m.Valid() {
		return errcode.InvalidMode
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if m != d.mode {
		d.mode = m
		d.resetLoops()
	}
	return nil
}

func (d *Device) ControlMode() (actuator.Mode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode, nil
}

func (d *Device) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enabled {
		d.enabled = true
		d.resetLoops()
	}
	return nil
}

func (d *Device) Disable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = false
	d.torque = 0
	d.resetLoops()
	return nil
}

func (d *Device) Enabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled, nil
}

// ---- Settings ----

func (d *Device) SetSetting(s actuator.Setting, v fixed.Value) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case s == SettingInertia:
		if v.Sign() <= 0 {
			return errcode.OutOfRange
		}
		d.inertia = v
		return nil
	case s == SettingDamping:
		if v.Sign() < 0 {
			return errcode.OutOfRange
		}
		d.damping = v
		return nil
	case s == actuator.PolePairs:
		if v.Frac != 0 || v.Int < 1 {
			return errcode.OutOfRange
		}
	case s.IsCommon():
		if v.Sign() < 0 {
			return errcode.OutOfRange
		}
	default:
		return errcode.InvalidSetting
	}
	d.settings[s] = v
	d.refreshGains()
	return nil
}

func (d *Device) Setting(s actuator.Setting) (fixed.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case s == SettingInertia:
		return d.inertia, nil
	case s == SettingDamping:
		return d.damping, nil
	case s.IsCommon():
		return d.settings[s], nil
	}
	return fixed.Zero, errcode.InvalidSetting
}

// ---- Targets ----

func (d *Device) setTarget(m actuator.Mode, v fixed.Value) error {
	d.mu.Lock()
	d.targets[m] = v
	d.mu.Unlock()
	return nil
}

func (d *Device) target(m actuator.Mode) (fixed.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targets[m], nil
}

func (d *Device) SetTorqueTarget(v fixed.Value) error   { return d.setTarget(actuator.ModeTorque, v) }
func (d *Device) SetVelocityTarget(v fixed.Value) error { return d.setTarget(actuator.ModeVelocity, v) }
func (d *Device) SetPositionTarget(v fixed.Value) error { return d.setTarget(actuator.ModePosition, v) }

func (d *Device) TorqueTarget() (fixed.Value, error)   { return d.target(actuator.ModeTorque) }
func (d *Device) VelocityTarget() (fixed.Value, error) { return d.target(actuator.ModeVelocity) }
func (d *Device) PositionTarget() (fixed.Value, error) { return d.target(actuator.ModePosition) }

// ---- Actuals ----

func (d *Device) read(p *float64) (fixed.Value, error) {
	d.mu.Lock()
	f := *p
	d.mu.Unlock()
	return fixed.FromFloat64(f)
}

func (d *Device) Torque() (fixed.Value, error)   { return d.read(&d.torque) }
func (d *Device) Velocity() (fixed.Value, error) { return d.read(&d.vel) }
func (d *Device) Position() (fixed.Value, error) { return d.read(&d.pos) }

// ---- Control loop ----

// Step advances the loops and the plant by dt.
func (d *Device) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s := dt.Seconds()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.enabled {
		var velCmd, torqueCmd float64
		switch d.mode {
		case actuator.ModePosition:
			e := d.targets[actuator.ModePosition].Float64() - d.pos
			velCmd = d.loops[actuator.ModePosition].update(d.g[actuator.ModePosition], e, s)
		case actuator.ModeVelocity:
			velCmd = d.targets[actuator.ModeVelocity].Float64()
		}
		if d.mode == actuator.ModeTorque {
			torqueCmd = d.targets[actuator.ModeTorque].Float64()
		} else {
			torqueCmd = d.loops[actuator.ModeVelocity].update(d.g[actuator.ModeVelocity], velCmd-d.vel, s)
		}
		rate := d.loops[actuator.ModeTorque].update(d.g[actuator.ModeTorque], torqueCmd-d.torque, s)
		d.torque += rate * s
	}

	acc := (d.torque - d.damping.Float64()*d.vel) / d.inertia.Float64()
	d.vel += acc * s
	d.pos += d.vel * s
}

// Run steps the simulation every tick until ctx is done.
func (d *Device) Run(ctx context.Context) {
	t := time.NewTicker(d.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			d.Step(d.tick)
		}
	}
}

func (d *Device) resetLoops() {
	for i := range d.loops {
		d.loops[i].reset()
	}
}

func (d *Device) refreshGains() {
	load := func(kp, ki, kd, il, mo actuator.Setting) gains {
		return gains{
			kp:     d.settings[kp].Float64(),
			ki:     d.settings[ki].Float64(),
			kd:     d.settings[kd].Float64(),
			ilimit: d.settings[il].Float64(),
			maxOut: d.settings[mo].Float64(),
		}
	}
	d.g[actuator.ModeTorque] = load(actuator.TorqueKp, actuator.TorqueKi, actuator.TorqueKd,
		actuator.TorqueIntegratorLimit, actuator.TorqueMaxOutput)
	d.g[actuator.ModeVelocity] = load(actuator.VelocityKp, actuator.VelocityKi, actuator.VelocityKd,
		actuator.VelocityIntegratorLimit, actuator.VelocityMaxOutput)
	d.g[actuator.ModePosition] = load(actuator.PositionKp, actuator.PositionKi, actuator.PositionKd,
		actuator.PositionIntegratorLimit, actuator.PositionMaxOutput)
}
