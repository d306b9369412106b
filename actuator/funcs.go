package actuator

import (
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

// Funcs is a capability table of nullable function slots. A nil field is an
// absent capability. Useful for adapters and test doubles.
type Funcs struct {
	Name string

	SetControlModeFunc func(Mode) error
	ControlModeFunc    func() (Mode, error)
	EnableFunc         func() error
	DisableFunc        func() error
	EnabledFunc        func() (bool, error)

	SetSettingFunc func(Setting, fixed.Value) error
	SettingFunc    func(Setting) (fixed.Value, error)

	SetTorqueTargetFunc   func(fixed.Value) error
	TorqueTargetFunc      func() (fixed.Value, error)
	SetVelocityTargetFunc func(fixed.Value) error
	VelocityTargetFunc    func() (fixed.Value, error)
	SetPositionTargetFunc func(fixed.Value) error
	PositionTargetFunc    func() (fixed.Value, error)

	TorqueFunc   func() (fixed.Value, error)
	VelocityFunc func() (fixed.Value, error)
	PositionFunc func() (fixed.Value, error)
}

func (f *Funcs) ID() string {
	if f == nil {
		return ""
	}
	return f.Name
}

// Supports reports which slots are filled. A nil *Funcs supports nothing.
func (f *Funcs) Supports(op Op) bool {
	if f == nil {
		return false
	}
	switch op {
	case OpSetControlMode:
		return f.SetControlModeFunc != nil
	case OpGetControlMode:
		return f.ControlModeFunc != nil
	case OpEnable:
		return f.EnableFunc != nil
	case OpDisable:
		return f.DisableFunc != nil
	case OpIsEnabled:
		return f.EnabledFunc != nil
	case OpSetSetting:
		return f.SetSettingFunc != nil
	case OpGetSetting:
		return f.SettingFunc != nil
	case OpSetTorqueTarget:
		return f.SetTorqueTargetFunc != nil
	case OpGetTorqueTarget:
		return f.TorqueTargetFunc != nil
	case OpSetVelocityTarget:
		return f.SetVelocityTargetFunc != nil
	case OpGetVelocityTarget:
		return f.VelocityTargetFunc != nil
	case OpSetPositionTarget:
		return f.SetPositionTargetFunc != nil
	case OpGetPositionTarget:
		return f.PositionTargetFunc != nil
	case OpGetTorque:
		return f.TorqueFunc != nil
	case OpGetVelocity:
		return f.VelocityFunc != nil
	case OpGetPosition:
		return f.PositionFunc != nil
	}
	return false
}

// The methods below are only reached for present slots when called through
// the facade; direct callers of an absent slot get errcode.Unsupported.

func (f *Funcs) SetControlMode(m Mode) error {
	if f.SetControlModeFunc == nil {
		return errcode.Unsupported
	}
	return f.SetControlModeFunc(m)
}

func (f *Funcs) ControlMode() (Mode, error) {
	if f.ControlModeFunc == nil {
		return ModeUnspecified, errcode.Unsupported
	}
	return f.ControlModeFunc()
}

func (f *Funcs) Enable() error {
	if f.EnableFunc == nil {
		return errcode.Unsupported
	}
	return f.EnableFunc()
}

func (f *Funcs) Disable() error {
	if f.DisableFunc == nil {
		return errcode.Unsupported
	}
	return f.DisableFunc()
}

func (f *Funcs) Enabled() (bool, error) {
	if f.EnabledFunc == nil {
		return false, errcode.Unsupported
	}
	return f.EnabledFunc()
}

func (f *Funcs) SetSetting(s Setting, v fixed.Value) error {
	if f.SetSettingFunc == nil {
		return errcode.Unsupported
	}
	return f.SetSettingFunc(s, v)
}

func (f *Funcs) Setting(s Setting) (fixed.Value, error) {
	if f.SettingFunc == nil {
		return fixed.Zero, errcode.Unsupported
	}
	return f.SettingFunc(s)
}

func (f *Funcs) SetTorqueTarget(v fixed.Value) error {
	return setOr(f.SetTorqueTargetFunc, v)
}

func (f *Funcs) TorqueTarget() (fixed.Value, error) {
	return getOr(f.TorqueTargetFunc)
}

func (f *Funcs) SetVelocityTarget(v fixed.Value) error {
	return setOr(f.SetVelocityTargetFunc, v)
}

func (f *Funcs) VelocityTarget() (fixed.Value, error) {
	return getOr(f.VelocityTargetFunc)
}

func (f *Funcs) SetPositionTarget(v fixed.Value) error {
	return setOr(f.SetPositionTargetFunc, v)
}

func (f *Funcs) PositionTarget() (fixed.Value, error) {
	return getOr(f.PositionTargetFunc)
}

func (f *Funcs) Torque() (fixed.Value, error) { return getOr(f.TorqueFunc) }

func (f *Funcs) Velocity() (fixed.Value, error) { return getOr(f.VelocityFunc) }

func (f *Funcs) Position() (fixed.Value, error) { return getOr(f.PositionFunc) }

func setOr(fn func(fixed.Value) error, v fixed.Value) error {
	if fn == nil {
		return errcode.Unsupported
	}
	return fn(v)
}

func getOr(fn func() (fixed.Value, error)) (fixed.Value, error) {
	if fn == nil {
		return fixed.Zero, errcode.Unsupported
	}
	return fn()
}
