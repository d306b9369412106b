package actuator

import (
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

// slot resolves the implementation of op on a. A slot is present when a
// implements T and, if a is a Supporter, Supports(op) is true.
func slot[T any](a Actuator, op Op) (T, bool) {
	impl, ok := a.(T)
	if !ok {
		return impl, false
	}
	if s, ok := a.(Supporter); ok && !s.Supports(op) {
		var zero T
		return zero, false
	}
	return impl, true
}

// Supports reports whether a provides op.
func Supports(a Actuator, op Op) bool {
	switch op {
	case OpSetControlMode:
		return has[ControlModeSetter](a, op)
	case OpEnable:
		return has[Enabler](a, op)
	case OpDisable:
		return has[Disabler](a, op)
	case OpSetSetting:
		return has[SettingSetter](a, op)
	case OpGetSetting:
		return has[SettingGetter](a, op)
	case OpSetTorqueTarget:
		return has[TorqueTargetSetter](a, op)
	case OpGetTorqueTarget:
		return has[TorqueTargetGetter](a, op)
	case OpSetVelocityTarget:
		return has[VelocityTargetSetter](a, op)
	case OpGetVelocityTarget:
		return has[VelocityTargetGetter](a, op)
	case OpSetPositionTarget:
		return has[PositionTargetSetter](a, op)
	case OpGetPositionTarget:
		return has[PositionTargetGetter](a, op)
	case OpGetTorque:
		return has[TorqueReader](a, op)
	case OpGetVelocity:
		return has[VelocityReader](a, op)
	case OpGetPosition:
		return has[PositionReader](a, op)
	case OpGetControlMode:
		return has[ControlModeGetter](a, op)
	case OpIsEnabled:
		return has[EnabledReporter](a, op)
	}
	return false
}

func has[T any](a Actuator, op Op) bool {
	_, ok := slot[T](a, op)
	return ok
}

// Capabilities returns the set of operations a provides.
func Capabilities(a Actuator) Set {
	var s Set
	for o := Op(0); o < numOps; o++ {
		if Supports(a, o) {
			s = s.With(o)
		}
	}
	return s
}

// ---- Dispatch facade ----
//
// Every function below has the same shape: resolve the slot, return
// errcode.Unsupported if it is absent, otherwise forward and return the
// implementation's outcome untouched.

func SetControlMode(a Actuator, m Mode) error {
	impl, ok := slot[ControlModeSetter](a, OpSetControlMode)
	if !ok {
		return errcode.Unsupported
	}
	return impl.SetControlMode(m)
}

func GetControlMode(a Actuator) (Mode, error) {
	impl, ok := slot[ControlModeGetter](a, OpGetControlMode)
	if !ok {
		return ModeUnspecified, errcode.Unsupported
	}
	return impl.ControlMode()
}

func Enable(a Actuator) error {
	impl, ok := slot[Enabler](a, OpEnable)
	if !ok {
		return errcode.Unsupported
	}
	return impl.Enable()
}

func Disable(a Actuator) error {
	impl, ok := slot[Disabler](a, OpDisable)
	if !ok {
		return errcode.Unsupported
	}
	return impl.Disable()
}

func IsEnabled(a Actuator) (bool, error) {
	impl, ok := slot[EnabledReporter](a, OpIsEnabled)
	if !ok {
		return false, errcode.Unsupported
	}
	return impl.Enabled()
}

func SetSetting(a Actuator, s Setting, v fixed.Value) error {
	impl, ok := slot[SettingSetter](a, OpSetSetting)
	if !ok {
		return errcode.Unsupported
	}
	return impl.SetSetting(s, v)
}

func GetSetting(a Actuator, s Setting) (fixed.Value, error) {
	impl, ok := slot[SettingGetter](a, OpGetSetting)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.Setting(s)
}

func SetTorqueTarget(a Actuator, v fixed.Value) error {
	impl, ok := slot[TorqueTargetSetter](a, OpSetTorqueTarget)
	if !ok {
		return errcode.Unsupported
	}
	return impl.SetTorqueTarget(v)
}

func GetTorqueTarget(a Actuator) (fixed.Value, error) {
	impl, ok := slot[TorqueTargetGetter](a, OpGetTorqueTarget)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.TorqueTarget()
}

func SetVelocityTarget(a Actuator, v fixed.Value) error {
	impl, ok := slot[VelocityTargetSetter](a, OpSetVelocityTarget)
	if !ok {
		return errcode.Unsupported
	}
	return impl.SetVelocityTarget(v)
}

func GetVelocityTarget(a Actuator) (fixed.Value, error) {
	impl, ok := slot[VelocityTargetGetter](a, OpGetVelocityTarget)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.VelocityTarget()
}

func SetPositionTarget(a Actuator, v fixed.Value) error {
	impl, ok := slot[PositionTargetSetter](a, OpSetPositionTarget)
	if !ok {
		return errcode.Unsupported
	}
	return impl.SetPositionTarget(v)
}

func GetPositionTarget(a Actuator) (fixed.Value, error) {
	impl, ok := slot[PositionTargetGetter](a, OpGetPositionTarget)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.PositionTarget()
}

func GetTorque(a Actuator) (fixed.Value, error) {
	impl, ok := slot[TorqueReader](a, OpGetTorque)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.Torque()
}

func GetVelocity(a Actuator) (fixed.Value, error) {
	impl, ok := slot[VelocityReader](a, OpGetVelocity)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.Velocity()
}

func GetPosition(a Actuator) (fixed.Value, error) {
	impl, ok := slot[PositionReader](a, OpGetPosition)
	if !ok {
		return fixed.Zero, errcode.Unsupported
	}
	return impl.Position()
}
