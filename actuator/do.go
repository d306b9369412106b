package actuator

import (
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

// Call is one operation in data form. Only the fields the operation uses are read.
type Call struct {
	Op      Op
	Mode    Mode
	Setting Setting
	Value   fixed.Value
}

// Result carries whatever a get-style operation produced.
type Result struct {
	Value   fixed.Value
	Mode    Mode
	Enabled bool
}

// Do dispatches c through the facade function for c.Op.
func Do(a Actuator, c Call) (Result, error) {
	var (
		r   Result
		err error
	)
	switch c.Op {
	case OpSetControlMode:
		err = SetControlMode(a, c.Mode)
	case OpGetControlMode:
		r.Mode, err = GetControlMode(a)
	case OpEnable:
		err = Enable(a)
	case OpDisable:
		err = Disable(a)
	case OpIsEnabled:
		r.Enabled, err = IsEnabled(a)
	case OpSetSetting:
		err = SetSetting(a, c.Setting, c.Value)
	case OpGetSetting:
		r.Value, err = GetSetting(a, c.Setting)
	case OpSetTorqueTarget:
		err = SetTorqueTarget(a, c.Value)
	case OpGetTorqueTarget:
		r.Value, err = GetTorqueTarget(a)
	case OpSetVelocityTarget:
		err = SetVelocityTarget(a, c.Value)
	case OpGetVelocityTarget:
		r.Value, err = GetVelocityTarget(a)
	case OpSetPositionTarget:
		err = SetPositionTarget(a, c.Value)
	case OpGetPositionTarget:
		r.Value, err = GetPositionTarget(a)
	case OpGetTorque:
		r.Value, err = GetTorque(a)
	case OpGetVelocity:
		r.Value, err = GetVelocity(a)
	case OpGetPosition:
		r.Value, err = GetPosition(a)
	default:
		err = errcode.Unsupported
	}
	return r, err
}
