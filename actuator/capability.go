package actuator

import (
	"strings"

	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

// Actuator is a handle to one physical or virtual actuator. It owns no
// control state itself; everything lives in the implementation.
type Actuator interface {
	ID() string
}

// ---- Capability table: one optional slot per interface ----

type ControlModeSetter interface {
	SetControlMode(m Mode) error
}

type ControlModeGetter interface {
	ControlMode() (Mode, error)
}

type Enabler interface {
	Enable() error
}

type Disabler interface {
	Disable() error
}

type EnabledReporter interface {
	Enabled() (bool, error)
}

type SettingSetter interface {
	SetSetting(s Setting, v fixed.Value) error
}

type SettingGetter interface {
	Setting(s Setting) (fixed.Value, error)
}

type TorqueTargetSetter interface {
	SetTorqueTarget(v fixed.Value) error
}

type TorqueTargetGetter interface {
	TorqueTarget() (fixed.Value, error)
}

type VelocityTargetSetter interface {
	SetVelocityTarget(v fixed.Value) error
}

type VelocityTargetGetter interface {
	VelocityTarget() (fixed.Value, error)
}

type PositionTargetSetter interface {
	SetPositionTarget(v fixed.Value) error
}

type PositionTargetGetter interface {
	PositionTarget() (fixed.Value, error)
}

type TorqueReader interface {
	Torque() (fixed.Value, error)
}

type VelocityReader interface {
	Velocity() (fixed.Value, error)
}

type PositionReader interface {
	Position() (fixed.Value, error)
}

// Supporter lets an implementation withdraw a slot whose method it has
// (proxies, register maps, capability masks). Slots without a method are
// absent regardless of Supports.
type Supporter interface {
	Supports(op Op) bool
}

// ---- Operation identifiers ----

// Op names one slot of the capability table.
type Op uint8

const (
	OpSetControlMode Op = iota
	OpEnable
	OpDisable
	OpSetSetting
	OpGetSetting
	OpSetTorqueTarget
	OpGetTorqueTarget
	OpSetVelocityTarget
	OpGetVelocityTarget
	OpSetPositionTarget
	OpGetPositionTarget
	OpGetTorque
	OpGetVelocity
	OpGetPosition
	OpGetControlMode
	OpIsEnabled

	numOps
)

var opNames = [numOps]string{
	OpSetControlMode:    "set_mode",
	OpEnable:            "enable",
	OpDisable:           "disable",
	OpSetSetting:        "set_setting",
	OpGetSetting:        "get_setting",
	OpSetTorqueTarget:   "set_torque_target",
	OpGetTorqueTarget:   "get_torque_target",
	OpSetVelocityTarget: "set_velocity_target",
	OpGetVelocityTarget: "get_velocity_target",
	OpSetPositionTarget: "set_position_target",
	OpGetPositionTarget: "get_position_target",
	OpGetTorque:         "get_torque",
	OpGetVelocity:       "get_velocity",
	OpGetPosition:       "get_position",
	OpGetControlMode:    "get_mode",
	OpIsEnabled:         "is_enabled",
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return "op(" + itoa(int64(o)) + ")"
}

// ParseOp accepts the String form of an operation.
func ParseOp(s string) (Op, error) {
	for o := Op(0); o < numOps; o++ {
		if opNames[o] == s {
			return o, nil
		}
	}
	return numOps, errcode.Unsupported
}

// AllOps lists every operation in table order.
func AllOps() []Op {
	out := make([]Op, numOps)
	for i := range out {
		out[i] = Op(i)
	}
	return out
}

// ---- Capability sets ----

// Set is a bitset of supported operations.
type Set uint32

// All contains every operation.
const All Set = 1<<numOps - 1

// Named groups accepted by ParseSet.
const (
	StateOps    Set = 1<<OpSetControlMode | 1<<OpGetControlMode | 1<<OpEnable | 1<<OpDisable | 1<<OpIsEnabled
	SettingOps  Set = 1<<OpSetSetting | 1<<OpGetSetting
	TorqueOps   Set = 1<<OpSetTorqueTarget | 1<<OpGetTorqueTarget
	VelocityOps Set = 1<<OpSetVelocityTarget | 1<<OpGetVelocityTarget
	PositionOps Set = 1<<OpSetPositionTarget | 1<<OpGetPositionTarget
	ActualOps   Set = 1<<OpGetTorque | 1<<OpGetVelocity | 1<<OpGetPosition
)

var groups = map[string]Set{
	"all":      All,
	"state":    StateOps,
	"settings": SettingOps,
	"torque":   TorqueOps,
	"velocity": VelocityOps,
	"position": PositionOps,
	"actuals":  ActualOps,
}

func SetOf(ops ...Op) Set {
	var s Set
	for _, o := range ops {
		s = s.With(o)
	}
	return s
}

func (s Set) Has(o Op) bool    { return o < numOps && s&(1<<o) != 0 }
func (s Set) With(o Op) Set    { return s | 1<<o }
func (s Set) Without(o Op) Set { return s &^ (1 << o) }

// Ops lists the members in table order.
func (s Set) Ops() []Op {
	var out []Op
	for o := Op(0); o < numOps; o++ {
		if s.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// Names lists member operation names in table order.
func (s Set) Names() []string {
	ops := s.Ops()
	out := make([]string, len(ops))
	for i, o := range ops {
		out[i] = o.String()
	}
	return out
}

func (s Set) String() string { return strings.Join(s.Names(), ",") }

// ParseSet accepts operation names and the group names
// all, state, settings, torque, velocity, position and actuals.
func ParseSet(names ...string) (Set, error) {
	var s Set
	for _, n := range names {
		if g, ok := groups[n]; ok {
			s |= g
			continue
		}
		o, err := ParseOp(n)
		if err != nil {
			return 0, errcode.InvalidParams
		}
		s = s.With(o)
	}
	return s, nil
}
