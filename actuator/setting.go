package actuator

import (
	"strings"

	"actuatorcode-go/errcode"
	"actuatorcode-go/x/conv"
)

// Setting identifies a tunable parameter.
//
// Identifiers below PrivateBase are common: they mean the same thing on every
// actuator. Identifiers at or above PrivateBase belong to the implementation
// and are opaque to everyone else; build them with Private.
type Setting uint32

const (
	SettingNone Setting = iota

	TorqueKp
	TorqueKi
	TorqueKd
	TorqueIntegratorLimit
	TorqueMaxOutput

	VelocityKp
	VelocityKi
	VelocityKd
	VelocityIntegratorLimit
	VelocityMaxOutput

	PositionKp
	PositionKi
	PositionKd
	PositionIntegratorLimit
	PositionMaxOutput

	PolePairs

	commonEnd
)

// PrivateBase is the first implementation-private identifier.
const PrivateBase Setting = 0x10000

// Private returns the implementation-private setting with the given key.
func Private(key uint16) Setting { return PrivateBase + Setting(key) }

var settingNames = [commonEnd]string{
	SettingNone:             "none",
	TorqueKp:                "torque_kp",
	TorqueKi:                "torque_ki",
	TorqueKd:                "torque_kd",
	TorqueIntegratorLimit:   "torque_integrator_limit",
	TorqueMaxOutput:         "torque_max_output",
	VelocityKp:              "velocity_kp",
	VelocityKi:              "velocity_ki",
	VelocityKd:              "velocity_kd",
	VelocityIntegratorLimit: "velocity_integrator_limit",
	VelocityMaxOutput:       "velocity_max_output",
	PositionKp:              "position_kp",
	PositionKi:              "position_ki",
	PositionKd:              "position_kd",
	PositionIntegratorLimit: "position_integrator_limit",
	PositionMaxOutput:       "position_max_output",
	PolePairs:               "pole_pairs",
}

const privatePrefix = "private:"

// CommonSettings lists every common identifier in declaration order.
func CommonSettings() []Setting {
	out := make([]Setting, 0, commonEnd-1)
	for s := TorqueKp; s < commonEnd; s++ {
		out = append(out, s)
	}
	return out
}

func (s Setting) IsCommon() bool  { return s > SettingNone && s < commonEnd }
func (s Setting) IsPrivate() bool { return s >= PrivateBase && s-PrivateBase <= 0xFFFF }

// PrivateKey returns the key passed to Private.
func (s Setting) PrivateKey() (uint16, bool) {
	if !s.IsPrivate() {
		return 0, false
	}
	return uint16(s - PrivateBase), true
}

func (s Setting) String() string {
	if s < commonEnd {
		return settingNames[s]
	}
	if k, ok := s.PrivateKey(); ok {
		return privatePrefix + itoa(int64(k))
	}
	return "setting(" + itoa(int64(s)) + ")"
}

// ParseSetting accepts a common name or "private:<key>".
func ParseSetting(name string) (Setting, error) {
	if rest, ok := strings.CutPrefix(name, privatePrefix); ok {
		k, ok := atou16(rest)
		if !ok {
			return SettingNone, errcode.InvalidSetting
		}
		return Private(k), nil
	}
	for s := TorqueKp; s < commonEnd; s++ {
		if settingNames[s] == name {
			return s, nil
		}
	}
	return SettingNone, errcode.InvalidSetting
}

func (s Setting) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Setting) UnmarshalText(b []byte) error {
	v, err := ParseSetting(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func itoa(n int64) string {
	var buf [20]byte
	return string(conv.Itoa(buf[:], n))
}

func atou16(s string) (uint16, bool) {
	if s == "" || len(s) > 5 {
		return 0, false
	}
	var n uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint32(c-'0')
	}
	if n > 0xFFFF {
		return 0, false
	}
	return uint16(n), true
}
