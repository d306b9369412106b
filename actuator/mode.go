package actuator

import "actuatorcode-go/errcode"

// Mode selects which quantity the closed loop regulates.
type Mode uint8

const (
	ModeUnspecified Mode = iota // implementation default
	ModeTorque
	ModeVelocity
	ModePosition
)

var modeNames = [...]string{
	ModeUnspecified: "unspecified",
	ModeTorque:      "torque",
	ModeVelocity:    "velocity",
	ModePosition:    "position",
}

// Valid reports whether m is one of the three control modes.
func (m Mode) Valid() bool { return m >= ModeTorque && m <= ModePosition }

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "mode(" + itoa(int64(m)) + ")"
}

// ParseMode accepts the String form of a control mode.
func ParseMode(s string) (Mode, error) {
	for m := ModeTorque; m <= ModePosition; m++ {
		if modeNames[m] == s {
			return m, nil
		}
	}
	return ModeUnspecified, errcode.InvalidMode
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = ModeUnspecified
		return nil
	}
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
