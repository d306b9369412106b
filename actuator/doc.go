// Package actuator is the hardware-agnostic control contract for torque,
// velocity and position actuators.
//
// An implementation supplies any subset of the capability interfaces in this
// package. Callers never invoke those methods directly; they go through the
// package-level functions (SetControlMode, Enable, GetPosition, ...), which
// return errcode.Unsupported when the slot is absent and otherwise forward
// arguments and results unchanged.
//
// Mode and Setting numbers are this module's own identifiers. Zero is
// reserved in both (ModeUnspecified, SettingNone), so torque mode is 1 and the
// common settings run from TorqueKp = 1 to PolePairs = 15, with private keys
// from PrivateBase upward. Register-mapped controllers (drivers/regact) carry
// these numbers on the wire unchanged and must be flashed to match.
//
// The package is stateless. Serialisation of calls on one actuator is the
// implementation's concern.
package actuator
