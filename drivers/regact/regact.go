// Package regact drives an actuator controller that exposes its interface as
// I²C registers, one register per operation.
//
// Wire format (big-endian throughout):
// • mode: 1 byte, the actuator.Mode number.
// • enable/disable: write 1 or 0 to the operation's register.
// • is_enabled: read 1 byte, non-zero means enabled.
// • values: 8 bytes, fixed.Value Int then Frac.
// • settings: the 4-byte setting id follows the register, then the value.
package regact

import (
	"encoding/binary"
	"sync"

	"tinygo.org/x/drivers"

	"actuatorcode-go/actuator"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

const AddressDefault uint16 = 0x40

// Config maps operations to controller registers. Operations with no
// register are reported as unsupported.
type Config struct {
	Address   uint16
	Registers map[actuator.Op]byte
}

type Device struct {
	id   string
	i2c  drivers.I2C
	addr uint16
	regs map[actuator.Op]byte

	mu sync.Mutex
	// Fixed buffers: register + setting id + value.
	w [1 + 4 + fixed.Size]byte
	r [fixed.Size]byte
}

func New(id string, i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	regs := make(map[actuator.Op]byte, len(cfg.Registers))
	for op, r := range cfg.Registers {
		regs[op] = r
	}
	return &Device{id: id, i2c: i2c, addr: addr, regs: regs}
}

func (d *Device) ID() string { return d.id }

func (d *Device) Supports(op actuator.Op) bool {
	_, ok := d.regs[op]
	return ok
}

func (d *Device) SetControlMode(m actuator.Mode) error {
	if !m.Valid() {
		return errcode.InvalidMode
	}
	return d.writeByte(actuator.OpSetControlMode, byte(m))
}

func (d *Device) ControlMode() (actuator.Mode, error) {
	b, err := d.readByte(actuator.OpGetControlMode)
	if err != nil {
		return actuator.ModeUnspecified, err
	}
	m := actuator.Mode(b)
	if !m.Valid() {
		return actuator.ModeUnspecified, &errcode.E{C: errcode.InvalidPayload, Op: "get_mode", Msg: "controller reported unknown mode"}
	}
	return m, nil
}

func (d *Device) Enable() error  { return d.writeByte(actuator.OpEnable, 1) }
func (d *Device) Disable() error { return d.writeByte(actuator.OpDisable, 0) }

func (d *Device) Enabled() (bool, error) {
	b, err := d.readByte(actuator.OpIsEnabled)
	return b != 0, err
}

func (d *Device) SetSetting(s actuator.Setting, v fixed.Value) error {
	if s == actuator.SettingNone {
		return errcode.InvalidSetting
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.reg(actuator.OpSetSetting)
	if err != nil {
		return err
	}
	d.w[0] = reg
	binary.BigEndian.PutUint32(d.w[1:5], uint32(s))
	v.PutBytes(d.w[5:])
	return d.tx(actuator.OpSetSetting, d.w[:], nil)
}

func (d *Device) Setting(s actuator.Setting) (fixed.Value, error) {
	if s == actuator.SettingNone {
		return fixed.Zero, errcode.InvalidSetting
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.reg(actuator.OpGetSetting)
	if err != nil {
		return fixed.Zero, err
	}
	d.w[0] = reg
	binary.BigEndian.PutUint32(d.w[1:5], uint32(s))
	if err := d.tx(actuator.OpGetSetting, d.w[:5], d.r[:]); err != nil {
		return fixed.Zero, err
	}
	return fixed.FromBytes(d.r[:])
}

func (d *Device) SetTorqueTarget(v fixed.Value) error {
	return d.writeValue(actuator.OpSetTorqueTarget, v)
}
func (d *Device) TorqueTarget() (fixed.Value, error) {
	return d.readValue(actuator.OpGetTorqueTarget)
}
func (d *Device) SetVelocityTarget(v fixed.Value) error {
	return d.writeValue(actuator.OpSetVelocityTarget, v)
}
func (d *Device) VelocityTarget() (fixed.Value, error) {
	return d.readValue(actuator.OpGetVelocityTarget)
}
func (d *Device) SetPositionTarget(v fixed.Value) error {
	return d.writeValue(actuator.OpSetPositionTarget, v)
}
func (d *Device) PositionTarget() (fixed.Value, error) {
	return d.readValue(actuator.OpGetPositionTarget)
}

func (d *Device) Torque() (fixed.Value, error)   { return d.readValue(actuator.OpGetTorque) }
func (d *Device) Velocity() (fixed.Value, error) { return d.readValue(actuator.OpGetVelocity) }
func (d *Device) Position() (fixed.Value, error) { return d.readValue(actuator.OpGetPosition) }

// ---- register access ----

func (d *Device) reg(op actuator.Op) (byte, error) {
	r, ok := d.regs[op]
	if !ok {
		return 0, errcode.Unsupported
	}
	return r, nil
}

func (d *Device) tx(op actuator.Op, w, r []byte) error {
	if err := d.i2c.Tx(d.addr, w, r); err != nil {
		return errcode.Wrap(errcode.MapDriverErr(err), op.String(), err)
	}
	return nil
}

func (d *Device) writeByte(op actuator.Op, b byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.reg(op)
	if err != nil {
		return err
	}
	d.w[0], d.w[1] = reg, b
	return d.tx(op, d.w[:2], nil)
}

func (d *Device) readByte(op actuator.Op) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.reg(op)
	if err != nil {
		return 0, err
	}
	d.w[0] = reg
	if err := d.tx(op, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *Device) writeValue(op actuator.Op, v fixed.Value) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.reg(op)
	if err != nil {
		return err
	}
	d.w[0] = reg
	v.PutBytes(d.w[1 : 1+fixed.Size])
	return d.tx(op, d.w[:1+fixed.Size], nil)
}

func (d *Device) readValue(op actuator.Op) (fixed.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg, err := d.reg(op)
	if err != nil {
		return fixed.Zero, err
	}
	d.w[0] = reg
	if err := d.tx(op, d.w[:1], d.r[:]); err != nil {
		return fixed.Zero, err
	}
	return fixed.FromBytes(d.r[:])
}

// RegisterMap parses op-name keyed registers, as found in configuration.
func RegisterMap(m map[string]int) (map[actuator.Op]byte, error) {
	out := make(map[actuator.Op]byte, len(m))
	for name, r := range m {
		op, err := actuator.ParseOp(name)
		if err != nil {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "register_map", Msg: "unknown operation " + name, Err: err}
		}
		if r < 0 || r > 0xFF {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "register_map", Msg: name}
		}
		out[op] = byte(r)
	}
	return out, nil
}
