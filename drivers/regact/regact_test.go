package regact

import (
	"encoding/binary"
	"errors"
	"testing"

	"tinygo.org/x/drivers"

	"actuatorcode-go/actuator"
	"actuatorcode-go/errcode"
	"actuatorcode-go/fixed"
)

var _ drivers.I2C = (*fakeCtl)(nil)

// fakeCtl is a register-file controller: one 8-byte slot per register and a
// per-id table for settings.
type fakeCtl struct {
	addr     uint16
	regs     map[byte][]byte
	settings map[uint32][]byte
	fail     error
	txs      int
}

const (
	rMode     = 0x01
	rEnable   = 0x02
	rDisable  = 0x03
	rEnabled  = 0x04
	rSetSet   = 0x05
	rGetSet   = 0x06
	rTorqueT  = 0x10
	rPosT     = 0x12
	rPosition = 0x22
)

func newFake() *fakeCtl {
	return &fakeCtl{addr: AddressDefault, regs: map[byte][]byte{}, settings: map[uint32][]byte{}}
}

func (f *fakeCtl) Tx(addr uint16, w, r []byte) error {
	f.txs++
	if f.fail != nil {
		return f.fail
	}
	if addr != f.addr || len(w) == 0 {
		return errors.New("nack")
	}
	reg := w[0]
	switch reg {
	case rEnable, rDisable:
		f.regs[rEnabled] = []byte{w[1]}
		return nil
	case rSetSet:
		f.settings[binary.BigEndian.Uint32(w[1:5])] = append([]byte(nil), w[5:]...)
		return nil
	case rGetSet:
		v, ok := f.settings[binary.BigEndian.Uint32(w[1:5])]
		if !ok {
			v = make([]byte, fixed.Size)
		}
		copy(r, v)
		return nil
	}
	if len(r) > 0 {
		copy(r, f.regs[reg])
		return nil
	}
	f.regs[reg] = append([]byte(nil), w[1:]...)
	return nil
}

func allRegs() map[actuator.Op]byte {
	return map[actuator.Op]byte{
		actuator.OpSetControlMode:    rMode,
		actuator.OpGetControlMode:    rMode,
		actuator.OpEnable:            rEnable,
		actuator.OpDisable:           rDisable,
		actuator.OpIsEnabled:         rEnabled,
		actuator.OpSetSetting:        rSetSet,
		actuator.OpGetSetting:        rGetSet,
		actuator.OpSetTorqueTarget:   rTorqueT,
		actuator.OpGetTorqueTarget:   rTorqueT,
		actuator.OpSetPositionTarget: rPosT,
		actuator.OpGetPositionTarget: rPosT,
		actuator.OpGetPosition:       rPosition,
	}
}

func TestModeAndEnableRoundTrip(t *testing.T) {
	f := newFake()
	d := New("j1", f, Config{Registers: allRegs()})

	if err := actuator.SetControlMode(d, actuator.ModePosition); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	m, err := actuator.GetControlMode(d)
	if err != nil || m != actuator.ModePosition {
		t.Fatalf("mode = %v, %v", m, err)
	}
	if err := actuator.Enable(d); err != nil {
		t.Fatal(err)
	}
	on, err := actuator.IsEnabled(d)
	if err != nil || !on {
		t.Fatalf("enabled = %v, %v", on, err)
	}
	if err := actuator.Disable(d); err != nil {
		t.Fatal(err)
	}
	if on, _ := actuator.IsEnabled(d); on {
		t.Fatal("still enabled after disable")
	}
}

func TestValuesTravelAsFixedPoint(t *testing.T) {
	f := newFake()
	d := New("j1", f, Config{Registers: allRegs()})

	want := fixed.MustParse("-1.5")
	if err := actuator.SetPositionTarget(d, want); err != nil {
		t.Fatal(err)
	}
	raw := f.regs[rPosT]
	if len(raw) != fixed.Size {
		t.Fatalf("wire len = %d", len(raw))
	}
	if int32(binary.BigEndian.Uint32(raw[0:4])) != -1 || int32(binary.BigEndian.Uint32(raw[4:8])) != -500000 {
		t.Fatalf("wire = % x", raw)
	}
	got, err := actuator.GetPositionTarget(d)
	if err != nil || got != want {
		t.Fatalf("target = %v, %v", got, err)
	}

	f.regs[rPosition] = raw
	pos, err := actuator.GetPosition(d)
	if err != nil || pos != want {
		t.Fatalf("position = %v, %v", pos, err)
	}
}

func TestSettingsCarryID(t *testing.T) {
	f := newFake()
	d := New("j1", f, Config{Registers: allRegs()})

	kp := fixed.MustParse("12.25")
	priv := actuator.Private(3)
	if err := actuator.SetSetting(d, actuator.PositionKp, kp); err != nil {
		t.Fatal(err)
	}
	if err := actuator.SetSetting(d, priv, fixed.FromInt(9)); err != nil {
		t.Fatal(err)
	}
	if got, _ := actuator.GetSetting(d, actuator.PositionKp); got != kp {
		t.Fatalf("kp = %v", got)
	}
	if got, _ := actuator.GetSetting(d, priv); got != fixed.FromInt(9) {
		t.Fatalf("private = %v", got)
	}
	if err := actuator.SetSetting(d, actuator.SettingNone, kp); errcode.Of(err) != errcode.InvalidSetting {
		t.Fatalf("none setting err = %v", err)
	}
}

func TestUnmappedOpsAreUnsupported(t *testing.T) {
	f := newFake()
	d := New("j1", f, Config{Registers: map[actuator.Op]byte{actuator.OpGetPosition: rPosition}})

	if got := actuator.Capabilities(d); got != actuator.SetOf(actuator.OpGetPosition) {
		t.Fatalf("caps = %v", got)
	}
	if _, err := actuator.GetVelocity(d); err != errcode.Unsupported {
		t.Fatalf("velocity err = %v", err)
	}
	if err := actuator.SetTorqueTarget(d, fixed.FromInt(1)); err != errcode.Unsupported {
		t.Fatalf("torque err = %v", err)
	}
	if f.txs != 0 {
		t.Fatalf("unsupported ops reached the bus: %d txs", f.txs)
	}
}

func TestBusFaultsAreCoded(t *testing.T) {
	f := newFake()
	f.fail = errors.New("i2c timeout")
	d := New("j1", f, Config{Registers: allRegs()})

	err := actuator.Enable(d)
	if errcode.Of(err) != errcode.BusError {
		t.Fatalf("code = %v", errcode.Of(err))
	}
	if !errors.Is(err, f.fail) {
		t.Fatal("cause not preserved")
	}
}

func TestUnknownModeFromController(t *testing.T) {
	f := newFake()
	f.regs[rMode] = []byte{9}
	d := New("j1", f, Config{Registers: allRegs()})
	if _, err := actuator.GetControlMode(d); errcode.Of(err) != errcode.InvalidPayload {
		t.Fatalf("err = %v", err)
	}
}

func TestRegisterMap(t *testing.T) {
	m, err := RegisterMap(map[string]int{"get_position": 0x22, "set_mode": 1})
	if err != nil {
		t.Fatal(err)
	}
	if m[actuator.OpGetPosition] != 0x22 || m[actuator.OpSetControlMode] != 1 {
		t.Fatalf("map = %v", m)
	}
	if _, err := RegisterMap(map[string]int{"spin": 1}); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("unknown op: err = %v", err)
	}
	if _, err := RegisterMap(map[string]int{"enable": 300}); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v", err)
	}
}
