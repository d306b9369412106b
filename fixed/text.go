package fixed

import (
	"encoding/binary"
	"math"

	"actuatorcode-go/errcode"
	"actuatorcode-go/x/conv"
)

// Size is the encoded length of a Value on the wire.
const Size = 8

// String formats v as a decimal with trailing fractional zeros trimmed.
func (v Value) String() string {
	var buf [24]byte
	return string(v.AppendText(buf[:0]))
}

// AppendText appends the decimal form of v to b.
func (v Value) AppendText(b []byte) []byte {
	m := v.Micros()
	if m < 0 {
		b = append(b, '-')
	}
	u := absU64(m)
	var tmp [20]byte
	b = append(b, conv.Utoa(tmp[:], u/Scale)...)
	frac := u % Scale
	if frac == 0 {
		return b
	}
	var digits [6]byte
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i] = byte('0' + frac%10)
		frac /= 10
	}
	n := len(digits)
	for n > 0 && digits[n-1] == '0' {
		n--
	}
	b = append(b, '.')
	return append(b, digits[:n]...)
}

func (v Value) MarshalText() ([]byte, error) { return v.AppendText(nil), nil }

func (v *Value) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Parse reads a decimal such as "-1.5", "+3", ".25" or "2.000001".
// At most six fractional digits are accepted; no rounding is applied.
func Parse(s string) (Value, error) {
	if s == "" {
		return Value{}, errcode.InvalidParams
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	var whole, frac int64
	var seenDigit, seenDot bool
	fracDigits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.' && !seenDot:
			seenDot = true
		case c >= '0' && c <= '9':
			seenDigit = true
			d := int64(c - '0')
			if seenDot {
				if fracDigits == 6 {
					return Value{}, errcode.InvalidParams
				}
				frac = frac*10 + d
				fracDigits++
				continue
			}
			whole = whole*10 + d
			if whole > math.MaxInt32 {
				return Value{}, errcode.Overflow
			}
		default:
			return Value{}, errcode.InvalidParams
		}
	}
	if !seenDigit {
		return Value{}, errcode.InvalidParams
	}
	for ; fracDigits < 6; fracDigits++ {
		frac *= 10
	}
	m := whole*Scale + frac
	if neg {
		m = -m
	}
	return FromMicros(m)
}

// MustParse is Parse for literals.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic("fixed: bad literal " + s)
	}
	return v
}

// PutBytes writes v as two big-endian int32s (Int then Frac). b must hold Size bytes.
func (v Value) PutBytes(b []byte) {
	binary.BigEndian.PutUint32(b[0:4], uint32(v.Int))
	binary.BigEndian.PutUint32(b[4:8], uint32(v.Frac))
}

// FromBytes decodes the PutBytes layout and rejects malformed values.
func FromBytes(b []byte) (Value, error) {
	if len(b) < Size {
		return Value{}, errcode.InvalidPayload
	}
	v := Value{
		Int:  int32(binary.BigEndian.Uint32(b[0:4])),
		Frac: int32(binary.BigEndian.Uint32(b[4:8])),
	}
	if !v.Valid() {
		return Value{}, errcode.InvalidPayload
	}
	return v, nil
}

// UnmarshalJSON accepts a quoted decimal or a bare JSON number. Numbers are
// parsed from their literal text, so "0.1" stays exact.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return v.UnmarshalText([]byte(s))
}
