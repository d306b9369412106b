// Package fixed implements the fixed-point representation used for every
// physical quantity crossing the actuator contract: torque, velocity,
// position and loop gains.
//
// A Value is a whole part plus a signed fraction in millionths:
//
//	real = Int + Frac × 10⁻⁶
//
// Both fields carry the sign of the value, so −1.5 is {Int: −1, Frac: −500000}.
package fixed

import (
	"math"
	"math/big"
	"math/bits"

	"actuatorcode-go/errcode"
)

// Scale is the number of fractional units per whole unit.
const Scale = 1_000_000

const (
	maxMicros = int64(math.MaxInt32)*Scale + (Scale - 1)
	minMicros = -maxMicros
)

// Value is a signed fixed-point quantity with micro-unit resolution.
type Value struct {
	Int  int32 // whole units
	Frac int32 // millionths; same sign as Int when both are non-zero
}

// Zero is the zero value, spelled out for readability at call sites.
var Zero = Value{}

// New builds a Value from a whole part and a fraction in millionths.
// The fraction may be any magnitude or sign; the result is normalised so that
// |Frac| < Scale and the two fields agree in sign.
func New(whole, micros int64) (Value, error) {
	if whole > math.MaxInt32 || whole < math.MinInt32 {
		return Value{}, errcode.Overflow
	}
	if micros > 2*maxMicros || micros < 2*minMicros {
		return Value{}, errcode.Overflow
	}
	return FromMicros(whole*Scale + micros)
}

// FromMicros converts a count of millionths into a Value.
func FromMicros(m int64) (Value, error) {
	if m > maxMicros || m < minMicros {
		return Value{}, errcode.Overflow
	}
	// Go division truncates toward zero, which keeps both parts on the same side.
	return Value{Int: int32(m / Scale), Frac: int32(m % Scale)}, nil
}

// MustMicros is FromMicros for constants known to be in range.
func MustMicros(m int64) Value {
	v, err := FromMicros(m)
	if err != nil {
		panic(err)
	}
	return v
}

// FromInt returns the whole number n.
func FromInt(n int32) Value { return Value{Int: n} }

// FromFloat64 rounds f to the nearest millionth.
func FromFloat64(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, errcode.InvalidParams
	}
	whole, frac := math.Modf(f)
	if whole > math.MaxInt32 || whole < -math.MaxInt32 {
		return Value{}, errcode.Overflow
	}
	// Inside (-2³¹, 2³¹) a carry past the last representable millionth saturates.
	m := int64(whole)*Scale + int64(math.Round(frac*Scale))
	return FromMicros(max(minMicros, min(m, maxMicros)))
}

// FromRat rounds r to the nearest millionth, halves away from zero.
func FromRat(r *big.Rat) (Value, error) {
	if r == nil {
		return Value{}, errcode.InvalidParams
	}
	num := new(big.Int).Mul(r.Num(), big.NewInt(Scale))
	den := r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	// |rem|*2 >= den rounds away from zero.
	rem.Abs(rem).Lsh(rem, 1)
	if rem.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		return Value{}, errcode.Overflow
	}
	return FromMicros(q.Int64())
}

// Micros returns the value as a count of millionths.
func (v Value) Micros() int64 { return int64(v.Int)*Scale + int64(v.Frac) }

// Float64 returns the nearest float64.
func (v Value) Float64() float64 { return float64(v.Int) + float64(v.Frac)/Scale }

// Rat returns the exact rational value.
func (v Value) Rat() *big.Rat { return big.NewRat(v.Micros(), Scale) }

// Valid reports whether the fields obey the sign and range rules.
func (v Value) Valid() bool {
	if v.Frac >= Scale || v.Frac <= -Scale {
		return false
	}
	return !(v.Int > 0 && v.Frac < 0) && !(v.Int < 0 && v.Frac > 0)
}

// Normalize repairs a Value whose fields disagree in sign or whose fraction
// spills past a whole unit.
func (v Value) Normalize() (Value, error) { return New(int64(v.Int), int64(v.Frac)) }

func (v Value) Sign() int {
	switch m := v.Micros(); {
	case m < 0:
		return -1
	case m > 0:
		return 1
	}
	return 0
}

func (v Value) IsZero() bool { return v.Int == 0 && v.Frac == 0 }

// Cmp returns -1, 0 or +1.
func (v Value) Cmp(w Value) int {
	a, b := v.Micros(), w.Micros()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (v Value) Neg() Value { return Value{Int: -v.Int, Frac: -v.Frac} }

func (v Value) Abs() Value {
	if v.Sign() < 0 {
		return v.Neg()
	}
	return v
}

func (v Value) Add(w Value) (Value, error) { return FromMicros(v.Micros() + w.Micros()) }

func (v Value) Sub(w Value) (Value, error) { return FromMicros(v.Micros() - w.Micros()) }

// Mul returns v×w rounded to the nearest millionth.
func (v Value) Mul(w Value) (Value, error) {
	a, b := v.Micros(), w.Micros()
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(absU64(a), absU64(b))
	if hi >= Scale {
		return Value{}, errcode.Overflow
	}
	q, rem := bits.Div64(hi, lo, Scale)
	if rem*2 >= Scale {
		q++
	}
	if q > uint64(maxMicros) {
		return Value{}, errcode.Overflow
	}
	m := int64(q)
	if neg {
		m = -m
	}
	return FromMicros(m)
}

func absU64(n int64) uint64 {
	if n < 0 {
		return uint64(-n)
	}
	return uint64(n)
}
