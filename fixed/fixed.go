// Package fixed implements a Q32.32 fixed-point scalar: 32 integer bits and
// 32 fractional bits in an int64. All operations are deterministic and
// saturate instead of wrapping, so accumulator math produces identical bit
// patterns on every platform. It backs the grid line traversal, where
// floating point would make cell sequences diverge across architectures.
package fixed

import (
	"math"
	"math/bits"
)

// Scalar is a Q32.32 fixed-point value.
type Scalar int64

const (
	// Shift is the number of fractional bits.
	Shift = 32
	// Scale is the Scalar representation of 1.0.
	Scale Scalar = 1 << Shift
	// Mask selects the fractional bits of a Scalar.
	Mask Scalar = Scale - 1
)

// FromInt converts an integer to a Scalar, saturating outside the
// representable [-2^31, 2^31) range.
func FromInt(v int) Scalar {
	if v > math.MaxInt32 {
		return math.MaxInt64
	}
	if v < math.MinInt32 {
		return math.MinInt64
	}
	return Scalar(v) << Shift
}

// FromFloat converts a float64 to the largest Scalar not exceeding it, so
// that ToInt(FromFloat(v)) == floor(v) holds exactly. NaN converts to zero;
// values outside the representable range saturate.
func FromFloat(v float64) Scalar {
	if math.IsNaN(v) {
		return 0
	}
	f := math.Floor(v * float64(Scale))
	if f >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	if f <= float64(math.MinInt64) {
		return math.MinInt64
	}
	return Scalar(f)
}

// ToInt returns the floor of v as an integer.
func ToInt(v Scalar) int {
	return int(v >> Shift)
}

// ToFloat converts v to the nearest float64.
func ToFloat(v Scalar) float64 {
	return float64(v) / float64(Scale)
}

// Frac returns the fractional part of v, always in [0, Scale).
func Frac(v Scalar) Scalar {
	return Mod(v, Scale)
}

// Mul returns a*b computed through a 128-bit intermediate, truncated toward
// zero to 32 fractional bits. Results outside the Scalar range saturate.
func Mul(a, b Scalar) Scalar {
	neg := (a < 0) != (b < 0)
	hi, lo := bits.Mul64(uabs(a), uabs(b))
	if hi >= 1<<Shift {
		return saturated(neg)
	}
	return signed(hi<<(64-Shift)|lo>>Shift, neg)
}

// Div returns a/b computed through a 128-bit intermediate, truncated toward
// zero. Division by zero and out-of-range quotients saturate toward the
// quotient's sign; Div(0, 0) is zero.
func Div(a, b Scalar) Scalar {
	if b == 0 {
		if a == 0 {
			return 0
		}
		return saturated(a < 0)
	}
	neg := (a < 0) != (b < 0)
	ua, ub := uabs(a), uabs(b)
	hi := ua >> (64 - Shift)
	lo := ua << Shift
	if hi >= ub {
		return saturated(neg)
	}
	q, _ := bits.Div64(hi, lo, ub)
	return signed(q, neg)
}

// Mod returns the floored modulo of a by b: the result has the sign of b and
// magnitude below |b|. Mod by zero is zero.
func Mod(a, b Scalar) Scalar {
	if b == 0 {
		return 0
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

// SatAdd returns a+b, saturating instead of wrapping on overflow.
func SatAdd(a, b Scalar) Scalar {
	s := a + b
	if b > 0 && s < a {
		return math.MaxInt64
	}
	if b < 0 && s > a {
		return math.MinInt64
	}
	return s
}

// Abs returns the magnitude of v, saturating Abs(MinInt64) to MaxInt64.
func Abs(v Scalar) Scalar {
	if v >= 0 {
		return v
	}
	if v == math.MinInt64 {
		return math.MaxInt64
	}
	return -v
}

// Min returns the smaller of a and b.
func Min(a, b Scalar) Scalar {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Scalar) Scalar {
	if a > b {
		return a
	}
	return b
}

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi Scalar) Scalar {
	return Max(lo, Min(v, hi))
}

// uabs is the unsigned magnitude of v; unlike Abs it is exact for MinInt64.
func uabs(v Scalar) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

func saturated(neg bool) Scalar {
	if neg {
		return math.MinInt64
	}
	return math.MaxInt64
}

// signed reapplies a sign to an unsigned magnitude, saturating when the
// magnitude exceeds the signed range.
func signed(m uint64, neg bool) Scalar {
	if neg {
		if m >= 1<<63 {
			return math.MinInt64
		}
		return -Scalar(m)
	}
	if m > math.MaxInt64 {
		return math.MaxInt64
	}
	return Scalar(m)
}
