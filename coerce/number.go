package coerce

import (
	"math"
	"strconv"
)

// FormatNumber renders a Number the way it is seen by a String parameter.
//
//	NaN        "nan"
//	±Inf       "inf", "-inf"
//	-0         "-0"
//	int32      decimal integer
//	otherwise  %g with six significant digits
func FormatNumber(d float64) string {
	switch {
	case math.IsNaN(d):
		return "nan"
	case math.IsInf(d, 1):
		return "inf"
	case math.IsInf(d, -1):
		return "-inf"
	case d == 0 && math.Signbit(d):
		return "-0"
	case isInt32(d):
		return strconv.FormatInt(int64(d), 10)
	}
	// 'g' with a fixed precision drops trailing zeros and a bare decimal
	// point but keeps any exponent: 1.5, 1e+10, 1.23457e-07.
	return strconv.FormatFloat(d, 'g', 6, 64)
}

func isInt32(d float64) bool {
	return d >= math.MinInt32 && d <= math.MaxInt32 && d == math.Trunc(d)
}

func isNegativeZero(d float64) bool {
	return d == 0 && math.Signbit(d)
}

// toInt32 narrows like a double-to-int cast: NaN is 0, out of range saturates.
func toInt32(d float64) int32 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	}
	return int32(d)
}

// toInt64 narrows like a double-to-long cast: NaN is 0, out of range saturates.
func toInt64(d float64) int64 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= 0x1p63:
		return math.MaxInt64
	case d <= -0x1p63:
		return math.MinInt64
	}
	return int64(d)
}

// Byte and short go through int first, then wrap.
func toInt8(d float64) int8   { return int8(toInt32(d)) }
func toInt16(d float64) int16 { return int16(toInt32(d)) }

// toChar converts only exact int32 values other than -0; everything else is NUL.
func toChar(d float64) uint16 {
	if isInt32(d) && !isNegativeZero(d) {
		return uint16(int32(d))
	}
	return 0
}
