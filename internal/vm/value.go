package vm

import (
	"math"
	"strconv"
)

// Value is the runtime datum. Only double-precision numbers exist so far;
// values are copied on every push and pop.
type Value float64

// String renders the value in its canonical form: the shortest decimal that
// round-trips, never in exponent notation.
func (v Value) String() string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
