package resultset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrUnorderable is returned when two values have no defined order relative
// to each other.
var ErrUnorderable = errors.New("values cannot be ordered against each other")

// Value is a single tagged cell of a result set.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

func MakeNull() Value {
	return Value{kind: KindNull}
}

func MakeBool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func MakeInt(i int64) Value {
	return Value{kind: KindInt, i: i}
}

func MakeFloat(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func MakeString(s string) Value {
	return Value{kind: KindString, s: s}
}

// MakeDate makes a date value. Dates are kept in UTC so that equal instants
// compare equal regardless of the location they were read in.
func MakeDate(t time.Time) Value {
	return Value{kind: KindDate, t: t.UTC()}
}

// MakeDecimal makes an Int when d is integral and fits in 64 bits, and a Float
// otherwise.
func MakeDecimal(d *apd.Decimal) (Value, error) {
	if d.Form == apd.Finite && d.Exponent >= 0 {
		if i, err := d.Int64(); err == nil {
			return MakeInt(i), nil
		}
	}
	f, err := d.Float64()
	if err != nil {
		return Value{}, errors.Wrapf(err, "error converting decimal %s", d)
	}
	return MakeFloat(f), nil
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsNumeric returns whether the value is an Int or a Float.
func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Int() int64 {
	return v.i
}

// Float returns the float payload of a Float, or the converted payload of
// an Int.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Str() string {
	return v.s
}

func (v Value) Date() time.Time {
	return v.t
}

// Equal returns whether two values are exactly equal. Ints and Floats compare
// numerically against each other, and NaN is equal to NaN.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		return compareNumbers(v, o) == 0
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindDate:
		return v.t.Equal(o.t)
	case KindInt, KindFloat:
		// Handled above.
		return false
	}
	panic(errors.AssertionFailedf("unhandled value kind %s", v.kind))
}

// Compare orders two values. Null sorts before any non-null value and NaN
// sorts after every other number. Values of different non-null kinds, other
// than Int against Float, return ErrUnorderable.
func (v Value) Compare(o Value) (int, error) {
	if v.kind == KindNull || o.kind == KindNull {
		switch {
		case v.kind == o.kind:
			return 0, nil
		case v.kind == KindNull:
			return -1, nil
		default:
			return 1, nil
		}
	}
	if v.IsNumeric() && o.IsNumeric() {
		return compareNumbers(v, o), nil
	}
	if v.kind != o.kind {
		return 0, errors.Wrapf(ErrUnorderable, "%s vs %s", v.kind, o.kind)
	}
	switch v.kind {
	case KindBool:
		switch {
		case v.b == o.b:
			return 0, nil
		case !v.b:
			return -1, nil
		default:
			return 1, nil
		}
	case KindString:
		return strings.Compare(v.s, o.s), nil
	case KindDate:
		return v.t.Compare(o.t), nil
	case KindNull, KindInt, KindFloat:
		// Handled above.
		return 0, nil
	}
	return 0, errors.AssertionFailedf("unhandled value kind %s", v.kind)
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareNumbers orders two numeric values exactly. Ints are never
// converted to float64, which would collapse integers beyond 2^53.
func compareNumbers(v, o Value) int {
	switch {
	case v.kind == KindInt && o.kind == KindInt:
		return compareOrdered(v.i, o.i)
	case v.kind == KindInt:
		return compareIntFloat(v.i, o.f)
	case o.kind == KindInt:
		return -compareIntFloat(o.i, v.f)
	}
	return compareFloats(v.f, o.f)
}

// twoTo63 is the smallest float64 above math.MaxInt64.
const twoTo63 = float64(1 << 63)

func compareIntFloat(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return -1
	case f >= twoTo63:
		return -1
	case f < -twoTo63:
		return 1
	}
	floor := math.Floor(f)
	fi := int64(floor)
	switch {
	case i < fi:
		return -1
	case i > fi:
		return 1
	case f == floor:
		return 0
	}
	return -1
}

func compareFloats(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return compareOrdered(a, b)
}

const dateLayout = "2006-01-02"
const timestampLayout = "2006-01-02 15:04:05.999999999"

// String formats the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	case KindDate:
		if isMidnight(v.t) {
			return v.t.Format(dateLayout)
		}
		return v.t.Format(timestampLayout)
	}
	return fmt.Sprintf("<%s>", v.kind)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// MarshalJSON encodes the value as its natural JSON counterpart. Non-finite
// floats and dates are encoded as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindDate:
		return json.Marshal(v.String())
	}
	return nil, errors.AssertionFailedf("unhandled value kind %s", v.kind)
}
