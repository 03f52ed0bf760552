package introspect

import (
	"math"
	"reflect"

	"github.com/km-arc/go-container/framework/errors"
)

// Convert adapts a resolved value to the parameter or field type t.
// Assignable values pass through, numbers convert between numeric kinds,
// []any converts element-wise, nil becomes the zero value of nillable types.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, errors.Errorf("cannot use nil as %s", t)
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case isNumber(rv.Kind()) && isNumber(t.Kind()):
		if err := fits(rv, t); err != nil {
			return reflect.Value{}, err
		}
		return rv.Convert(t), nil
	case rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := Convert(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, errors.Wrapf(err, "element %d", i)
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	}
	return reflect.Value{}, errors.Errorf("cannot use %T as %s", v, t)
}

// fits rejects numeric conversions that would change the value.
func fits(rv reflect.Value, t reflect.Type) error {
	target := reflect.New(t).Elem()
	switch {
	case rv.CanInt():
		n := rv.Int()
		switch {
		case target.CanInt() && target.OverflowInt(n),
			target.CanUint() && (n < 0 || target.OverflowUint(uint64(n))):
			return errors.Errorf("%d overflows %s", n, t)
		}
	case rv.CanUint():
		n := rv.Uint()
		switch {
		case target.CanInt() && (n > math.MaxInt64 || target.OverflowInt(int64(n))),
			target.CanUint() && target.OverflowUint(n):
			return errors.Errorf("%d overflows %s", n, t)
		}
	case rv.CanFloat():
		f := rv.Float()
		if target.CanFloat() {
			if target.OverflowFloat(f) {
				return errors.Errorf("%g overflows %s", f, t)
			}
			return nil
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return errors.Errorf("%g is not a whole number for %s", f, t)
		}
		switch {
		case target.CanInt() && (f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f))),
			target.CanUint() && (f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f))):
			return errors.Errorf("%g overflows %s", f, t)
		}
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
