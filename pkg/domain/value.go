package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Non-finite floats cross JSON as these strings, since JSON has no literal for them.
const (
	TagNaN    = "nan"
	TagPosInf = "inf"
	TagNegInf = "-inf"
)

// Value is a normalized port value: a single scalar or an immutable ordered tuple.
// Scalars are nil, bool, int64, float64 or string.
type Value struct {
	scalar  any
	tuple   []any
	isTuple bool
}

// Scalar wraps a single scalar, coercing Go numeric kinds to int64/float64.
func Scalar(v any) Value {
	return Value{scalar: normalizeScalar(v)}
}

// Tuple builds a tuple value from its components.
func Tuple(components ...any) Value {
	t := make([]any, len(components))
	for i, c := range components {
		t[i] = normalizeComponent(c)
	}
	return Value{tuple: t, isTuple: true}
}

// FromRaw converts a raw host value: sequences become tuples, everything else a scalar.
func FromRaw(raw any) Value {
	if seq, ok := raw.([]any); ok {
		return Tuple(seq...)
	}
	if v, ok := raw.(Value); ok {
		return v
	}
	return Scalar(raw)
}

// IsTuple reports whether v is a tuple.
func (v Value) IsTuple() bool { return v.isTuple }

// Len returns the tuple arity, or 0 for scalars.
func (v Value) Len() int { return len(v.tuple) }

// At returns the i-th tuple component.
func (v Value) At(i int) any { return v.tuple[i] }

// Components returns a copy of the tuple components.
func (v Value) Components() []any {
	out := make([]any, len(v.tuple))
	copy(out, v.tuple)
	return out
}

// Interface returns the scalar, or a copy of the tuple components.
func (v Value) Interface() any {
	if v.isTuple {
		return v.Components()
	}
	return v.scalar
}

// Floats returns the value as numbers. Scalars yield one element.
// ok is false if any component is not numeric.
func (v Value) Floats() ([]float64, bool) {
	if !v.isTuple {
		f, ok := toFloat(v.scalar)
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
	out := make([]float64, len(v.tuple))
	for i, c := range v.tuple {
		f, ok := toFloat(c)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Equal reports whether both values have the same shape and components.
func (v Value) Equal(o Value) bool {
	if v.isTuple != o.isTuple {
		return false
	}
	if !v.isTuple {
		return scalarEqual(v.scalar, o.scalar)
	}
	if len(v.tuple) != len(o.tuple) {
		return false
	}
	for i := range v.tuple {
		if !scalarEqual(v.tuple[i], o.tuple[i]) {
			return false
		}
	}
	return true
}

// String renders the value the way the table cells show it:
// tuples as "(1.0, 2.0, 3.0)", scalars plainly.
func (v Value) String() string {
	if !v.isTuple {
		return formatScalar(v.scalar, false)
	}
	parts := make([]string, len(v.tuple))
	for i, c := range v.tuple {
		parts[i] = formatScalar(c, true)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MarshalJSON encodes scalars as JSON scalars and tuples as arrays.
// Floats always carry a fraction or exponent so they decode back as floats.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if !v.isTuple {
		if err := writeJSONScalar(&buf, v.scalar); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	buf.WriteByte('[')
	for i, c := range v.tuple {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONScalar(&buf, c); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the form written by MarshalJSON.
// A string scalar spelled exactly like a non-finite tag reads back as that float.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromRaw(DecodeNonFinite(raw))
	return nil
}

// DecodeNonFinite replaces non-finite tags in a raw JSON value, recursing into
// sequences, with the floats they stand for.
func DecodeNonFinite(raw any) any {
	switch x := raw.(type) {
	case string:
		if f, ok := nonFinite(x); ok {
			return f
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, c := range x {
			out[i] = DecodeNonFinite(c)
		}
		return out
	}
	return raw
}

func nonFinite(s string) (float64, bool) {
	switch s {
	case TagNaN:
		return math.NaN(), true
	case TagPosInf:
		return math.Inf(1), true
	case TagNegInf:
		return math.Inf(-1), true
	}
	return 0, false
}

func nonFiniteTag(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return TagNaN, true
	case math.IsInf(f, 1):
		return TagPosInf, true
	case math.IsInf(f, -1):
		return TagNegInf, true
	}
	return "", false
}

func writeJSONScalar(buf *bytes.Buffer, s any) error {
	switch x := s.(type) {
	case float64:
		if tag, ok := nonFiniteTag(x); ok {
			buf.WriteString(strconv.Quote(tag))
			return nil
		}
		buf.WriteString(formatFloat(x))
		return nil
	case Value:
		b, err := x.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

func normalizeComponent(c any) any {
	if seq, ok := c.([]any); ok {
		return Tuple(seq...)
	}
	if v, ok := c.(Value); ok {
		if !v.isTuple {
			return v.scalar
		}
		return v
	}
	return normalizeScalar(c)
}

func normalizeScalar(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case uint:
		return normalizeScalar(uint64(x))
	case float32:
		return float64(x)
	case json.Number:
		return numberFromString(string(x))
	default:
		return fmt.Sprint(x)
	}
}

// numberFromString keeps integers integral and everything with a fraction or exponent float.
func numberFromString(s string) any {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func scalarEqual(a, b any) bool {
	av, aok := a.(Value)
	bv, bok := b.(Value)
	if aok || bok {
		return aok && bok && av.Equal(bv)
	}
	if af, ok := a.(float64); ok && math.IsNaN(af) {
		bf, ok := b.(float64)
		return ok && math.IsNaN(bf)
	}
	return a == b
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func formatScalar(s any, quoteStrings bool) string {
	switch x := s.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if tag, ok := nonFiniteTag(x); ok {
			return tag
		}
		return formatFloat(x)
	case string:
		if quoteStrings {
			return "'" + x + "'"
		}
		return x
	case Value:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
