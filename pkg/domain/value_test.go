package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		val  Value
		want string
	}{
		{"int", Scalar(3), "3"},
		{"float integral", Scalar(2.0), "2.0"},
		{"float fraction", Scalar(0.25), "0.25"},
		{"float tiny", Scalar(1e-5), "1e-05"},
		{"bool", Scalar(true), "True"},
		{"string", Scalar("abc"), "abc"},
		{"nil", Scalar(nil), "None"},
		{"vector", Tuple(1.0, 2.5, -3.0), "(1.0, 2.5, -3.0)"},
		{"int tuple", Tuple(1, 2), "(1, 2)"},
		{"single", Tuple(1), "(1,)"},
		{"nan", Scalar(math.NaN()), "nan"},
		{"infinite components", Tuple(math.Inf(1), math.Inf(-1)), "(inf, -inf)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.val.String())
		})
	}
}

func TestValue_FromRaw(t *testing.T) {
	v := FromRaw([]any{1, float32(2.5), "x"})
	require.True(t, v.IsTuple())
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, int64(1), v.At(0))
	assert.Equal(t, 2.5, v.At(1))
	assert.Equal(t, "x", v.At(2))

	s := FromRaw(json.Number("7"))
	assert.False(t, s.IsTuple())
	assert.Equal(t, int64(7), s.Interface())

	f := FromRaw(json.Number("7.0"))
	assert.Equal(t, 7.0, f.Interface())
}

func TestValue_JSONRoundTrip(t *testing.T) {
	values := []Value{
		Scalar(1.0),
		Scalar(int64(-4)),
		Scalar("name"),
		Scalar(false),
		Tuple(1.0, 0.0, 9.5),
		Tuple(1, 2, 3),
	}
	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back Value
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, v.Equal(back), "round trip of %s gave %s (json %s)", v, back, data)
	}

	data, err := json.Marshal(Tuple(1.0, 2.0))
	require.NoError(t, err)
	assert.JSONEq(t, `[1.0, 2.0]`, string(data))
}

func TestValue_JSONNonFinite(t *testing.T) {
	v := Tuple(1.0, math.NaN(), math.Inf(1), math.Inf(-1))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.0, "nan", "inf", "-inf"]`, string(data))

	var back Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, v.Equal(back), "got %s", back)
	assert.True(t, math.IsNaN(back.At(1).(float64)))

	data, err = json.Marshal(Scalar(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `"nan"`, string(data))

	data, err = json.Marshal(&ExtractionResult{
		Data:     [][]Value{{Scalar(1.0), Scalar(math.NaN())}},
		PlugType: "float",
		MinValue: Scalar(1.0),
		MaxValue: Scalar(1.0),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nan"`)
}

func TestDecodeNonFinite(t *testing.T) {
	got := DecodeNonFinite([]any{"nan", []any{"inf", "-inf"}, "infinity", 2.0})
	seq := got.([]any)
	assert.True(t, math.IsNaN(seq[0].(float64)))
	assert.Equal(t, []any{math.Inf(1), math.Inf(-1)}, seq[1])
	assert.Equal(t, "infinity", seq[2])
	assert.Equal(t, 2.0, seq[3])
}

func TestValue_EqualNaN(t *testing.T) {
	assert.True(t, Scalar(math.NaN()).Equal(Scalar(math.NaN())))
	assert.False(t, Scalar(math.NaN()).Equal(Scalar(1.0)))
	assert.False(t, Scalar(1.0).Equal(Scalar(math.NaN())))
}

func TestValue_Floats(t *testing.T) {
	nums, ok := Tuple(1, 2.5, true).Floats()
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2.5, 1}, nums)

	_, ok = Tuple(1, "x").Floats()
	assert.False(t, ok)
}

func TestValue_ComponentsIsACopy(t *testing.T) {
	v := Tuple(1, 2, 3)
	c := v.Components()
	c[0] = int64(99)
	assert.Equal(t, int64(1), v.At(0))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{in: "(1.0, 2.0, 3.0)", want: Tuple(1.0, 2.0, 3.0)},
		{in: "[1, 2]", want: Tuple(1, 2)},
		{in: "(4,)", want: Tuple(4)},
		{in: " 4.5 ", want: Scalar(4.5)},
		{in: "True", want: Scalar(true)},
		{in: "'abc'", want: Scalar("abc")},
		{in: "None", want: Scalar(nil)},
		{in: "", wantErr: true},
		{in: "((1, 2), 3)", wantErr: true},
		{in: "('a,b', 'c')", want: Tuple("a,b", "c")},
		{in: `("x, y", 1)`, want: Tuple("x, y", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestCompareScalars(t *testing.T) {
	assert.Equal(t, -1, CompareScalars(int64(1), 1.5))
	assert.Equal(t, 0, CompareScalars(int64(2), 2.0))
	assert.Equal(t, 1, CompareScalars(true, int64(0)))
	assert.Equal(t, -1, CompareScalars("a", "b"))
	assert.Equal(t, -1, CompareScalars(nil, int64(0)))
	assert.Equal(t, 1, CompareScalars("a", 100.0))
}

func TestLess(t *testing.T) {
	nan := math.NaN()
	assert.True(t, Less(int64(1), 1.5))
	assert.False(t, Less(2.0, int64(2)))
	assert.True(t, Less("a", "b"))
	assert.False(t, Less(nan, 1.0))
	assert.False(t, Less(1.0, nan))
	assert.False(t, Less(nan, nan))
}
