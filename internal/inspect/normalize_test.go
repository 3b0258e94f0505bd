package inspect

import (
	"math"
	"testing"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		plugType string
		want     domain.Value
	}{
		{"wrapped vector unwraps first element", []any{[]any{1.0, 2.0, 3.0}}, "double3", domain.Tuple(1.0, 2.0, 3.0)},
		{"wrapped short2", []any{[]any{1, 2}}, "short2", domain.Tuple(1, 2)},
		{"matrix stays flat", []any{1.0, 0.0}, "matrix", domain.Tuple(1.0, 0.0)},
		{"scalar", 4, "long", domain.Scalar(4)},
		{"string", "abc", "string", domain.Scalar("abc")},
		{"wrapped but empty", []any{}, "float3", domain.Tuple()},
		{"non-finite tag", "nan", "float", domain.Scalar(math.NaN())},
		{"non-finite components", []any{[]any{1.0, "inf", "-inf"}}, "float3", domain.Tuple(1.0, math.Inf(1), math.Inf(-1))},
		{"string port keeps tag text", "inf", "string", domain.Scalar("inf")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.plugType)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		lo, hi, err := summarize(nil)
		require.NoError(t, err)
		assert.True(t, domain.Scalar(0).Equal(lo))
		assert.True(t, domain.Scalar(0).Equal(hi))
	})

	t.Run("scalars keep the first extreme", func(t *testing.T) {
		lo, hi, err := summarize([]domain.Value{domain.Scalar(2), domain.Scalar(2.0), domain.Scalar(1), domain.Scalar(1.0)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), lo.Interface())
		assert.Equal(t, int64(2), hi.Interface())
	})

	t.Run("tuples are component-wise", func(t *testing.T) {
		lo, hi, err := summarize([]domain.Value{
			domain.Tuple(1, 5, 2),
			domain.Tuple(4, 0, 9),
			domain.Tuple(2, 2, 2),
		})
		require.NoError(t, err)
		assert.Equal(t, "(1, 0, 2)", lo.String())
		assert.Equal(t, "(4, 5, 9)", hi.String())
	})

	t.Run("interior NaN does not displace the extremes", func(t *testing.T) {
		lo, hi, err := summarize([]domain.Value{domain.Scalar(1.0), domain.Scalar(math.NaN()), domain.Scalar(2.0)})
		require.NoError(t, err)
		assert.Equal(t, 1.0, lo.Interface())
		assert.Equal(t, 2.0, hi.Interface())
	})

	t.Run("leading NaN sticks", func(t *testing.T) {
		lo, hi, err := summarize([]domain.Value{domain.Scalar(math.NaN()), domain.Scalar(1.0), domain.Scalar(2.0)})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(lo.Interface().(float64)))
		assert.True(t, math.IsNaN(hi.Interface().(float64)))
	})

	t.Run("NaN tuple components", func(t *testing.T) {
		lo, hi, err := summarize([]domain.Value{
			domain.Tuple(1.0, math.NaN(), 3.0),
			domain.Tuple(math.NaN(), 5.0, 0.5),
			domain.Tuple(0.5, 2.0, 4.0),
		})
		require.NoError(t, err)
		assert.Equal(t, "(0.5, nan, 0.5)", lo.String())
		assert.Equal(t, "(1.0, nan, 4.0)", hi.String())
	})

	t.Run("strings", func(t *testing.T) {
		lo, hi, err := summarize([]domain.Value{domain.Scalar("pear"), domain.Scalar("apple"), domain.Scalar("zucchini")})
		require.NoError(t, err)
		assert.Equal(t, "apple", lo.Interface())
		assert.Equal(t, "zucchini", hi.Interface())
	})

	t.Run("mixed shapes", func(t *testing.T) {
		_, _, err := summarize([]domain.Value{domain.Scalar(1), domain.Tuple(1, 2)})
		assert.ErrorIs(t, err, domain.ErrInconsistentShape)
	})
}
