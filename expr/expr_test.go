package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseAndEval(t *testing.T) {
	tests := []struct {
		expr  string
		scope map[string]float64
		want  float64
	}{
		{"1+2*3", nil, 7},
		{"(1+2)*3", nil, 9},
		{"2^3^2", nil, 512},       // right associative
		{"-2^2", nil, -4},         // unary binds after ^
		{"10%4", nil, 2},
		{"7/2", nil, 3.5},
		{"0^0", nil, 1},
		{"1e9/4", nil, 2.5e8},
		{"2.5e-1", nil, 0.25},
		{"fs/4", map[string]float64{"fs": 100}, 25},
		{"2fs", map[string]float64{"fs": 3}, 6},          // implicit mul
		{"(a+1)(a-1)", map[string]float64{"a": 4}, 15},   // implicit mul
		{"3(x)", map[string]float64{"x": 5}, 15},
		{"2e", map[string]float64{"e": 4}, 8}, // bare e is a variable
		{"-(fs/2)", map[string]float64{"fs": 8}, -4},
		{"+5", nil, 5},
		{"1 + 2 *\t3", nil, 7},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Parse(tt.expr)
			require.NoError(t, err)
			got, err := e.Eval(tt.scope)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"1 2",
		"a b",
		"1+",
		"*3",
		"(1+2",
		"1+2)",
		"()",
		"1++2",
		"--1",
		"1$2",
		"(*2)",
		"2*)",
	}
	for _, s := range bad {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrParse, "expression %q", s)
	}
}

func TestEvalErrors(t *testing.T) {
	e := MustParse("a/b")
	_, err := e.Eval(map[string]float64{"a": 1, "b": 0})
	assert.ErrorIs(t, err, ErrEval)

	_, err = e.Eval(map[string]float64{"a": 1})
	require.ErrorIs(t, err, ErrEval)
	assert.Contains(t, err.Error(), `"b"`)

	_, err = MustParse("x%0").Eval(map[string]float64{"x": 1})
	assert.ErrorIs(t, err, ErrEval)
}

func TestVars(t *testing.T) {
	e := MustParse("fs/2 + fdata*x - fs")
	assert.Equal(t, []string{"fdata", "fs", "x"}, e.Vars())
	assert.True(t, e.DependsOn("fs"))
	assert.True(t, e.DependsOn("nope", "x"))
	assert.False(t, e.DependsOn("fbin", "fshift"))

	name, missing := e.MissingVar(map[string]float64{"fs": 1, "x": 2})
	assert.True(t, missing)
	assert.Equal(t, "fdata", name)

	_, missing = e.MissingVar(map[string]float64{"fs": 1, "x": 2, "fdata": 3})
	assert.False(t, missing)
}

func TestString(t *testing.T) {
	e := MustParse(" 1 + 2 * fs ")
	assert.Equal(t, "1+2*fs", e.String())
	assert.Equal(t, "1 2 fs * +", e.PostfixString())

	// Implicit multiplication is made explicit in the normalized form.
	assert.Equal(t, "2*fs", MustParse("2fs").String())
}

func TestFromConstant(t *testing.T) {
	e := FromConstant(0.5)
	v, err := e.Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
	assert.Empty(t, e.Vars())
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("a"))
	assert.True(t, IsIdentifier("A1_b"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1a"))
	assert.False(t, IsIdentifier("_a"))
	assert.False(t, IsIdentifier("a-b"))
}

// Reparsing a normalized infix string yields the same normalized form and
// the same value.
func TestNormalizedRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := genExpression(t)
		parsed, err := Parse(e)
		if err != nil {
			t.Skip()
		}
		again, err := Parse(parsed.String())
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, parsed.String(), again.String())

		scope := map[string]float64{}
		for _, v := range parsed.Vars() {
			scope[v] = 0
		}
		v1, err1 := parsed.Eval(scope)
		v2, err2 := again.Eval(scope)
		if err1 != nil {
			assert.True(t, errors.Is(err2, ErrEval))
			return
		}
		if !assert.NoError(t, err2) {
			return
		}
		if math.IsNaN(v1) {
			assert.True(t, math.IsNaN(v2))
		} else {
			assert.Equal(t, v1, v2)
		}
	})
}

func genExpression(t *rapid.T) string {
	atoms := []string{"1", "2", "0.5", "fs", "fdata", "x", "3.25", "1e3"}
	ops := []string{"+", "-", "*", "/", "%", "^"}
	n := rapid.IntRange(1, 6).Draw(t, "terms")
	s := rapid.SampledFrom(atoms).Draw(t, "first")
	for i := 0; i < n; i++ {
		op := rapid.SampledFrom(ops).Draw(t, "op")
		atom := rapid.SampledFrom(atoms).Draw(t, "atom")
		if rapid.Bool().Draw(t, "paren") {
			s = "(" + s + op + atom + ")"
		} else {
			s = s + op + atom
		}
	}
	return s
}
