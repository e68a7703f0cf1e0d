package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileInfix(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 4", 2.5},
		{"2 ^ 3 ^ 2", 512},
		{"-2 ^ 2", -4},
		{"2 ^ -1", 0.5},
		{"1 - 2 - 3", -4},
		{"--3", 3},
		{"1e-3 * 1000", 1},
		{".5 + .5", 1},
		{"min(3, 1, 2)", 1},
		{"max(3, 1, 2)", 3},
		{"pow(2, 10)", 1024},
		{"sqrt(16) + abs(-3)", 7},
		{"cos(0) + sin(0) + tan(0)", 1},
		{"base + 0.5 * index", 2.5},
		{"orbit * k", 4.5},
	}
	vars := map[string]float64{VarBase: 0.5, "k": 1.5}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			f, err := compileInfix(tc.src)
			require.NoError(t, err)
			got, err := f.eval(vars, []point{{index: 4, orbit: 3}})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.InDelta(t, tc.want, got[0], 1e-12)
		})
	}
}

func TestCompileInfix_Errors(t *testing.T) {
	for _, src := range []string{"1 +", "(1", "2 * * 3", "foo(1)", "pow(1)", "sqrt(1, 2)", "min()", "1 $ 2"} {
		t.Run(src, func(t *testing.T) {
			_, err := compileInfix(src)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestInfix_UnknownVariable(t *testing.T) {
	f, err := compileInfix("2 * width")
	require.NoError(t, err)
	_, err = f.eval(map[string]float64{}, []point{{}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLisp(t *testing.T) {
	f, err := compile(Expr("(+ base (* k index))"))
	require.NoError(t, err)
	got, err := f.eval(map[string]float64{VarBase: 1, "k": 0.25}, []point{{index: 0}, {index: 2}, {index: 8}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.5, 3}, got, 1e-12)
}

func TestLisp_IntegerResult(t *testing.T) {
	f, err := compile(Expr("(+ index orbit)"))
	require.NoError(t, err)
	got, err := f.eval(nil, []point{{index: 2, orbit: 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, got)
}

func TestLisp_Errors(t *testing.T) {
	_, err := compile(Expr("(+ 1 2"))
	assert.ErrorIs(t, err, ErrParse)

	f, err := compile(Expr("(+ 1 undefinedSymbol)"))
	require.NoError(t, err)
	_, err = f.eval(nil, []point{{}})
	assert.ErrorIs(t, err, ErrValidation)

	f, err = compile(Expr(`(concat "a" "b")`))
	require.NoError(t, err)
	_, err = f.eval(nil, []point{{}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBuildProgram(t *testing.T) {
	prog := buildProgram("(* a index)", map[string]float64{"b": 2, "a": 0.5}, []point{{index: 1, orbit: 0}, {index: 3, orbit: 1}})
	assert.Equal(t, "(def a 0.5)\n(def b 2.0)\n(defn modf [index orbit] (* a index))\n(list (modf 1 0) (modf 3 1))\n", prog)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "2.0", formatFloat(2))
	assert.Equal(t, "-0.125", formatFloat(-0.125))
	assert.Equal(t, "1000000.0", formatFloat(1e6))
}
