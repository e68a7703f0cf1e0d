package params

import (
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Reserved variable names bound per element.
const (
	VarBase  = "base"
	VarIndex = "index"
	VarOrbit = "orbit"
)

// point is one element a formula is evaluated for.
type point struct {
	index int
	orbit int
}

// formula evaluates a value for a batch of elements.
type formula interface {
	eval(vars map[string]float64, pts []point) ([]float64, error)
}

// constant is a plain number.
type constant float64

func (c constant) eval(_ map[string]float64, pts []point) ([]float64, error) {
	out := make([]float64, len(pts))
	for i := range out {
		out[i] = float64(c)
	}
	return out, nil
}

// compile turns a Value into a formula. Lisp formulas start with "(".
func compile(v Value) (formula, error) {
	if !v.IsFormula() {
		return constant(v.Number), nil
	}
	if strings.HasPrefix(v.Formula, "(") {
		return compileLisp(v.Formula)
	}
	return compileInfix(v.Formula)
}

// ---------------------------------------------------------------------------
// Infix grammar
// ---------------------------------------------------------------------------

type Sum struct {
	Left *Term    `parser:"@@"`
	Rest []*OpSum `parser:"@@*"`
}

type OpSum struct {
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *Term  `parser:"@@"`
}

type Term struct {
	Left *Unary       `parser:"@@"`
	Rest []*OpProduct `parser:"@@*"`
}

type OpProduct struct {
	Op    string `parser:"@(\"*\" | \"/\")"`
	Unary *Unary `parser:"@@"`
}

type Unary struct {
	Negs  []string `parser:"@\"-\"*"`
	Power *Power   `parser:"@@"`
}

// Power is right associative: 2^3^2 is 2^(3^2).
type Power struct {
	Base     *Primary `parser:"@@"`
	Exponent *Unary   `parser:"( \"^\" @@ )?"`
}

type Primary struct {
	Number *float64 `parser:"@Number"`
	Ref    *Ref     `parser:"| @@"`
	Sub    *Sum     `parser:"| \"(\" @@ \")\""`
}

// Ref is a variable, or a function call when Call is set.
type Ref struct {
	Name string `parser:"@Ident"`
	Call *Call  `parser:"@@?"`
}

type Call struct {
	Open string `parser:"@\"(\""`
	Args []*Sum `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[-+*/^(),]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parseFormula = participle.MustBuild[Sum](
	participle.Lexer(formulaLexer),
)

type function struct {
	minArgs, maxArgs int
	apply            func(args []float64) float64
}

func unary(f func(float64) float64) function {
	return function{1, 1, func(a []float64) float64 { return f(a[0]) }}
}

var functions = map[string]function{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow":  {2, 2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
	"min": {1, -1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {1, -1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
}

// infix is a parsed infix formula.
type infix struct {
	src  string
	expr *Sum
}

func compileInfix(src string) (formula, error) {
	expr, err := parseFormula.ParseString("", src)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "formula %q: %v", src, err)
	}
	if err := expr.check(); err != nil {
		return nil, errors.Wrapf(ErrParse, "formula %q: %v", src, err)
	}
	return &infix{src: src, expr: expr}, nil
}

func (f *infix) eval(vars map[string]float64, pts []point) ([]float64, error) {
	env := make(map[string]float64, len(vars)+3)
	for k, v := range vars {
		env[k] = v
	}
	out := make([]float64, len(pts))
	for i, p := range pts {
		env[VarIndex] = float64(p.index)
		env[VarOrbit] = float64(p.orbit)
		v, err := f.expr.eval(env)
		if err != nil {
			return nil, errors.Wrapf(ErrValidation, "formula %q: %v", f.src, err)
		}
		out[i] = v
	}
	return out, nil
}

// check verifies function names and arities. Variables are resolved at
// evaluation time.
func (e *Sum) check() error {
	if err := e.Left.check(); err != nil {
		return err
	}
	for _, r := range e.Rest {
		if err := r.Term.check(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Term) check() error {
	if err := t.Left.check(); err != nil {
		return err
	}
	for _, r := range t.Rest {
		if err := r.Unary.check(); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unary) check() error {
	if err := u.Power.Base.check(); err != nil {
		return err
	}
	if u.Power.Exponent != nil {
		return u.Power.Exponent.check()
	}
	return nil
}

func (p *Primary) check() error {
	switch {
	case p.Sub != nil:
		return p.Sub.check()
	case p.Ref != nil && p.Ref.Call != nil:
		fn, ok := functions[p.Ref.Name]
		if !ok {
			return errors.Errorf("unknown function %q", p.Ref.Name)
		}
		n := len(p.Ref.Call.Args)
		if n < fn.minArgs || (fn.maxArgs >= 0 && n > fn.maxArgs) {
			return errors.Errorf("%s: got %d arguments", p.Ref.Name, n)
		}
		for _, a := range p.Ref.Call.Args {
			if err := a.check(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Sum) eval(env map[string]float64) (float64, error) {
	v, err := e.Left.eval(env)
	if err != nil {
		return 0, err
	}
	for _, r := range e.Rest {
		w, err := r.Term.eval(env)
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			v += w
		} else {
			v -= w
		}
	}
	return v, nil
}

func (t *Term) eval(env map[string]float64) (float64, error) {
	v, err := t.Left.eval(env)
	if err != nil {
		return 0, err
	}
	for _, r := range t.Rest {
		w, err := r.Unary.eval(env)
		if err != nil {
			return 0, err
		}
		if r.Op == "*" {
			v *= w
		} else {
			v /= w
		}
	}
	return v, nil
}

func (u *Unary) eval(env map[string]float64) (float64, error) {
	v, err := u.Power.Base.eval(env)
	if err != nil {
		return 0, err
	}
	if u.Power.Exponent != nil {
		x, err := u.Power.Exponent.eval(env)
		if err != nil {
			return 0, err
		}
		v = math.Pow(v, x)
	}
	if len(u.Negs)%2 == 1 {
		v = -v
	}
	return v, nil
}

func (p *Primary) eval(env map[string]float64) (float64, error) {
	switch {
	case p.Number != nil:
		return *p.Number, nil
	case p.Sub != nil:
		return p.Sub.eval(env)
	case p.Ref.Call != nil:
		args := make([]float64, len(p.Ref.Call.Args))
		for i, a := range p.Ref.Call.Args {
			v, err := a.eval(env)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return functions[p.Ref.Name].apply(args), nil
	}
	v, ok := env[p.Ref.Name]
	if !ok {
		return 0, errors.Errorf("unknown variable %q", p.Ref.Name)
	}
	return v, nil
}
