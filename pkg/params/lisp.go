package params

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/pkg/errors"
)

// LispTimeout is the hard limit for a single Lisp formula evaluation.
const LispTimeout = 5 * time.Second

// lisp is a formula body evaluated as (defn modf [index orbit] body).
// Every evaluation creates a fresh sandbox so results never depend on a
// previous call.
type lisp struct {
	src string
}

func compileLisp(src string) (formula, error) {
	// Bind the reserved names so the syntax check sees a complete program.
	prog := buildProgram(src, map[string]float64{VarBase: 0}, nil)
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	if err := env.LoadString(prog); err != nil {
		return nil, errors.Wrapf(ErrParse, "lisp formula %q: %s", src, lispMessage(err))
	}
	return &lisp{src: src}, nil
}

type lispResult struct {
	values []float64
	err    error
}

func (f *lisp) eval(vars map[string]float64, pts []point) ([]float64, error) {
	if len(pts) == 0 {
		return nil, nil
	}
	ch := make(chan lispResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- lispResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		values, err := f.run(vars, pts)
		ch <- lispResult{values: values, err: err}
	}()

	timer := time.NewTimer(LispTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		if res.err != nil {
			return nil, errors.Wrapf(ErrValidation, "lisp formula %q: %v", f.src, res.err)
		}
		return res.values, nil
	case <-timer.C:
		return nil, errors.Wrapf(ErrValidation, "lisp formula %q: timed out after %s", f.src, LispTimeout)
	}
}

func (f *lisp) run(vars map[string]float64, pts []point) ([]float64, error) {
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	if err := env.LoadString(buildProgram(f.src, vars, pts)); err != nil {
		return nil, errors.New(lispMessage(err))
	}
	out, err := env.Run()
	if err != nil {
		return nil, errors.New(lispMessage(err))
	}

	var items []zygo.Sexp
	switch v := out.(type) {
	case *zygo.SexpPair:
		if items, err = zygo.ListToArray(v); err != nil {
			return nil, err
		}
	case *zygo.SexpArray:
		items = v.Val
	default:
		return nil, errors.Errorf("expected a list of numbers, got %T", out)
	}
	if len(items) != len(pts) {
		return nil, errors.Errorf("got %d values for %d elements", len(items), len(pts))
	}
	values := make([]float64, len(items))
	for i, it := range items {
		v, err := toFloat64(it)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", pts[i].index)
		}
		values[i] = v
	}
	return values, nil
}

// buildProgram binds vars with def, wraps the body in a two-argument
// function and calls it once per point.
func buildProgram(body string, vars map[string]float64, pts []point) string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		fmt.Fprintf(&b, "(def %s %s)\n", k, formatFloat(vars[k]))
	}
	fmt.Fprintf(&b, "(defn modf [%s %s] %s)\n", VarIndex, VarOrbit, body)
	b.WriteString("(list")
	for _, p := range pts {
		fmt.Fprintf(&b, " (modf %d %d)", p.index, p.orbit)
	}
	b.WriteString(")\n")
	return b.String()
}

// formatFloat renders v so the Lisp reader sees a float, never an int.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// lispMessage condenses a zygomys error to its first detail line.
func lispMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		return "line " + m[1] + ": " + strings.TrimSpace(m[2])
	}
	if i := strings.IndexByte(msg, '\n'); i > 0 {
		return msg[:i]
	}
	return msg
}
