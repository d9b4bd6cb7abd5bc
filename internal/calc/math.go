package calc

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

var mathEnv = map[string]any{
	"pi":   math.Pi,
	"e":    math.E,
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"ln":   math.Log,
	"log":  math.Log10,
	"exp":  math.Exp,
}

// evalMath evaluates an arithmetic expression. Anything that does not
// produce a finite number is ErrNoResult.
func evalMath(q string) (float64, error) {
	program, err := expr.Compile(q, expr.Env(mathEnv))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoResult, err)
	}
	out, err := expr.Run(program, mathEnv)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoResult, err)
	}

	var v float64
	switch n := out.(type) {
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case float64:
		v = n
	default:
		return 0, ErrNoResult
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNoResult
	}
	return v, nil
}
