// Package expr parses and evaluates arithmetic equations with embedded dice.
//
// The grammar supports numbers, parentheses, the binary operators
// + - * / % ^ (with ^ binding tightest and associating to the right), unary
// minus, NdM dice terms and the calls adv(sides), dis(sides),
// top(times, sides, keep), bot(times, sides, keep) and round(x).
//
// Division is always floating-point. round rounds half to even, so
// round(10/4) is 2 and round(3.5) is 4. % takes the sign of the divisor.
package expr

import (
	"context"
	"math"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/dmassist/internal/core/dice"
)

const tracerName = "github.com/louisbranch/dmassist/internal/core/expr"

// Program is a parsed equation. Evaluating it again rolls fresh dice.
type Program struct {
	source string
	root   node
}

// Parse parses an equation without rolling anything.
func Parse(source string) (*Program, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}
	p := &parser{source: source, tokens: tokens}
	root, err := p.parseEquation()
	if err != nil {
		return nil, err
	}
	return &Program{source: source, root: root}, nil
}

// String returns the equation source.
func (p *Program) String() string {
	return p.source
}

// Eval evaluates the program, rolling any dice terms with roller.
func (p *Program) Eval(ctx context.Context, roller *dice.Roller) (float64, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "expr.Eval")
	defer span.End()
	span.SetAttributes(attribute.String("equation", p.source))
	if roller != nil && roller.Recorder() != nil {
		span.SetAttributes(attribute.String("recorder.id", roller.Recorder().ID()))
	}

	e := &evaluator{source: p.source, roller: roller}
	value, err := e.eval(p.root)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Float64("result", value))
	return value, nil
}

// ParseEquation parses and evaluates source in one step.
func ParseEquation(ctx context.Context, roller *dice.Roller, source string) (float64, error) {
	program, err := Parse(source)
	if err != nil {
		return 0, err
	}
	return program.Eval(ctx, roller)
}

// Format renders a result, dropping the fraction of whole numbers.
func Format(value float64) string {
	if value == 0 {
		return "0"
	}
	if math.Abs(value) >= 1e21 {
		return strconv.FormatFloat(value, 'g', -1, 64)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
