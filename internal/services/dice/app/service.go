package app

import (
	"context"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/louisbranch/dmassist/internal/core/dice"
	"github.com/louisbranch/dmassist/internal/core/expr"
	"github.com/louisbranch/dmassist/internal/core/flavor"
	"github.com/louisbranch/dmassist/internal/core/transcript"
	"github.com/louisbranch/dmassist/internal/core/vars"
	"github.com/louisbranch/dmassist/internal/platform/logging"
	"github.com/louisbranch/dmassist/internal/script"
)

const tracerName = "github.com/louisbranch/dmassist/internal/services/dice/app"

// Coin faces reported by CoinFlip.
const (
	CoinHeads = "heads"
	CoinTails = "tails"
)

// Source is the randomness the service draws from. *random.Pool satisfies it.
type Source interface {
	dice.Source
	IsLow() bool
	RefillAsync()
}

// Report is the outcome of one operation.
type Report struct {
	// Value is the operation result.
	Value float64
	// Label names the result when it is not numeric, such as a coin face.
	Label string
	// Entries are the dice rolled, in roll order.
	Entries []dice.Entry
	// Transcript is the rendered "Rolled:" block, or "" when nothing rolled.
	Transcript string
	// Flavor is the commentary line, or "" when none applies.
	Flavor string
	// Crits and Fails count dice on their highest and lowest face. Only
	// Roll fills them.
	Crits int
	Fails int
}

// Service runs dice operations.
type Service struct {
	source Source
	roller *dice.Roller
	lines  flavor.Lines
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the operation logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logging.OrNop(logger)
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a service drawing from source.
func New(source Source, lines flavor.Lines, opts ...Option) *Service {
	s := &Service{
		source: source,
		roller: dice.NewRoller(source),
		lines:  lines,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roll rolls "XdY" notation and reports the total with crit and fail
// counts. The total is offered to flavor selection against the highest
// possible total.
func (s *Service) Roll(ctx context.Context, notation string) (Report, error) {
	return s.run(ctx, "roll", []attribute.KeyValue{attribute.String("notation", notation)}, true,
		func(_ context.Context, roller *dice.Roller) (Report, []dice.Entry, error) {
			spec, err := dice.ParseNotation(notation)
			if err != nil {
				return Report{}, nil, err
			}
			result, err := roller.RollSpec(spec)
			if err != nil {
				return Report{}, nil, err
			}
			report := Report{Value: float64(result.Total), Crits: result.Crits, Fails: result.Fails}
			return report, []dice.Entry{dice.Total(result.Total, spec.Max())}, nil
		})
}

// Calc substitutes {name} variables from values and evaluates the equation.
// When dice were rolled, the rounded result joins flavor selection as a
// "sum" entry.
func (s *Service) Calc(ctx context.Context, equation string, values map[string]string) (Report, error) {
	return s.run(ctx, "calc", []attribute.KeyValue{attribute.String("equation", equation)}, true,
		func(ctx context.Context, roller *dice.Roller) (Report, []dice.Entry, error) {
			resolved, err := vars.Substitute(equation, values)
			if err != nil {
				return Report{}, nil, err
			}
			value, err := expr.ParseEquation(ctx, roller, resolved)
			if err != nil {
				return Report{}, nil, err
			}
			return Report{Value: value}, sumEntry(roller, value), nil
		})
}

// Macro runs a Lua dice macro. Every die it rolls shares one transcript. A
// string result is reported as Label.
func (s *Service) Macro(ctx context.Context, source string) (Report, error) {
	return s.run(ctx, "macro", nil, true,
		func(ctx context.Context, roller *dice.Roller) (Report, []dice.Entry, error) {
			result, err := script.Run(ctx, roller, source)
			if err != nil {
				return Report{}, nil, err
			}
			if !result.Numeric {
				return Report{Label: result.Text}, nil, nil
			}
			return Report{Value: result.Value}, sumEntry(roller, result.Value), nil
		})
}

// sumEntry offers a rounded result to flavor selection once dice have been
// rolled.
func sumEntry(roller *dice.Roller, value float64) []dice.Entry {
	if roller.Recorder().Len() == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	rounded := math.RoundToEven(value)
	if rounded < math.MinInt32 || rounded > math.MaxInt32 {
		return nil
	}
	return []dice.Entry{dice.Sum(int(rounded))}
}

// Advantage rolls two dice of sides faces and keeps the higher.
func (s *Service) Advantage(ctx context.Context, sides int) (Report, error) {
	return s.pair(ctx, "adv", sides, (*dice.Roller).Advantage)
}

// Disadvantage rolls two dice of sides faces and keeps the lower.
func (s *Service) Disadvantage(ctx context.Context, sides int) (Report, error) {
	return s.pair(ctx, "dis", sides, (*dice.Roller).Disadvantage)
}

func (s *Service) pair(ctx context.Context, op string, sides int, roll func(*dice.Roller, int) (int, error)) (Report, error) {
	return s.run(ctx, op, []attribute.KeyValue{attribute.Int("sides", sides)}, true,
		func(_ context.Context, roller *dice.Roller) (Report, []dice.Entry, error) {
			value, err := roll(roller, sides)
			if err != nil {
				return Report{}, nil, err
			}
			return Report{Value: float64(value)}, nil, nil
		})
}

// Top rolls times dice and sums the keep highest.
func (s *Service) Top(ctx context.Context, times, sides, keep int) (Report, error) {
	return s.keep(ctx, "top", times, sides, keep, true)
}

// Bottom rolls times dice and sums the keep lowest.
func (s *Service) Bottom(ctx context.Context, times, sides, keep int) (Report, error) {
	return s.keep(ctx, "bot", times, sides, keep, false)
}

func (s *Service) keep(ctx context.Context, op string, times, sides, keep int, highest bool) (Report, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("times", times),
		attribute.Int("sides", sides),
		attribute.Int("keep", keep),
	}
	return s.run(ctx, op, attrs, true,
		func(_ context.Context, roller *dice.Roller) (Report, []dice.Entry, error) {
			sum, err := roller.RollTop(sides, keep, times, highest)
			if err != nil {
				return Report{}, nil, err
			}
			return Report{Value: float64(sum)}, []dice.Entry{dice.Total(sum, sides*keep)}, nil
		})
}

// CoinFlip rolls a d2: 1 is tails and 2 is heads.
func (s *Service) CoinFlip(ctx context.Context) (Report, error) {
	return s.run(ctx, "coin", nil, false,
		func(_ context.Context, roller *dice.Roller) (Report, []dice.Entry, error) {
			value, err := roller.Roll(2)
			if err != nil {
				return Report{}, nil, err
			}
			label := CoinHeads
			if value == 1 {
				label = CoinTails
			}
			return Report{Value: float64(value), Label: label}, nil, nil
		})
}

// operation rolls with a recording roller. It returns the partial report and
// any synthetic entries to offer to flavor selection.
type operation func(ctx context.Context, roller *dice.Roller) (Report, []dice.Entry, error)

// run executes fn with a fresh recorder. When flavored, the recorded dice
// and synthetic entries are offered to flavor selection.
func (s *Service) run(ctx context.Context, op string, attrs []attribute.KeyValue, flavored bool, fn operation) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "dice."+op, trace.WithAttributes(attrs...))
	defer span.End()
	defer s.topUp()

	rec := dice.NewRecorder()
	span.SetAttributes(attribute.String("recorder.id", rec.ID()))

	rec.Enable()
	report, synthetic, err := fn(ctx, s.roller.Recording(rec))
	rec.Disable()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("dice operation failed",
			zap.String("op", op),
			zap.String("recorder_id", rec.ID()),
			zap.Error(err),
		)
		return Report{}, err
	}

	report.Entries = rec.Entries()
	report.Transcript = transcript.Block(report.Entries)
	if flavored {
		for _, entry := range synthetic {
			rec.Append(entry)
		}
		if line, ok := s.lines.Select(rec.Entries(), s.roller); ok {
			report.Flavor = line
		}
	}

	span.SetAttributes(
		attribute.Float64("result", report.Value),
		attribute.Int("dice", len(report.Entries)),
	)
	s.logger.Debug("dice operation",
		zap.String("op", op),
		zap.String("recorder_id", rec.ID()),
		zap.Float64("value", report.Value),
		zap.Int("dice", len(report.Entries)),
	)
	return report, nil
}

func (s *Service) topUp() {
	if s.source.IsLow() {
		s.source.RefillAsync()
	}
}
