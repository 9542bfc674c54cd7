package dice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/message"

	"github.com/louisbranch/dmassist/internal/core/expr"
	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
	"github.com/louisbranch/dmassist/internal/platform/i18n/catalog"
	"github.com/louisbranch/dmassist/internal/services/dice/app"
)

const helpText = `Commands:
  roll XdY                    roll X dice with Y sides
  calc <equation>             + - * / ^ %, XdY, adv(s), dis(s), top(t, s, k), bot(t, s, k), round(x)
  adv [sides]                 roll with advantage (default d20)
  dis [sides]                 roll with disadvantage (default d20)
  top [times] [sides] [keep]  keep the highest dice (default 4 6 3)
  bot [times] [sides] [keep]  keep the lowest dice (default 4 6 3)
  coin                        flip a coin
  macro <lua>                 run a Lua macro using the dice table
  set <name> <value>          store a variable for {name} in calc
  unset <name>                forget a variable
  vars                        list variables
  quit                        leave`

type commandMetrics struct {
	commands *prometheus.CounterVec
}

func newCommandMetrics() *commandMetrics {
	return &commandMetrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dmassist",
			Subsystem: "cli",
			Name:      "commands_total",
			Help:      "Commands handled by result.",
		}, []string{"command", "result"}),
	}
}

// session holds the per-user state of one interactive run.
type session struct {
	svc     *app.Service
	locale  string
	printer *message.Printer
	metrics *commandMetrics
	vars    map[string]string
}

func newSession(svc *app.Service, locale string, metrics *commandMetrics) (*session, error) {
	printer, err := catalog.Default().Printer(locale)
	if err != nil {
		return nil, err
	}
	return &session{
		svc:     svc,
		locale:  locale,
		printer: printer,
		metrics: metrics,
		vars:    make(map[string]string),
	}, nil
}

func (s *session) text(key string, args ...any) string {
	return s.printer.Sprintf("dice."+key, args...)
}

var (
	// errQuit ends the session without an error.
	errQuit = errors.New("quit")
	// errNotNumber reports a non-numeric command argument.
	errNotNumber = errors.New("argument is not a number")
)

func (s *session) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, err := s.handle(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			reply = s.describe(err)
		}
		if _, werr := fmt.Fprintln(out, reply); werr != nil {
			return werr
		}
	}
	return scanner.Err()
}

func (s *session) describe(err error) string {
	if errors.Is(err, errNotNumber) {
		return s.text("not_number")
	}
	return apperrors.UserMessage(err, s.locale)
}

func (s *session) handle(ctx context.Context, line string) (string, error) {
	name, rest, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	reply, err := s.dispatch(ctx, name, rest)
	result := "ok"
	if err != nil && !errors.Is(err, errQuit) {
		result = "error"
	}
	s.metrics.commands.WithLabelValues(metricCommand(name), result).Inc()
	return reply, err
}

func (s *session) dispatch(ctx context.Context, name, rest string) (string, error) {
	switch name {
	case "roll":
		return s.roll(ctx, rest)
	case "calc":
		return s.calc(ctx, rest)
	case "adv", "dis":
		return s.pair(ctx, name, rest)
	case "top", "bot":
		return s.keep(ctx, name, rest)
	case "coin", "coinflip":
		return s.coin(ctx)
	case "macro":
		return s.macro(ctx, rest)
	case "set":
		return s.set(rest)
	case "unset":
		delete(s.vars, rest)
		return s.text("forgot", rest), nil
	case "vars":
		return s.listVars(), nil
	case "help":
		return helpText, nil
	case "quit", "exit":
		return "", errQuit
	default:
		return s.text("unknown_command", name), nil
	}
}

func (s *session) roll(ctx context.Context, notation string) (string, error) {
	if notation == "" {
		return s.text("usage_roll"), nil
	}
	report, err := s.svc.Roll(ctx, notation)
	if err != nil {
		return "", err
	}

	var msg replyLines
	if len(report.Entries) > 1 {
		msg.say(report.Transcript)
	}
	if len(report.Entries) == 1 {
		msg.say(expr.Format(report.Value))
	} else {
		msg.say(s.totalWithCounts(report))
	}
	msg.say(report.Flavor)
	return msg.String(), nil
}

func (s *session) totalWithCounts(report app.Report) string {
	text := expr.Format(report.Value)
	if report.Crits > 0 {
		text += s.text("with_crits", report.Crits)
	}
	switch {
	case report.Fails > 0 && report.Crits > 0:
		text += s.text("and_fails", report.Fails)
	case report.Fails > 0:
		text += s.text("with_fails", report.Fails)
	}
	return text
}

func (s *session) calc(ctx context.Context, equation string) (string, error) {
	report, err := s.svc.Calc(ctx, equation, s.vars)
	if err != nil {
		return "", err
	}
	var msg replyLines
	msg.say(report.Transcript)
	msg.say(report.Flavor)
	msg.say(s.text("answer", expr.Format(report.Value)))
	return msg.String(), nil
}

func (s *session) pair(ctx context.Context, name, rest string) (string, error) {
	args, err := intArgs(rest, 20)
	if err != nil {
		return "", err
	}
	run := s.svc.Advantage
	if name == "dis" {
		run = s.svc.Disadvantage
	}
	report, err := run(ctx, args[0])
	if err != nil {
		return "", err
	}

	first, second := report.Entries[0].Result(), report.Entries[1].Result()
	var msg replyLines
	msg.say(s.text("pair", first, second, expr.Format(report.Value)))
	if first == second {
		msg.say(s.text("tie"))
	}
	msg.say(report.Flavor)
	return msg.String(), nil
}

func (s *session) keep(ctx context.Context, name, rest string) (string, error) {
	args, err := intArgs(rest, 4, 6, 3)
	if err != nil {
		return "", err
	}
	run := s.svc.Top
	if name == "bot" {
		run = s.svc.Bottom
	}
	report, err := run(ctx, args[0], args[1], args[2])
	if err != nil {
		return "", err
	}

	var msg replyLines
	if len(report.Entries) > 1 {
		msg.say(report.Transcript)
	}
	msg.say(report.Flavor)
	msg.say(s.text("got", expr.Format(report.Value)))
	return msg.String(), nil
}

func (s *session) coin(ctx context.Context) (string, error) {
	report, err := s.svc.CoinFlip(ctx)
	if err != nil {
		return "", err
	}
	if report.Label == app.CoinTails {
		return s.text("coin_tails"), nil
	}
	return s.text("coin_heads"), nil
}

func (s *session) macro(ctx context.Context, source string) (string, error) {
	if source == "" {
		return s.text("usage_macro"), nil
	}
	report, err := s.svc.Macro(ctx, source)
	if err != nil {
		return "", err
	}
	var msg replyLines
	msg.say(report.Transcript)
	msg.say(report.Flavor)
	result := report.Label
	if result == "" {
		result = expr.Format(report.Value)
	}
	msg.say(s.text("macro", result))
	return msg.String(), nil
}

func (s *session) set(rest string) (string, error) {
	name, value, ok := strings.Cut(rest, " ")
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return s.text("usage_set"), nil
	}
	s.vars[name] = value
	return s.text("noted", name, value), nil
}

func (s *session) listVars() string {
	if len(s.vars) == 0 {
		return s.text("no_vars")
	}
	names := slices.Sorted(maps.Keys(s.vars))
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+" = "+s.vars[name])
	}
	return strings.Join(lines, "\n")
}

// intArgs parses space-separated integers, filling missing trailing values
// from defaults. Extra arguments are ignored.
func intArgs(rest string, defaults ...int) ([]int, error) {
	values := slices.Clone(defaults)
	for i, field := range strings.Fields(rest) {
		if i >= len(values) {
			break
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, errNotNumber
		}
		values[i] = n
	}
	return values, nil
}

// metricCommand bounds the label set to known commands.
func metricCommand(name string) string {
	switch name {
	case "roll", "calc", "adv", "dis", "top", "bot", "coin", "macro", "set", "unset", "vars", "help", "quit":
		return name
	case "coinflip":
		return "coin"
	case "exit":
		return "quit"
	default:
		return "unknown"
	}
}

// replyLines collects reply lines, skipping empty ones.
type replyLines struct {
	lines []string
}

func (m *replyLines) say(text string) {
	if text != "" {
		m.lines = append(m.lines, text)
	}
}

func (m *replyLines) String() string {
	return strings.Join(m.lines, "\n")
}
