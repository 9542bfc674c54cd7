// Package script runs Lua dice macros.
//
// A macro is a Lua chunk with a global dice table:
//
//	dice.roll(sides)              one die
//	dice.sum(times, sides)        total, crits, fails
//	dice.top(times, sides, keep)  sum of the keep highest
//	dice.bot(times, sides, keep)  sum of the keep lowest
//	dice.adv(sides)               higher of two dice
//	dice.dis(sides)               lower of two dice
//	dice.calc(equation)           evaluated equation
//
// The chunk's return value, a number or a string, is the macro result.
// Only the base, string, table and math libraries are opened.
package script

import (
	"context"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/dmassist/internal/core/dice"
	"github.com/louisbranch/dmassist/internal/core/expr"
	apperrors "github.com/louisbranch/dmassist/internal/platform/errors"
)

const (
	chunkName     = "macro"
	errorTypeName = "dmassist.error"

	// checkInterval is the number of VM instructions between context checks.
	checkInterval = 1000
)

// ErrScript indicates a macro that failed to load, raised a Lua error or
// returned an unsupported value.
var ErrScript = apperrors.New(apperrors.CodeScriptFailed, "macro failed")

// Result is a macro's return value.
type Result struct {
	// Value is the numeric result. It is zero when Numeric is false.
	Value float64
	// Text is the string result, or the formatted number.
	Text string
	// Numeric reports whether the macro returned a number.
	Numeric bool
}

// binding serves the dice table for one run.
type binding struct {
	ctx    context.Context
	roller *dice.Roller
}

// goError is the Lua error value for Go errors raised by the bindings. It
// reaches Run only when no pcall in the macro caught it.
type goError struct {
	err error
}

// Run executes source, rolling every die with roller.
//
// # Errors
//
// Dice and equation errors raised inside the macro are returned unchanged.
// Syntax errors, runtime errors and unsupported return values are
// ErrScript with a "reason" metadata entry. A done ctx stops the macro
// within a few thousand instructions and its error is returned.
func Run(ctx context.Context, roller *dice.Roller, source string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	state := newState()
	b := &binding{ctx: ctx, roller: roller}
	b.register(state)

	if err := lua.LoadBuffer(state, source, chunkName, "t"); err != nil {
		return Result{}, scriptError("load", err.Error(), err)
	}
	lua.SetDebugHook(state, b.interrupt, lua.MaskCount, checkInterval)
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		if raised, ok := lua.TestUserData(state, -1, errorTypeName).(*goError); ok {
			return Result{}, raised.err
		}
		return Result{}, scriptError("run", err.Error(), err)
	}

	switch state.TypeOf(-1) {
	case lua.TypeNumber:
		value, _ := state.ToNumber(-1)
		return Result{Value: value, Text: expr.Format(value), Numeric: true}, nil
	case lua.TypeString:
		text, _ := state.ToString(-1)
		return Result{Text: text}, nil
	case lua.TypeNil:
		return Result{}, nil
	default:
		return Result{}, scriptError("run", "macro must return a number or a string", nil)
	}
}

func newState() *lua.State {
	state := lua.NewState()
	libraries := []struct {
		name string
		open lua.Function
	}{
		{"_G", lua.BaseOpen},
		{"string", lua.StringOpen},
		{"table", lua.TableOpen},
		{"math", lua.MathOpen},
	}
	for _, lib := range libraries {
		lua.Require(state, lib.name, lib.open, true)
		state.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile"} {
		state.PushNil()
		state.SetGlobal(name)
	}
	return state
}

func (b *binding) register(state *lua.State) {
	lua.NewMetaTable(state, errorTypeName)
	state.PushGoFunction(func(state *lua.State) int {
		raised := lua.CheckUserData(state, 1, errorTypeName).(*goError)
		state.PushString(raised.err.Error())
		return 1
	})
	state.SetField(-2, "__tostring")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "roll", Function: b.roll},
		{Name: "sum", Function: b.sum},
		{Name: "top", Function: b.top},
		{Name: "bot", Function: b.bot},
		{Name: "adv", Function: b.adv},
		{Name: "dis", Function: b.dis},
		{Name: "calc", Function: b.calc},
	}, 0)
	state.SetGlobal("dice")
}

// raise throws err as a Lua error. A pcall in the macro may catch it.
func (b *binding) raise(state *lua.State, err error) {
	state.PushUserData(&goError{err: err})
	lua.SetMetaTableNamed(state, errorTypeName)
	state.Error()
}

func (b *binding) check(state *lua.State) {
	if err := b.ctx.Err(); err != nil {
		// From here on every instruction raises, so a pcall cannot keep the
		// macro alive.
		lua.SetDebugHook(state, b.interrupt, lua.MaskCount, 1)
		b.raise(state, err)
	}
}

// interrupt runs every checkInterval instructions so loops that never roll
// still see a done ctx.
func (b *binding) interrupt(state *lua.State, _ lua.Debug) {
	b.check(state)
}

func (b *binding) roll(state *lua.State) int {
	b.check(state)
	value, err := b.roller.Roll(lua.CheckInteger(state, 1))
	if err != nil {
		b.raise(state, err)
	}
	state.PushInteger(value)
	return 1
}

func (b *binding) sum(state *lua.State) int {
	b.check(state)
	times := lua.CheckInteger(state, 1)
	sides := lua.CheckInteger(state, 2)
	result, err := b.roller.RollSum(sides, times)
	if err != nil {
		b.raise(state, err)
	}
	state.PushInteger(result.Total)
	state.PushInteger(result.Crits)
	state.PushInteger(result.Fails)
	return 3
}

func (b *binding) top(state *lua.State) int {
	return b.keep(state, true)
}

func (b *binding) bot(state *lua.State) int {
	return b.keep(state, false)
}

func (b *binding) keep(state *lua.State, highest bool) int {
	b.check(state)
	times := lua.CheckInteger(state, 1)
	sides := lua.CheckInteger(state, 2)
	keep := lua.CheckInteger(state, 3)
	total, err := b.roller.RollTop(sides, keep, times, highest)
	if err != nil {
		b.raise(state, err)
	}
	state.PushInteger(total)
	return 1
}

func (b *binding) adv(state *lua.State) int {
	b.check(state)
	value, err := b.roller.Advantage(lua.OptInteger(state, 1, 20))
	if err != nil {
		b.raise(state, err)
	}
	state.PushInteger(value)
	return 1
}

func (b *binding) dis(state *lua.State) int {
	b.check(state)
	value, err := b.roller.Disadvantage(lua.OptInteger(state, 1, 20))
	if err != nil {
		b.raise(state, err)
	}
	state.PushInteger(value)
	return 1
}

func (b *binding) calc(state *lua.State) int {
	b.check(state)
	value, err := expr.ParseEquation(b.ctx, b.roller, lua.CheckString(state, 1))
	if err != nil {
		b.raise(state, err)
	}
	state.PushNumber(value)
	return 1
}

func scriptError(stage, reason string, cause error) error {
	metadata := map[string]string{"stage": stage, "reason": reason}
	if cause == nil {
		return apperrors.WithMetadata(apperrors.CodeScriptFailed, "macro "+stage+": "+reason, metadata)
	}
	return apperrors.WrapWithMetadata(apperrors.CodeScriptFailed, "macro "+stage, metadata, cause)
}
