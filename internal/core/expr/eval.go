package expr

import (
	"math"

	"github.com/louisbranch/dmassist/internal/core/dice"
)

type evaluator struct {
	source string
	roller *dice.Roller
}

func (e *evaluator) fail(n node, reason string, cause error) error {
	start, end := n.span()
	return badEquation(e.source, start, end, reason, cause)
}

func (e *evaluator) eval(n node) (float64, error) {
	switch n := n.(type) {
	case *numberNode:
		return n.value, nil
	case *diceNode:
		if e.roller == nil {
			return 0, e.fail(n, "dice are not available here", nil)
		}
		if n.count < 1 || n.sides < 1 {
			return 0, e.fail(n, "dice need a positive count and number of sides", nil)
		}
		result, err := e.roller.RollSum(n.sides, n.count)
		if err != nil {
			return 0, e.fail(n, "cannot roll dice", err)
		}
		return float64(result.Total), nil
	case *unaryNode:
		value, err := e.eval(n.operand)
		if err != nil {
			return 0, err
		}
		if n.op == '-' {
			return -value, nil
		}
		return value, nil
	case *binaryNode:
		return e.evalBinary(n)
	case *callNode:
		return e.evalCall(n)
	default:
		return 0, e.fail(n, "unsupported term", nil)
	}
}

func (e *evaluator) evalBinary(n *binaryNode) (float64, error) {
	left, err := e.eval(n.left)
	if err != nil {
		return 0, err
	}
	right, err := e.eval(n.right)
	if err != nil {
		return 0, err
	}

	var result float64
	switch n.op {
	case '+':
		result = left + right
	case '-':
		result = left - right
	case '*':
		result = left * right
	case '/':
		if right == 0 {
			return 0, e.fail(n, "division by zero", nil)
		}
		result = left / right
	case '%':
		if right == 0 {
			return 0, e.fail(n, "modulo by zero", nil)
		}
		result = floorMod(left, right)
	case '^':
		result = math.Pow(left, right)
	default:
		return 0, e.fail(n, "unknown operator", nil)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, e.fail(n, "result is not a finite number", nil)
	}
	return result, nil
}

func (e *evaluator) evalCall(n *callNode) (float64, error) {
	if n.name == "round" {
		value, err := e.eval(n.args[0])
		if err != nil {
			return 0, err
		}
		return math.RoundToEven(value), nil
	}

	args := make([]int, len(n.args))
	for i, arg := range n.args {
		value, err := e.eval(arg)
		if err != nil {
			return 0, err
		}
		whole, ok := toInt(value)
		if !ok {
			return 0, e.fail(arg, n.name+" needs whole numbers", nil)
		}
		args[i] = whole
	}

	if e.roller == nil {
		return 0, e.fail(n, "dice are not available here", nil)
	}

	var (
		total int
		err   error
	)
	switch n.name {
	case "adv":
		total, err = e.roller.Advantage(args[0])
	case "dis":
		total, err = e.roller.Disadvantage(args[0])
	case "top":
		total, err = e.roller.RollTop(args[1], args[2], args[0], true)
	case "bot":
		total, err = e.roller.RollTop(args[1], args[2], args[0], false)
	default:
		return 0, e.fail(n, "unknown name", nil)
	}
	if err != nil {
		return 0, e.fail(n, "cannot roll "+n.name, err)
	}
	return float64(total), nil
}

// floorMod returns the remainder with the sign of the divisor.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func toInt(value float64) (int, bool) {
	if value != math.Trunc(value) || math.IsInf(value, 0) || value > math.MaxInt32 || value < math.MinInt32 {
		return 0, false
	}
	return int(value), true
}
