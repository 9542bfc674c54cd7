package expr

import "strings"

// node is one element of a parsed equation.
type node interface {
	span() (start, end int)
}

type numberNode struct {
	value      float64
	start, end int
}

type diceNode struct {
	count, sides int
	start, end   int
}

type unaryNode struct {
	op         byte
	operand    node
	start, end int
}

type binaryNode struct {
	op          byte
	left, right node
	start, end  int
}

type callNode struct {
	name       string
	args       []node
	start, end int
}

func (n *numberNode) span() (int, int) { return n.start, n.end }
func (n *diceNode) span() (int, int)   { return n.start, n.end }
func (n *unaryNode) span() (int, int)  { return n.start, n.end }
func (n *binaryNode) span() (int, int) { return n.start, n.end }
func (n *callNode) span() (int, int)   { return n.start, n.end }

// maxDepth bounds how deeply parentheses and unary signs may nest.
const maxDepth = 200

// functions maps each callable name to its arity.
var functions = map[string]int{
	"adv":   1,
	"dis":   1,
	"top":   3,
	"bot":   3,
	"round": 1,
}

type parser struct {
	source string
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) peekOperator(ops string) (byte, bool) {
	tok := p.peek()
	if tok.kind != tokenOperator || !strings.Contains(ops, tok.text) {
		return 0, false
	}
	return tok.text[0], true
}

func (p *parser) unexpected(tok token) error {
	if tok.kind == tokenEOF {
		return badEquation(p.source, tok.start, tok.end, "unexpected end of equation", nil)
	}
	return badEquation(p.source, tok.start, tok.end, "unexpected "+tok.kind.String(), nil)
}

func (p *parser) parseEquation() (node, error) {
	if p.peek().kind == tokenEOF {
		return nil, badEquation(p.source, 0, 0, "empty equation", nil)
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		if tok.kind == tokenRParen {
			return nil, badEquation(p.source, tok.start, tok.end, "unbalanced parenthesis", nil)
		}
		return nil, p.unexpected(tok)
	}
	return root, nil
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("+-")
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = newBinary(op, left, right)
	}
}

// term := unary (('*'|'/'|'%') unary)*
func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOperator("*/%")
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = newBinary(op, left, right)
	}
}

// unary := ('-'|'+') unary | power
// Every nested construct passes through here, so depth is tracked once.
func (p *parser) parseUnary() (node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		tok := p.peek()
		return nil, badEquation(p.source, tok.start, tok.end, "equation nests too deeply", nil)
	}

	if op, ok := p.peekOperator("+-"); ok {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		_, end := operand.span()
		return &unaryNode{op: op, operand: operand, start: tok.start, end: end}, nil
	}
	return p.parsePower()
}

// power := atom ('^' unary)?
// The exponent is parsed as a unary, which makes '^' right-associative and
// lets it bind tighter than a leading minus.
func (p *parser) parsePower() (node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peekOperator("^"); !ok {
		return base, nil
	}
	p.advance()
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return newBinary('^', base, exponent), nil
}

func (p *parser) parseAtom() (node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokenNumber:
		return &numberNode{value: tok.number, start: tok.start, end: tok.end}, nil
	case tokenDice:
		return &diceNode{count: tok.count, sides: tok.sides, start: tok.start, end: tok.end}, nil
	case tokenIdent:
		return p.parseCall(tok)
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing := p.advance()
		if closing.kind != tokenRParen {
			if closing.kind == tokenEOF {
				return nil, badEquation(p.source, tok.start, closing.end, "unbalanced parenthesis", nil)
			}
			return nil, p.unexpected(closing)
		}
		return inner, nil
	default:
		return nil, p.unexpected(tok)
	}
}

func (p *parser) parseCall(name token) (node, error) {
	lowered := strings.ToLower(name.text)
	arity, ok := functions[lowered]
	if !ok {
		return nil, badEquation(p.source, name.start, name.end, "unknown name", nil)
	}
	open := p.advance()
	if open.kind != tokenLParen {
		return nil, badEquation(p.source, name.start, open.end, lowered+" needs parentheses", nil)
	}

	call := &callNode{name: lowered, start: name.start}
	if p.peek().kind != tokenRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.args = append(call.args, arg)
			if p.peek().kind != tokenComma {
				break
			}
			p.advance()
		}
	}

	closing := p.advance()
	switch closing.kind {
	case tokenRParen:
	case tokenEOF:
		return nil, badEquation(p.source, name.start, closing.end, "unbalanced parenthesis", nil)
	default:
		return nil, p.unexpected(closing)
	}
	call.end = closing.end

	if len(call.args) != arity {
		return nil, badEquation(p.source, call.start, call.end, lowered+" takes "+pluralArgs(arity), nil)
	}
	return call, nil
}

func newBinary(op byte, left, right node) *binaryNode {
	start, _ := left.span()
	_, end := right.span()
	return &binaryNode{op: op, left: left, right: right, start: start, end: end}
}

func pluralArgs(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return string(rune('0'+n)) + " arguments"
}
