package expr

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenDice
	tokenIdent
	tokenOperator
	tokenLParen
	tokenRParen
	tokenComma
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number"
	case tokenDice:
		return "dice"
	case tokenIdent:
		return "name"
	case tokenOperator:
		return "operator"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenComma:
		return "','"
	default:
		return "token"
	}
}

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int

	number float64
	count  int
	sides  int
}

// lex splits source into tokens. Dice notation such as 2d6 or d20 is read
// as a single token.
func lex(source string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(source) {
		r, size := utf8.DecodeRuneInString(source[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(source[i]):
			tok, err := lexNumberOrDice(source, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = tok.end
		case isLetter(source[i]):
			tok, err := lexIdentOrDice(source, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = tok.end
		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", start: i, end: i + 1})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", start: i, end: i + 1})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokenComma, text: ",", start: i, end: i + 1})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^' || r == '%':
			tokens = append(tokens, token{kind: tokenOperator, text: string(r), start: i, end: i + 1})
			i++
		default:
			return nil, badEquation(source, i, i+size, "unknown symbol", nil)
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, start: len(source), end: len(source)})
	return tokens, nil
}

func lexNumberOrDice(source string, start int) (token, error) {
	i := scanDigits(source, start)
	if i < len(source) && (source[i] == 'd' || source[i] == 'D') {
		count, err := strconv.Atoi(source[start:i])
		if err != nil {
			return token{}, badEquation(source, start, i, "dice count too large", nil)
		}
		return lexDiceSides(source, start, i, count)
	}

	if i+1 < len(source) && source[i] == '.' && isDigit(source[i+1]) {
		i = scanDigits(source, i+1)
	}
	text := source[start:i]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, badEquation(source, start, i, "invalid number", err)
	}
	return token{kind: tokenNumber, text: text, start: start, end: i, number: value}, nil
}

func lexIdentOrDice(source string, start int) (token, error) {
	if (source[start] == 'd' || source[start] == 'D') && start+1 < len(source) && isDigit(source[start+1]) {
		return lexDiceSides(source, start, start, 1)
	}
	i := start
	for i < len(source) && (isLetter(source[i]) || isDigit(source[i])) {
		i++
	}
	return token{kind: tokenIdent, text: source[start:i], start: start, end: i}, nil
}

// lexDiceSides reads the sides of a dice token whose 'd' sits at dPos.
func lexDiceSides(source string, start, dPos, count int) (token, error) {
	sidesStart := dPos + 1
	end := scanDigits(source, sidesStart)
	if end == sidesStart {
		return token{}, badEquation(source, start, end, "dice need a number of sides", nil)
	}
	if end < len(source) && (isLetter(source[end]) || source[end] == '.') {
		return token{}, badEquation(source, start, end+1, "malformed dice", nil)
	}
	sides, err := strconv.Atoi(source[sidesStart:end])
	if err != nil {
		return token{}, badEquation(source, start, end, "dice sides too large", nil)
	}
	return token{
		kind:  tokenDice,
		text:  source[start:end],
		start: start,
		end:   end,
		count: count,
		sides: sides,
	}, nil
}

func scanDigits(source string, i int) int {
	for i < len(source) && isDigit(source[i]) {
		i++
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}
