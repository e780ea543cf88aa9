package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type CalculateInput struct {
	Expression string `json:"expression" jsonschema_description:"Arithmetic expression, e.g. \"2 + 2\" or \"sqrt(16) * pi\"."`
}

func calculateTool() ToolDefinition {
	return ToolDefinition{
		Name:        "calculate",
		Description: "Evaluate an arithmetic expression. Supports + - * / % ^, parentheses, sqrt/abs/round/sin/cos/tan/pow, and the constants pi and e.",
		InputSchema: GenerateSchema[CalculateInput](),
		Run: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in CalculateInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			result, err := Evaluate(in.Expression)
			if err != nil {
				return "", fmt.Errorf("calculate %q: %w", in.Expression, err)
			}
			return fmt.Sprintf("Result: %s", strconv.FormatFloat(result, 'g', -1, 64)), nil
		},
	}
}

// Evaluate parses and evaluates an arithmetic expression. Only numeric
// operations are allowed; no variables, no assignment.
func Evaluate(expr string) (float64, error) {
	p := &exprParser{input: expr}
	p.skipSpace()
	if p.eof() {
		return 0, errors.New("empty expression")
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.eof() {
		return 0, fmt.Errorf("unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, errors.New("result is not a finite number")
	}
	return v, nil
}

// exprParser is a small recursive-descent parser:
//
//	expr   = term (('+'|'-') term)*
//	term   = power (('*'|'/'|'%') power)*
//	power  = unary ('^' power)?        right-associative
//	unary  = '-' unary | primary
//	primary = number | name | name '(' args ')' | '(' expr ')'
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) eof() bool { return p.pos >= len(p.input) }

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.eof() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, errors.New("division by zero")
			}
			left /= right
		case '%':
			p.pos++
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, errors.New("modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.peek() == '^' {
		p.pos++
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.eof() {
		return 0, errors.New("unexpected end of expression")
	}

	c := p.peek()
	if c == '(' {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(')'); err != nil {
			return 0, err
		}
		return v, nil
	}
	if c >= '0' && c <= '9' || c == '.' {
		return p.parseNumber()
	}
	if unicode.IsLetter(rune(c)) {
		return p.parseName()
	}
	return 0, fmt.Errorf("unexpected %q at position %d", c, p.pos)
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) parseName() (float64, error) {
	start := p.pos
	for !p.eof() && unicode.IsLetter(rune(p.peek())) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	switch name {
	case "pi":
		return math.Pi, nil
	case "e":
		return math.E, nil
	}

	p.skipSpace()
	if p.peek() != '(' {
		return 0, fmt.Errorf("unknown constant %q", name)
	}
	p.pos++
	args := make([]float64, 0, 2)
	for {
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return 0, err
	}
	return applyFunc(name, args)
}

func (p *exprParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("expected %q at position %d", c, p.pos)
	}
	p.pos++
	return nil
}

func applyFunc(name string, args []float64) (float64, error) {
	one := func(fn func(float64) float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return fn(args[0]), nil
	}

	switch name {
	case "sqrt":
		if len(args) == 1 && args[0] < 0 {
			return 0, errors.New("sqrt of negative number")
		}
		return one(math.Sqrt)
	case "abs":
		return one(math.Abs)
	case "round":
		return one(math.Round)
	case "sin":
		return one(math.Sin)
	case "cos":
		return one(math.Cos)
	case "tan":
		return one(math.Tan)
	case "pow":
		if len(args) != 2 {
			return 0, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(args[0], args[1]), nil
	default:
		return 0, fmt.Errorf("unknown function %q", name)
	}
}
