package cli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

// ExprError reports a parse failure in a pipeline lambda expression.
type ExprError struct {
	Src     string
	Pos     int
	Message string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Src, e.Pos, e.Message)
}

// ParseLambdaBody parses the textual lambda body of a map/filter/zip
// stage into scalar IR.
//
// The grammar mirrors what the kernel renderer can express:
//
//	equality := additive [ "==" additive ]
//	additive := term { "+" term }
//	term     := factor { ("*" | "%") factor }
//	factor   := NUMBER | PARAM | TYPE "(" equality ")" | "(" equality ")"
//
// TYPE is one of int32, float32, float64, byte and produces a cast.
// Numeric literals take the first parameter's element type; a literal
// with a fractional part is rejected for integer pipelines rather than
// silently truncated.
func ParseLambdaBody(src string, params ...*scalarir.Variable) (scalarir.Expr, error) {
	if len(params) == 0 {
		return nil, &ExprError{Src: src, Message: "lambda has no parameters"}
	}
	byName := make(map[string]*scalarir.Variable, len(params))
	for _, p := range params {
		if _, dup := byName[p.Label]; dup {
			return nil, &ExprError{Src: src, Message: fmt.Sprintf("duplicate parameter %q", p.Label)}
		}
		byName[p.Label] = p
	}

	p := &exprParser{src: src, params: byName, litType: params[0].Type}
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return expr, nil
}

type exprParser struct {
	src     string
	pos     int
	params  map[string]*scalarir.Variable
	litType scalarir.ElemType
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &ExprError{Src: p.src, Pos: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// peek returns the next byte without consuming it, or 0 at end of input.
func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) consume(prefix string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *exprParser) parseEquality() (scalarir.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.consume("==") {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return scalarir.BinaryOp{Op: scalarir.Equal, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *exprParser) parseAdditive() (scalarir.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek() == '+' {
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = scalarir.BinaryOp{Op: scalarir.Plus, Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseTerm() (scalarir.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = scalarir.BinaryOp{Op: scalarir.Times, Left: left, Right: right}
		case '%':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			left = scalarir.BinaryOp{Op: scalarir.Modulo, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseFactor() (scalarir.Expr, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		inner, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return inner, nil
	case c >= '0' && c <= '9':
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseIdent()
	case c == 0:
		return nil, p.errorf("unexpected end of expression")
	default:
		return nil, p.errorf("unexpected character %q", string(c))
	}
}

func (p *exprParser) parseNumber() (scalarir.Expr, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	text := p.src[start:p.pos]

	if seenDot {
		if p.litType != scalarir.Float32 && p.litType != scalarir.Float64 {
			return nil, p.errorf("fractional literal %s in a %s pipeline", text, p.litType)
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("bad literal %s", text)
		}
		return scalarir.Constant{Value: f, Type: p.litType}, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("bad literal %s", text)
	}
	return scalarir.Constant{Value: n, Type: p.litType}, nil
}

func (p *exprParser) parseIdent() (scalarir.Expr, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]

	// A type name followed by "(" is a cast.
	if target, ok := scalarir.ParseElemType(name); ok && p.peek() == '(' {
		p.pos++
		inner, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("expected ')' after cast")
		}
		p.pos++
		return scalarir.Convert{Value: inner, Type: target}, nil
	}

	v, ok := p.params[name]
	if !ok {
		return nil, p.errorf("unknown identifier %q", name)
	}
	return v, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
