package expr

import (
	"fmt"
	"math"
	"strconv"
)

// Eval evaluates a numeric arithmetic expression. Only decimal literals
// (optionally with an exponent), the binary operators + - * /, unary signs
// and parentheses are accepted. Anything else is an error; so is division by
// zero or a non-finite result.
func Eval(text string) (float64, error) {
	p := &arithParser{src: text}
	p.skipSpace()
	if p.done() {
		return 0, fmt.Errorf("empty expression")
	}
	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.done() {
		return 0, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("result is not finite")
	}
	return v, nil
}

// arithParser is a recursive-descent parser over the grammar
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | "(" sum ")"
type arithParser struct {
	src   string
	pos   int
	depth int
}

// maxDepth bounds nesting of parentheses and unary signs.
const maxDepth = 64

func (p *arithParser) done() bool { return p.pos >= len(p.src) }

func (p *arithParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *arithParser) skipSpace() {
	for !p.done() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *arithParser) sum() (float64, error) {
	v, err := p.product()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++
		rhs, err := p.product()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *arithParser) product() (float64, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return v, nil
		}
		p.pos++
		rhs, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
			continue
		}
		if rhs == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		v /= rhs
	}
}

func (p *arithParser) unary() (float64, error) {
	p.skipSpace()
	switch p.peek() {
	case '+', '-':
		sign := p.peek()
		p.pos++
		if p.depth++; p.depth > maxDepth {
			return 0, fmt.Errorf("expression nested too deeply")
		}
		v, err := p.unary()
		p.depth--
		if err != nil {
			return 0, err
		}
		if sign == '-' {
			return -v, nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *arithParser) primary() (float64, error) {
	p.skipSpace()
	if p.done() {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	if p.peek() == '(' {
		p.pos++
		if p.depth++; p.depth > maxDepth {
			return 0, fmt.Errorf("expression nested too deeply")
		}
		v, err := p.sum()
		p.depth--
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing ')' at offset %d", p.pos)
		}
		p.pos++
		return v, nil
	}
	return p.number()
}

func (p *arithParser) number() (float64, error) {
	start := p.pos
	digits := 0
	for !p.done() && isDigit(p.peek()) {
		p.pos++
		digits++
	}
	if p.peek() == '.' {
		p.pos++
		for !p.done() && isDigit(p.peek()) {
			p.pos++
			digits++
		}
	}
	if digits == 0 {
		p.pos = start
		return 0, fmt.Errorf("unexpected %q at offset %d", p.src[start], start)
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		mark := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		exp := 0
		for !p.done() && isDigit(p.peek()) {
			p.pos++
			exp++
		}
		if exp == 0 {
			p.pos = mark
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", p.src[start:p.pos])
	}
	return v, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
