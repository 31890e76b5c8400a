package numlit

import (
	"strings"
)

//
// exprOp
//

type exprOp byte

const (
	// operators in descending order of precedence

	// unary operations
	opUnaryMinus exprOp = iota
	opUnaryPlus
	opBitwiseNEG

	// binary operations
	opMultiply
	opDivide
	opModulo
	opAdd
	opSubtract
	opShiftLeft
	opShiftRight
	opBitwiseAND
	opBitwiseXOR
	opBitwiseOR

	// pseudo-operation, only ever lives on the operator stack
	opLeftParen
)

type opdata struct {
	precedence      byte
	binary          bool
	leftAssociative bool
	eval            func(a, b int) (int, bool)
}

var ops = []opdata{
	{7, false, false, func(a, b int) (int, bool) { return -a, true }},
	{7, false, false, func(a, b int) (int, bool) { return a, true }},
	{7, false, false, func(a, b int) (int, bool) { return ^a, true }},
	{6, true, true, func(a, b int) (int, bool) { return a * b, true }},
	{6, true, true, func(a, b int) (int, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}},
	{6, true, true, func(a, b int) (int, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	}},
	{5, true, true, func(a, b int) (int, bool) { return a + b, true }},
	{5, true, true, func(a, b int) (int, bool) { return a - b, true }},
	{4, true, true, func(a, b int) (int, bool) { return a << uint(b&63), true }},
	{4, true, true, func(a, b int) (int, bool) { return a >> uint(b&63), true }},
	{3, true, true, func(a, b int) (int, bool) { return a & b, true }},
	{2, true, true, func(a, b int) (int, bool) { return a ^ b, true }},
	{1, true, true, func(a, b int) (int, bool) { return a | b, true }},
	{0, false, false, nil},
}

// collapses reports whether an operator already on the stack must be
// applied before op is pushed.
func (op exprOp) collapses(top exprOp) bool {
	if top == opLeftParen {
		return false
	}
	if ops[op].leftAssociative {
		return ops[op].precedence <= ops[top].precedence
	}
	return ops[op].precedence < ops[top].precedence
}

// evaluator is a shunting-yard evaluator that applies operators as soon as
// they collapse, so no tree is ever built.
type evaluator struct {
	values []int
	stack  []exprOp
}

func (e *evaluator) apply(op exprOp) bool {
	if ops[op].binary {
		if len(e.values) < 2 {
			return false
		}
		a, b := e.values[len(e.values)-2], e.values[len(e.values)-1]
		v, ok := ops[op].eval(a, b)
		if !ok {
			return false
		}
		e.values = append(e.values[:len(e.values)-2], v)
		return true
	}
	if len(e.values) < 1 {
		return false
	}
	v, _ := ops[op].eval(e.values[len(e.values)-1], 0)
	e.values[len(e.values)-1] = v
	return true
}

func (e *evaluator) push(op exprOp) bool {
	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		if !op.collapses(top) {
			break
		}
		e.stack = e.stack[:len(e.stack)-1]
		if !e.apply(top) {
			return false
		}
	}
	e.stack = append(e.stack, op)
	return true
}

func (e *evaluator) closeParen() bool {
	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		if top == opLeftParen {
			return true
		}
		if !e.apply(top) {
			return false
		}
	}
	return false
}

func (e *evaluator) finish() (int, bool) {
	for len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		if top == opLeftParen || !e.apply(top) {
			return 0, false
		}
	}
	if len(e.values) != 1 {
		return 0, false
	}
	return e.values[0], true
}

// Eval evaluates a constant expression made of numeric literals, character
// literals ('A'), parentheses and the operators + - * / % << >> & ^ | ~.
// Any symbol (label, constant, "$") makes the expression unevaluable and
// Eval reports false.
func Eval(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var e evaluator
	operand := true // expecting an operand rather than an operator
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case operand && c == '(':
			e.stack = append(e.stack, opLeftParen)
			i++

		case operand && (c == '-' || c == '+' || c == '~'):
			op := opUnaryMinus
			if c == '+' {
				op = opUnaryPlus
			} else if c == '~' {
				op = opBitwiseNEG
			}
			e.stack = append(e.stack, op)
			i++

		case operand && (c == '\'' || c == '"'):
			v, n, ok := charLiteral(s[i:])
			if !ok {
				return 0, false
			}
			e.values = append(e.values, v)
			operand = false
			i += n

		case operand:
			n := literalLen(s[i:])
			if n == 0 {
				return 0, false
			}
			v, ok := Parse(s[i : i+n])
			if !ok {
				return 0, false
			}
			e.values = append(e.values, v)
			operand = false
			i += n

		case c == ')':
			if !e.closeParen() {
				return 0, false
			}
			i++

		default:
			op, n, ok := binaryOp(s[i:])
			if !ok || !e.push(op) {
				return 0, false
			}
			operand = true
			i += n
		}
	}
	if operand {
		return 0, false
	}
	return e.finish()
}

func binaryOp(s string) (exprOp, int, bool) {
	if strings.HasPrefix(s, "<<") {
		return opShiftLeft, 2, true
	}
	if strings.HasPrefix(s, ">>") {
		return opShiftRight, 2, true
	}
	switch s[0] {
	case '*':
		return opMultiply, 1, true
	case '/':
		return opDivide, 1, true
	case '%':
		return opModulo, 1, true
	case '+':
		return opAdd, 1, true
	case '-':
		return opSubtract, 1, true
	case '&':
		return opBitwiseAND, 1, true
	case '^':
		return opBitwiseXOR, 1, true
	case '|':
		return opBitwiseOR, 1, true
	}
	return 0, 0, false
}

// literalLen returns the length of the literal at the start of s. A leading
// radix prefix (# $ & % @) belongs to the literal since an operand is
// expected here.
func literalLen(s string) int {
	n := 0
	if strings.ContainsRune("#$&%@", rune(s[0])) {
		n = 1
	}
	for n < len(s) && isWordByte(s[n]) {
		n++
	}
	return n
}

func isWordByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' || c == '.'
}

// charLiteral decodes a one-character quoted literal, where a doubled quote
// stands for the quote character itself.
func charLiteral(s string) (int, int, bool) {
	q := s[0]
	if len(s) >= 4 && s[1] == q && s[2] == q && s[3] == q {
		return int(q), 4, true
	}
	if len(s) >= 3 && s[1] != q && s[2] == q {
		return int(s[1]), 3, true
	}
	return 0, 0, false
}
