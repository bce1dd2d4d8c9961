// Package expr parses and evaluates infix arithmetic formulas over named
// real variables. Expressions support + - * / % ^, unary sign, parentheses,
// and implicit multiplication between adjacent operands, e.g. "2fs" or
// "(a+1)(b-1)".
package expr

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrParse reports a syntactically invalid expression string.
var ErrParse = errors.New("expression parse error")

// ErrEval reports a failure while evaluating a parsed expression, such as
// division by zero or a variable missing from the scope.
var ErrEval = errors.New("expression eval error")

// Expression is an immutable parse of an infix arithmetic string.
type Expression struct {
	infix   []token
	postfix []token
	vars    map[string]struct{}
}

// Parse tokenizes and validates an infix expression.
func Parse(infix string) (*Expression, error) {
	tokens, err := tokenize(infix)
	if err != nil {
		return nil, err
	}
	postfix, err := toPostfix(tokens)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]struct{})
	for _, t := range tokens {
		if t.kind == tokVariable {
			vars[t.name] = struct{}{}
		}
	}
	return &Expression{infix: tokens, postfix: postfix, vars: vars}, nil
}

// MustParse is Parse for expressions known to be valid, such as generated
// component formulas. It panics on error.
func MustParse(infix string) *Expression {
	e, err := Parse(infix)
	if err != nil {
		panic(err)
	}
	return e
}

// FromConstant builds an expression holding a single numeric value.
func FromConstant(v float64) *Expression {
	t := numberToken(v)
	return &Expression{
		infix:   []token{t},
		postfix: []token{t},
		vars:    map[string]struct{}{},
	}
}

// Vars returns the sorted set of variable names the expression depends on.
func (e *Expression) Vars() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DependsOn reports whether the expression references any of names.
func (e *Expression) DependsOn(names ...string) bool {
	for _, name := range names {
		if _, ok := e.vars[name]; ok {
			return true
		}
	}
	return false
}

// MissingVar returns the first variable (in sorted order) not defined in
// scope, and whether such a variable exists.
func (e *Expression) MissingVar(scope map[string]float64) (string, bool) {
	for _, name := range e.Vars() {
		if _, ok := scope[name]; !ok {
			return name, true
		}
	}
	return "", false
}

// Eval evaluates the expression against scope.
func (e *Expression) Eval(scope map[string]float64) (float64, error) {
	if name, missing := e.MissingVar(scope); missing {
		return 0, fmt.Errorf("%w: undefined variable %q", ErrEval, name)
	}
	stack := make([]float64, 0, len(e.postfix))
	push := func(v float64) { stack = append(stack, v) }
	pop := func() float64 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for _, t := range e.postfix {
		switch t.kind {
		case tokNumber:
			push(t.num)
		case tokVariable:
			push(scope[t.name])
		case tokOperator:
			if t.props().unary {
				v := pop()
				if t.op == opUMinus {
					v = -v
				}
				push(v)
				continue
			}
			rval := pop()
			lval := pop()
			var result float64
			switch t.op {
			case opAdd:
				result = lval + rval
			case opSub:
				result = lval - rval
			case opMul:
				result = lval * rval
			case opDiv:
				if rval == 0 {
					return 0, fmt.Errorf("%w: divide by zero", ErrEval)
				}
				result = lval / rval
			case opMod:
				if rval == 0 {
					return 0, fmt.Errorf("%w: divide by zero", ErrEval)
				}
				result = math.Mod(lval, rval)
			case opPow:
				result = math.Pow(lval, rval)
			}
			push(result)
		}
	}
	if len(stack) != 1 {
		return 0, fmt.Errorf("%w: value stack error", ErrEval)
	}
	return stack[0], nil
}

// String returns the normalized infix form.
func (e *Expression) String() string {
	return formatTokens(e.infix)
}

// PostfixString returns the postfix (RPN) form, tokens space-separated.
func (e *Expression) PostfixString() string {
	var b strings.Builder
	for i, t := range e.postfix {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatToken(t))
	}
	return b.String()
}

func formatTokens(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(formatToken(t))
	}
	return b.String()
}

func formatToken(t token) string {
	switch t.kind {
	case tokNumber:
		return strconv.FormatFloat(t.num, 'g', -1, 64)
	case tokVariable:
		return t.name
	case tokParen:
		if t.leftParen {
			return "("
		}
		return ")"
	default:
		return string(t.props().symbol)
	}
}

// toPostfix runs Dijkstra's shunting-yard algorithm, then validates the
// result by a dry-run of the value stack.
func toPostfix(infix []token) ([]token, error) {
	postfix := make([]token, 0, len(infix))
	var ops []token
	for _, t := range infix {
		switch t.kind {
		case tokNumber, tokVariable:
			postfix = append(postfix, t)
		case tokOperator:
			p1 := t.props()
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.kind == tokParen {
					break
				}
				p2 := top.props()
				if (p1.assoc == assocLeft && p1.prec <= p2.prec) ||
					(p1.assoc == assocRight && p1.prec < p2.prec) {
					postfix = append(postfix, top)
					ops = ops[:len(ops)-1]
				} else {
					break
				}
			}
			ops = append(ops, t)
		case tokParen:
			if t.leftParen {
				ops = append(ops, t)
				continue
			}
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.isLeftParen() {
					break
				}
				postfix = append(postfix, top)
			}
		}
	}
	for len(ops) > 0 {
		postfix = append(postfix, ops[len(ops)-1])
		ops = ops[:len(ops)-1]
	}
	if err := validatePostfix(postfix); err != nil {
		return nil, err
	}
	return postfix, nil
}

func validatePostfix(postfix []token) error {
	depth := 0
	for _, t := range postfix {
		switch t.kind {
		case tokNumber, tokVariable:
			depth++
		case tokOperator:
			need := 2
			if t.props().unary {
				need = 1
			}
			if depth < need {
				return fmt.Errorf("%w: operand stack underflow", ErrParse)
			}
			depth -= need - 1
		case tokParen:
			return fmt.Errorf("%w: parenthesis in postfix", ErrParse)
		}
	}
	if depth > 1 {
		return fmt.Errorf("%w: operand stack overflow", ErrParse)
	}
	return nil
}
