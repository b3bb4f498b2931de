package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type CalculateInput struct {
	Expression string `json:"expression"`
}

type CalculateOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// NewCalculateTool evaluates basic arithmetic expressions so the assistant
// does not have to do math in-token.
func NewCalculateTool() tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCalculate,
			Desc: "Evaluate an arithmetic expression. Supports +, -, *, /, parentheses and decimal numbers. Example: (120 + 30) * 0.2",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"expression": {
					Type:     "string",
					Desc:     "The arithmetic expression to evaluate",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *CalculateInput) (*CalculateOutput, error) {
			expr := strings.TrimSpace(in.Expression)
			if expr == "" {
				return nil, fmt.Errorf("expression is required")
			}
			v, err := evalExpression(expr)
			if err != nil {
				return nil, fmt.Errorf("evaluate %q: %w", expr, err)
			}
			return &CalculateOutput{Expression: expr, Result: v}, nil
		},
	)
}

// evalExpression is a small shunting-yard evaluator over float64.
func evalExpression(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}

	var output []float64
	var ops []rune

	apply := func(op rune) error {
		if len(output) < 2 {
			return fmt.Errorf("malformed expression")
		}
		b := output[len(output)-1]
		a := output[len(output)-2]
		output = output[:len(output)-2]
		var v float64
		switch op {
		case '+':
			v = a + b
		case '-':
			v = a - b
		case '*':
			v = a * b
		case '/':
			if b == 0 {
				return fmt.Errorf("division by zero")
			}
			v = a / b
		default:
			return fmt.Errorf("unknown operator %q", op)
		}
		output = append(output, v)
		return nil
	}

	prec := func(op rune) int {
		if op == '*' || op == '/' {
			return 2
		}
		return 1
	}

	for _, tok := range tokens {
		switch tok.kind {
		case tokNumber:
			output = append(output, tok.value)
		case tokOp:
			for len(ops) > 0 && ops[len(ops)-1] != '(' && prec(ops[len(ops)-1]) >= prec(tok.op) {
				if err := apply(ops[len(ops)-1]); err != nil {
					return 0, err
				}
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok.op)
		case tokLParen:
			ops = append(ops, '(')
		case tokRParen:
			for len(ops) > 0 && ops[len(ops)-1] != '(' {
				if err := apply(ops[len(ops)-1]); err != nil {
					return 0, err
				}
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return 0, fmt.Errorf("unbalanced parentheses")
			}
			ops = ops[:len(ops)-1]
		}
	}
	for len(ops) > 0 {
		op := ops[len(ops)-1]
		if op == '(' {
			return 0, fmt.Errorf("unbalanced parentheses")
		}
		if err := apply(op); err != nil {
			return 0, err
		}
		ops = ops[:len(ops)-1]
	}
	if len(output) != 1 {
		return 0, fmt.Errorf("malformed expression")
	}
	return output[0], nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	value float64
	op    rune
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen})
			i++
		case r == '+' || r == '*' || r == '/':
			tokens = append(tokens, token{kind: tokOp, op: r})
			i++
		case r == '-':
			// unary minus when at the start or after another operator
			if len(tokens) == 0 || tokens[len(tokens)-1].kind == tokOp || tokens[len(tokens)-1].kind == tokLParen {
				j := i + 1
				for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
					j++
				}
				if j == i+1 {
					return nil, fmt.Errorf("dangling minus")
				}
				v, err := strconv.ParseFloat(string(runes[i:j]), 64)
				if err != nil {
					return nil, fmt.Errorf("parse number: %w", err)
				}
				tokens = append(tokens, token{kind: tokNumber, value: v})
				i = j
			} else {
				tokens = append(tokens, token{kind: tokOp, op: r})
				i++
			}
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			v, err := strconv.ParseFloat(string(runes[i:j]), 64)
			if err != nil {
				return nil, fmt.Errorf("parse number: %w", err)
			}
			tokens = append(tokens, token{kind: tokNumber, value: v})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}
