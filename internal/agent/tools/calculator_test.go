package tools

import (
	"context"
	"strings"
	"testing"
)

func TestEvalExpression(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"1 + 2", 3},
		{"2 * 3 + 4", 10},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"-5 + 3", -2},
		{"2 * -3", -6},
		{"(120 + 30) * 0.2", 30},
		{"  7  ", 7},
	}
	for _, c := range cases {
		got, err := evalExpression(c.expr)
		if err != nil {
			t.Errorf("evalExpression(%q) error: %v", c.expr, err)
			continue
		}
		if got != c.want {
			t.Errorf("evalExpression(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalExpressionErrors(t *testing.T) {
	cases := []string{
		"",
		"1 +",
		"1 / 0",
		"(1 + 2",
		"1 + 2)",
		"two plus two",
		"- ",
	}
	for _, expr := range cases {
		if _, err := evalExpression(expr); err == nil {
			t.Errorf("evalExpression(%q): expected error", expr)
		}
	}
}

func TestCalculateToolRun(t *testing.T) {
	tl := NewCalculateTool()

	out, err := tl.InvokableRun(context.Background(), `{"expression": "(2 + 3) * 4"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"result":20`) {
		t.Errorf("got %q", out)
	}

	if _, err := tl.InvokableRun(context.Background(), `{"expression": ""}`); err == nil {
		t.Error("expected error for empty expression")
	}
}
