package tools

import (
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"2 + 2", 4},
		{"10 - 3 * 2", 4},
		{"(10 - 3) * 2", 14},
		{"7 / 2", 3.5},
		{"10 % 3", 1},
		{"2 ^ 10", 1024},
		{"2 ^ 3 ^ 2", 512},
		{"-5 + 3", -2},
		{"--4", 4},
		{"sqrt(16)", 4},
		{"abs(-7.5)", 7.5},
		{"round(2.6)", 3},
		{"pow(2, 8)", 256},
		{"sin(0)", 0},
		{"cos(0)", 1},
		{"pi", math.Pi},
		{"2 * pi", 2 * math.Pi},
		{"e", math.E},
		{"sqrt(abs(-16)) + 1", 5},
		{"1.5 + .5", 2},
	}
	for _, tc := range cases {
		got, err := Evaluate(tc.expr)
		if err != nil {
			t.Errorf("Evaluate(%q): unexpected error: %v", tc.expr, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"1 / 0",
		"5 % 0",
		"2 +",
		"(1 + 2",
		"foo(3)",
		"bogus",
		"sqrt(-1)",
		"pow(1)",
		"1 2",
	}
	for _, expr := range cases {
		if _, err := Evaluate(expr); err == nil {
			t.Errorf("Evaluate(%q): expected error, got none", expr)
		}
	}
}
