package models

import "testing"

func TestClassifyOutcome(t *testing.T) {
	cases := []struct {
		pnl  float64
		want string
	}{
		{100, OutcomeWin},
		{0.01, OutcomeWin},
		{-50, OutcomeLoss},
		{-0.01, OutcomeLoss},
		{0, OutcomeBreakEven},
	}

	for _, tc := range cases {
		if got := ClassifyOutcome(tc.pnl); got != tc.want {
			t.Errorf("ClassifyOutcome(%v) = %q, want %q", tc.pnl, got, tc.want)
		}
	}
}
