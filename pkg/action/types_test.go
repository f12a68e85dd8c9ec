package action

import (
	"testing"
	"time"
)

func TestLevelForScore_Buckets(t *testing.T) {
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{0, RiskSafe},
		{24, RiskSafe},
		{25, RiskModerate},
		{49, RiskModerate},
		{50, RiskHigh},
		{74, RiskHigh},
		{75, RiskCritical},
		{100, RiskCritical},
	}

	for _, tc := range cases {
		got := LevelForScore(tc.score)
		if got != tc.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestAction_Transition(t *testing.T) {
	a := &Action{ID: "a1", Status: StatusPending}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a.Transition(StatusApproved, now)

	if a.Status != StatusApproved {
		t.Errorf("Expected status approved, got %s", a.Status)
	}
	if !a.UpdatedAt.Equal(now) {
		t.Errorf("Expected UpdatedAt %v, got %v", now, a.UpdatedAt)
	}
}

func TestAction_NumberParam(t *testing.T) {
	a := &Action{Params: map[string]interface{}{
		"float":  42.5,
		"int":    7,
		"int64":  int64(9),
		"string": "not a number",
	}}

	if v, ok := a.NumberParam("float"); !ok || v != 42.5 {
		t.Errorf("Expected 42.5, got %v (ok=%v)", v, ok)
	}
	if v, ok := a.NumberParam("int"); !ok || v != 7 {
		t.Errorf("Expected 7, got %v (ok=%v)", v, ok)
	}
	if v, ok := a.NumberParam("int64"); !ok || v != 9 {
		t.Errorf("Expected 9, got %v (ok=%v)", v, ok)
	}
	if _, ok := a.NumberParam("string"); ok {
		t.Error("Expected string value to not count as a number")
	}
	if _, ok := a.NumberParam("missing"); ok {
		t.Error("Expected missing key to return false")
	}

	// First matching key wins
	if v, ok := a.NumberParam("missing", "int", "float"); !ok || v != 7 {
		t.Errorf("Expected first matching key (int=7), got %v (ok=%v)", v, ok)
	}
}

func TestAction_StringParam(t *testing.T) {
	a := &Action{Params: map[string]interface{}{
		"token":  "SOL",
		"amount": 25.0,
	}}

	if s, ok := a.StringParam("token"); !ok || s != "SOL" {
		t.Errorf("Expected SOL, got %q (ok=%v)", s, ok)
	}
	if _, ok := a.StringParam("amount"); ok {
		t.Error("Expected numeric value to not count as a string")
	}
	if _, ok := a.StringParam("missing"); ok {
		t.Error("Expected missing key to return false")
	}
}
