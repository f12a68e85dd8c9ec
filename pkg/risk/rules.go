package risk

import (
	"strings"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/boundary"
)

// FactorRule is one independent risk detector. Evaluate reports the
// observed value, the threshold above which the factor is exceeded,
// and whether the rule matched the action at all. Unmatched rules
// contribute nothing to the score.
type FactorRule struct {
	// Name identifies the factor in assessments and breakdowns.
	Name string

	// Weight is the factor's contribution weight, 0-1.
	Weight float64

	// Evaluate observes the action under the given boundaries.
	Evaluate func(a *action.Action, b *boundary.Boundaries, now time.Time) (value, threshold float64, matched bool)
}

// irreversibleFragments marks action types that cannot be undone by a
// compensating action. Ordered, first match wins.
var irreversibleFragments = []string{
	"deploy_production",
	"production_deploy",
	"delete",
	"transfer",
	"send",
	"burn",
	"close",
	"withdraw",
}

// externalFragments marks action types visible to the outside world.
var externalFragments = []string{
	"post",
	"tweet",
	"publish",
	"blog",
	"reply",
	"announce",
}

func matchesFragment(actionType string, fragments []string) bool {
	lower := strings.ToLower(actionType)
	for _, fragment := range fragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// defaultRules is the classifier's ordered factor table.
func defaultRules() []FactorRule {
	return []FactorRule{
		{
			Name:   "financial_exposure",
			Weight: 0.9,
			// Exposure is measured against daily spend capacity;
			// per-action caps belong to the boundary checker.
			Evaluate: func(a *action.Action, b *boundary.Boundaries, _ time.Time) (float64, float64, bool) {
				amount, ok := a.NumberParam("amount", "cost", "value", "price", "size")
				if !ok || amount <= 0 {
					return 0, 0, false
				}
				return amount, b.Financial.MaxDailySpend, true
			},
		},
		{
			Name:   "irreversibility",
			Weight: 0.8,
			Evaluate: func(a *action.Action, _ *boundary.Boundaries, _ time.Time) (float64, float64, bool) {
				if !matchesFragment(a.Type, irreversibleFragments) {
					return 0, 0, false
				}
				return 100, 50, true
			},
		},
		{
			Name:   "change_scope",
			Weight: 0.5,
			Evaluate: func(a *action.Action, _ *boundary.Boundaries, _ time.Time) (float64, float64, bool) {
				files, haveFiles := a.NumberParam("files", "files_changed")
				lines, haveLines := a.NumberParam("lines", "lines_changed")
				if !haveFiles && !haveLines {
					return 0, 0, false
				}
				return files*5 + lines/10, 100, true
			},
		},
		{
			Name:   "external_visibility",
			Weight: 0.6,
			Evaluate: func(a *action.Action, _ *boundary.Boundaries, _ time.Time) (float64, float64, bool) {
				if !matchesFragment(a.Type, externalFragments) {
					return 0, 0, false
				}
				return 60, 100, true
			},
		},
		{
			Name:   "quiet_hours",
			Weight: 0.3,
			Evaluate: func(_ *action.Action, b *boundary.Boundaries, now time.Time) (float64, float64, bool) {
				if !b.Time.InQuietHours(now.UTC().Hour()) {
					return 0, 0, false
				}
				return 80, 100, true
			},
		},
	}
}

// hintRule maps action-type fragments to an advisory recovery hint.
type hintRule struct {
	fragments []string
	hint      string
}

// hintRules is ordered; the first matching rule supplies the hint.
var hintRules = []hintRule{
	{[]string{"commit", "push"}, "revert the commit"},
	{[]string{"deploy_staging", "staging_deploy", "deploy:staging"}, "roll back to the previous staging build"},
	{[]string{"config"}, "restore the previous configuration"},
}

func rollbackHint(actionType string, reversible bool) string {
	for _, rule := range hintRules {
		if matchesFragment(actionType, rule.fragments) {
			return rule.hint
		}
	}
	if reversible {
		return "undo or delete the created resource"
	}
	return "manual intervention required"
}
