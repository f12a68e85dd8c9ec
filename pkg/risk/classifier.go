package risk

import (
	"log/slog"
	"math"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/boundary"
	"meridian-hq/saturn/pkg/clock"
)

// Classifier assesses actions against its factor rule table.
type Classifier struct {
	rules  []FactorRule
	clock  clock.Clock
	logger *slog.Logger
}

// NewClassifier creates a classifier with the default factor rules.
func NewClassifier(clk clock.Clock) *Classifier {
	if clk == nil {
		clk = clock.System()
	}
	return &Classifier{
		rules:  defaultRules(),
		clock:  clk,
		logger: slog.Default().With("component", "risk.classifier"),
	}
}

// NewClassifierWithRules creates a classifier with a custom rule table.
func NewClassifierWithRules(rules []FactorRule, clk clock.Clock) *Classifier {
	if clk == nil {
		clk = clock.System()
	}
	return &Classifier{
		rules:  rules,
		clock:  clk,
		logger: slog.Default().With("component", "risk.classifier"),
	}
}

// Assess computes a fresh risk assessment for the action under the
// given boundaries. It never mutates the action.
func (c *Classifier) Assess(a *action.Action, b *boundary.Boundaries) *action.RiskAssessment {
	now := c.clock.Now()

	var (
		factors      []action.RiskFactor
		weightedSum  float64
		totalWeight  float64
		irreversible bool
		exposure     float64
	)

	for _, rule := range c.rules {
		value, threshold, matched := rule.Evaluate(a, b, now)
		if !matched {
			continue
		}

		exceeded := threshold > 0 && value > threshold
		factorScore := 100.0
		if !exceeded {
			if threshold > 0 {
				factorScore = value / threshold * 50
			} else {
				factorScore = 0
			}
		}

		factors = append(factors, action.RiskFactor{
			Name:      rule.Name,
			Weight:    rule.Weight,
			Value:     value,
			Threshold: threshold,
			Exceeded:  exceeded,
		})

		weightedSum += rule.Weight * factorScore
		totalWeight += rule.Weight

		if rule.Name == "irreversibility" {
			irreversible = true
		}
		if rule.Name == "financial_exposure" {
			exposure = value
		}
	}

	score := 0
	if totalWeight > 0 {
		score = int(math.Round(weightedSum / totalWeight))
	}

	reversible := !irreversible
	assessment := &action.RiskAssessment{
		Level:            action.LevelForScore(score),
		Score:            score,
		Factors:          factors,
		EstimatedCost:    exposure,
		EstimatedMaxLoss: exposure,
		Reversible:       reversible,
		RollbackHint:     rollbackHint(a.Type, reversible),
	}

	c.logger.Debug("action assessed",
		"action_id", a.ID,
		"action_type", a.Type,
		"score", score,
		"level", string(assessment.Level),
		"factors", len(factors),
	)

	return assessment
}
