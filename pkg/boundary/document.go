package boundary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a partial boundaries document used for runtime
// replacement. Nil sections are left untouched by Apply; present
// sections replace the current section wholesale.
type Document struct {
	Version     string                  `yaml:"version"`
	Financial   *FinancialBoundaries    `yaml:"financial"`
	Content     *ContentBoundaries      `yaml:"content"`
	Development *DevelopmentBoundaries  `yaml:"development"`
	Trading     *TradingBoundaries      `yaml:"trading"`
	Time        *TimeBoundaries         `yaml:"time"`
}

// ParseDocument parses a YAML (or JSON, which is a YAML subset)
// boundaries document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse boundaries document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and parses a boundaries document from a file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundaries file %q: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("boundaries file %q: %w", path, err)
	}
	return doc, nil
}

// Apply merges the document onto base and returns the result as a new
// value. The merge is shallow and override-wins at the section level:
// a present section replaces the whole base section, absent sections
// survive unchanged. Nothing below one level is merged.
func Apply(base *Boundaries, doc *Document) *Boundaries {
	merged := *base

	if doc.Version != "" {
		merged.Version = doc.Version
	}
	if doc.Financial != nil {
		merged.Financial = *doc.Financial
	}
	if doc.Content != nil {
		merged.Content = *doc.Content
	}
	if doc.Development != nil {
		merged.Development = *doc.Development
	}
	if doc.Trading != nil {
		merged.Trading = *doc.Trading
	}
	if doc.Time != nil {
		merged.Time = *doc.Time
	}

	return &merged
}

// Validate rejects documents that would make the checker misbehave.
func (d *Document) Validate() error {
	if d.Financial != nil {
		if d.Financial.MaxAutoExpense < 0 || d.Financial.MaxDailySpend < 0 {
			return fmt.Errorf("financial limits must be non-negative")
		}
		if d.Financial.RequireApprovalAbove < d.Financial.MaxAutoExpense {
			return fmt.Errorf("requireApprovalAbove (%.2f) must not be below maxAutoExpense (%.2f)",
				d.Financial.RequireApprovalAbove, d.Financial.MaxAutoExpense)
		}
	}
	if d.Content != nil {
		if d.Content.MaxAutoPostsPerDay < 0 || d.Content.MaxAutoBlogsPerWeek < 0 {
			return fmt.Errorf("content limits must be non-negative")
		}
	}
	if d.Time != nil {
		for _, hour := range d.Time.QuietHoursUTC {
			if hour < 0 || hour > 23 {
				return fmt.Errorf("quiet hour %d out of range 0-23", hour)
			}
		}
	}
	return nil
}
