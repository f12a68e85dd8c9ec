package boundary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDocument_PartialSections(t *testing.T) {
	data := []byte(`
version: "v2"
financial:
  maxAutoExpense: 25
  maxDailySpend: 250
  requireApprovalAbove: 80
  allowedTokens: [SOL]
`)

	doc, err := ParseDocument(data)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	if doc.Version != "v2" {
		t.Errorf("Expected version v2, got %q", doc.Version)
	}
	if doc.Financial == nil {
		t.Fatal("Expected financial section to be present")
	}
	if doc.Financial.MaxAutoExpense != 25 {
		t.Errorf("Expected maxAutoExpense 25, got %v", doc.Financial.MaxAutoExpense)
	}
	if doc.Content != nil || doc.Trading != nil || doc.Time != nil {
		t.Error("Expected absent sections to stay nil")
	}
}

func TestApply_OverrideWinsPerSection(t *testing.T) {
	base := Default()
	doc := &Document{
		Version: "v3",
		Financial: &FinancialBoundaries{
			MaxAutoExpense:       10,
			MaxDailySpend:        100,
			RequireApprovalAbove: 50,
		},
	}

	merged := Apply(base, doc)

	if merged.Version != "v3" {
		t.Errorf("Expected version v3, got %q", merged.Version)
	}
	if merged.Financial.MaxAutoExpense != 10 {
		t.Errorf("Expected overridden maxAutoExpense 10, got %v", merged.Financial.MaxAutoExpense)
	}
	// The override replaces the whole section, including its lists.
	if len(merged.Financial.AllowedTokens) != 0 {
		t.Errorf("Expected replaced section to drop base token list, got %v", merged.Financial.AllowedTokens)
	}
	// Absent sections survive untouched.
	if merged.Content.MaxAutoPostsPerDay != base.Content.MaxAutoPostsPerDay {
		t.Errorf("Expected content section to survive, got %v", merged.Content.MaxAutoPostsPerDay)
	}
	if !merged.Development.AutoDeployToStaging {
		t.Error("Expected development section to survive")
	}
	// Base itself must not be mutated.
	if base.Financial.MaxAutoExpense != 50 {
		t.Errorf("Expected base untouched, got maxAutoExpense %v", base.Financial.MaxAutoExpense)
	}
}

func TestDocument_ValidateRejectsBadLimits(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
	}{
		{"negative expense", Document{Financial: &FinancialBoundaries{MaxAutoExpense: -1}}},
		{"approval below auto limit", Document{Financial: &FinancialBoundaries{MaxAutoExpense: 100, RequireApprovalAbove: 50}}},
		{"negative posts", Document{Content: &ContentBoundaries{MaxAutoPostsPerDay: -1}}},
		{"quiet hour out of range", Document{Time: &TimeBoundaries{QuietHoursUTC: []int{24}}}},
	}

	for _, tc := range cases {
		if err := tc.doc.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	good := Document{Financial: &FinancialBoundaries{MaxAutoExpense: 50, MaxDailySpend: 500, RequireApprovalAbove: 100}}
	if err := good.Validate(); err != nil {
		t.Errorf("Expected valid document, got %v", err)
	}
}

func TestStore_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boundaries.yaml")
	content := []byte("version: \"file\"\nfinancial:\n  maxAutoExpense: 30\n  maxDailySpend: 300\n  requireApprovalAbove: 90\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(nil)
	if err := store.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	current := store.Current()
	if current.Version != "file" {
		t.Errorf("Expected version file, got %q", current.Version)
	}
	if current.Financial.MaxAutoExpense != 30 {
		t.Errorf("Expected maxAutoExpense 30, got %v", current.Financial.MaxAutoExpense)
	}
}

func TestStore_ReplaceRejectsInvalidDocument(t *testing.T) {
	store := NewStore(nil)
	bad := &Document{Financial: &FinancialBoundaries{MaxAutoExpense: 100, RequireApprovalAbove: 10}}

	if err := store.Replace(bad); err == nil {
		t.Fatal("Expected Replace to reject an invalid document")
	}
	if store.Current().Financial.MaxAutoExpense != 50 {
		t.Error("Expected current boundaries to survive a rejected replace")
	}
}
