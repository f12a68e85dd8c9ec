package boundary

// Boundaries is the full, versioned limits document.
type Boundaries struct {
	// Version identifies the document revision currently in force.
	Version string `yaml:"version"`

	// Financial limits spending per action and per day.
	Financial FinancialBoundaries `yaml:"financial"`

	// Content limits publishing volume and sensitive topics.
	Content ContentBoundaries `yaml:"content"`

	// Development limits code-change blast radius and deploy targets.
	Development DevelopmentBoundaries `yaml:"development"`

	// Trading limits position sizes and tradable pairs.
	Trading TradingBoundaries `yaml:"trading"`

	// Time defines quiet and active hours in UTC.
	Time TimeBoundaries `yaml:"time"`
}

// FinancialBoundaries limits monetary exposure.
type FinancialBoundaries struct {
	// MaxAutoExpense is the largest single expense that may run
	// without review. Crossing it is a soft warning.
	MaxAutoExpense float64 `yaml:"maxAutoExpense"`

	// MaxDailySpend is the hard cap on total spend per UTC day.
	MaxDailySpend float64 `yaml:"maxDailySpend"`

	// AllowedTokens is the whitelist of tokens actions may touch.
	AllowedTokens []string `yaml:"allowedTokens"`

	// RequireApprovalAbove is the hard per-action expense limit;
	// anything above it escalates.
	RequireApprovalAbove float64 `yaml:"requireApprovalAbove"`
}

// ContentBoundaries limits publishing activity.
type ContentBoundaries struct {
	// MaxAutoPostsPerDay caps unreviewed posts per UTC day.
	MaxAutoPostsPerDay int `yaml:"maxAutoPostsPerDay"`

	// MaxAutoBlogsPerWeek caps unreviewed blog posts per ISO week.
	MaxAutoBlogsPerWeek int `yaml:"maxAutoBlogsPerWeek"`

	// RequireReviewForTopics lists topics that force human review.
	RequireReviewForTopics []string `yaml:"requireReviewForTopics"`

	// BannedTopics lists topics that are never published.
	BannedTopics []string `yaml:"bannedTopics"`
}

// DevelopmentBoundaries limits code and deployment actions.
type DevelopmentBoundaries struct {
	// AutoDeployToStaging permits unreviewed staging deploys.
	AutoDeployToStaging bool `yaml:"autoDeployToStaging"`

	// AutoDeployToProduction permits unreviewed production deploys.
	AutoDeployToProduction bool `yaml:"autoDeployToProduction"`

	// MaxFilesPerCommit caps the files touched by one commit.
	MaxFilesPerCommit int `yaml:"maxFilesPerCommit"`

	// MaxLinesPerCommit caps the lines changed by one commit.
	MaxLinesPerCommit int `yaml:"maxLinesPerCommit"`

	// ProtectedPaths lists path prefixes no automated change may touch.
	ProtectedPaths []string `yaml:"protectedPaths"`
}

// TradingBoundaries limits trading actions.
type TradingBoundaries struct {
	// MaxPositionSize is the hard cap on a single position.
	MaxPositionSize float64 `yaml:"maxPositionSize"`

	// MaxDailyVolume is the hard cap on traded volume per UTC day.
	MaxDailyVolume float64 `yaml:"maxDailyVolume"`

	// AllowedPairs is the whitelist of tradable pairs.
	AllowedPairs []string `yaml:"allowedPairs"`

	// StopLossRequired warns when a trade carries no stop loss.
	StopLossRequired bool `yaml:"stopLossRequired"`
}

// TimeBoundaries defines the UTC hours automated work should avoid.
type TimeBoundaries struct {
	// QuietHoursUTC lists the UTC hours during which automated
	// actions draw an "outside active hours" warning.
	QuietHoursUTC []int `yaml:"quietHoursUTC"`

	// ActiveHoursStartUTC is the advisory start of the working window.
	ActiveHoursStartUTC int `yaml:"activeHoursStartUTC"`

	// ActiveHoursEndUTC is the advisory end of the working window.
	ActiveHoursEndUTC int `yaml:"activeHoursEndUTC"`
}

// Default returns the built-in boundaries used when no document is
// provided.
func Default() *Boundaries {
	return &Boundaries{
		Version: "default",
		Financial: FinancialBoundaries{
			MaxAutoExpense:       50,
			MaxDailySpend:        500,
			AllowedTokens:        []string{"SOL", "USDC", "BONK"},
			RequireApprovalAbove: 100,
		},
		Content: ContentBoundaries{
			MaxAutoPostsPerDay:     10,
			MaxAutoBlogsPerWeek:    3,
			RequireReviewForTopics: []string{"politics", "financial_advice", "health"},
			BannedTopics:           []string{},
		},
		Development: DevelopmentBoundaries{
			AutoDeployToStaging:    true,
			AutoDeployToProduction: false,
			MaxFilesPerCommit:      20,
			MaxLinesPerCommit:      1000,
			ProtectedPaths:         []string{".env", "secrets/", "credentials/"},
		},
		Trading: TradingBoundaries{
			MaxPositionSize:  100,
			MaxDailyVolume:   1000,
			AllowedPairs:     []string{"SOL/USDC", "BONK/SOL"},
			StopLossRequired: true,
		},
		Time: TimeBoundaries{
			QuietHoursUTC:       []int{2, 3, 4, 5, 6},
			ActiveHoursStartUTC: 7,
			ActiveHoursEndUTC:   23,
		},
	}
}

// InQuietHours reports whether the given UTC hour falls in the
// configured quiet hours.
func (t *TimeBoundaries) InQuietHours(hour int) bool {
	for _, quiet := range t.QuietHoursUTC {
		if hour == quiet {
			return true
		}
	}
	return false
}
