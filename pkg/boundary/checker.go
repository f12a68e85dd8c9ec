package boundary

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"meridian-hq/saturn/pkg/action"
	"meridian-hq/saturn/pkg/clock"
)

// Counters are the per-period usage counts the checker enforces limits
// against. Day and Week are the period keys the counters belong to;
// when the keys no longer match the current time the counts reset.
type Counters struct {
	// Day is the UTC date key (2006-01-02) the daily counts belong to.
	Day string

	// Week is the ISO week key (2006-W02) the weekly counts belong to.
	Week string

	// DailySpend is the total recorded spend for Day.
	DailySpend float64

	// DailyVolume is the total recorded trading volume for Day.
	DailyVolume float64

	// DailyPosts is the number of posts recorded for Day.
	DailyPosts int

	// WeeklyBlogs is the number of blog posts recorded for Week.
	WeeklyBlogs int
}

// CheckResult accumulates the outcome of a boundary check. Violations
// are hard limit crossings; warnings are soft ones.
type CheckResult struct {
	// Violations are hard boundary crossings; any violation escalates.
	Violations []string

	// Warnings are soft crossings that demand human review.
	Warnings []string
}

// Violated reports whether any hard boundary was crossed.
func (r *CheckResult) Violated() bool {
	return len(r.Violations) > 0
}

// NeedsReview reports whether any soft boundary was crossed.
func (r *CheckResult) NeedsReview() bool {
	return len(r.Warnings) > 0
}

// WithinLimits reports whether the action crossed nothing at all.
// Warnings alone make an action not within limits.
func (r *CheckResult) WithinLimits() bool {
	return !r.Violated() && !r.NeedsReview()
}

func (r *CheckResult) violation(format string, args ...interface{}) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

func (r *CheckResult) warning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// CounterStore persists counters across process restarts.
type CounterStore interface {
	Load() (*Counters, error)
	Save(c *Counters) error
	Close() error
}

// Checker evaluates actions against the boundaries in force and tracks
// per-period usage counters.
//
// Check never mutates the usage counts; only RecordExecution does, and
// it must be called exactly once per verified successful execution.
type Checker struct {
	store        *Store
	clock        clock.Clock
	counterStore CounterStore
	logger       *slog.Logger

	mu       sync.Mutex
	counters Counters
}

// CheckerOption customizes a Checker.
type CheckerOption func(*Checker)

// WithCounterStore attaches persistent counter storage. Counters are
// loaded on construction and saved after every RecordExecution.
func WithCounterStore(cs CounterStore) CheckerOption {
	return func(c *Checker) {
		c.counterStore = cs
	}
}

// NewChecker creates a checker reading boundaries from store.
func NewChecker(store *Store, clk clock.Clock, opts ...CheckerOption) *Checker {
	if clk == nil {
		clk = clock.System()
	}

	c := &Checker{
		store:  store,
		clock:  clk,
		logger: slog.Default().With("component", "boundary.checker"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.counterStore != nil {
		persisted, err := c.counterStore.Load()
		if err != nil {
			c.logger.Warn("failed to load persisted counters, starting fresh", "error", err)
		} else if persisted != nil {
			c.counters = *persisted
		}
	}

	return c
}

// Counters returns a snapshot of the current usage counters.
func (c *Checker) Counters() Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters
}

// Check evaluates every boundary category independently and returns
// the accumulated violations and warnings. No category short-circuits
// another: an action can collect a financial violation and a content
// warning in the same pass.
func (c *Checker) Check(a *action.Action) *CheckResult {
	now := c.clock.Now().UTC()

	c.mu.Lock()
	c.rollover(now)
	counters := c.counters
	c.mu.Unlock()

	bounds := c.store.Current()
	categories := Categorize(a.Type)
	result := &CheckResult{}

	c.checkFinancial(a, bounds, counters, result)
	c.checkContent(a, bounds, counters, categories, result)
	c.checkDevelopment(a, bounds, categories, result)
	c.checkTrading(a, bounds, counters, categories, result)
	c.checkTime(now, bounds, result)

	return result
}

// RecordExecution increments usage counters for a successfully
// executed action. Call it exactly once, only after a verified
// successful run.
func (c *Checker) RecordExecution(a *action.Action) {
	now := c.clock.Now().UTC()
	categories := Categorize(a.Type)

	c.mu.Lock()
	c.rollover(now)

	if amount, ok := a.NumberParam("amount", "cost", "value", "price"); ok {
		c.counters.DailySpend += amount
	}
	if hasCategory(categories, CategoryTrade) {
		if vol, ok := a.NumberParam("size", "position_size", "amount"); ok {
			c.counters.DailyVolume += vol
		}
	}
	if hasCategory(categories, CategoryPost) {
		c.counters.DailyPosts++
	}
	if hasCategory(categories, CategoryBlog) {
		c.counters.WeeklyBlogs++
	}

	snapshot := c.counters
	c.mu.Unlock()

	if c.counterStore != nil {
		if err := c.counterStore.Save(&snapshot); err != nil {
			c.logger.Warn("failed to persist counters", "error", err)
		}
	}
}

// rollover resets counters whose period key no longer matches now.
// Caller must hold c.mu.
func (c *Checker) rollover(now time.Time) {
	dayKey := now.Format("2006-01-02")
	if c.counters.Day != dayKey {
		c.counters.Day = dayKey
		c.counters.DailySpend = 0
		c.counters.DailyVolume = 0
		c.counters.DailyPosts = 0
	}

	year, week := now.ISOWeek()
	weekKey := fmt.Sprintf("%04d-W%02d", year, week)
	if c.counters.Week != weekKey {
		c.counters.Week = weekKey
		c.counters.WeeklyBlogs = 0
	}
}

func (c *Checker) checkFinancial(a *action.Action, b *Boundaries, counters Counters, result *CheckResult) {
	amount, ok := a.NumberParam("amount", "cost", "value", "price")
	if ok {
		if amount > b.Financial.RequireApprovalAbove {
			result.violation("expense %.2f exceeds approval threshold %.2f",
				amount, b.Financial.RequireApprovalAbove)
		} else if amount > b.Financial.MaxAutoExpense {
			result.warning("expense %.2f above auto limit %.2f, review required",
				amount, b.Financial.MaxAutoExpense)
		}

		if counters.DailySpend+amount > b.Financial.MaxDailySpend {
			result.violation("daily spend limit reached (%.2f of %.2f used)",
				counters.DailySpend, b.Financial.MaxDailySpend)
		}
	}

	if token, ok := a.StringParam("token"); ok {
		if !containsFold(b.Financial.AllowedTokens, token) {
			result.violation("token %q not in allowed list", token)
		}
	}
}

func (c *Checker) checkContent(a *action.Action, b *Boundaries, counters Counters, categories []Category, result *CheckResult) {
	isPost := hasCategory(categories, CategoryPost)
	isBlog := hasCategory(categories, CategoryBlog)
	if !isPost && !isBlog {
		return
	}

	if topic, ok := a.StringParam("topic"); ok {
		if containsFold(b.Content.BannedTopics, topic) {
			result.violation("topic %q is banned", topic)
		} else if containsFold(b.Content.RequireReviewForTopics, topic) {
			result.warning("topic %q requires review", topic)
		}
	}

	if isPost && counters.DailyPosts >= b.Content.MaxAutoPostsPerDay {
		result.warning("daily post limit reached (%d of %d)",
			counters.DailyPosts, b.Content.MaxAutoPostsPerDay)
	}
	if isBlog && counters.WeeklyBlogs >= b.Content.MaxAutoBlogsPerWeek {
		result.warning("weekly blog limit reached (%d of %d)",
			counters.WeeklyBlogs, b.Content.MaxAutoBlogsPerWeek)
	}
}

func (c *Checker) checkDevelopment(a *action.Action, b *Boundaries, categories []Category, result *CheckResult) {
	if hasCategory(categories, CategoryDeployProduction) && !b.Development.AutoDeployToProduction {
		result.violation("production deploys require approval")
	}
	if hasCategory(categories, CategoryDeployStaging) && !b.Development.AutoDeployToStaging {
		result.warning("staging deploys require review")
	}

	if hasCategory(categories, CategoryCommit) {
		if files, ok := a.NumberParam("files", "files_changed"); ok {
			if int(files) > b.Development.MaxFilesPerCommit {
				result.warning("commit touches %d files (limit %d)",
					int(files), b.Development.MaxFilesPerCommit)
			}
		}
		if lines, ok := a.NumberParam("lines", "lines_changed"); ok {
			if int(lines) > b.Development.MaxLinesPerCommit {
				result.warning("commit changes %d lines (limit %d)",
					int(lines), b.Development.MaxLinesPerCommit)
			}
		}
	}

	for _, path := range pathsParam(a) {
		for _, protected := range b.Development.ProtectedPaths {
			if strings.HasPrefix(path, protected) {
				result.violation("change touches protected path %q", path)
			}
		}
	}
}

func (c *Checker) checkTrading(a *action.Action, b *Boundaries, counters Counters, categories []Category, result *CheckResult) {
	if !hasCategory(categories, CategoryTrade) {
		return
	}

	if pair, ok := a.StringParam("pair"); ok {
		if !containsFold(b.Trading.AllowedPairs, pair) {
			result.violation("pair %q not in allowed list", pair)
		}
	}

	if size, ok := a.NumberParam("size", "position_size"); ok {
		if size > b.Trading.MaxPositionSize {
			result.violation("position size %.2f exceeds limit %.2f",
				size, b.Trading.MaxPositionSize)
		}
		if b.Trading.StopLossRequired {
			if _, ok := a.NumberParam("stop_loss"); !ok {
				result.warning("stop loss required for position of size %.2f", size)
			}
		}
	}

	if vol, ok := a.NumberParam("size", "position_size", "amount"); ok {
		if counters.DailyVolume+vol > b.Trading.MaxDailyVolume {
			result.violation("daily trading volume limit reached (%.2f of %.2f used)",
				counters.DailyVolume, b.Trading.MaxDailyVolume)
		}
	}
}

func (c *Checker) checkTime(now time.Time, b *Boundaries, result *CheckResult) {
	if b.Time.InQuietHours(now.Hour()) {
		result.warning("outside active hours (%02d:00 UTC)", now.Hour())
	}
}

// pathsParam extracts the list of touched paths from the "paths" or
// "files" parameter when it is a string list.
func pathsParam(a *action.Action) []string {
	for _, key := range []string{"paths", "files"} {
		raw, ok := a.Params[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []string:
			return v
		case []interface{}:
			var paths []string
			for _, item := range v {
				if s, ok := item.(string); ok {
					paths = append(paths, s)
				}
			}
			return paths
		}
	}
	return nil
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
