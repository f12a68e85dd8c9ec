// Package risk implements the stateless risk classifier.
//
// The classifier evaluates a fixed, ordered table of independent
// factor rules against an action and the boundaries in force:
// financial exposure, irreversibility, change scope, external
// visibility, and quiet hours. Each matched rule contributes a
// weighted factor score; the overall score is the weighted average,
// rounded, on a 0-100 scale, and 0 when no rule matched.
//
// A factor scores 100 when its observed value strictly exceeds its
// threshold, otherwise value/threshold*50. Level cutoffs are exclusive
// upper bounds: <25 safe, <50 moderate, <75 high, else critical.
//
// Assessments are recomputed from scratch on every call; the
// classifier holds no state beyond its rule table and clock.
package risk
