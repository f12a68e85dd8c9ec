// Package boundary implements the configured limits an autonomous
// action must stay inside, and the stateful checker that enforces them.
//
// # Boundaries document
//
// Boundaries are a versioned, hierarchical document with five sections:
// financial, content, development, trading and time. The document is
// loaded from YAML at start and can be hot-replaced at runtime. A
// replacement is a shallow per-section merge: a section present in the
// override replaces the corresponding section wholesale; sections that
// are absent keep their current value. There is no deep merge below
// the section level.
//
// # Checking vs recording
//
// Check evaluates every boundary category independently (no
// short-circuit) and returns the accumulated hard violations and soft
// warnings. Check never mutates the per-period counters; only
// RecordExecution does, and it must be called exactly once, after a
// verified successful execution.
//
// Counters roll over lazily: the day and ISO-week keys are compared at
// check/record time, so no background timer is needed for correctness.
package boundary
