// Package audit keeps the append-only ledger of every attempted
// action's fate. Nothing that passes through the pipeline — execution,
// failure, escalation, rejection — goes unrecorded.
//
// The ledger is a bounded in-memory ring buffer (default capacity
// 10,000); past capacity the oldest entries are trimmed from the
// front. "Append-only" governs entry creation: AddFeedback may later
// annotate a located entry in place, but entries are never rewritten
// or reordered.
//
// An optional SQLite sink mirrors entries to disk asynchronously; the
// ring buffer remains the source of truth and sink failures never fail
// Log.
package audit
