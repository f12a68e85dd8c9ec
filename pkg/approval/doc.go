// Package approval implements the batched human review queue.
//
// Actions routed to "queue" become ApprovalItems carrying a
// recommendation, a confidence, and an urgency. Urgency drives an
// advisory expiry (1h for critical, 4h for high, none otherwise); the
// queue never sweeps expired items itself — expiry is metadata for
// callers and reviewers.
//
// A periodic batch timer (default 4h) emits a "batch ready" event with
// every pending item grouped by engine and risk level plus the
// aggregate estimated cost, but only when at least one item is
// pending. Bulk decisions simply re-invoke Approve/Reject per item;
// there is no special bulk path.
//
// Approve and Reject are idempotent: an unknown or already processed
// id returns false and changes nothing. Processed items stay in the
// map until ClearProcessed is called; callers must call it or the map
// grows without bound.
package approval
