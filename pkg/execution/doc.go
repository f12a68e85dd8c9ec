// Package execution runs approved actions through an injected handler
// registry, wrapped in a checkpoint/rollback envelope.
//
// # Concurrency
//
// The executor guarantees at most one concurrent execution per action
// id: a racing second call is refused immediately with false. The
// in-flight entry is held for the handler's full duration and released
// on every exit path. The handler call is the only expected-I/O,
// possibly long-running operation in the pipeline; any timeout belongs
// to the caller's context.
//
// # Failure policy
//
// Handler errors never propagate out of Execute: the action is marked
// failed, the error is recorded on it, and — only for reversible
// actions — a best-effort rollback is attempted. Rollback failure is
// logged, not re-thrown; the action status stays "failed" rather than
// being forced to "rolled_back".
package execution
