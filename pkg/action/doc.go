// Package action defines the core domain types shared by every Saturn
// component: the Action itself, its lifecycle status, the routing
// outcome, and the risk assessment attached during routing.
//
// # Lifecycle
//
// An Action moves through a fixed set of states:
//
//	pending -> approved | rejected
//	approved -> executed | failed
//	failed -> rolled_back (reversible actions only)
//
// Actions are never destroyed explicitly; they are pruned only when
// their owning collection (approval queue, escalation set, audit ring)
// is pruned.
//
// # Mutation ownership
//
// Each field has exactly one writer: the router sets Risk and Route,
// the approval queue and escalation manager set Status/Approver on a
// human decision, and the executor sets Status/Result/Error on a run.
package action
