// Saturn is a decision-and-execution core for governed autonomous
// actions.
//
// Proposed actions flow through risk classification, boundary checks
// and a routing pass; safe actions execute immediately, reviewable
// ones wait in a batched approval queue, and dangerous ones escalate
// for synchronous attention. Every outcome lands in an audit ledger.
//
// Usage:
//
//	# Validate the configuration and boundaries document
//	saturn validate --config /path/to/config.yaml
//
//	# Dry-run an action through classification and routing
//	saturn simulate --type expense:pay --param amount=25
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
