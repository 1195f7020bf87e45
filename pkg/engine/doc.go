// Package engine runs an ordered rule set against a map.
//
// The engine is a single-pass, sequential state machine. For each rule
// declaration, in declared order, it:
//
//  1. validates the declaration (invalid rules are recorded as failed);
//  2. gates the rule on the statuses of its depends_on names, which must
//     all be recorded and true at that point of the run;
//  3. resolves the declaration's module and class to a rule factory;
//  4. constructs and evaluates the rule, then applies its policy:
//     require aborts the run, fail and skip continue.
//
// Every decision is recorded in a StatusTable and a RuleResult and is
// pushed to the injected Reporter. The engine performs no I/O of its own;
// logging, CI annotations, metrics and tracing are Reporter
// implementations.
//
// Dependency gating is a flat lookup against statuses recorded so far. A
// rule that depends on a rule declared later in the sequence is always
// blocked. There is no topological sorting, cycle detection, retry or
// parallelism.
//
// # Basic Usage
//
//	eng := engine.New(registry, engine.WithReporter(reporter))
//	result := eng.Run(rules.Input{Locator: path, Map: m}, entries)
//	if !result.Success() {
//	    // aborted by result.AbortedBy
//	}
package engine
