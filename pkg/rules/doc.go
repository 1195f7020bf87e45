// Package rules defines the contract between the execution engine and the
// individual checks it runs, and the registry used to resolve a rule
// declaration's module and class to a constructor.
//
// A rule is anything implementing Rule. Rules are built by a Factory from
// the artifact under validation and the declaration's params:
//
//	reg := rules.NewRegistry()
//	reg.Register("filesize", "MaxFileSize", newMaxFileSize)
//
//	factory, err := reg.Resolve("filesize", "MaxFileSize")
//	if err != nil {
//	    // *ResolutionError, Kind tells module from class
//	}
//	rule, err := factory(rules.Input{Locator: path, Map: m}, params)
//
// Documentation generation constructs rules with a nil Map; factories must
// tolerate that and defer any access to the map until Evaluate.
package rules
