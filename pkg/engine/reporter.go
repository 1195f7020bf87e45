package engine

import "maps-workflow/mapcheck/pkg/ruleset"

// Reporter receives the engine's decisions as they happen.
// Implementations must not retain the descriptor or result slices beyond
// the call unless they copy them.
type Reporter interface {
	// RunStarted is called once before the first declaration.
	RunStarted(info RunInfo)

	// RuleStarted is called right before a resolved rule is constructed
	// and evaluated.
	RuleStarted(d *ruleset.Descriptor)

	// RuleCompleted is called once per processed declaration, whatever
	// its final state.
	RuleCompleted(res RuleResult)

	// RunFinished is called once with the final result, including after
	// an abort.
	RunFinished(result *Result)
}

// NopReporter ignores every event. Embed it to implement only some methods.
type NopReporter struct{}

func (NopReporter) RunStarted(RunInfo)              {}
func (NopReporter) RuleStarted(*ruleset.Descriptor) {}
func (NopReporter) RuleCompleted(RuleResult)        {}
func (NopReporter) RunFinished(*Result)             {}

// Reporters fans events out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) RunStarted(info RunInfo) {
	for _, r := range rs {
		r.RunStarted(info)
	}
}

func (rs Reporters) RuleStarted(d *ruleset.Descriptor) {
	for _, r := range rs {
		r.RuleStarted(d)
	}
}

func (rs Reporters) RuleCompleted(res RuleResult) {
	for _, r := range rs {
		r.RuleCompleted(res)
	}
}

func (rs Reporters) RunFinished(result *Result) {
	for _, r := range rs {
		r.RunFinished(result)
	}
}
