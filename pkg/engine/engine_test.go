package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"maps-workflow/mapcheck/pkg/rules"
	"maps-workflow/mapcheck/pkg/ruleset"
)

// stubRule returns fixed violations or a fixed error.
type stubRule struct {
	violations []rules.Violation
	err        error
	panicWith  any
	calls      *int
}

func (r *stubRule) Evaluate() ([]rules.Violation, error) {
	if r.calls != nil {
		*r.calls++
	}
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	return r.violations, r.err
}

func (r *stubRule) Explain() string { return "stub rule" }

var errBroken = errors.New("broken rule")

// newTestRegistry registers the "test" module used by the engine tests.
// calls counts Evaluate invocations across all rules.
func newTestRegistry(calls *int) *rules.Registry {
	reg := rules.NewRegistry()
	reg.Register("test", "Pass", func(rules.Input, rules.Params) (rules.Rule, error) {
		return &stubRule{calls: calls}, nil
	})
	reg.Register("test", "Violate", func(rules.Input, rules.Params) (rules.Rule, error) {
		return &stubRule{calls: calls, violations: []rules.Violation{rules.Violationf("bad map")}}, nil
	})
	reg.Register("test", "Error", func(rules.Input, rules.Params) (rules.Rule, error) {
		return &stubRule{calls: calls, err: errBroken}, nil
	})
	reg.Register("test", "Panic", func(rules.Input, rules.Params) (rules.Rule, error) {
		return &stubRule{calls: calls, panicWith: "boom"}, nil
	})
	reg.Register("test", "BadParams", func(rules.Input, rules.Params) (rules.Rule, error) {
		return nil, &rules.ParamError{Key: "limit", Message: "required"}
	})
	return reg
}

func decl(name, class, policy string, deps ...string) ruleset.Entry {
	fields := map[string]any{
		"name":       name,
		"module":     "test",
		"class_name": class,
		"type":       policy,
	}
	if len(deps) > 0 {
		list := make([]any, len(deps))
		for i, d := range deps {
			list[i] = d
		}
		fields["depends_on"] = list
	}
	return ruleset.Entry{Fields: fields, Source: ruleset.Source{File: "rules.yaml"}}
}

func newTestEngine(calls *int, opts ...Option) *Engine {
	return New(newTestRegistry(calls), append([]Option{WithIDGenerator(func() string { return "run-1" })}, opts...)...)
}

func TestRun_DependencyChain(t *testing.T) {
	eng := newTestEngine(nil)

	result := eng.Run(rules.Input{Locator: "map.map"}, []ruleset.Entry{
		decl("A", "Pass", "require"),
		decl("B", "Violate", "fail", "A"),
		decl("C", "Pass", "skip", "B"),
	})

	want := map[string]bool{"A": true, "B": false, "C": false}
	if diff := cmp.Diff(want, result.Statuses.Map()); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if !result.Success() {
		t.Errorf("Success() = false, want true")
	}
	if result.AbortedBy != "" {
		t.Errorf("AbortedBy = %q, want empty", result.AbortedBy)
	}

	c, _ := result.Rule("C")
	if c.State != StateBlocked {
		t.Errorf("C state = %v, want %v", c.State, StateBlocked)
	}
	if diff := cmp.Diff([]string{"B"}, c.Unmet); diff != "" {
		t.Errorf("C unmet mismatch (-want +got):\n%s", diff)
	}

	b, _ := result.Rule("B")
	if b.Action != ActionContinue {
		t.Errorf("B action = %v, want %v", b.Action, ActionContinue)
	}
}

func TestRun_RequireErrorAborts(t *testing.T) {
	calls := 0
	eng := newTestEngine(&calls)

	result := eng.Run(rules.Input{}, []ruleset.Entry{
		decl("A", "Error", "require"),
		decl("D", "Pass", "fail"),
	})

	if result.Success() {
		t.Fatalf("Success() = true, want false")
	}
	if result.Outcome != OutcomeAborted {
		t.Errorf("Outcome = %v, want %v", result.Outcome, OutcomeAborted)
	}
	if result.AbortedBy != "A" {
		t.Errorf("AbortedBy = %q, want %q", result.AbortedBy, "A")
	}
	if _, recorded := result.Statuses.Get("D"); recorded {
		t.Errorf("D was recorded after abort")
	}
	if calls != 1 {
		t.Errorf("Evaluate calls = %d, want 1", calls)
	}

	a, _ := result.Rule("A")
	var evalErr *EvaluationError
	if !errors.As(a.Err, &evalErr) {
		t.Fatalf("A error = %T, want *EvaluationError", a.Err)
	}
	if evalErr.Phase != PhaseEvaluate || !errors.Is(a.Err, errBroken) {
		t.Errorf("A error = %v, want evaluate-phase error wrapping errBroken", a.Err)
	}
}

func TestRun_RequireViolationAborts(t *testing.T) {
	calls := 0
	eng := newTestEngine(&calls)

	result := eng.Run(rules.Input{}, []ruleset.Entry{
		decl("first", "Pass", "fail"),
		decl("gate", "Violate", "require"),
		decl("after", "Pass", "require"),
		decl("later", "Violate", "fail"),
	})

	if result.Success() {
		t.Fatalf("Success() = true, want false")
	}
	if got := result.Statuses.Names(); !cmp.Equal(got, []string{"first", "gate"}) {
		t.Errorf("recorded names = %v, want [first gate]", got)
	}
	if len(result.Rules) != 2 {
		t.Errorf("len(Rules) = %d, want 2", len(result.Rules))
	}
	if calls != 2 {
		t.Errorf("Evaluate calls = %d, want 2", calls)
	}
}

func TestRun_NonRequiredFailuresContinue(t *testing.T) {
	tests := []struct {
		name   string
		class  string
		policy string
		action Action
		state  State
	}{
		{name: "fail violation", class: "Violate", policy: "fail", action: ActionContinue, state: StateViolated},
		{name: "skip violation", class: "Violate", policy: "skip", action: ActionSkip, state: StateViolated},
		{name: "fail error", class: "Error", policy: "fail", action: ActionContinue, state: StateErrored},
		{name: "skip panic", class: "Panic", policy: "skip", action: ActionSkip, state: StateErrored},
		{name: "fail bad params", class: "BadParams", policy: "fail", action: ActionContinue, state: StateErrored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newTestEngine(nil)
			result := eng.Run(rules.Input{}, []ruleset.Entry{
				decl("target", tt.class, tt.policy),
				decl("next", "Pass", "require"),
			})

			if !result.Success() {
				t.Fatalf("Success() = false, want true")
			}
			target, _ := result.Rule("target")
			if target.State != tt.state {
				t.Errorf("state = %v, want %v", target.State, tt.state)
			}
			if target.Action != tt.action {
				t.Errorf("action = %v, want %v", target.Action, tt.action)
			}
			want := map[string]bool{"target": false, "next": true}
			if diff := cmp.Diff(want, result.Statuses.Map()); diff != "" {
				t.Errorf("statuses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_PanicIsRecovered(t *testing.T) {
	eng := newTestEngine(nil)
	result := eng.Run(rules.Input{}, []ruleset.Entry{decl("p", "Panic", "require")})

	if result.Success() {
		t.Fatalf("Success() = true, want false")
	}
	p, _ := result.Rule("p")
	var evalErr *EvaluationError
	if !errors.As(p.Err, &evalErr) {
		t.Fatalf("error = %T, want *EvaluationError", p.Err)
	}
	if evalErr.Panic != "boom" {
		t.Errorf("Panic = %v, want boom", evalErr.Panic)
	}
	if len(evalErr.Stack) == 0 {
		t.Errorf("Stack is empty")
	}
}

func TestRun_MissingDependencyNeverInvokes(t *testing.T) {
	calls := 0
	eng := newTestEngine(&calls)

	result := eng.Run(rules.Input{}, []ruleset.Entry{
		decl("orphan", "Pass", "require", "ghost"),
		decl("forward", "Pass", "require", "later"),
		decl("later", "Pass", "fail"),
	})

	if calls != 1 {
		t.Errorf("Evaluate calls = %d, want 1", calls)
	}
	want := map[string]bool{"orphan": false, "forward": false, "later": true}
	if diff := cmp.Diff(want, result.Statuses.Map()); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if !result.Success() {
		t.Errorf("blocked require rule aborted the run")
	}
}

func TestRun_InvalidDeclaration(t *testing.T) {
	calls := 0
	eng := newTestEngine(&calls)

	noName := ruleset.Entry{Fields: map[string]any{
		"module":     "test",
		"class_name": "Pass",
		"type":       "require",
	}}
	blankName := ruleset.Entry{Fields: map[string]any{
		"name":       "  ",
		"module":     "test",
		"class_name": "Pass",
		"type":       "fail",
	}}
	badType := ruleset.Entry{Fields: map[string]any{
		"name":       "typo",
		"module":     "test",
		"class_name": "Pass",
		"type":       "required",
	}}

	result := eng.Run(rules.Input{}, []ruleset.Entry{
		noName,
		blankName,
		badType,
		decl("dependent", "Pass", "fail", ""),
		decl("uses-typo", "Pass", "fail", "typo"),
	})

	if !result.Success() {
		t.Fatalf("Success() = false, want true")
	}
	if calls != 0 {
		t.Errorf("Evaluate calls = %d, want 0", calls)
	}
	want := map[string]bool{"typo": false, "dependent": false, "uses-typo": false}
	if diff := cmp.Diff(want, result.Statuses.Map()); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}

	invalid := result.Invalid()
	if len(invalid) != 3 {
		t.Fatalf("len(Invalid()) = %d, want 3", len(invalid))
	}
	var cfgErr *ruleset.ConfigurationError
	if !errors.As(invalid[0].Err, &cfgErr) {
		t.Fatalf("error = %T, want *ruleset.ConfigurationError", invalid[0].Err)
	}
	if diff := cmp.Diff([]string{"name"}, cfgErr.Fields()); diff != "" {
		t.Errorf("invalid fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Unresolved(t *testing.T) {
	eng := newTestEngine(nil)

	entries := []ruleset.Entry{
		decl("no-class", "Missing", "require"),
		{Fields: map[string]any{"name": "no-module", "module": "nowhere", "class_name": "X", "type": "require"}},
	}
	result := eng.Run(rules.Input{}, entries)

	if !result.Success() {
		t.Fatalf("unresolved require rule aborted the run")
	}

	tests := []struct {
		name string
		kind rules.ResolutionKind
	}{
		{name: "no-class", kind: rules.ClassNotFound},
		{name: "no-module", kind: rules.ModuleNotFound},
	}
	for _, tt := range tests {
		rr, _ := result.Rule(tt.name)
		if rr.State != StateUnresolved {
			t.Errorf("%s state = %v, want %v", tt.name, rr.State, StateUnresolved)
		}
		var resErr *rules.ResolutionError
		if !errors.As(rr.Err, &resErr) || resErr.Kind != tt.kind {
			t.Errorf("%s error = %v, want %v", tt.name, rr.Err, tt.kind)
		}
		if ok, recorded := result.Statuses.Get(tt.name); ok || !recorded {
			t.Errorf("%s status = (%v, %v), want (false, true)", tt.name, ok, recorded)
		}
	}
}

func TestRun_DuplicateNameLastWins(t *testing.T) {
	eng := newTestEngine(nil)
	result := eng.Run(rules.Input{}, []ruleset.Entry{
		decl("dup", "Pass", "fail"),
		decl("between", "Pass", "fail", "dup"),
		decl("dup", "Violate", "fail"),
		decl("after", "Pass", "fail", "dup"),
	})

	want := map[string]bool{"dup": false, "between": true, "after": false}
	if diff := cmp.Diff(want, result.Statuses.Map()); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if got := result.Statuses.Names(); !cmp.Equal(got, []string{"dup", "between", "after"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRun_Idempotent(t *testing.T) {
	entries := []ruleset.Entry{
		decl("A", "Pass", "require"),
		decl("B", "Violate", "fail", "A"),
		decl("C", "Error", "skip"),
		decl("D", "Pass", "fail", "C"),
	}
	eng := newTestEngine(nil)

	first := eng.Run(rules.Input{}, entries)
	second := eng.Run(rules.Input{}, entries)

	if diff := cmp.Diff(first.Statuses.Map(), second.Statuses.Map()); diff != "" {
		t.Errorf("statuses differ between runs (-first +second):\n%s", diff)
	}
	if first.Outcome != second.Outcome {
		t.Errorf("outcome differs: %v vs %v", first.Outcome, second.Outcome)
	}
}

func TestRun_PassesParamsAndInput(t *testing.T) {
	var gotIn rules.Input
	var gotParams rules.Params

	reg := rules.NewRegistry()
	reg.Register("test", "Capture", func(in rules.Input, params rules.Params) (rules.Rule, error) {
		gotIn, gotParams = in, params
		return &stubRule{}, nil
	})

	entry := decl("capture", "Capture", "fail")
	entry.Fields["params"] = map[string]any{"limit": 3}

	New(reg).Run(rules.Input{Locator: "maps/ctf1.map"}, []ruleset.Entry{entry})

	if gotIn.Locator != "maps/ctf1.map" {
		t.Errorf("Locator = %q, want maps/ctf1.map", gotIn.Locator)
	}
	if diff := cmp.Diff(rules.Params{"limit": 3}, gotParams); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Timing(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	eng := newTestEngine(nil, WithClock(clock))
	result := eng.Run(rules.Input{}, []ruleset.Entry{decl("A", "Pass", "fail")})

	a, _ := result.Rule("A")
	if a.Elapsed != time.Second {
		t.Errorf("rule Elapsed = %v, want 1s", a.Elapsed)
	}
	if result.Elapsed != 3*time.Second {
		t.Errorf("run Elapsed = %v, want 3s", result.Elapsed)
	}
	if result.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", result.RunID)
	}
}

// recorder keeps the events it receives.
type recorder struct {
	NopReporter
	events []string
}

func (r *recorder) RunStarted(info RunInfo) { r.events = append(r.events, "start:"+info.ID) }
func (r *recorder) RuleStarted(d *ruleset.Descriptor) {
	r.events = append(r.events, "eval:"+d.Name)
}
func (r *recorder) RuleCompleted(res RuleResult) {
	r.events = append(r.events, res.State.String()+":"+res.Name)
}
func (r *recorder) RunFinished(result *Result) {
	r.events = append(r.events, "finish:"+result.Outcome.String())
}

func TestRun_ReporterEvents(t *testing.T) {
	rec := &recorder{}
	other := &recorder{}
	eng := newTestEngine(nil, WithReporter(Reporters{rec, other}))

	eng.Run(rules.Input{}, []ruleset.Entry{
		decl("A", "Pass", "fail"),
		decl("B", "Pass", "fail", "missing"),
		decl("C", "Missing", "fail"),
		decl("D", "Violate", "require"),
		decl("E", "Pass", "fail"),
	})

	want := []string{
		"start:run-1",
		"eval:A", "passed:A",
		"blocked:B",
		"unresolved:C",
		"eval:D", "violated:D",
		"finish:aborted",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rec.events, other.events); diff != "" {
		t.Errorf("fan-out mismatch (-first +second):\n%s", diff)
	}
}

func TestRun_Empty(t *testing.T) {
	result := newTestEngine(nil).Run(rules.Input{}, nil)
	if !result.Success() || result.Statuses.Len() != 0 || len(result.Rules) != 0 {
		t.Errorf("empty run = %+v, want successful run with no rules", result)
	}
}
