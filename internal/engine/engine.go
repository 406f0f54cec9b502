// Package engine runs the selected rules over one unit.
//
// Every rule gets a fresh instance, its own Storage and compiled parameters.
// A panic inside a rule is recovered and recorded as a Fault; the rule then
// contributes no findings while all other rules keep theirs.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"bslint/internal/diag"
	"bslint/internal/observ"
	"bslint/internal/rule"
	"bslint/internal/trace"
)

type Options struct {
	Registry *rule.Registry
	Settings map[string]rule.Settings
	// Only restricts the run to these rule ids; scope and compatibility still apply.
	Only []string
	// Parallel runs rules of the unit concurrently, at most Jobs at a time.
	Parallel bool
	Jobs     int
	// Fixes asks QuickFixer rules for fixes and attaches them to findings.
	Fixes bool
	// Timer, when set, collects the time each rule spent on the unit.
	Timer *observ.Timer
}

// Fault records a recovered rule panic.
type Fault struct {
	RuleID string
	Value  string
	Stack  string
}

func (f Fault) Error() string {
	return fmt.Sprintf("rule %s panicked: %s", f.RuleID, f.Value)
}

// Issue is a configuration problem of one rule.
type Issue struct {
	RuleID string
	rule.ParamIssue
}

type Result struct {
	Diagnostics []diag.Diagnostic
	Faults      []Fault
	Issues      []Issue
	Rules       []string // ids of the rules that ran
	Canceled    bool
}

type ruleResult struct {
	diags  []diag.Diagnostic
	issues []rule.ParamIssue
	fault  *Fault
	ran    bool
	dur    time.Duration
}

// Select returns the definitions Run would execute for u.
func Select(u *rule.Unit, opts Options) []rule.Definition {
	if opts.Registry == nil {
		return nil
	}
	defs := opts.Registry.Applicable(u.Module.Kind, u.Module.Compatibility, opts.Settings)
	if len(opts.Only) == 0 {
		return defs
	}
	var out []rule.Definition
	for _, id := range opts.Only {
		d, ok := opts.Registry.Lookup(id)
		if !ok || !d.Descriptor.AppliesTo(u.Module.Kind) || !d.Descriptor.SupportsCompatibility(u.Module.Compatibility) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Run executes the applicable rules against u. Cancellation is checked before
// each rule starts, never in the middle of a walk.
func Run(ctx context.Context, u *rule.Unit, opts Options) Result {
	tr := trace.FromContext(ctx)
	if u.File != nil && trace.CurrentSpan(ctx).Unit == "" {
		ctx = trace.WithUnit(ctx, u.File.Path)
	}
	ctx, span := trace.Start(ctx, trace.ScopeUnit, "unit")

	defs := Select(u, opts)
	results := make([]ruleResult, len(defs))
	runOne := func(i int) {
		if ctx.Err() != nil {
			return
		}
		def := defs[i]
		s := rule.LookupSettings(opts.Settings, def.Descriptor.ID)
		_, rs := trace.Start(ctx, trace.ScopeRule, "rule:"+def.Descriptor.ID)
		started := time.Now()
		diags, issues, fault := RunRule(ctx, u, def, s, opts.Fixes)
		dur := time.Since(started)
		rs.Set("found", strconv.Itoa(len(diags))).End("")
		results[i] = ruleResult{diags: diags, issues: issues, fault: fault, ran: true, dur: dur}
	}

	if opts.Parallel && len(defs) > 1 {
		var g errgroup.Group
		jobs := opts.Jobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}
		g.SetLimit(jobs)
		for i := range defs {
			g.Go(func() error {
				runOne(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range defs {
			runOne(i)
		}
	}

	var res Result
	for i, r := range results {
		id := defs[i].Descriptor.ID
		if !r.ran {
			res.Canceled = true
			continue
		}
		res.Rules = append(res.Rules, id)
		if opts.Timer != nil {
			opts.Timer.AddRule(id, r.dur)
		}
		res.Diagnostics = append(res.Diagnostics, r.diags...)
		for _, is := range r.issues {
			res.Issues = append(res.Issues, Issue{RuleID: id, ParamIssue: is})
			trace.Point(tr, trace.ScopeUnit, "config:"+id, is.Error())
		}
		if r.fault != nil {
			res.Faults = append(res.Faults, *r.fault)
			extra := map[string]string{"rule": id}
			if u.File != nil {
				extra["path"] = u.File.Path
			}
			trace.Fault(tr, trace.ScopeRule, "rule:"+id, r.fault.Value, extra)
		}
	}
	diag.SortDiagnostics(res.Diagnostics)
	span.Set("found", strconv.Itoa(len(res.Diagnostics))).End("")
	return res
}

// RunRule runs one rule with a fresh instance and storage. A panic is
// returned as a Fault together with no findings.
func RunRule(ctx context.Context, u *rule.Unit, def rule.Definition, s rule.Settings, withFixes bool) (diags []diag.Diagnostic, issues []rule.ParamIssue, fault *Fault) {
	desc := def.Descriptor
	params, issues := rule.CompileParams(desc.Params, s.Params)
	storage := rule.NewStorage(desc, rule.EffectiveSeverity(desc, s), u.Language, u.File)

	defer func() {
		if v := recover(); v != nil {
			diags = nil
			fault = &Fault{RuleID: desc.ID, Value: fmt.Sprint(v), Stack: string(debug.Stack())}
		}
	}()

	r := def.New(params)
	rctx := rule.NewContext(ctx, u, desc, params, storage)
	storage.Clear()
	r.Check(rctx)
	diags = storage.Diagnostics()

	if withFixes {
		if qf, ok := r.(rule.QuickFixer); ok && len(diags) > 0 {
			attachFixes(diags, qf.QuickFixes(diags, rctx.EditContext()))
		}
	}
	return diags, issues, nil
}

// attachFixes puts each action's fix on the finding it was built for.
func attachFixes(diags []diag.Diagnostic, actions []rule.CodeAction) {
	for _, a := range actions {
		for i := range diags {
			d := &diags[i]
			if d.Primary == a.Diagnostic.Primary && d.Message == a.Diagnostic.Message && d.Code == a.Diagnostic.Code {
				d.Fixes = append(d.Fixes, a.Fix)
				break
			}
		}
	}
}
