// Package observ measures where analysis time goes: the phases of one module
// (parse, symbols, rules) and the cost of each rule, summed over a run.
package observ

import (
	"sort"
	"time"
)

// Phase is one measured step of analysing a module.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer collects the phases of one module. It is not safe for concurrent use;
// each unit owns its timer.
type Timer struct {
	phases []Phase
	rules  []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Measure starts phase name; the returned func stops it with an optional note.
func (t *Timer) Measure(name string) func(note string) {
	start := time.Now()
	return func(note string) {
		t.phases = append(t.phases, Phase{Name: name, Dur: time.Since(start), Note: note})
	}
}

// AddRule records the time one rule spent on the module.
func (t *Timer) AddRule(id string, d time.Duration) {
	t.rules = append(t.rules, Phase{Name: id, Dur: d})
}

// PhaseReport is a phase or a rule in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serialisable form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	Rules   []PhaseReport `json:"rules,omitempty"`
}

// Report returns phases in the order they finished and rules in the order
// they were added. TotalMS sums phases only: rule time is part of the
// "rules" phase.
func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		r.TotalMS += millis(p.Dur)
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	for _, p := range t.rules {
		r.Rules = append(r.Rules, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur)})
	}
	return r
}

// Total is the sum of one phase or rule over many modules.
type Total struct {
	Name  string
	MS    float64
	Count int // модулей, где фаза или правило отработали
}

// Totals sums per-module reports of a run.
type Totals struct {
	Files  int
	MS     float64
	Phases []Total // in first-seen order
	Rules  []Total // slowest first, ties by name
}

// Sum aggregates reports; nil entries (cached modules) are skipped.
func Sum(reports []*Report) Totals {
	var out Totals
	phaseIdx := make(map[string]int)
	ruleIdx := make(map[string]int)
	for _, r := range reports {
		if r == nil {
			continue
		}
		out.Files++
		out.MS += r.TotalMS
		out.Phases = accumulate(out.Phases, phaseIdx, r.Phases)
		out.Rules = accumulate(out.Rules, ruleIdx, r.Rules)
	}
	sort.SliceStable(out.Rules, func(i, j int) bool {
		if out.Rules[i].MS != out.Rules[j].MS {
			return out.Rules[i].MS > out.Rules[j].MS
		}
		return out.Rules[i].Name < out.Rules[j].Name
	})
	return out
}

func accumulate(list []Total, idx map[string]int, items []PhaseReport) []Total {
	for _, p := range items {
		i, ok := idx[p.Name]
		if !ok {
			i = len(list)
			idx[p.Name] = i
			list = append(list, Total{Name: p.Name})
		}
		list[i].MS += p.DurationMS
		list[i].Count++
	}
	return list
}

// Slowest returns at most n rules from the top of t.Rules.
func (t Totals) Slowest(n int) []Total {
	if n < 0 || n >= len(t.Rules) {
		return t.Rules
	}
	return t.Rules[:n]
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
