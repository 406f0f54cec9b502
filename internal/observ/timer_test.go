package observ

import (
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	stop := tm.Measure("parse")
	stop("")
	tm.Measure("rules")("3 rules")
	tm.AddRule("MagicNumber", 2*time.Millisecond)

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "parse" || r.Phases[1].Note != "3 rules" {
		t.Fatalf("unexpected phases %+v", r.Phases)
	}
	if len(r.Rules) != 1 || r.Rules[0].DurationMS != 2 {
		t.Fatalf("unexpected rules %+v", r.Rules)
	}
	if r.TotalMS != r.Phases[0].DurationMS+r.Phases[1].DurationMS {
		t.Fatalf("total must sum phases only: %v", r.TotalMS)
	}
}

func TestSum(t *testing.T) {
	a := &Report{
		TotalMS: 3,
		Phases:  []PhaseReport{{Name: "parse", DurationMS: 1}, {Name: "rules", DurationMS: 2}},
		Rules:   []PhaseReport{{Name: "LineLength", DurationMS: 0.5}, {Name: "MagicNumber", DurationMS: 1.5}},
	}
	b := &Report{
		TotalMS: 4,
		Phases:  []PhaseReport{{Name: "parse", DurationMS: 2}, {Name: "rules", DurationMS: 2}},
		Rules:   []PhaseReport{{Name: "LineLength", DurationMS: 1.5}, {Name: "EmptyRegion", DurationMS: 0.5}},
	}
	got := Sum([]*Report{a, nil, b})
	if got.Files != 2 || got.MS != 7 {
		t.Fatalf("files/total: %+v", got)
	}
	if len(got.Phases) != 2 || got.Phases[0] != (Total{Name: "parse", MS: 3, Count: 2}) {
		t.Fatalf("phases: %+v", got.Phases)
	}
	want := []Total{
		{Name: "LineLength", MS: 2, Count: 2},
		{Name: "MagicNumber", MS: 1.5, Count: 1},
		{Name: "EmptyRegion", MS: 0.5, Count: 1},
	}
	if len(got.Rules) != len(want) {
		t.Fatalf("rules: %+v", got.Rules)
	}
	for i := range want {
		if got.Rules[i] != want[i] {
			t.Fatalf("rule %d: want %+v, got %+v", i, want[i], got.Rules[i])
		}
	}
	if top := got.Slowest(1); len(top) != 1 || top[0].Name != "LineLength" {
		t.Fatalf("slowest: %+v", top)
	}
	if all := got.Slowest(-1); len(all) != 3 {
		t.Fatalf("negative n returns all, got %d", len(all))
	}
}
