package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeUnit, true},
		{LevelPhase, ScopeRule, false},
		{LevelDetail, ScopeRule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%s/%s: want %v, got %v", tt.level, tt.scope, tt.want, got)
		}
	}
}

func TestFaultPassesErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	Begin(ring, ScopeUnit, "unit").End("")
	Fault(ring, ScopeRule, "rule:Broken", "boom", map[string]string{"rule": "Broken"})
	events := ring.Snapshot()
	if len(events) != 1 || events[0].Kind != KindFault || events[0].Detail != "boom" {
		t.Fatalf("expected the fault only, got %+v", events)
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeRule, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", events)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatText)
	span := Begin(st, ScopeRule, "rule:MagicNumber")
	span.Set("found", "2").End("ok")
	out := buf.String()
	if !strings.Contains(out, "→ rule:MagicNumber") || !strings.Contains(out, "← rule:MagicNumber (ok) {found=2}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Point(st, ScopeDriver, "start", "")
	if !strings.Contains(buf.String(), `"name":"start"`) || !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	ring := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer lost in context")
	}
}

func TestMultiTracerRing(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(4, LevelPhase)
	m := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), ring)
	Point(m, ScopeUnit, "parse", "")
	if m.Ring() != ring || len(ring.Snapshot()) != 1 || buf.Len() == 0 {
		t.Fatalf("event not fanned out")
	}
}

func TestStartNestsSpansAndCarriesUnit(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithUnit(WithTracer(context.Background(), ring), "CommonModules/Общий/Module.bsl")
	ctx, unit := Start(ctx, ScopeUnit, "unit")
	_, rule := Start(ctx, ScopeRule, "rule:MagicNumber")
	rule.End("")
	unit.End("")
	unit.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("want 4 events, got %+v", events)
	}
	if events[1].ParentID != unit.ID() || events[1].Name != "rule:MagicNumber" {
		t.Fatalf("rule span is not a child of the unit span: %+v", events[1])
	}
	for _, ev := range events {
		if ev.Unit != "CommonModules/Общий/Module.bsl" {
			t.Fatalf("unit lost on %s %s: %q", ev.Kind, ev.Name, ev.Unit)
		}
	}
}

func TestStartDisabledKeepsContext(t *testing.T) {
	ctx := WithTracer(context.Background(), NewRingTracer(4, LevelPhase))
	got, span := Start(ctx, ScopeRule, "rule:X")
	if got != ctx || span.ID() != 0 {
		t.Fatalf("a filtered scope must not open a span")
	}
	if d := span.Set("k", "v").End(""); d != 0 {
		t.Fatalf("disabled span reported duration %v", d)
	}
}

func TestOpenSpansAndHeartbeat(t *testing.T) {
	ring := NewRingTracer(64, LevelDetail)
	ctx := WithUnit(WithTracer(context.Background(), ring), "Module.bsl")
	_, stuck := Start(ctx, ScopeRule, "rule:Stuck")
	defer stuck.End("")

	open := OpenSpans(ring)
	if len(open) != 1 || open[0].Name != "rule:Stuck" || open[0].Unit != "Module.bsl" {
		t.Fatalf("unexpected open spans %+v", open)
	}

	hb := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(5 * time.Second)
	for {
		var beat *Event
		for _, ev := range ring.Snapshot() {
			if ev.Kind == KindHeartbeat {
				beat = &ev
				break
			}
		}
		if beat != nil {
			hb.Stop()
			hb.Stop()
			if !strings.HasPrefix(beat.Extra["longest"], "rule:Stuck@Module.bsl") || beat.Unit != "Module.bsl" {
				t.Fatalf("heartbeat does not name the stuck rule: %+v", beat)
			}
			return
		}
		if time.Now().After(deadline) {
			hb.Stop()
			t.Fatalf("no heartbeat emitted")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStartHeartbeatDisabled(t *testing.T) {
	if StartHeartbeat(Nop, time.Second) != nil || StartHeartbeat(NewRingTracer(1, LevelPhase), 0) != nil {
		t.Fatalf("heartbeat must not start")
	}
	var h *Heartbeat
	h.Stop()
}

func TestNewPicksStorage(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		mode   StorageMode
		stream bool
		ring   bool
	}{
		{ModeStream, true, false},
		{ModeRing, false, true},
		{ModeBoth, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			tr, err := New(Config{Level: LevelDebug, Mode: tt.mode, Output: &buf})
			if err != nil {
				t.Fatal(err)
			}
			_, isStream := tr.(*StreamTracer)
			_, isRing := tr.(*RingTracer)
			if multi, ok := tr.(*MultiTracer); ok {
				isStream, isRing = true, multi.Ring() != nil
			}
			if isStream != tt.stream || isRing != tt.ring {
				t.Fatalf("%s: stream=%v ring=%v", tt.mode, isStream, isRing)
			}
		})
	}
	if _, err := New(Config{Level: LevelDebug, Mode: StorageMode(9)}); err == nil {
		t.Fatalf("unknown mode must fail")
	}
	if tr, _ := New(Config{}); tr.Enabled() {
		t.Fatalf("LevelOff must give a disabled tracer")
	}
}

func TestParseModeAndFormat(t *testing.T) {
	for _, s := range []string{"stream", "Ring", " both "} {
		m, err := ParseMode(s)
		if err != nil || m.String() != strings.ToLower(strings.TrimSpace(s)) {
			t.Fatalf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if f := (Config{OutputPath: "run.NDJSON"}).format(); f != FormatNDJSON {
		t.Fatalf("format = %v", f)
	}
	if f := (Config{OutputPath: "run.log"}).format(); f != FormatText {
		t.Fatalf("format = %v", f)
	}
}
