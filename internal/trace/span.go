package trace

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64

	// open хранит незакрытые спаны для heartbeat
	open sync.Map // uint64 -> *Span
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Span is one timed region: a directory walk, a unit or a rule run.
// A nil or disabled span accepts every call and records nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	unit    string
	scope   Scope
	name    string
	started time.Time

	mu    sync.Mutex
	attrs map[string]string
}

// Start opens a span below the one carried by ctx, using the tracer of ctx.
// The returned context carries the new span, so nested Start calls form a tree.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	s := begin(FromContext(ctx), scope, name, parent)
	if s.id == 0 {
		return ctx, s
	}
	return WithSpanContext(ctx, SpanContext{SpanID: s.id, Unit: s.unit}), s
}

// Begin opens a root span without a context.
func Begin(t Tracer, scope Scope, name string) *Span {
	return begin(t, scope, name, SpanContext{})
}

func begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent.SpanID,
		unit:    parent.Unit,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	open.Store(s.id, s)
	t.Emit(&Event{
		Time:     s.started,
		Seq:      NextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     name,
	})
	return s
}

// Set attaches key=value to the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	s.mu.Lock()
	if s.attrs == nil {
		s.attrs = make(map[string]string)
	}
	s.attrs[key] = value
	s.mu.Unlock()
	return s
}

// End closes the span and returns its duration. Calling End twice emits once.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	if _, loaded := open.LoadAndDelete(s.id); !loaded {
		return 0
	}
	dur := time.Since(s.started)
	s.mu.Lock()
	attrs := s.attrs
	s.mu.Unlock()
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     s.name,
		Detail:   detail,
		Extra:    attrs,
	})
	return dur
}

// ID returns the span ID, 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// OpenSpan describes a span that has begun but not ended.
type OpenSpan struct {
	Name    string
	Unit    string
	Scope   Scope
	Elapsed time.Duration
}

// OpenSpans lists unfinished spans of t, longest running first.
func OpenSpans(t Tracer) []OpenSpan {
	now := time.Now()
	var out []OpenSpan
	open.Range(func(_, v any) bool {
		s := v.(*Span)
		if s.tracer == t {
			out = append(out, OpenSpan{Name: s.name, Unit: s.unit, Scope: s.scope, Elapsed: now.Sub(s.started)})
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Elapsed > out[j].Elapsed })
	return out
}
