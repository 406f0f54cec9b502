package trace

import "time"

// Kind is what happened: a span opened or closed, an instant, a heartbeat or
// a recovered fault.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
	KindFault // passes every level but off
)

var kindNames = [...]string{"", "begin", "end", "point", "heartbeat", "fault"}

func (k Kind) String() string {
	if k == 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // command, directory walk
	ScopeUnit                    // one module: read, parse, symbols, rules
	ScopeRule                    // one rule over one unit
	ScopeNode                    // inside a rule
)

var scopeNames = [...]string{"", "driver", "unit", "rule", "node"}

func (s Scope) String() string {
	if s == 0 || int(s) >= len(scopeNames) {
		return "unknown"
	}
	return scopeNames[s]
}

type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Unit     string // module path, empty outside a unit
	Name     string // "unit", "rule:MagicNumber"
	Detail   string
	Extra    map[string]string
}

// accepts is the filter every tracer applies before storing ev.
func accepts(l Level, ev *Event) bool {
	switch ev.Kind {
	case KindHeartbeat:
		return l > LevelOff
	case KindFault:
		return l >= LevelError
	}
	return l.ShouldEmit(ev.Scope)
}
