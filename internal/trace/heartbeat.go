package trace

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Heartbeat periodically reports the longest running open spans, so a rule
// stuck on one module shows up by name while the run is still going.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
	done     chan struct{}
}

// heartbeatTop ограничивает число спанов в одном сообщении
const heartbeatTop = 3

// StartHeartbeat starts emitting heartbeats every interval. It returns nil
// when tracing is off or interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var n uint64
	for {
		select {
		case <-ticker.C:
			n++
			h.beat(n)
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) beat(n uint64) {
	spans := OpenSpans(h.tracer)
	ev := &Event{
		Time:   time.Now(),
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: fmt.Sprintf("#%d open=%d", n, len(spans)),
	}
	if len(spans) > 0 {
		ev.Extra = map[string]string{"longest": describeOpen(spans)}
		ev.Unit = spans[0].Unit
	}
	h.tracer.Emit(ev)
}

// describeOpen: "rule:MagicNumber@Module.bsl 2.1s; unit@Module.bsl 2.3s"
func describeOpen(spans []OpenSpan) string {
	if len(spans) > heartbeatTop {
		spans = spans[:heartbeatTop]
	}
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		name := s.Name
		if s.Unit != "" {
			name += "@" + s.Unit
		}
		parts = append(parts, fmt.Sprintf("%s %s", name, s.Elapsed.Round(100*time.Millisecond)))
	}
	return strings.Join(parts, "; ")
}

// Stop stops the heartbeat goroutine and waits for it to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
