package trace

import (
	"io"
	"sync"
)

// StreamTracer formats every admitted event and writes it at once, so the
// output survives a crash of the process.
type StreamTracer struct {
	level  Level
	format Format

	mu  sync.Mutex
	out io.Writer
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{level: level, format: format, out: w}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !accepts(t.level, ev) {
		return
	}
	ev.Seq = NextSeq()
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	// сбой записи трассы анализ не прерывает
	_, _ = t.out.Write(line)
	t.mu.Unlock()
}

type flusher interface{ Flush() error }

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the output unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	c, ok := t.out.(io.Closer)
	if !ok || isStdStream(t.out) {
		return nil
	}
	return c.Close()
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
