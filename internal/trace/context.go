package trace

import "context"

type ctxKey uint8

const (
	tracerKey ctxKey = iota
	spanKey
)

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey).(Tracer); ok {
			return t
		}
	}
	return Nop
}

func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey, t)
}

// SpanContext is inherited by nested spans: the enclosing span id and the
// module under analysis.
type SpanContext struct {
	SpanID uint64
	Unit   string
}

// CurrentSpan is zero outside any span.
func CurrentSpan(ctx context.Context) (sc SpanContext) {
	if ctx != nil {
		sc, _ = ctx.Value(spanKey).(SpanContext)
	}
	return sc
}

func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey, sc)
}

// WithUnit tags spans started below ctx with the module path; при
// параллельном разборе только по нему события разных модулей и различимы.
func WithUnit(ctx context.Context, path string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Unit = path
	return WithSpanContext(ctx, sc)
}
