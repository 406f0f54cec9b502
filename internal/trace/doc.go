// Package trace provides the tracing subsystem of bslint.
//
// Tracing follows one analysis run: directory walk, units, rules. It helps
// find slow rules and rules that panic.
//
// # Usage
//
//	bslint check --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: zero overhead when disabled
//   - StreamTracer: immediate write to a file or stderr (text or NDJSON)
//   - RingTracer: circular buffer, dumped when something went wrong
//   - MultiTracer: fan-out
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: only faults (rule panics, unreadable files)
//   - LevelPhase: driver and unit boundaries
//   - LevelDetail: per-rule spans
//   - LevelDebug: everything
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "unit", 0)
//	defer span.End("")
package trace
