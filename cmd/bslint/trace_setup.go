package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bslint/internal/trace"
)

// traceFlags are the persistent --trace* flags.
type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	format    trace.Format
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(flags *pflag.FlagSet) (traceFlags, error) {
	var (
		tf                           traceFlags
		levelStr, modeStr, formatStr string
		err                          error
	)
	if tf.output, err = flags.GetString("trace"); err != nil {
		return tf, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if levelStr, err = flags.GetString("trace-level"); err != nil {
		return tf, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if modeStr, err = flags.GetString("trace-mode"); err != nil {
		return tf, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if formatStr, err = flags.GetString("trace-format"); err != nil {
		return tf, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	if tf.level, err = trace.ParseLevel(levelStr); err != nil {
		return tf, err
	}
	// --trace без уровня включает фазы
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelPhase
	}
	if tf.mode, err = trace.ParseMode(modeStr); err != nil {
		return tf, err
	}
	if tf.format, err = trace.ParseFormat(formatStr); err != nil {
		return tf, err
	}
	return tf, nil
}

// setupTracing installs the tracer the flags ask for into the command context
// and returns the cleanup that stops the heartbeat and closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		Format:     tf.format,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	activeTracer = tracer
	// nil при выключенном пульсе; Stop у nil безопасен
	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)

	return func() {
		heartbeat.Stop()
		activeTracer = nil
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

var activeTracer trace.Tracer

// dumpTraceOnPanic prints the ring of the active tracer to stderr and
// re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if ring := ringOf(activeTracer); ring != nil {
		fmt.Fprintln(os.Stderr, "== trace (last events) ==")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	if m, ok := t.(*trace.MultiTracer); ok {
		return m.Ring()
	}
	r, _ := t.(*trace.RingTracer)
	return r
}
