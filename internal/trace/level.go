package trace

import (
	"fmt"
	"slices"
	"strings"
)

// Level controls tracing verbosity. Every level admits what the lower ones do.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // faults only
	LevelPhase        // run and file boundaries
	LevelDetail       // plus one span per rule
	LevelDebug        // everything
)

var levelNames = []string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", l)
}

// ParseLevel is the inverse of String, case-insensitive.
func ParseLevel(s string) (Level, error) {
	i := slices.Index(levelNames, strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames, "|"))
	}
	return Level(i), nil
}

// ShouldEmit reports whether span and point events of scope pass l.
// Faults bypass it.
func (l Level) ShouldEmit(scope Scope) bool {
	switch {
	case l >= LevelDebug:
		return true
	case l == LevelDetail:
		return scope <= ScopeRule
	case l == LevelPhase:
		return scope <= ScopeUnit
	}
	return false
}
