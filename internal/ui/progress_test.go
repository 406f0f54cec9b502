package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"bslint/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	m := NewProgressModel("bslint check", []string{"a/Module.bsl", "b/Module.bsl"}, nil).(*progressModel)

	steps := []driver.Event{
		{File: "a/Module.bsl", Stage: driver.StageParse, Status: driver.StatusWorking},
		{File: "b/Module.bsl", Stage: driver.StageCache, Status: driver.StatusDone, Found: 2},
		{File: "unknown.bsl", Stage: driver.StageCheck, Status: driver.StatusDone, Found: 10},
	}
	for _, ev := range steps {
		m.Update(eventMsg(ev))
	}
	if len(m.active) != 1 || m.files[m.active[0]].state != stateParsing {
		t.Fatalf("active = %v", m.active)
	}
	view := m.View()
	for _, want := range []string{"bslint check", "1/2", "parsing", "a/Module.bsl", "2 issue(s), 1 from cache"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}

	m.Update(eventMsg(driver.Event{File: "a/Module.bsl", Stage: driver.StageCheck, Status: driver.StatusError, Err: errors.New("boom"), Found: 1}))
	// поздние события по завершённому файлу ничего не меняют
	m.Update(eventMsg(driver.Event{File: "a/Module.bsl", Stage: driver.StageCheck, Status: driver.StatusDone, Found: 5}))

	if m.files[0].state != stateFailed || m.files[1].state != stateCached {
		t.Fatalf("states = %v, %v", m.files[0].state, m.files[1].state)
	}
	if m.found != 3 || m.cached != 1 || m.failed != 1 || m.finished != 2 || len(m.active) != 0 {
		t.Fatalf("found=%d cached=%d failed=%d finished=%d active=%v", m.found, m.cached, m.failed, m.finished, m.active)
	}
	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v", got)
	}
	if view := m.View(); !strings.Contains(view, "1 failed") || strings.Contains(view, "a/Module.bsl") {
		t.Fatalf("finished files must leave the in-flight list:\n%s", view)
	}
}

func TestProgressModelCapsActiveLines(t *testing.T) {
	files := make([]string, maxActive+3)
	for i := range files {
		files[i] = fmt.Sprintf("m%02d.bsl", i)
	}
	m := NewProgressModel("run", files, nil).(*progressModel)
	for _, f := range files {
		m.Update(eventMsg(driver.Event{File: f, Stage: driver.StageCheck, Status: driver.StatusWorking}))
	}
	view := m.View()
	if !strings.Contains(view, "+3 more in flight") || strings.Contains(view, files[maxActive]) {
		t.Fatalf("unexpected view:\n%s", view)
	}
	if got := m.percent(); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("percent = %v", got)
	}
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("run", []string{"x.bsl"}, events).(*progressModel)
	msg := m.next()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("closed channel must yield doneMsg, got %T", msg)
	}
	_, cmd := m.Update(msg)
	if !m.done || cmd == nil {
		t.Fatalf("doneMsg must finish the model")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("doneMsg must quit the program")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Module.bsl", 20, "Module.bsl"},
		{"CommonModule.bsl", 10, "...ule.bsl"},
		{"abcdef", 3, "def"},
		{"abc", 0, "abc"},
		{"ОбщиеМодули/Модуль.bsl", 13, "...Модуль.bsl"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
