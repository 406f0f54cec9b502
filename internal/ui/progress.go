package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"bslint/internal/driver"
)

// maxActive caps the in-flight lines; выгрузки 1С дают десятки тысяч модулей.
const maxActive = 8

type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateParsing
	stateChecking
	stateDone
	stateCached
	stateFailed
)

func (s fileState) finished() bool { return s >= stateDone }

func (s fileState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateParsing:
		return "parsing"
	case stateChecking:
		return "checking"
	case stateDone:
		return "done"
	case stateCached:
		return "cached"
	case stateFailed:
		return "error"
	}
	return "queued"
}

// weight is the share of a file's work behind it once it reaches s.
func (s fileState) weight() float64 {
	switch s {
	case stateLoading:
		return 0.05
	case stateParsing:
		return 0.2
	case stateChecking:
		return 0.6
	case stateQueued:
		return 0
	}
	return 1
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	foundStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

type fileEntry struct {
	path  string
	state fileState
	found int
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	files   []fileEntry
	byPath  map[string]int
	// active keeps in-flight files in the order they started
	active   []int
	finished int
	found    int
	cached   int
	failed   int
	width    int
	done     bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders analysis progress
// of files. The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(activeStyle))
	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		files:   make([]fileEntry, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, path := range files {
		m.files[i] = fileEntry{path: path}
		m.byPath[path] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// Ctrl+C гасит только отрисовку, анализ отменяет вызывающий код
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func stateOf(ev driver.Event) (fileState, bool) {
	switch ev.Status {
	case driver.StatusDone:
		if ev.Stage == driver.StageCache {
			return stateCached, true
		}
		return stateDone, true
	case driver.StatusError:
		return stateFailed, true
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageParse:
			return stateParsing, true
		case driver.StageCheck:
			return stateChecking, true
		}
	case driver.StatusQueued:
		return stateQueued, true
	}
	return stateQueued, false
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, known := m.byPath[ev.File]
	state, ok := stateOf(ev)
	if !known || !ok {
		return nil
	}
	f := &m.files[i]
	if f.state.finished() {
		return nil
	}
	if f.state == stateQueued && state != stateQueued && !state.finished() {
		m.active = append(m.active, i)
	}
	f.state = state
	if state.finished() {
		m.finished++
		m.found += ev.Found
		f.found = ev.Found
		switch state {
		case stateCached:
			m.cached++
		case stateFailed:
			m.failed++
		}
		m.drop(i)
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) drop(i int) {
	for k, j := range m.active {
		if j == i {
			m.active = append(m.active[:k], m.active[k+1:]...)
			return
		}
	}
}

func (m *progressModel) percent() float64 {
	if len(m.files) == 0 {
		return 0
	}
	var sum float64
	for _, f := range m.files {
		sum += f.state.weight()
	}
	return sum / float64(len(m.files))
}

func (m *progressModel) View() string {
	if len(m.files) == 0 {
		return ""
	}
	var b strings.Builder
	mark := m.spinner.View()
	if m.done {
		mark = "✓"
	}
	fmt.Fprintf(&b, "%s %s %s\n\n", mark, headerStyle.Render(m.title),
		dimStyle.Render(fmt.Sprintf("%d/%d", m.finished, len(m.files))))

	nameWidth := max(m.width-16, 20)
	shown := m.active[:min(len(m.active), maxActive)]
	for _, i := range shown {
		f := m.files[i]
		fmt.Fprintf(&b, "  %s %s\n", activeStyle.Render(fmt.Sprintf("%-9s", f.state)), truncate(f.path, nameWidth))
	}
	if rest := len(m.active) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("+%d more in flight", rest)))
	}
	if len(shown) > 0 {
		b.WriteByte('\n')
	}

	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	summary := foundStyle.Render(fmt.Sprintf("%d issue(s)", m.found))
	fmt.Fprintf(&b, "%s, %d from cache", summary, m.cached)
	if m.failed > 0 {
		fmt.Fprintf(&b, ", %s", failedStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate cuts value to width terminal cells keeping its tail: the module
// name at the end of a 1C path says more than the common prefix.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	ellipsis := "..."
	if width <= len(ellipsis) {
		ellipsis = ""
	}
	budget := width - len(ellipsis)
	rs := []rune(value)
	i, used := len(rs), 0
	for i > 0 {
		w := runewidth.RuneWidth(rs[i-1])
		if used+w > budget {
			break
		}
		used += w
		i--
	}
	return ellipsis + string(rs[i:])
}
