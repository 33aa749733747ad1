package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-pool/pkg/logging"
	"github.com/dd0wney/cluso-pool/pkg/pools"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	reservoirBoxStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("#FFFF00")).
				Padding(1, 2)

	availableSlotStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#00FF00")).
				Bold(true)

	staleSlotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

// maxSlots is how many reservoir slots are drawn before eliding.
const maxSlots = 48

type keyMap struct {
	Acquire    key.Binding
	Release    key.Binding
	ReleaseAll key.Binding
	Reduce     key.Binding
	Teardown   key.Binding
	Rebuild    key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Acquire: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "acquire"),
	),
	Release: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "release last"),
	),
	ReleaseAll: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "release all"),
	),
	Reduce: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "reduce"),
	),
	Teardown: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "teardown"),
	),
	Rebuild: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new pool"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Acquire, k.Release, k.ReleaseAll, k.Reduce, k.Teardown, k.Rebuild, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Acquire, k.Release, k.ReleaseAll},
		{k.Reduce, k.Teardown, k.Rebuild},
		{k.Quit},
	}
}

// token is the pooled object. Serial numbers make reuse visible.
type token struct {
	serial int
}

// logTail keeps the last few lines written to it.
type logTail struct {
	mu    sync.Mutex
	lines []string
	limit int
}

func (l *logTail) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		l.lines = append(l.lines, line)
	}
	if over := len(l.lines) - l.limit; over > 0 {
		l.lines = append([]string(nil), l.lines[over:]...)
	}
	return len(p), nil
}

func (l *logTail) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type model struct {
	cfg        pools.Config
	pool       *pools.Pool[*token]
	checkedOut []*token
	serial     int
	destroyed  int
	logs       *logTail
	logger     logging.Logger
	help       help.Model
	keys       keyMap
	width      int
	message    string
	messageErr bool
}

func initialModel(cfg pools.Config) (*model, error) {
	logs := &logTail{limit: 5}
	m := &model{
		cfg:    cfg,
		logs:   logs,
		logger: logging.NewJSONLogger(logs, logging.DebugLevel),
		help:   help.New(),
		keys:   keys,
	}
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *model) rebuild() error {
	pool, err := pools.NewFromConfig(m.cfg,
		func() *token {
			m.serial++
			return &token{serial: m.serial}
		},
		func(*token) { m.destroyed++ },
		pools.WithLogger(m.logger),
	)
	if err != nil {
		return err
	}
	m.pool = pool
	m.checkedOut = nil
	return nil
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Rebuild):
			m.handleRebuild()
		case m.pool.TornDown():
			m.setError("pool is torn down, press n for a new one")
		case key.Matches(msg, m.keys.Acquire):
			t := m.pool.Acquire()
			m.checkedOut = append(m.checkedOut, t)
			m.setMessage(fmt.Sprintf("acquired #%d", t.serial))
		case key.Matches(msg, m.keys.Release):
			m.releaseLast()
		case key.Matches(msg, m.keys.ReleaseAll):
			n := len(m.checkedOut)
			for len(m.checkedOut) > 0 {
				m.releaseLast()
			}
			m.setMessage(fmt.Sprintf("released %d", n))
		case key.Matches(msg, m.keys.Reduce):
			n := m.pool.Available()
			m.pool.Reduce()
			m.setMessage(fmt.Sprintf("reduced %d available", n))
		case key.Matches(msg, m.keys.Teardown):
			n := m.pool.Len()
			m.pool.Teardown()
			m.checkedOut = nil
			m.setMessage(fmt.Sprintf("torn down, %d slots destroyed", n))
		}
	}

	return m, nil
}

func (m *model) handleRebuild() {
	if !m.pool.TornDown() {
		m.pool.Teardown()
	}
	if err := m.rebuild(); err != nil {
		m.setError(err.Error())
		return
	}
	m.setMessage("new pool built")
}

func (m *model) releaseLast() {
	if len(m.checkedOut) == 0 {
		m.setError("nothing checked out")
		return
	}
	last := len(m.checkedOut) - 1
	t := m.checkedOut[last]
	m.checkedOut = m.checkedOut[:last]
	m.pool.Release(t)
	m.setMessage(fmt.Sprintf("released #%d", t.serial))
}

func (m *model) setMessage(s string) {
	m.message = s
	m.messageErr = false
}

func (m *model) setError(s string) {
	m.message = s
	m.messageErr = true
}

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Object Pool Inspector  %s", m.pool.Name())))
	b.WriteString("\n")

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(m.renderStats()),
		reservoirBoxStyle.Render(m.renderReservoir()),
	)
	b.WriteString(contentStyle.Render(boxes))
	b.WriteString("\n")

	if m.message != "" {
		style := successStyle
		if m.messageErr {
			style = errorStyle
		}
		b.WriteString(contentStyle.Render(style.Render(m.message)))
		b.WriteString("\n")
	}

	for _, line := range m.logs.Lines() {
		b.WriteString(logStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *model) renderStats() string {
	s := m.pool.Stats()
	lines := []string{
		fmt.Sprintf("Cursor:      %d", s.Available),
		fmt.Sprintf("Slots:       %d", s.Reservoir),
		fmt.Sprintf("Growth:      %d", m.pool.GrowthCount()),
		fmt.Sprintf("Checked out: %d", len(m.checkedOut)),
		"",
		fmt.Sprintf("Created:     %d", s.Created),
		fmt.Sprintf("Destroyed:   %d", s.Destroyed),
		fmt.Sprintf("Acquired:    %d", s.Acquired),
		fmt.Sprintf("Released:    %d", s.Released),
		fmt.Sprintf("Growths:     %d", s.Growths),
		fmt.Sprintf("Reductions:  %d", s.Reductions),
	}
	if m.pool.TornDown() {
		lines = append(lines, "", errorStyle.Render("TORN DOWN"))
	}
	return strings.Join(lines, "\n")
}

// renderReservoir draws one cell per slot: available slots below the
// cursor, stale ones above it.
func (m *model) renderReservoir() string {
	available, total := m.pool.Available(), m.pool.Len()

	var cells strings.Builder
	for i := 0; i < total && i < maxSlots; i++ {
		if i > 0 && i%16 == 0 {
			cells.WriteString("\n")
		}
		if i < available {
			cells.WriteString(availableSlotStyle.Render("■ "))
		} else {
			cells.WriteString(staleSlotStyle.Render("□ "))
		}
	}
	if total > maxSlots {
		cells.WriteString(fmt.Sprintf("\n... %d more", total-maxSlots))
	}
	if total == 0 {
		cells.WriteString(staleSlotStyle.Render("(empty)"))
	}

	held := make([]string, 0, len(m.checkedOut))
	for _, t := range m.checkedOut {
		held = append(held, fmt.Sprintf("#%d", t.serial))
	}
	out := "none"
	if len(held) > 0 {
		out = strings.Join(held, " ")
	}

	return fmt.Sprintf("Reservoir\n\n%s\n\nChecked out: %s", cells.String(), out)
}

func main() {
	initCount := flag.Int("init", 4, "Items created when the pool is built")
	growthCount := flag.Int("growth", 3, "Items created per growth batch")
	name := flag.String("name", "tokens", "Pool name")
	flag.Parse()

	cfg := pools.Config{Name: *name, InitCount: *initCount, GrowthCount: *growthCount}
	m, err := initialModel(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
