package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/script-runtime/config"
	"github.com/wippyai/script-runtime/runtime"
	"github.com/wippyai/script-runtime/watch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	moduleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	versionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// host runs the runtime on a dedicated owner goroutine and exposes it
// to the TUI through the job queue. bubbletea executes commands on
// arbitrary goroutines, so every runtime access goes through call.
type host struct {
	rt      *runtime.Runtime
	watcher *watch.Watcher
	stop    chan struct{}
	wg      sync.WaitGroup
}

func startHost(cfg *config.Config) (*host, error) {
	h := &host{
		rt:   newRuntime(cfg),
		stop: make(chan struct{}),
	}

	h.watcher = watch.New(watch.Options{
		Root:  cfg.Root,
		Queue: h.rt.Queue(),
		Apply: func(ids []string) { h.rt.MarkChanged(ids...) },
	})
	if err := h.watcher.Start(); err != nil {
		return nil, err
	}

	h.wg.Add(1)
	go h.loop()
	return h, nil
}

// loop is the owner goroutine: the first Tick binds the confinement
// guard to it, and from then on all runtime work happens here.
func (h *host) loop() {
	defer h.wg.Done()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			h.rt.Close()
			return
		case <-ticker.C:
			if _, err := h.rt.Tick(64, 10*time.Millisecond); err != nil {
				return
			}
		}
	}
}

// call runs fn on the owner goroutine and waits for its result.
func (h *host) call(fn func(rt *runtime.Runtime) (any, error)) (any, error) {
	fut, err := h.rt.Queue().Call(func() (any, error) { return fn(h.rt) })
	if err != nil {
		return nil, err
	}
	return fut.Wait()
}

func (h *host) close() {
	h.watcher.Close()
	close(h.stop)
	h.wg.Wait()
}

type moduleRow struct {
	id      string
	version uint64
}

type interactiveModel struct {
	host  *host
	entry string

	modules  []moduleRow
	selected int
	input    textinput.Model
	result   string
	err      error
	state    modelState
}

type modelState int

const (
	stateModules modelState = iota
	stateRequire
	stateShowResult
)

type loadedMsg struct {
	err error
}

type refreshMsg struct {
	modules []moduleRow
}

type requireResultMsg struct {
	err    error
	id     string
	result string
}

func newInteractiveModel(h *host, entry string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "./lib/math or builtin:log"
	ti.Prompt = "require: "
	ti.Width = 40

	return &interactiveModel{
		host:  h,
		entry: entry,
		input: ti,
		state: stateModules,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.loadEntry, m.scheduleRefresh())
}

func (m *interactiveModel) loadEntry() tea.Msg {
	_, err := m.host.call(func(rt *runtime.Runtime) (any, error) {
		_, _, err := rt.RequireFrom("", m.entry)
		return nil, err
	})
	return loadedMsg{err: err}
}

func (m *interactiveModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return m.snapshot()
	})
}

// snapshot reads the module list and versions on the owner goroutine.
func (m *interactiveModel) snapshot() tea.Msg {
	rows, err := m.host.call(func(rt *runtime.Runtime) (any, error) {
		ids, err := rt.Loaded()
		if err != nil {
			return nil, err
		}
		out := make([]moduleRow, 0, len(ids))
		for _, id := range ids {
			out = append(out, moduleRow{id: id, version: rt.Version(id)})
		}
		return out, nil
	})
	if err != nil {
		return refreshMsg{}
	}
	modules := rows.([]moduleRow)
	sort.Slice(modules, func(i, j int) bool { return modules[i].id < modules[j].id })
	return refreshMsg{modules: modules}
}

func (m *interactiveModel) requireInput() tea.Msg {
	request := m.input.Value()
	res, err := m.host.call(func(rt *runtime.Runtime) (any, error) {
		exports, id, err := rt.RequireFrom("", request)
		if err != nil {
			return nil, err
		}
		return requireResultMsg{id: id, result: fmt.Sprintf("%v", exports)}, nil
	})
	if err != nil {
		return requireResultMsg{err: err}
	}
	return res.(requireResultMsg)
}

// invalidateSelected reloads the highlighted module's dependency cone.
func (m *interactiveModel) invalidateSelected() tea.Msg {
	if m.selected >= len(m.modules) {
		return refreshMsg{modules: m.modules}
	}
	id := m.modules[m.selected].id
	res, err := m.host.call(func(rt *runtime.Runtime) (any, error) {
		removed, err := rt.Invalidate(id)
		if err != nil {
			return nil, err
		}
		return requireResultMsg{id: id, result: fmt.Sprintf("invalidated %d module(s)", removed)}, nil
	})
	if err != nil {
		return requireResultMsg{err: err}
	}
	return res.(requireResultMsg)
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateRequire && msg.String() == "q" {
				break
			}
			m.host.close()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateModules && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateModules && m.selected < len(m.modules)-1 {
				m.selected++
			}

		case "n":
			if m.state == stateModules {
				m.state = stateRequire
				m.input.SetValue("")
				m.input.Focus()
				return m, nil
			}

		case "r":
			if m.state == stateModules {
				return m, m.invalidateSelected
			}

		case "enter":
			switch m.state {
			case stateRequire:
				m.input.Blur()
				return m, m.requireInput
			case stateShowResult:
				m.state = stateModules
				m.result = ""
				m.err = nil
			}

		case "esc":
			if m.state == stateRequire || m.state == stateShowResult {
				m.state = stateModules
				m.input.Blur()
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateShowResult
		}
		return m, nil

	case refreshMsg:
		if msg.modules != nil {
			m.modules = msg.modules
			if m.selected >= len(m.modules) && len(m.modules) > 0 {
				m.selected = len(m.modules) - 1
			}
		}
		return m, m.scheduleRefresh()

	case requireResultMsg:
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.id + ": " + msg.result
		}
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateRequire {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Script Runtime"))
	b.WriteString(" ")
	b.WriteString(m.entry)
	b.WriteString("\n\n")

	switch m.state {
	case stateModules:
		if len(m.modules) == 0 {
			b.WriteString("No modules loaded yet.\n")
		} else {
			b.WriteString("Loaded modules:\n\n")
			for i, row := range m.modules {
				line := m.formatModule(row)
				if i == m.selected {
					b.WriteString(selectedStyle.Render("> " + line))
				} else {
					b.WriteString("  " + line)
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • r reload • n require • q quit"))

	case stateRequire:
		b.WriteString("Require a module:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter require • esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • esc back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatModule(row moduleRow) string {
	return moduleStyle.Render(row.id) + " " + versionStyle.Render(fmt.Sprintf("v%d", row.version))
}

func runInteractive(cfg *config.Config) error {
	h, err := startHost(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newInteractiveModel(h, cfg.Entry), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
