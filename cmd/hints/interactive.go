package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-hints/hints"
	"github.com/wippyai/wasm-hints/text"
	"github.com/wippyai/wasm-hints/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	spanStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateSelectFunc browserState = iota
	stateShowDetail
)

// funcHints gathers everything known about one function across all
// hint sections of the module.
type funcHints struct {
	index    uint32
	bodySize uint32
	sized    bool
	entries  map[string][]hints.Entry // section name -> entries
	spans    []hints.FreqSpan
}

type browserModel struct {
	err      error
	filename string
	funcs    []funcHints
	diags    []hints.Diagnostic
	viewport viewport.Model
	selected int
	width    int
	height   int
	state    browserState
	ready    bool
}

type loadedMsg struct {
	err   error
	funcs []funcHints
	diags []hints.Diagnostic
}

func newBrowserModel(filename string) *browserModel {
	return &browserModel{
		filename: filename,
		state:    stateSelectFunc,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *browserModel) loadModule() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	info, err := wasm.Scan(data)
	if err != nil {
		return loadedMsg{err: err}
	}

	byFunc := make(map[uint32]*funcHints)
	var diags []hints.Diagnostic
	for _, cs := range info.HintSections() {
		sec, err := hints.DecodeSection(cs.Name, cs.Data)
		if err != nil {
			return loadedMsg{err: err}
		}
		diags = append(diags, hints.ValidateIn(sec, info)...)
		for _, fh := range sec.Funcs {
			f := byFunc[fh.FuncIndex]
			if f == nil {
				f = &funcHints{
					index:   fh.FuncIndex,
					entries: make(map[string][]hints.Entry),
				}
				f.bodySize, f.sized = info.FuncBodySize(fh.FuncIndex)
				byFunc[fh.FuncIndex] = f
			}
			f.entries[sec.Name] = append(f.entries[sec.Name], fh.Entries...)
		}
	}

	funcs := make([]funcHints, 0, len(byFunc))
	for _, f := range byFunc {
		if freq := f.entries[hints.SectionInstrFreq]; len(freq) > 0 && f.sized {
			f.spans = hints.FreqSpans(freq, info.ControlOffsets(f.index), f.bodySize)
		}
		funcs = append(funcs, *f)
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].index < funcs[j].index })
	return loadedMsg{funcs: funcs, diags: diags}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectFunc && len(m.funcs) > 0 {
				m.viewport.SetContent(m.detailContent())
				m.viewport.GotoTop()
				m.state = stateShowDetail
			}

		case "esc":
			if m.state == stateShowDetail {
				m.state = stateSelectFunc
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case loadedMsg:
		m.err = msg.err
		m.funcs = msg.funcs
		m.diags = msg.diags
	}

	if m.state == stateShowDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("hints: " + m.filename))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q: quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("No hint sections in this module.\n\n")
			b.WriteString(helpStyle.Render("q: quit"))
			return b.String()
		}
		for i, f := range m.funcs {
			line := fmt.Sprintf("func %d  (%d hint entries)", f.index, countEntries(f))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(funcStyle.Render("  " + line))
			}
			b.WriteByte('\n')
		}
		if n := len(m.diags); n > 0 {
			b.WriteString(errorStyle.Render(fmt.Sprintf("\n%d diagnostics (enter to inspect)", n)))
			b.WriteByte('\n')
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down: select | enter: details | q: quit"))

	case stateShowDetail:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down: scroll | esc: back | q: quit"))
	}
	return b.String()
}

// detailContent renders the selected function: its directives per
// section, validation diagnostics, and the frequency-context walk.
func (m *browserModel) detailContent() string {
	f := m.funcs[m.selected]
	var b strings.Builder
	fmt.Fprintf(&b, "func %d", f.index)
	if f.sized {
		fmt.Fprintf(&b, "  body %d bytes", f.bodySize)
	}
	b.WriteString("\n\n")

	names := make([]string, 0, len(f.entries))
	for name := range f.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(funcStyle.Render(name))
		b.WriteByte('\n')
		for _, e := range f.entries[name] {
			fmt.Fprintf(&b, "  @%d  %s\n", e.Offset, text.PrintPayload(e.Payload))
		}
	}

	var own []hints.Diagnostic
	for _, d := range m.diags {
		if d.FuncIndex == f.index {
			own = append(own, d)
		}
	}
	if len(own) > 0 {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("diagnostics"))
		b.WriteByte('\n')
		for _, d := range own {
			fmt.Fprintf(&b, "  %s\n", d.String())
		}
	}

	if len(f.spans) > 0 {
		b.WriteByte('\n')
		b.WriteString(spanStyle.Render("frequency context"))
		b.WriteByte('\n')
		for _, s := range f.spans {
			state := "unknown (after control transfer)"
			if s.Known {
				state = freqLabel(s.Log2)
			}
			fmt.Fprintf(&b, "  [%5d, %5d)  %s\n", s.Start, s.End, state)
		}
	}
	return b.String()
}

func freqLabel(l uint8) string {
	switch l {
	case hints.FreqNever:
		return "never"
	case hints.FreqAlways:
		return "always"
	}
	return fmt.Sprintf("log2 %d (ratio %g)", l, hints.Ratio(l))
}

func countEntries(f funcHints) int {
	n := 0
	for _, es := range f.entries {
		n += len(es)
	}
	return n
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newBrowserModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
