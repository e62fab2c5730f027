package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/config"
	"github.com/wippyai/remote-object/host"
	"github.com/wippyai/remote-object/wire"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
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

type modelState int

const (
	stateSelectMethod modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	reg       *host.Registry
	b         *bridge.Bridge
	result    wire.Result
	overloads []bridge.Overload
	inputs    []textinput.Model
	blocked   int
	selected  int
	focusIdx  int
	state     modelState
	dropped   bool
}

type callResultMsg struct {
	result wire.Result
	ok     bool
}

type blockedMsg struct{}

func newInteractiveModel(reg *host.Registry, b *bridge.Bridge) *interactiveModel {
	return &interactiveModel{
		reg:       reg,
		b:         b,
		overloads: b.Overloads(),
		state:     stateSelectMethod,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputArgs || msg.String() == "ctrl+c" {
				_ = m.reg.Close()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectMethod && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectMethod && m.selected < len(m.overloads)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectMethod:
				if len(m.overloads) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.invoke
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.invoke

			case stateShowResult:
				m.state = stateSelectMethod
				m.dropped = false
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectMethod
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectMethod
				m.dropped = false
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.dropped = !msg.ok
		m.state = stateShowResult

	case blockedMsg:
		m.blocked++
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	o := m.overloads[m.selected]
	m.inputs = make([]textinput.Model, len(o.Params))
	for i, p := range o.Params {
		ti := textinput.New()
		ti.Placeholder = p.String()
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) invoke() tea.Msg {
	o := m.overloads[m.selected]
	args := make([]wire.Value, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = parseField(input.Value())
	}
	res, ok := m.b.InvokeMethod(context.Background(), o.Name, args)
	return callResultMsg{result: res, ok: ok}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Remote Object"))
	b.WriteString(" ")
	b.WriteString(m.b.TypeName())
	if m.blocked > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  getClass blocked x%d", m.blocked)))
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectMethod:
		if len(m.overloads) == 0 {
			b.WriteString("No methods exposed.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a method to call:\n\n")
		for i, o := range m.overloads {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + o.String()))
			} else {
				b.WriteString("  " + formatOverload(o))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		o := m.overloads[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", methodStyle.Render(o.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(o.Params[i].String()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("JSON or plain text; empty is undefined • tab next field • enter call • esc back"))

	case stateShowResult:
		o := m.overloads[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", methodStyle.Render(o.Name)))
		switch {
		case m.dropped:
			b.WriteString(errorStyle.Render("no response"))
		case m.result.Code != wire.OK:
			b.WriteString(errorStyle.Render(m.result.String()))
		default:
			b.WriteString(resultStyle.Render(m.result.String()))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatOverload(o bridge.Overload) string {
	params := make([]string, len(o.Params))
	for i, p := range o.Params {
		params[i] = typeStyle.Render(p.String())
	}
	return typeStyle.Render(o.Return.String()) + " " + methodStyle.Render(o.Name) + "(" + strings.Join(params, ", ") + ")"
}

func runInteractive(cfg *config.Config) error {
	if !isTerminal() {
		return stderrors.New("interactive mode requires a terminal")
	}

	silenceLoggers()

	reg := host.NewRegistry()
	defer reg.Close()

	var p *tea.Program
	opts := cfg.BridgeOptions()
	opts.Logger = zap.NewNop()
	opts.Auditor = bridge.AuditorFunc(func(caller string) {
		p.Send(blockedMsg{})
	})

	_, b, err := host.Expose(reg, newGreeter(), opts)
	if err != nil {
		return fmt.Errorf("expose: %w", err)
	}

	p = tea.NewProgram(newInteractiveModel(reg, b), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// silenceLoggers keeps log output off the alternate screen, which owns the
// terminal while the TUI runs.
func silenceLoggers() {
	bridge.SetLogger(zap.NewNop())
	host.SetLogger(zap.NewNop())
}
