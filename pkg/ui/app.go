package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/echomind-ai/echomind/pkg/turn"
)

const gap = "\n\n"

const memoryPanelWidth = 36

type turnFinishedMsg struct {
	err error
}

type refreshMsg struct{}

type model struct {
	viewport     viewport.Model
	textarea     textarea.Model
	orchestrator *turn.Orchestrator

	userStyle      lipgloss.Style
	assistantStyle lipgloss.Style
	errorStyle     lipgloss.Style
	panelStyle     lipgloss.Style
	newStyle       lipgloss.Style
	activeStyle    lipgloss.Style
	statusStyle    lipgloss.Style

	width   int
	running bool
	err     error
}

func New(orchestrator *turn.Orchestrator) tea.Model {
	ta := textarea.New()
	ta.Placeholder = "Say something to EchoMind..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 500

	ta.SetWidth(80)
	ta.SetHeight(3)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent(`Welcome to EchoMind!
Type an utterance and press Enter to run a turn.
Ctrl+T toggles thinking mode, Ctrl+L clears all memories.
Press Ctrl+C or Esc to quit.`)

	return model{
		textarea:       ta,
		viewport:       vp,
		orchestrator:   orchestrator,
		userStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		assistantStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		errorStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		panelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(memoryPanelWidth),
		newStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		activeStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		statusStyle: lipgloss.NewStyle().Faint(true),
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		chatWidth := msg.Width - memoryPanelWidth - 2
		if chatWidth < 20 {
			chatWidth = 20
		}
		m.viewport.Width = chatWidth
		m.textarea.SetWidth(msg.Width)
		m.viewport.Height = msg.Height - m.textarea.Height() - lipgloss.Height(gap) - 2
		m.refreshChat()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlT:
			m.orchestrator.ToggleThinking()
		case tea.KeyCtrlL:
			m.err = m.orchestrator.ClearMemories()
		case tea.KeyEnter:
			utterance := strings.TrimSpace(m.textarea.Value())
			if utterance != "" && !m.running {
				m.running = true
				m.err = nil
				m.textarea.Reset()
				return m, tea.Batch(tiCmd, vpCmd, m.runTurn(utterance), tick())
			}
		}

	case turnFinishedMsg:
		m.running = false
		if msg.err != nil && !errors.Is(msg.err, turn.ErrTurnInFlight) {
			m.err = msg.err
		}
		m.refreshChat()

	case refreshMsg:
		m.refreshChat()
		if m.running {
			return m, tea.Batch(tiCmd, vpCmd, tick())
		}
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *model) runTurn(utterance string) tea.Cmd {
	return func() tea.Msg {
		return turnFinishedMsg{err: m.orchestrator.ProcessTurn(context.Background(), utterance)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *model) refreshChat() {
	var lines []string

	for _, msg := range m.orchestrator.Transcript() {
		switch msg.Role {
		case "user":
			lines = append(lines, m.userStyle.Render("You: ")+msg.Content)
		default:
			line := m.assistantStyle.Render("EchoMind: ") + msg.Content
			if msg.Reasoning != "" {
				line += "\n" + m.statusStyle.Render("  ↳ "+msg.Reasoning)
			}
			lines = append(lines, line)
		}
	}

	if len(lines) > 0 {
		m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(strings.Join(lines, "\n")))
		m.viewport.GotoBottom()
	}
}

func (m model) View() string {
	chat := fmt.Sprintf("%s%s%s", m.viewport.View(), gap, m.textarea.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, chat, m.memoryPanel())

	status := m.statusLine()
	if m.err != nil {
		status += "  " + m.errorStyle.Render("Error: "+m.err.Error())
	}

	return body + "\n" + status
}

/*
memoryPanel renders the mirror most recent first, flagging the freshly
persisted memory and the ones grounding the current reply.
*/
func (m model) memoryPanel() string {
	memories := m.orchestrator.Memories()
	newID := m.orchestrator.NewMemoryID()

	active := map[string]bool{}
	for _, id := range m.orchestrator.ActiveMemoryIDs() {
		active[id] = true
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Memories (%d)\n", len(memories)))

	if len(memories) == 0 {
		sb.WriteString(m.statusStyle.Render("nothing stored yet"))
	}

	for _, mem := range memories {
		line := fmt.Sprintf("• [%s] %s", mem.Type, mem.Content)

		switch {
		case mem.ID == newID:
			line = m.newStyle.Render("★ NEW ") + line
		case active[mem.ID]:
			line = m.activeStyle.Render("● ") + line
		}

		sb.WriteString(line + "\n")
	}

	return m.panelStyle.Render(sb.String())
}

func (m model) statusLine() string {
	snap := m.orchestrator.State()

	status := fmt.Sprintf("phase: %s", snap.Phase())
	if snap.UseThinking {
		status += "  thinking: on"
	}

	return m.statusStyle.Render(status)
}
