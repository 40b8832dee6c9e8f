// Package chatui is the terminal Chat Surface. It renders a session's turns
// and captures one line of input per turn; all decisions stay in the
// orchestrator.
package chatui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kalambet/hireagent/internal/session"
	"github.com/kalambet/hireagent/internal/transcript"
)

// Conversation is what the chat surface needs from the orchestrator.
type Conversation interface {
	Session(id string) (session.View, error)
	Handle(ctx context.Context, id, input string) (session.Reply, error)
}

type replyMsg struct {
	reply session.Reply
	err   error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	agentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3C9FF0"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
)

// Model is the bubbletea model for one chat session.
type Model struct {
	ctx       context.Context
	conv      Conversation
	sessionID string
	brief     string

	turns   []transcript.Turn
	pending string // input awaiting a reply
	status  string
	err     error

	input    textinput.Model
	viewport viewport.Model
	width    int
	ready    bool
}

// New creates a chat model bound to sessionID. A non-empty brief is sent as
// the first message when the program starts.
func New(ctx context.Context, conv Conversation, sessionID, brief string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Tell us your hiring requirement..."
	ti.CharLimit = 2000
	ti.Prompt = "> "
	ti.Focus()

	return &Model{
		ctx:       ctx,
		conv:      conv,
		sessionID: sessionID,
		brief:     strings.TrimSpace(brief),
		input:     ti,
		viewport:  viewport.New(80, 20),
	}
}

func (m *Model) Init() tea.Cmd {
	if m.brief != "" {
		return tea.Batch(textinput.Blink, m.submit(m.brief))
	}
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-5)
		m.input.Width = max(10, msg.Width-4)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.pending != "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.submit(text)
		}

	case replyMsg:
		m.pending = ""
		m.err = msg.err
		m.status = ""
		if msg.err == nil {
			if msg.reply.Degraded {
				m.status = msg.reply.Text
			}
			if msg.reply.Exported != "" {
				m.status = "Conversation saved to " + msg.reply.Exported
			}
		}
		if v, err := m.conv.Session(m.sessionID); err == nil {
			m.turns = v.Turns
		}
		m.refresh()
		return m, nil
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

func (m *Model) submit(text string) tea.Cmd {
	m.pending = text
	m.status = "Thinking..."
	m.refresh()
	ctx, conv, id := m.ctx, m.conv, m.sessionID
	return func() tea.Msg {
		reply, err := conv.Handle(ctx, id, text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTurns())
	m.viewport.GotoBottom()
}

func (m *Model) renderTurns() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(max(20, width-2))

	var sb strings.Builder
	for _, t := range m.turns {
		sb.WriteString(renderTurn(body, t))
	}
	if m.pending != "" {
		sb.WriteString(renderTurn(body, transcript.Turn{Role: transcript.RoleUser, Text: m.pending}))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderTurn(body lipgloss.Style, t transcript.Turn) string {
	label := agentStyle.Render(t.Role.Label() + ":")
	if t.Role == transcript.RoleUser {
		label = userStyle.Render(t.Role.Label() + ":")
	}
	return label + "\n" + body.Render(t.Text) + "\n\n"
}

func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Smart Hiring Agent"))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render("error: " + m.err.Error()))
	case m.status != "":
		sb.WriteString(statusStyle.Render(m.status))
	default:
		sb.WriteString(statusStyle.Render("enter to send, esc to quit"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	return sb.String()
}

// Turns returns the turns currently displayed.
func (m *Model) Turns() []transcript.Turn {
	return m.turns
}
