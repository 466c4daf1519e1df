package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/aishop-labs/mantle-agent/internal/actions"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("35"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// chatMessage represents a message in the chat history
type chatMessage struct {
	role    string // "user", "agent", "error", "system"
	content string
	time    time.Time
}

// model represents the REPL state
type model struct {
	app      *app
	userID   string
	agentID  string
	roomID   string
	textarea textarea.Model
	viewport viewport.Model
	messages []chatMessage
	spinner  spinner.Model
	loading  bool
	width    int
	height   int
	ready    bool
	quitting bool
}

// replyMsg is sent when the runtime finishes processing a message
type replyMsg struct {
	reply *actions.Reply
}

func initialModel(a *app) model {
	ta := textarea.New()
	ta.Placeholder = "crear wallet / ver mi balance / enviar 0.5 MNT a 0x..."
	ta.Focus()
	ta.CharLimit = 500
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		app:      a,
		userID:   viper.GetString("user"),
		agentID:  "aishop-agent",
		roomID:   uuid.NewString(),
		textarea: ta,
		spinner:  sp,
		messages: []chatMessage{
			{
				role: "system",
				content: "Welcome! I can create your wallet, check balances, and send MNT or AISHOP.\n" +
					"Type in Spanish or English. Ctrl+C to quit.",
				time: time.Now(),
			},
		},
	}
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages and updates state
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: input, time: time.Now()})
			m.textarea.Reset()
			m.loading = true
			m.refreshViewport()

			return m, tea.Batch(m.processCmd(input), m.spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 6

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refreshViewport()

	case replyMsg:
		m.loading = false
		role := "agent"
		m.messages = append(m.messages, chatMessage{role: role, content: msg.reply.Text, time: time.Now()})
		m.refreshViewport()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// processCmd runs the message through the action runtime off the UI loop.
func (m model) processCmd(input string) tea.Cmd {
	return func() tea.Msg {
		reply := m.app.runtime.Process(context.Background(), &actions.Request{
			UserID:  m.userID,
			AgentID: m.agentID,
			RoomID:  m.roomID,
			Text:    input,
		})
		return replyMsg{reply: reply}
	}
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			b.WriteString(userStyle.Render("you: ") + msg.content)
		case "agent":
			b.WriteString(agentStyle.Render("agent: ") + msg.content)
		case "error":
			b.WriteString(errorStyle.Render("error: ") + msg.content)
		default:
			b.WriteString(helpStyle.Render(msg.content))
		}
		b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View renders the UI
func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Starting up..."
	}

	header := titleStyle.Render("mantle-agent") + helpStyle.Render(fmt.Sprintf("  user=%s", m.userID))

	status := ""
	if m.loading {
		status = m.spinner.View() + " working..."
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, m.viewport.View(), status, m.textarea.View())
}

// RunREPL starts the interactive chat loop.
func RunREPL() error {
	a, err := newApp()
	if err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
