// Package tui provides the terminal chat front-end.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

// ChatPort is the TUI-facing subset of the chat usecase.
type ChatPort interface {
	Chat(ctx context.Context, req *entities.ChatRequest) (*entities.ChatResponse, error)
}

// chatResultMsg carries one completed chat turn back into the update loop.
type chatResultMsg struct {
	query string
	resp  *entities.ChatResponse
	err   error
}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	chat       ChatPort
	input      textinput.Model
	viewport   viewport.Model
	history    []entities.ChatMessage
	transcript []string
	status     string
	waiting    bool
	ready      bool
}

// New creates a new TUI model instance. banner is shown as the initial
// status line (e.g. what was ingested at startup).
func New(chat ChatPort, banner string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	if banner == "" {
		banner = "Ready."
	}
	return Model{chat: chat, input: ti, viewport: vp, status: banner}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case chatResultMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		}
		m.history = append(m.history,
			entities.ChatMessage{Role: "user", Content: msg.query},
			entities.ChatMessage{Role: "assistant", Content: msg.resp.Answer},
		)
		m.transcript = append(m.transcript,
			userStyle.Render("you: ")+msg.query,
			assistantStyle.Render("docchat: ")+msg.resp.Answer+renderSources(msg.resp.Sources),
		)
		m.status = "Ready."
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.waiting = true
				m.status = "Thinking..."
				m.input.SetValue("")
				history := make([]entities.ChatMessage, len(m.history))
				copy(history, m.history)
				chat := m.chat
				return m, func() tea.Msg {
					resp, err := chat.Chat(context.Background(), &entities.ChatRequest{
						Query:   q,
						History: history,
					})
					return chatResultMsg{query: q, resp: resp, err: err}
				}
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docchat")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No messages yet. Ask something about your documents."
	}
	return strings.Join(m.transcript, "\n\n")
}

// renderSources appends a citation line naming each distinct source, or an
// explicit note when the answer had no grounding.
func renderSources(chunks []entities.Chunk) string {
	if len(chunks) == 0 {
		return "\n" + sourceStyle.Render("(no matching documents)")
	}
	seen := make(map[string]struct{})
	var names []string
	for _, c := range chunks {
		if _, ok := seen[c.SourceName]; ok {
			continue
		}
		seen[c.SourceName] = struct{}{}
		names = append(names, c.SourceName)
	}
	return "\n" + sourceStyle.Render(fmt.Sprintf("Sources: %s", strings.Join(names, ", ")))
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
