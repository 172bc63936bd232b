package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginLeft(1)

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	intentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginLeft(1)
)

type keyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "ask"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
	Time     string `json:"time"`
}

type answerMsg struct {
	question string
	answer   chatResponse
	err      error
}

type model struct {
	serverURL string
	client    *http.Client
	input     textinput.Model
	viewport  viewport.Model
	history   []string
	waiting   bool
	width     int
	height    int
	ready     bool
}

func initialModel(serverURL string) model {
	ti := textinput.New()
	ti.Placeholder = "What assets are in Plant A?"
	ti.CharLimit = 500
	ti.Width = 70
	ti.Focus()

	return model{
		serverURL: serverURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		input:     ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		body, err := json.Marshal(chatRequest{Message: question})
		if err != nil {
			return answerMsg{question: question, err: err}
		}

		resp, err := m.client.Post(m.serverURL+"/chat", "application/json", bytes.NewReader(body))
		if err != nil {
			return answerMsg{question: question, err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return answerMsg{question: question, err: fmt.Errorf("server returned %s", resp.Status)}
		}

		var answer chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
			return answerMsg{question: question, err: err}
		}
		return answerMsg{question: question, answer: answer}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(strings.Join(m.history, "\n"))

	case answerMsg:
		m.waiting = false
		entry := questionStyle.Render("You: "+msg.question) + "\n"
		if msg.err != nil {
			entry += errorStyle.Render("Error: "+msg.err.Error()) + "\n"
		} else {
			entry += answerStyle.Render(msg.answer.Response)
			entry += intentStyle.Render(fmt.Sprintf("\n[intent: %s, %s]", msg.answer.Intent, msg.answer.Time)) + "\n"
		}
		m.history = append(m.history, entry)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				break
			}
			m.waiting = true
			m.input.Reset()
			return m, m.askCmd(question)
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("OpsGraph Chat"))
	s.WriteString("\n\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n\n")
	if m.waiting {
		s.WriteString(helpStyle.Render("Thinking..."))
	} else {
		s.WriteString(m.input.View())
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter: ask • esc: quit"))
	return s.String()
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "OpsGraph server URL")
	flag.Parse()

	p := tea.NewProgram(initialModel(strings.TrimRight(*serverURL, "/")), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
