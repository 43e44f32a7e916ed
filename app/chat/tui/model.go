// Package tui implements the interactive chat client for the document
// analysis orchestrator: a scrollable transcript, a prompt bar, and an
// attachment list, with each submitted turn processed asynchronously so the
// interface stays responsive during model calls.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vominhhuy13101999/agent-test/agents"
	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/tools"
)

// Run starts the chat program against the orchestrator.
func Run(ctx context.Context, orch *agents.Orchestrator) error {
	if orch == nil {
		return fmt.Errorf("orchestrator is required")
	}
	program := tea.NewProgram(
		NewModel(orch),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

type entryRole string

const (
	roleUser   entryRole = "user"
	roleAgent  entryRole = "agent"
	roleSystem entryRole = "system"
)

type entry struct {
	Role    entryRole
	Text    string
	Routing *framework.RoutingDecision
	IsError bool
}

// Model implements the Bubble Tea Model interface around one chat session.
type Model struct {
	orch *agents.Orchestrator

	feed    viewport.Model
	input   textinput.Model
	spinner spinner.Model

	sessionID string
	entries   []entry
	documents []framework.Document

	width   int
	height  int
	ready   bool
	waiting bool
}

// NewModel builds the initial chat state with a fresh session id.
func NewModel(orch *agents.Orchestrator) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your documents, or /attach <file> to add one"
	input.Focus()
	input.CharLimit = agents.MaxMessageLength

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		orch:      orch,
		input:     input,
		spinner:   sp,
		sessionID: fmt.Sprintf("chat-%d", time.Now().UnixNano()),
	}
}

// Init satisfies tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

type outcomeMsg struct {
	outcome framework.Outcome
}

// Update handles key presses, window sizing, and finished turns.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := msg.Height - 3
		if feedHeight < 1 {
			feedHeight = 1
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width
			m.feed.Height = feedHeight
		}
		m.refreshFeed()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.entries = nil
			m.refreshFeed()
			return m, nil
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			return m.submit()
		}

	case outcomeMsg:
		m.waiting = false
		m.appendOutcome(msg.outcome)
		m.refreshFeed()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var inputCmd, feedCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.feed, feedCmd = m.feed.Update(msg)
	return m, tea.Batch(inputCmd, feedCmd)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	m.entries = append(m.entries, entry{Role: roleUser, Text: text})
	m.waiting = true
	m.refreshFeed()

	orch := m.orch
	req := agents.Request{
		Message:   text,
		SessionID: m.sessionID,
		Documents: append([]framework.Document(nil), m.documents...),
	}
	turn := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return outcomeMsg{outcome: orch.Process(ctx, req)}
	}
	return m, tea.Batch(m.spinner.Tick, turn)
}

// runCommand handles the slash commands: /attach, /detach, /docs, /new, /help.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/attach":
		if len(fields) < 2 {
			m.systemEntry("Usage: /attach <file> [file...]", true)
			break
		}
		docs := tools.BuildCorpus(fields[1:])
		attached := 0
		for _, doc := range docs {
			if tools.IsExtractionError(doc.Text) {
				m.systemEntry(fmt.Sprintf("Could not read %s", doc.Name), true)
				continue
			}
			m.documents = append(m.documents, doc)
			attached++
		}
		if attached > 0 {
			m.systemEntry(fmt.Sprintf("Attached %d document(s), %d total", attached, len(m.documents)), false)
		}
	case "/detach":
		m.documents = nil
		m.systemEntry("All documents detached", false)
	case "/docs":
		if len(m.documents) == 0 {
			m.systemEntry("No documents attached", false)
			break
		}
		names := make([]string, len(m.documents))
		for i, doc := range m.documents {
			names[i] = doc.Name
		}
		m.systemEntry("Attached: "+strings.Join(names, ", "), false)
	case "/new":
		m.sessionID = fmt.Sprintf("chat-%d", time.Now().UnixNano())
		m.entries = nil
		m.documents = nil
		m.systemEntry("Started a new session", false)
	case "/help":
		m.systemEntry("Commands: /attach <file>, /detach, /docs, /new, /help. Esc or Ctrl+C to quit.", false)
	default:
		m.systemEntry(fmt.Sprintf("Unknown command %s (try /help)", fields[0]), true)
	}
	m.refreshFeed()
	return m, nil
}

func (m *Model) systemEntry(text string, isError bool) {
	m.entries = append(m.entries, entry{Role: roleSystem, Text: text, IsError: isError})
}

func (m *Model) appendOutcome(outcome framework.Outcome) {
	routing := outcome.Routing
	m.entries = append(m.entries, entry{
		Role:    roleAgent,
		Text:    outcome.Response,
		Routing: &routing,
		IsError: outcome.Status == framework.StatusError,
	})
}

func (m *Model) refreshFeed() {
	if !m.ready {
		return
	}
	m.feed.SetContent(m.renderEntries())
	m.feed.GotoBottom()
}
