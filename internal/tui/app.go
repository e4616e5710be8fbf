// Package tui is a terminal dashboard over a running musicd: live status,
// queue and history, plus a play prompt.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikey-austin/musicd/internal/client"
	"github.com/mikey-austin/musicd/pkg/music"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	nowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	borderStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Model is the dashboard model.
type Model struct {
	client      *client.Client
	refreshRate time.Duration

	width  int
	height int

	status music.StatusReply
	loaded bool

	input    textinput.Model
	prompt   bool
	flash    string
	lastErr  error
	errUntil time.Time

	quitting bool
}

// NewModel creates the dashboard model.
func NewModel(c *client.Client, refreshRate time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "song, artist or URL..."
	ti.CharLimit = 200
	ti.Width = 50

	if refreshRate <= 0 {
		refreshRate = time.Second
	}
	return Model{client: c, refreshRate: refreshRate, input: ti}
}

// Run starts the dashboard and blocks until the user quits.
func Run(c *client.Client, refreshRate time.Duration) error {
	program := tea.NewProgram(NewModel(c, refreshRate), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type (
	tickMsg   time.Time
	statusMsg music.StatusReply
	flashMsg  string
	errMsg    error
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status, err := m.client.Status(ctx)
		if err != nil {
			return errMsg(err)
		}
		return statusMsg(status)
	}
}

func (m Model) play(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		reply, err := m.client.Play(ctx, query)
		if err != nil {
			return errMsg(err)
		}
		if !reply.OK {
			return errMsg(fmt.Errorf("%s", reply.Error))
		}
		return flashMsg("playing " + reply.Track.Title)
	}
}

func (m Model) control(action func(context.Context) (music.OKReply, error), verb string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		reply, err := action(ctx)
		if err != nil {
			return errMsg(err)
		}
		if !reply.OK {
			return errMsg(fmt.Errorf("%s", reply.Error))
		}
		return flashMsg(verb)
	}
}

func (m Model) next() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		reply, err := m.client.Next(ctx)
		if err != nil {
			return errMsg(err)
		}
		if !reply.OK {
			return errMsg(fmt.Errorf("%s", reply.Error))
		}
		return flashMsg("skipped to " + reply.Track.Title)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), m.tick())

	case statusMsg:
		m.status = music.StatusReply(msg)
		m.loaded = true
		m.lastErr = nil
		return m, nil

	case flashMsg:
		m.flash = string(msg)
		return m, m.fetchStatus()

	case errMsg:
		m.lastErr = msg
		m.errUntil = time.Now().Add(5 * time.Second)
		return m, nil

	case tea.KeyMsg:
		if m.prompt {
			return m.updatePrompt(msg)
		}
		return m.updateControls(msg)
	}

	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = false
		m.input.Blur()
		m.input.SetValue("")
		return m, nil
	case tea.KeyEnter:
		query := strings.TrimSpace(m.input.Value())
		m.prompt = false
		m.input.Blur()
		m.input.SetValue("")
		if query == "" {
			return m, nil
		}
		m.flash = "resolving " + query + "..."
		return m, m.play(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateControls(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "/", "a":
		m.prompt = true
		m.input.Focus()
		return m, textinput.Blink
	case "p":
		return m, m.control(m.client.Pause, "paused")
	case "r":
		return m, m.control(m.client.Resume, "resumed")
	case "s":
		return m, m.control(m.client.Stop, "stopped")
	case "n":
		return m, m.next()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("musicd"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Now playing"))
	b.WriteString("\n")
	if !m.loaded {
		b.WriteString(dimStyle.Render("connecting..."))
	} else if m.status.Now != nil {
		b.WriteString(nowStyle.Render(trackLabel(*m.status.Now)))
	} else {
		b.WriteString(dimStyle.Render("nothing"))
	}
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Queue"))
	b.WriteString("\n")
	if len(m.status.Queue) == 0 {
		b.WriteString(dimStyle.Render("empty"))
		b.WriteString("\n")
	} else {
		for i, item := range m.status.Queue {
			b.WriteString(fmt.Sprintf("%2d. %s\n", i+1, trackLabel(item)))
		}
	}
	b.WriteString("\n")

	if n := len(m.status.History); n > 0 {
		b.WriteString(sectionStyle.Render("Recently played"))
		b.WriteString("\n")
		// Newest last in store order; show the tail.
		start := 0
		if n > 5 {
			start = n - 5
		}
		for _, item := range m.status.History[start:] {
			b.WriteString(dimStyle.Render(trackLabel(item)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.prompt {
		b.WriteString(borderStyle.Render("Play: " + m.input.View()))
		b.WriteString("\n")
	}

	if m.lastErr != nil && time.Now().Before(m.errUntil) {
		b.WriteString(errorStyle.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	} else if m.flash != "" {
		b.WriteString(dimStyle.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("/ play  p pause  r resume  n next  s stop  q quit"))
	return b.String()
}

func trackLabel(item music.Item) string {
	label := item.Title
	if label == "" {
		label = item.WebpageURL
	}
	if item.Artist != "" {
		label = item.Artist + " - " + label
	}
	if length := item.DisplayDuration(); length != "" {
		label = fmt.Sprintf("%s (%s)", label, length)
	}
	return label
}
