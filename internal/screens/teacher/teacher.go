package teacher

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/components"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/layout"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

// Backend is the slice of the API client the chat needs.
type Backend interface {
	TeacherMessages(ctx context.Context) ([]api.TeacherMessage, error)
	SendTeacherMessage(ctx context.Context, message string) (*api.TeacherReply, error)
}

type historyLoadedMsg struct {
	messages []api.TeacherMessage
	err      error
}

type replyMsg struct {
	reply *api.TeacherReply
	err   error
}

// ChatScreen is a question-and-answer conversation with the teacher.
type ChatScreen struct {
	backend Backend

	messages []api.TeacherMessage
	input    components.TextArea
	loading  bool
	sending  bool
	errMsg   string
	scroll   int
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates the teacher chat screen.
func New(backend Backend) *ChatScreen {
	c := &ChatScreen{
		backend: backend,
		loading: true,
		input:   components.NewTextArea("", "Frag deinen Lehrer...", 60, 3),
	}
	return c
}

func (c *ChatScreen) Title() string { return "Teacher" }

func (c *ChatScreen) Init() tea.Cmd {
	load := func() tea.Msg {
		msgs, err := c.backend.TeacherMessages(context.Background())
		return historyLoadedMsg{messages: msgs, err: err}
	}
	return tea.Batch(load, c.input.Focus())
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Send"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		c.loading = false
		if msg.err != nil {
			c.errMsg = msg.err.Error()
			return c, nil
		}
		c.messages = msg.messages
		return c, nil

	case replyMsg:
		c.sending = false
		if msg.err != nil {
			c.errMsg = "not sent: " + msg.err.Error()
			return c, nil
		}
		c.messages = append(c.messages, api.TeacherMessage{
			Role:    "assistant",
			Content: msg.reply.Message,
		})
		c.scroll = 0
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return c, func() tea.Msg { return router.PopScreenMsg{} }
		case "ctrl+s":
			return c.send()
		case "up":
			c.scroll++
			return c, nil
		case "down":
			if c.scroll > 0 {
				c.scroll--
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) send() (screen.Screen, tea.Cmd) {
	text := strings.TrimSpace(c.input.Value())
	if text == "" || c.sending {
		return c, nil
	}
	c.sending = true
	c.errMsg = ""
	c.messages = append(c.messages, api.TeacherMessage{Role: "user", Content: text})
	c.input.SetValue("")
	c.scroll = 0

	backend := c.backend
	return c, func() tea.Msg {
		reply, err := backend.SendTeacherMessage(context.Background(), text)
		return replyMsg{reply: reply, err: err}
	}
}

func (c *ChatScreen) View(width, height int) string {
	innerWidth := min(width-8, 72)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Teacher chat") + "\n\n")

	switch {
	case c.loading:
		b.WriteString(theme.Hint.Render("loading conversation...") + "\n")
	case len(c.messages) == 0:
		b.WriteString(theme.Hint.Render("No messages yet. Ask anything, auf Deutsch oder Englisch.") + "\n")
	default:
		b.WriteString(c.renderMessages(innerWidth, height-14))
	}

	if c.sending {
		b.WriteString("\n" + theme.Hint.Render("the teacher is typing..."))
	}
	if c.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render(c.errMsg))
	}

	b.WriteString("\n\n" + c.input.View())

	card := theme.Card.Width(min(width-4, 80)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// renderMessages shows the most recent window of the conversation,
// shifted up by the scroll offset.
func (c *ChatScreen) renderMessages(width, maxLines int) string {
	if maxLines < 4 {
		maxLines = 4
	}

	wrap := lipgloss.NewStyle().Width(width - 4)
	var lines []string
	for _, m := range c.messages {
		prefix := theme.Body.Bold(true).Foreground(theme.Secondary).Render("Lehrer")
		if m.Role == "user" {
			prefix = theme.Body.Bold(true).Foreground(theme.Primary).Render("Du")
		}
		body := wrap.Foreground(theme.Text).Render(m.Content)
		lines = append(lines, prefix)
		lines = append(lines, strings.Split(body, "\n")...)
		lines = append(lines, "")
	}

	end := len(lines) - c.scroll
	if end > len(lines) {
		end = len(lines)
	}
	if end < 0 {
		end = 0
	}
	start := end - maxLines
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:end], "\n")
}
