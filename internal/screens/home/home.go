package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/stats"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/components"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

// Backend is the slice of the API client the dashboard needs.
type Backend interface {
	MyStats(ctx context.Context) (*api.UserStats, error)
	TodayActivities(ctx context.Context) (*api.ActivityCompletion, error)
	DailySituation(ctx context.Context) (string, error)
}

// Factories build the screens reachable from the menu. Keeping them as
// functions defers dependency wiring to the app root.
type Factories struct {
	Lesson  func(historyMode bool) screen.Screen
	Teacher func() screen.Screen
	Stats   func() screen.Screen
}

type dashboardMsg struct {
	stats     *api.UserStats
	today     *api.ActivityCompletion
	situation string
	err       error
}

// LogoutMsg asks the app root to drop the session and return to login.
type LogoutMsg struct{}

// HomeScreen is the dashboard: daily status plus navigation.
type HomeScreen struct {
	backend   Backend
	menu      components.Menu
	userEmail string

	stats     *api.UserStats
	today     *api.ActivityCompletion
	situation string
	loadErr   string
	loaded    bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(backend Backend, userEmail string, f Factories) *HomeScreen {
	h := &HomeScreen{backend: backend, userEmail: userEmail}

	items := []components.MenuItem{
		{Label: "TODAY'S LESSON", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: f.Lesson(false)}
			}
		}},
		{Label: "LESSON HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: f.Lesson(true)}
			}
		}},
		{Label: "TEACHER CHAT", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: f.Teacher()}
			}
		}},
		{Label: "STATS & LEADERBOARD", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: f.Stats()}
			}
		}},
		{Label: "LOG OUT", Action: func() tea.Cmd {
			return func() tea.Msg { return LogoutMsg{} }
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Title() string { return "Home" }

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDashboard()
}

func (h *HomeScreen) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var msg dashboardMsg
		var err error

		if msg.stats, err = h.backend.MyStats(ctx); err != nil {
			msg.err = err
			return msg
		}
		// Secondary data is decoration; ignore individual failures.
		msg.today, _ = h.backend.TodayActivities(ctx)
		msg.situation, _ = h.backend.DailySituation(ctx)
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		h.loaded = true
		if msg.err != nil {
			h.loadErr = msg.err.Error()
			return h, nil
		}
		h.stats = msg.stats
		h.today = msg.today
		h.situation = msg.situation
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// Stats exposes the loaded stats for the app header.
func (h *HomeScreen) Stats() *api.UserStats { return h.stats }

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render("Guten Tag!"))
	if h.userEmail != "" {
		sections = append(sections, theme.Subtitle.Render(h.userEmail))
	}
	sections = append(sections, "")

	switch {
	case !h.loaded:
		sections = append(sections, theme.Hint.Render("loading your day..."))
	case h.loadErr != "":
		sections = append(sections, theme.Incorrect.Render(h.loadErr))
	default:
		if line := stats.StreakLine(h.stats); line != "" {
			sections = append(sections, theme.Body.Render(line))
		}
		if h.today != nil {
			sections = append(sections, renderActivityBadges(h.today))
		}
		if h.situation != "" {
			sections = append(sections, "",
				theme.Hint.Render("Today's situation: "+h.situation))
		}
	}

	sections = append(sections, "", h.menu.View())

	content := strings.Join(sections, "\n")
	card := theme.Card.Width(min(width-4, 64)).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func renderActivityBadges(today *api.ActivityCompletion) string {
	badge := func(label string, done bool) string {
		if done {
			return theme.ReadBadge.Render("✓ " + label)
		}
		return theme.UnreadBadge.Render("○ " + label)
	}
	return badge("Lesson", today.LessonCompleted) + "   " +
		badge("Roleplay", today.RoleplayCompleted) + "   " +
		badge("Writing", today.WritingCompleted)
}
