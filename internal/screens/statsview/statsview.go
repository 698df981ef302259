package statsview

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/stats"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/layout"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

const heatmapWeeks = 16

// Backend is the slice of the API client the stats screen needs.
type Backend interface {
	MyStats(ctx context.Context) (*api.UserStats, error)
	ActivityHeatmap(ctx context.Context) ([]api.HeatmapItem, error)
	Leaderboard(ctx context.Context) (*api.Leaderboard, error)
}

type statsDataMsg struct {
	stats       *api.UserStats
	heatmap     []api.HeatmapItem
	leaderboard *api.Leaderboard
	err         error
}

// StatsScreen shows the streak summary, activity heatmap, and leaderboard.
type StatsScreen struct {
	backend Backend
	now     func() time.Time

	stats       *api.UserStats
	grid        stats.Grid
	leaderboard *api.Leaderboard
	loaded      bool
	loadErr     string
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates the stats screen.
func New(backend Backend) *StatsScreen {
	return &StatsScreen{backend: backend, now: time.Now}
}

func (s *StatsScreen) Title() string { return "Stats" }

func (s *StatsScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var msg statsDataMsg
		var err error

		if msg.stats, err = s.backend.MyStats(ctx); err != nil {
			msg.err = err
			return msg
		}
		// Heatmap and leaderboard are additive; show what loads.
		msg.heatmap, _ = s.backend.ActivityHeatmap(ctx)
		msg.leaderboard, _ = s.backend.Leaderboard(ctx)
		return msg
	}
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		s.loaded = true
		if msg.err != nil {
			s.loadErr = msg.err.Error()
			return s, nil
		}
		s.stats = msg.stats
		s.leaderboard = msg.leaderboard
		s.grid = stats.Heatmap(msg.heatmap, heatmapWeeks, s.now())
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Stats & leaderboard") + "\n\n")

	switch {
	case !s.loaded:
		b.WriteString(theme.Hint.Render("loading..."))
	case s.loadErr != "":
		b.WriteString(theme.Incorrect.Render(s.loadErr))
	default:
		b.WriteString(s.renderSummary())
		b.WriteString("\n\n" + s.renderHeatmap())
		b.WriteString("\n\n" + s.renderLeaderboard())
	}

	card := theme.Card.Width(min(width-4, 72)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *StatsScreen) renderSummary() string {
	st := s.stats
	lines := []string{
		theme.Body.Render(stats.StreakLine(st)),
		theme.Hint.Render(fmt.Sprintf("longest streak %d · %d activities total",
			st.LongestStreak, st.ActivitiesCount)),
	}
	if s.leaderboard != nil {
		lines = append(lines,
			theme.Body.Render("Leaderboard: "+stats.Placement(s.leaderboard)))
	}
	return strings.Join(lines, "\n")
}

func (s *StatsScreen) renderHeatmap() string {
	if len(s.grid) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Last %d weeks", len(s.grid))) + "\n")

	dayLabels := []string{"Mo", "  ", "We", "  ", "Fr", "  ", "Su"}
	for d := 0; d < 7; d++ {
		b.WriteString(theme.Hint.Render(dayLabels[d]) + " ")
		for w := 0; w < len(s.grid); w++ {
			level := s.grid[w][d]
			if level < 0 {
				b.WriteString("  ")
				continue
			}
			style := lipgloss.NewStyle().Foreground(theme.HeatRamp[level])
			b.WriteString(style.Render("■ "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *StatsScreen) renderLeaderboard() string {
	if s.leaderboard == nil || len(s.leaderboard.Users) == 0 {
		return theme.Hint.Render("leaderboard unavailable")
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Top learners") + "\n")
	for _, u := range s.leaderboard.Users {
		line := fmt.Sprintf("%4s  %-24s %6d pt",
			stats.Ordinal(u.Rank), truncate(u.DisplayName, 24), u.Points)
		if u.IsCurrentUser {
			b.WriteString(theme.Selected.Render(line+"  ← you") + "\n")
		} else {
			b.WriteString(theme.Body.Render(line) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
