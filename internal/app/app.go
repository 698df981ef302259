package app

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/auth"
	"github.com/Muhsiinn/Jonas-AI/internal/config"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/screens/home"
	lessonscreen "github.com/Muhsiinn/Jonas-AI/internal/screens/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/screens/statsview"
	"github.com/Muhsiinn/Jonas-AI/internal/screens/teacher"
	"github.com/Muhsiinn/Jonas-AI/internal/screens/welcome"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/layout"
)

// Options wires the app root to its services.
type Options struct {
	Config config.Config
	Logger *zap.Logger
	API    *api.Client
	Auth   *auth.Service
	Store  *store.Store

	// UserEmail is non-empty when a stored session was restored, which
	// skips the login screen.
	UserEmail string
}

// AppModel is the root Bubble Tea model. It owns the screen router, the
// window size, and the login/logout transitions.
type AppModel struct {
	opts   Options
	router *router.Router
	home   *home.HomeScreen
	width  int
	height int
}

func newAppModel(opts Options) *AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m := &AppModel{opts: opts}

	if opts.UserEmail != "" {
		m.router = router.New(m.newHome(opts.UserEmail))
	} else {
		m.router = router.New(m.newWelcome())
	}
	return m
}

func (m *AppModel) newWelcome() screen.Screen {
	return welcome.New(m.opts.Auth, "", func() screen.Screen {
		return m.newHome(m.opts.Auth.Email())
	})
}

func (m *AppModel) newHome(email string) screen.Screen {
	h := home.New(m.opts.API, email, home.Factories{
		Lesson:  m.newLesson,
		Teacher: func() screen.Screen { return teacher.New(m.opts.API) },
		Stats:   func() screen.Screen { return statsview.New(m.opts.API) },
	})
	m.home = h
	return h
}

func (m *AppModel) newLesson(historyMode bool) screen.Screen {
	deps := lessonscreen.Deps{
		Backend:          m.opts.API,
		Log:              m.opts.Logger,
		QuestionDebounce: m.opts.Config.QuestionDebounce,
		EditDebounce:     m.opts.Config.EditDebounce,
	}
	if m.opts.Store != nil {
		deps.Notes = m.opts.Store.Notes()
		deps.Journal = m.opts.Store.Journal()
	}
	return lessonscreen.New(deps, historyMode)
}

func (m *AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case home.LogoutMsg:
		auth := m.opts.Auth
		log := m.opts.Logger
		m.home = nil
		m.router = router.New(m.newWelcome())
		init := m.router.Active().Init()
		return m, tea.Batch(init, func() tea.Msg {
			if err := auth.Logout(context.Background()); err != nil {
				log.Warn("logout cleanup failed", zap.Error(err))
			}
			return nil
		})

	case tea.KeyMsg:
		// Screens own every other key, including esc.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	streak, points := 0, 0
	if m.home != nil {
		if st := m.home.Stats(); st != nil {
			streak, points = st.CurrentStreak, st.TotalPoints
		}
	}
	header := layout.RenderHeader(title, streak, points, m.width)

	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(hints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	return err
}
