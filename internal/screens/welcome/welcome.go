package welcome

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/auth"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/components"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/layout"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

type mode int

const (
	modeLogin mode = iota
	modeSignup
	modeVerify
)

type authDoneMsg struct {
	user *api.User
	err  error
}

type signupDoneMsg struct {
	err error
}

type resendDoneMsg struct {
	err error
}

// WelcomeScreen is the login / signup entry point. After a successful
// login it replaces itself with the home screen so the back stack never
// returns here.
type WelcomeScreen struct {
	auth        *auth.Service
	homeFactory func() screen.Screen

	mode    mode
	inputs  []components.TextInput
	focus   int
	busy    bool
	errMsg  string
	infoMsg string
	email   string // carried into verify mode for resend
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates the welcome screen. prefillEmail fills the login form when
// a previous session left a known address behind.
func New(authSvc *auth.Service, prefillEmail string, homeFactory func() screen.Screen) *WelcomeScreen {
	w := &WelcomeScreen{
		auth:        authSvc,
		homeFactory: homeFactory,
	}
	w.setMode(modeLogin)
	if prefillEmail != "" {
		w.inputs[0].Model.SetValue(prefillEmail)
	}
	return w
}

func (w *WelcomeScreen) setMode(m mode) {
	w.mode = m
	w.focus = 0
	w.errMsg = ""
	switch m {
	case modeLogin:
		w.inputs = []components.TextInput{
			components.NewTextInput("Email", "you@example.com", false),
			components.NewTextInput("Password", "", true),
		}
	case modeSignup:
		w.inputs = []components.TextInput{
			components.NewTextInput("Name", "Anna Schmidt", false),
			components.NewTextInput("Email", "you@example.com", false),
			components.NewTextInput("Password", "min. 8 characters", true),
		}
	case modeVerify:
		w.inputs = []components.TextInput{
			components.NewTextInput("Verification code", "paste the code from your email", false),
		}
	}
	w.inputs[0].Focus()
}

func (w *WelcomeScreen) Title() string { return "Sign in" }

func (w *WelcomeScreen) Init() tea.Cmd {
	return nil
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
	}
	switch w.mode {
	case modeLogin:
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Create account"})
	case modeSignup:
		hints = append(hints, layout.KeyHint{Key: "Ctrl+N", Description: "Back to login"})
	case modeVerify:
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "Resend email"})
	}
	return hints
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		w.busy = false
		if msg.err != nil {
			w.errMsg = msg.err.Error()
			return w, nil
		}
		home := w.homeFactory()
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: home} }

	case signupDoneMsg:
		w.busy = false
		if msg.err != nil && !errors.Is(msg.err, auth.ErrNotVerified) {
			w.errMsg = msg.err.Error()
			return w, nil
		}
		w.setMode(modeVerify)
		w.infoMsg = "Account created. Check your inbox for the verification code."
		return w, nil

	case resendDoneMsg:
		w.busy = false
		if msg.err != nil {
			w.errMsg = msg.err.Error()
		} else {
			w.infoMsg = "Verification email sent again."
		}
		return w, nil

	case tea.KeyMsg:
		return w.handleKey(msg)
	}

	return w.forwardToFocused(msg)
}

func (w *WelcomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if w.busy {
		return w, nil
	}

	switch msg.String() {
	case "tab", "down":
		w.moveFocus(1)
		return w, nil
	case "shift+tab", "up":
		w.moveFocus(-1)
		return w, nil
	case "enter":
		if w.focus < len(w.inputs)-1 {
			w.moveFocus(1)
			return w, nil
		}
		return w.submit()
	case "ctrl+n":
		if w.mode == modeLogin {
			w.setMode(modeSignup)
		} else {
			w.setMode(modeLogin)
		}
		return w, nil
	case "ctrl+r":
		if w.mode == modeVerify && w.email != "" {
			w.busy = true
			email := w.email
			return w, func() tea.Msg {
				return resendDoneMsg{err: w.auth.ResendVerification(context.Background(), email)}
			}
		}
		return w, nil
	}

	return w.forwardToFocused(msg)
}

func (w *WelcomeScreen) forwardToFocused(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	w.inputs[w.focus], cmd = w.inputs[w.focus].Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) moveFocus(delta int) {
	w.inputs[w.focus].Blur()
	w.focus = (w.focus + delta + len(w.inputs)) % len(w.inputs)
	w.inputs[w.focus].Focus()
}

func (w *WelcomeScreen) submit() (screen.Screen, tea.Cmd) {
	w.errMsg = ""
	w.infoMsg = ""
	w.busy = true

	switch w.mode {
	case modeLogin:
		in := auth.LoginInput{Email: w.inputs[0].Value(), Password: w.inputs[1].Value()}
		w.email = in.Email
		return w, func() tea.Msg {
			user, err := w.auth.Login(context.Background(), in)
			return authDoneMsg{user: user, err: err}
		}

	case modeSignup:
		in := auth.SignupInput{
			FullName: w.inputs[0].Value(),
			Email:    w.inputs[1].Value(),
			Password: w.inputs[2].Value(),
		}
		w.email = in.Email
		return w, func() tea.Msg {
			return signupDoneMsg{err: w.auth.Signup(context.Background(), in)}
		}

	case modeVerify:
		token := strings.TrimSpace(w.inputs[0].Value())
		if token == "" {
			w.busy = false
			w.errMsg = "enter the verification code"
			return w, nil
		}
		return w, func() tea.Msg {
			user, err := w.auth.Verify(context.Background(), token)
			return authDoneMsg{user: user, err: err}
		}
	}

	w.busy = false
	return w, nil
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Render("Jonas"))
	sections = append(sections, theme.Subtitle.Render("Daily German practice, one lesson at a time"))
	sections = append(sections, "")

	switch w.mode {
	case modeLogin:
		sections = append(sections, theme.Body.Bold(true).Render("Log in"))
	case modeSignup:
		sections = append(sections, theme.Body.Bold(true).Render("Create account"))
	case modeVerify:
		sections = append(sections, theme.Body.Bold(true).Render("Verify your email"))
	}
	sections = append(sections, "")

	for _, in := range w.inputs {
		sections = append(sections, in.View(), "")
	}

	if w.busy {
		sections = append(sections, theme.Hint.Render("working..."))
	}
	if w.errMsg != "" {
		sections = append(sections, theme.Incorrect.Render(w.errMsg))
	}
	if w.infoMsg != "" {
		sections = append(sections, theme.Hint.Render(w.infoMsg))
	}

	card := theme.Card.Width(min(width-4, 56)).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
