package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

// ErrNotVerified is returned when a signup succeeded but the account
// still needs email verification before it can log in.
var ErrNotVerified = errors.New("email not verified")

// Token is the live bearer token shared with the API client. It
// implements api.TokenSource and is safe for concurrent reads from
// request goroutines.
type Token struct {
	mu    sync.RWMutex
	value string
}

// Token returns the current bearer token ("" when logged out).
func (t *Token) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

func (t *Token) set(v string) {
	t.mu.Lock()
	t.value = v
	t.mu.Unlock()
}

// LoginInput is the validated login form.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// SignupInput is the validated signup form.
type SignupInput struct {
	FullName string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// API is the slice of the backend client the auth flow needs.
type API interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) (*api.User, error)
	VerifyEmail(ctx context.Context, token string) (*api.AuthResponse, error)
	ResendVerification(ctx context.Context, email string) error
	CurrentUser(ctx context.Context) (*api.User, error)
}

// Service owns login state: it validates input, talks to the backend,
// keeps the live token fresh, and persists credentials locally so a
// restart does not require logging in again.
type Service struct {
	api      API
	tokens   store.TokenRepo
	journal  store.JournalRepo
	live     *Token
	validate *validator.Validate
	log      *zap.Logger

	mu    sync.Mutex
	email string
}

func NewService(a API, tokens store.TokenRepo, journal store.JournalRepo, live *Token, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:      a,
		tokens:   tokens,
		journal:  journal,
		live:     live,
		validate: validator.New(),
		log:      log,
	}
}

// Restore loads locally stored credentials and adopts them if the token
// has not expired. Returns the stored email ("" when nothing usable is
// stored). Expired tokens are cleared.
func (s *Service) Restore(ctx context.Context) (string, error) {
	c, err := s.tokens.Load(ctx)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", nil
	}
	if tokenExpired(c.Token) {
		s.log.Info("stored token expired", zap.String("email", c.Email))
		if err := s.tokens.Clear(ctx); err != nil {
			s.log.Warn("clear expired token failed", zap.Error(err))
		}
		return "", nil
	}
	s.live.set(c.Token)
	s.setEmail(c.Email)
	return c.Email, nil
}

// Login validates the form, authenticates, and persists the session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*api.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, friendlyValidation(err)
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, err
	}

	s.live.set(resp.AccessToken)
	s.setEmail(resp.User.Email)
	if err := s.tokens.Save(ctx, store.Credentials{
		Token:   resp.AccessToken,
		Email:   resp.User.Email,
		SavedAt: time.Now().UTC(),
	}); err != nil {
		// The in-memory session still works; only persistence failed.
		s.log.Warn("persist token failed", zap.Error(err))
	}
	if s.journal != nil {
		if err := s.journal.Append(ctx, store.JournalEntry{Kind: store.JournalLogin}); err != nil {
			s.log.Warn("journal login failed", zap.Error(err))
		}
	}
	s.log.Info("logged in", zap.String("email", resp.User.Email))
	return &resp.User, nil
}

// Signup validates the form and registers the account. The caller must
// complete email verification before logging in; ErrNotVerified signals
// that next step.
func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate.Struct(in); err != nil {
		return friendlyValidation(err)
	}

	user, err := s.api.Signup(ctx, api.SignupRequest{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
	})
	if err != nil {
		return err
	}
	if !user.EmailVerified {
		return ErrNotVerified
	}
	return nil
}

// Verify exchanges an emailed verification token for a session.
func (s *Service) Verify(ctx context.Context, token string) (*api.User, error) {
	resp, err := s.api.VerifyEmail(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	s.live.set(resp.AccessToken)
	s.setEmail(resp.User.Email)
	if err := s.tokens.Save(ctx, store.Credentials{
		Token:   resp.AccessToken,
		Email:   resp.User.Email,
		SavedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn("persist token failed", zap.Error(err))
	}
	return &resp.User, nil
}

// ResendVerification requests a fresh verification email.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	return s.api.ResendVerification(ctx, strings.TrimSpace(email))
}

// CurrentUser fetches the account for the live session.
func (s *Service) CurrentUser(ctx context.Context) (*api.User, error) {
	return s.api.CurrentUser(ctx)
}

// LoggedIn reports whether a live token is present.
func (s *Service) LoggedIn() bool {
	return s.live.Token() != ""
}

// Email returns the email of the live session ("" when logged out).
func (s *Service) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

func (s *Service) setEmail(email string) {
	s.mu.Lock()
	s.email = email
	s.mu.Unlock()
}

// Logout drops the live token and the stored credentials.
func (s *Service) Logout(ctx context.Context) error {
	s.live.set("")
	s.setEmail("")
	return s.tokens.Clear(ctx)
}

// tokenExpired decodes the JWT exp claim without verifying the
// signature. Verification is the backend's job; locally we only want to
// avoid presenting a token that is certain to be rejected. Tokens that
// cannot be parsed are treated as expired.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Now().After(exp.Time)
}

// friendlyValidation rewrites validator errors into messages fit for the
// login form.
func friendlyValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return errors.New("enter a valid email address")
	case "Password":
		return errors.New("password must be at least 8 characters")
	case "FullName":
		return errors.New("enter your name")
	}
	return err
}
