package api

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
)

// TokenSource supplies the bearer token for authenticated calls.
// An empty token means the call goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Options configures a Client.
type Options struct {
	BaseURL        string
	Tokens         TokenSource
	Logger         *zap.Logger
	RequestTimeout time.Duration

	// StreamTimeout bounds the lesson-creation stream; generation is slow,
	// so this is much longer than RequestTimeout.
	StreamTimeout time.Duration
}

// Client talks to the Jonas backend.
type Client struct {
	rest          *resty.Client
	stream        *resty.Client
	tokens        TokenSource
	log           *zap.Logger
	streamTimeout time.Duration
}

// NewClient creates a backend client.
func NewClient(opts Options) *Client {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.StreamTimeout == 0 {
		opts.StreamTimeout = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	rest := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	// The stream client carries no client-level timeout; the request
	// context governs its lifetime instead.
	stream := resty.New().
		SetBaseURL(opts.BaseURL)

	return &Client{
		rest:          rest,
		stream:        stream,
		tokens:        opts.Tokens,
		log:           opts.Logger,
		streamTimeout: opts.StreamTimeout,
	}
}

// newRequest builds an authenticated request with a per-call request id.
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.rest.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.New().String())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			r.SetAuthToken(tok)
		}
	}
	return r
}

// check converts a non-2xx response into an *Error.
func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	apiErr := parseError(resp.StatusCode(), resp.Body())
	c.log.Warn("api call failed",
		zap.String("url", resp.Request.URL),
		zap.Int("status", apiErr.Status),
		zap.String("message", apiErr.Message),
	)
	return apiErr
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	resp, err := c.newRequest(ctx).SetBody(req).SetResult(&out).Post(epLogin)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account. The account must verify its email
// before it can log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var out User
	resp, err := c.newRequest(ctx).SetBody(req).SetResult(&out).Post(epSignup)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail exchanges a verification token for a session.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*AuthResponse, error) {
	var out AuthResponse
	resp, err := c.newRequest(ctx).
		SetQueryParam("token", token).
		SetResult(&out).
		Get(epVerifyEmail)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendVerification requests a fresh verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	resp, err := c.newRequest(ctx).
		SetBody(map[string]string{"email": email}).
		Post(epResendVerification)
	return c.check(resp, err)
}

// CurrentUser fetches the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out User
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epMe)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailySituation fetches the day's conversation prompt.
func (c *Client) DailySituation(ctx context.Context) (string, error) {
	var out struct {
		Situation string `json:"situation"`
	}
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epDailySituation)
	if err := c.check(resp, err); err != nil {
		return "", err
	}
	return out.Situation, nil
}

// LessonByID fetches a lesson with its embedded progress and evaluation.
func (c *Client) LessonByID(ctx context.Context, id int) (*lesson.Lesson, error) {
	var out lesson.Lesson
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epLessonByID(id))
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProgress persists a progress snapshot. The write is an idempotent
// full replace; the latest-arriving write wins server-side.
func (c *Client) UpdateProgress(ctx context.Context, p lesson.Progress) error {
	body := map[string]lesson.Progress{"progress": p}
	resp, err := c.newRequest(ctx).SetBody(body).Put(epProgress)
	return c.check(resp, err)
}

// EvaluateLesson submits the full answers list and returns the scored
// feedback.
func (c *Client) EvaluateLesson(ctx context.Context, answers []lesson.AnswerSubmission) (*lesson.Evaluation, error) {
	body := map[string][]lesson.AnswerSubmission{"answers": answers}
	var out lesson.Evaluation
	resp, err := c.newRequest(ctx).SetBody(body).SetResult(&out).Post(epEvaluateLesson)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// LessonHistory lists past lessons, newest first.
func (c *Client) LessonHistory(ctx context.Context) ([]lesson.HistoryItem, error) {
	var out []lesson.HistoryItem
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epLessons)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// Explain looks up an ad hoc text span as a vocabulary item.
func (c *Client) Explain(ctx context.Context, text string) (*lesson.VocabItem, error) {
	var out lesson.VocabItem
	resp, err := c.newRequest(ctx).
		SetQueryParam("text", text).
		SetResult(&out).
		Get(epExplain)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyStats fetches the caller's streak and points.
func (c *Client) MyStats(ctx context.Context) (*UserStats, error) {
	var out UserStats
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epStatsMe)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActivityHeatmap fetches per-day activity counts.
func (c *Client) ActivityHeatmap(ctx context.Context) ([]HeatmapItem, error) {
	var out []HeatmapItem
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epActivityHeatmap)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// Leaderboard fetches the points leaderboard.
func (c *Client) Leaderboard(ctx context.Context) (*Leaderboard, error) {
	var out Leaderboard
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epLeaderboard)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// TodayActivities reports which of today's activities are completed.
func (c *Client) TodayActivities(ctx context.Context) (*ActivityCompletion, error) {
	var out ActivityCompletion
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epTodayActivities)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// TeacherMessages fetches the current teacher conversation.
func (c *Client) TeacherMessages(ctx context.Context) ([]TeacherMessage, error) {
	var out []TeacherMessage
	resp, err := c.newRequest(ctx).SetResult(&out).Get(epTeacherMessages)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// SendTeacherMessage sends a chat message and returns the reply.
func (c *Client) SendTeacherMessage(ctx context.Context, message string) (*TeacherReply, error) {
	var out TeacherReply
	resp, err := c.newRequest(ctx).
		SetBody(map[string]string{"message": message}).
		SetResult(&out).
		Post(epTeacherChat)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}
