package api

import "encoding/json"

// Wire types for the non-lesson endpoints. The lesson-flow types live in
// internal/lesson; everything here is plain request/response.

// User is the authenticated account.
type User struct {
	ID            int    `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	IsActive      bool   `json:"is_active"`
	EmailVerified bool   `json:"email_verified"`
	CreatedAt     string `json:"created_at"`
}

// AuthResponse is returned by login and email verification.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the signup payload.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// UserStats is the streak/points summary.
type UserStats struct {
	TotalPoints     int `json:"total_points"`
	CurrentStreak   int `json:"current_streak"`
	LongestStreak   int `json:"longest_streak"`
	ActivitiesCount int `json:"activities_count"`
}

// HeatmapItem is one day of the activity heatmap.
type HeatmapItem struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// LeaderboardUser is one row of the leaderboard.
type LeaderboardUser struct {
	Rank          int    `json:"rank"`
	DisplayName   string `json:"display_name"`
	Points        int    `json:"points"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// Leaderboard is the leaderboard payload with the caller's placement.
type Leaderboard struct {
	CurrentUserRank   int               `json:"current_user_rank"`
	CurrentUserPoints int               `json:"current_user_points"`
	TopPercent        float64           `json:"top_percent"`
	Users             []LeaderboardUser `json:"users"`
}

// ActivityCompletion reports which of today's activities are done.
type ActivityCompletion struct {
	LessonCompleted   bool `json:"lesson_completed"`
	RoleplayCompleted bool `json:"roleplay_completed"`
	WritingCompleted  bool `json:"writing_completed"`
}

// TeacherMessage is one message of a teacher conversation.
type TeacherMessage struct {
	ID        int    `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// TeacherReply is the assistant's answer to a chat message.
type TeacherReply struct {
	Message string `json:"message"`
}

// Stream event types emitted during lesson creation.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// StreamEvent is one frame of the lesson-creation stream. It exists only
// for the duration of one stream consumption.
type StreamEvent struct {
	Type    string          `json:"type"`
	Step    string          `json:"step,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
