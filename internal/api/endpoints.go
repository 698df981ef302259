package api

import "fmt"

// Backend endpoint paths (v1).
const (
	epLogin              = "/api/v1/auth/login"
	epSignup             = "/api/v1/auth/signup"
	epVerifyEmail        = "/api/v1/auth/verify-email"
	epResendVerification = "/api/v1/auth/resend-verification"
	epMe                 = "/api/v1/auth/me"

	epDailySituation = "/api/v1/users/dailysituation"

	epCreateLesson   = "/api/v1/agents/create_lesson"
	epEvaluateLesson = "/api/v1/agents/evaluate_lesson"
	epProgress       = "/api/v1/agents/progress"
	epLessons        = "/api/v1/agents/lessons"
	epExplain        = "/api/v1/agents/explain"

	epStatsMe         = "/api/v1/stats/me"
	epActivityHeatmap = "/api/v1/stats/activity-heatmap"
	epLeaderboard     = "/api/v1/stats/leaderboard"
	epTodayActivities = "/api/v1/stats/today-activities"

	epTeacherMessages = "/api/v1/teacher/messages"
	epTeacherChat     = "/api/v1/teacher/chat"
)

func epLessonByID(id int) string {
	return fmt.Sprintf("%s/%d", epLessons, id)
}
