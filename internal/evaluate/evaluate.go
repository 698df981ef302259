package evaluate

import (
	"context"

	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
)

// API is the slice of the backend client the evaluation flow needs.
type API interface {
	EvaluateLesson(ctx context.Context, answers []lesson.AnswerSubmission) (*lesson.Evaluation, error)
}

// Service drives the submit-for-evaluation flow. The session itself holds
// the single-in-flight guard; the split into Start / Do / Finish exists so
// the network call can run off the UI loop while all session mutation
// stays on it.
type Service struct {
	api API
	log *zap.Logger
}

func New(api API, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: api, log: log}
}

// Start flips the session into the evaluating state and returns the full
// answers payload. It returns ok=false when evaluation may not begin:
// already in flight, not on the questions step, unanswered questions, or
// a read-only session. Callers must not contact the backend on false.
func (s *Service) Start(sess *lesson.Session) ([]lesson.AnswerSubmission, bool) {
	if !sess.BeginEvaluation() {
		return nil, false
	}
	return sess.AnswersPayload(), true
}

// Do performs the evaluation request. Safe to call from any goroutine; it
// never touches the session.
func (s *Service) Do(ctx context.Context, answers []lesson.AnswerSubmission) (*lesson.Evaluation, error) {
	ev, err := s.api.EvaluateLesson(ctx, answers)
	if err != nil {
		s.log.Warn("evaluation request failed", zap.Error(err))
		return nil, err
	}
	s.log.Info("lesson evaluated", zap.Int("score", ev.Score))
	return ev, nil
}

// Finish applies the outcome to the session. On success the session
// moves to its terminal evaluation state; on failure the guard is
// released so the user can retry, and the error is returned for display.
func (s *Service) Finish(sess *lesson.Session, ev *lesson.Evaluation, err error) error {
	if err != nil {
		sess.FailEvaluation()
		return err
	}
	sess.ApplyEvaluation(ev)
	return nil
}
