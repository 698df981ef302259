package evaluate

import (
	"context"
	"errors"
	"testing"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
)

type fakeAPI struct {
	calls int
	ev    *lesson.Evaluation
	err   error
}

func (f *fakeAPI) EvaluateLesson(_ context.Context, _ []lesson.AnswerSubmission) (*lesson.Evaluation, error) {
	f.calls++
	return f.ev, f.err
}

func answeredSession(t *testing.T) *lesson.Session {
	t.Helper()
	sess := lesson.NewSession(&lesson.Lesson{
		Article: lesson.Article{ID: 7, Title: "Der Markt", Paragraphs: []string{"Ein Absatz."}},
		Vocabs:  []lesson.VocabItem{{Term: "der Markt", Meaning: "the market"}},
		Questions: []lesson.Question{
			{ID: 1, Type: lesson.QuestionMCQ, Prompt: "Wo?", Options: []string{"a", "b"}},
			{ID: 2, Type: lesson.QuestionShort, Prompt: "Warum?"},
		},
	})
	if !sess.Advance() { // vocab -> article, single item already read
		t.Fatal("setup: vocab step did not advance")
	}
	sess.SetArticleRead(true)
	if !sess.Advance() { // article -> questions, no grammar
		t.Fatal("setup: article step did not advance")
	}
	sess.SetAnswer(1, "0")
	sess.SetAnswer(2, "weil es frisch ist")
	if sess.Step() != lesson.StepQuestions {
		t.Fatalf("setup: step = %q, want questions", sess.Step())
	}
	return sess
}

func TestStartReturnsFullAnswerPayload(t *testing.T) {
	svc := New(&fakeAPI{}, nil)
	sess := answeredSession(t)

	answers, ok := svc.Start(sess)
	if !ok {
		t.Fatal("Start() = false, want true")
	}
	if len(answers) != 2 {
		t.Fatalf("payload length = %d, want 2", len(answers))
	}
	if answers[0].QuestionID != 1 || answers[1].QuestionID != 2 {
		t.Errorf("payload order = %d,%d, want 1,2", answers[0].QuestionID, answers[1].QuestionID)
	}
}

func TestReentrantStartMakesOneNetworkCall(t *testing.T) {
	api := &fakeAPI{ev: &lesson.Evaluation{Score: 80}}
	svc := New(api, nil)
	sess := answeredSession(t)

	answers, ok := svc.Start(sess)
	if !ok {
		t.Fatal("first Start() = false, want true")
	}
	if _, ok := svc.Start(sess); ok {
		t.Fatal("second Start() while in flight = true, want false")
	}

	if _, err := svc.Do(context.Background(), answers); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("network calls = %d, want 1", api.calls)
	}
}

func TestFailureReleasesGuardForRetry(t *testing.T) {
	api := &fakeAPI{err: errors.New("backend down")}
	svc := New(api, nil)
	sess := answeredSession(t)

	answers, _ := svc.Start(sess)
	_, err := svc.Do(context.Background(), answers)
	if err == nil {
		t.Fatal("Do() error = nil, want failure")
	}
	if finishErr := svc.Finish(sess, nil, err); finishErr == nil {
		t.Fatal("Finish() error = nil, want propagated failure")
	}

	if sess.Step() != lesson.StepQuestions {
		t.Errorf("step after failure = %q, want questions", sess.Step())
	}
	if _, ok := svc.Start(sess); !ok {
		t.Error("Start() after failure = false, want retry allowed")
	}
}

func TestSuccessRetiresSession(t *testing.T) {
	api := &fakeAPI{ev: &lesson.Evaluation{Score: 92, Summary: "stark"}}
	svc := New(api, nil)
	sess := answeredSession(t)

	answers, _ := svc.Start(sess)
	ev, err := svc.Do(context.Background(), answers)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if err := svc.Finish(sess, ev, nil); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	if sess.Step() != lesson.StepEvaluation {
		t.Errorf("step = %q, want evaluation", sess.Step())
	}
	if !sess.ReadOnly() {
		t.Error("session not read-only after evaluation")
	}
	if got := sess.Evaluation(); got == nil || got.Score != 92 {
		t.Errorf("evaluation = %+v, want score 92", got)
	}
}
