package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
)

type saveRecorder struct {
	mu    sync.Mutex
	calls []lesson.Progress
	err   error
}

func (r *saveRecorder) save(_ context.Context, p lesson.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, p)
	return r.err
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *saveRecorder) last() lesson.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func waitForCount(t *testing.T, r *saveRecorder, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.count() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("save count = %d, want %d", r.count(), want)
}

func progressAt(step lesson.Step, answer string) lesson.Progress {
	return lesson.Progress{
		CurrentStep: step,
		Answers:     map[int]string{1: answer},
	}
}

func TestBurstOfEditsFlushesOnceWithLastState(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)
	s.Bind(false)
	s.MarkLoaded()

	for _, answer := range []string{"d", "dr", "dra", "draft"} {
		s.Schedule(progressAt(lesson.StepQuestions, answer), 20*time.Millisecond)
		time.Sleep(2 * time.Millisecond)
	}

	waitForCount(t, rec, 1)
	time.Sleep(60 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("save count = %d, want 1", got)
	}
	if got := rec.last().Answers[1]; got != "draft" {
		t.Errorf("flushed answer = %q, want %q", got, "draft")
	}
}

func TestNoFlushDuringInitialLoad(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)
	s.Bind(false)

	// Restoring fetched progress into the session must not write back.
	s.Schedule(progressAt(lesson.StepArticle, "restored"), time.Millisecond)
	s.Flush(context.Background(), progressAt(lesson.StepArticle, "restored"))

	time.Sleep(30 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("save count during load = %d, want 0", got)
	}

	s.MarkLoaded()
	s.Flush(context.Background(), progressAt(lesson.StepArticle, "typed"))
	if got := rec.count(); got != 1 {
		t.Fatalf("save count after first mutation = %d, want 1", got)
	}
}

func TestReadOnlySessionNeverFlushes(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)
	s.Bind(true)
	s.MarkLoaded()

	s.Schedule(progressAt(lesson.StepVocab, "x"), time.Millisecond)
	s.Flush(context.Background(), progressAt(lesson.StepVocab, "x"))
	s.Teardown(context.Background())

	time.Sleep(30 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("save count for read-only session = %d, want 0", got)
	}
}

func TestSwitchingSessionsDropsPendingDebounce(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)

	s.Bind(false)
	s.MarkLoaded()
	s.Schedule(progressAt(lesson.StepQuestions, "unsaved edit in A"), 30*time.Millisecond)

	// Switch to session B before A's debounce fires.
	s.Bind(false)

	time.Sleep(80 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("save count after switch = %d, want 0 (A's edit must not flush against B)", got)
	}

	// B loading does not autosave by itself either.
	s.MarkLoaded()
	time.Sleep(30 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("save count after B load = %d, want 0", got)
	}
}

func TestFlushCancelsPendingDebounce(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)
	s.Bind(false)
	s.MarkLoaded()

	s.Schedule(progressAt(lesson.StepQuestions, "debounced"), 25*time.Millisecond)
	s.Flush(context.Background(), progressAt(lesson.StepGrammar, "immediate"))

	time.Sleep(70 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("save count = %d, want 1", got)
	}
	if got := rec.last().CurrentStep; got != lesson.StepGrammar {
		t.Errorf("flushed step = %q, want %q", got, lesson.StepGrammar)
	}
}

func TestCancelDropsDebounceWithoutFlushing(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)
	s.Bind(false)
	s.MarkLoaded()

	s.Schedule(progressAt(lesson.StepVocab, "x"), 10*time.Millisecond)
	s.Cancel()

	time.Sleep(40 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("save count after cancel = %d, want 0", got)
	}
}

func TestTeardownFlushesLastSnapshot(t *testing.T) {
	rec := &saveRecorder{}
	s := New(rec.save, nil)
	s.Bind(false)
	s.MarkLoaded()

	s.Schedule(progressAt(lesson.StepQuestions, "leaving"), time.Hour)
	s.Teardown(context.Background())

	if got := rec.count(); got != 1 {
		t.Fatalf("save count after teardown = %d, want 1", got)
	}
	if got := rec.last().Answers[1]; got != "leaving" {
		t.Errorf("teardown flushed answer = %q, want %q", got, "leaving")
	}

	// The debounce it absorbed must not fire later.
	s.Unbind()
	time.Sleep(20 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("save count after unbind = %d, want 1", got)
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	rec := &saveRecorder{err: errors.New("progress save failed")}
	s := New(rec.save, nil)
	s.Bind(false)
	s.MarkLoaded()

	s.Flush(context.Background(), progressAt(lesson.StepArticle, "x"))
	if got := rec.count(); got != 1 {
		t.Fatalf("save count = %d, want 1", got)
	}

	// Scheduler stays usable after a failure.
	s.Flush(context.Background(), progressAt(lesson.StepArticle, "y"))
	if got := rec.count(); got != 2 {
		t.Fatalf("save count after retry = %d, want 2", got)
	}
}
