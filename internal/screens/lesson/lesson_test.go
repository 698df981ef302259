package lesson

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
)

type fakeBackend struct {
	mu sync.Mutex

	lesson    *lesson.Lesson
	stream    []api.StreamEvent
	createErr error

	updates   []lesson.Progress
	updateErr error

	evalResult *lesson.Evaluation
	evalErr    error
	evalCalls  int

	history   []lesson.HistoryItem
	byID      map[int]*lesson.Lesson
	byIDCalls int
}

func (f *fakeBackend) CreateLesson(_ context.Context, onProgress api.ProgressFunc) (*lesson.Lesson, error) {
	for _, ev := range f.stream {
		onProgress(ev)
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.lesson, nil
}

func (f *fakeBackend) LessonByID(_ context.Context, id int) (*lesson.Lesson, error) {
	f.mu.Lock()
	f.byIDCalls++
	f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return nil, errors.New("lesson not found")
	}
	return l, nil
}

func (f *fakeBackend) LessonHistory(context.Context) ([]lesson.HistoryItem, error) {
	return f.history, nil
}

func (f *fakeBackend) UpdateProgress(_ context.Context, p lesson.Progress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, p)
	return nil
}

func (f *fakeBackend) EvaluateLesson(context.Context, []lesson.AnswerSubmission) (*lesson.Evaluation, error) {
	f.mu.Lock()
	f.evalCalls = f.evalCalls + 1
	f.mu.Unlock()
	return f.evalResult, f.evalErr
}

func (f *fakeBackend) Explain(_ context.Context, text string) (*lesson.VocabItem, error) {
	return &lesson.VocabItem{Term: text, Meaning: "explained"}, nil
}

func (f *fakeBackend) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeBackend) lastUpdate() lesson.Progress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

func sampleLesson() *lesson.Lesson {
	return &lesson.Lesson{
		Article: lesson.Article{
			ID:         7,
			Title:      "Der Herbst in Berlin",
			Paragraphs: []string{"Es ist kalt.", "Die Blätter fallen."},
		},
		Vocabs: []lesson.VocabItem{
			{Term: "der Herbst", Meaning: "autumn"},
		},
		Questions: []lesson.Question{
			{ID: 1, Type: lesson.QuestionMCQ, Prompt: "Wie ist das Wetter?", Options: []string{"warm", "kalt", "heiß"}},
			{ID: 2, Type: lesson.QuestionShort, Prompt: "Was fällt?"},
		},
	}
}

func newTestScreen(t *testing.T, backend *fakeBackend) *LessonScreen {
	t.Helper()
	return New(Deps{
		Backend:          backend,
		QuestionDebounce: 20 * time.Millisecond,
		EditDebounce:     20 * time.Millisecond,
	}, false)
}

// drainInit runs the creation stream to completion, feeding every
// message back through Update the way the runtime would.
func drainInit(t *testing.T, s *LessonScreen) {
	t.Helper()
	cmd := s.Init()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 50, "stream did not terminate")
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = s.Update(msg)
	}
}

func press(s *LessonScreen, key tea.KeyPressMsg) tea.Cmd {
	_, cmd := s.Update(key)
	return cmd
}

// isBlinkCmd reports whether cmd is a cursor blink command (returned by
// Focus); executed synchronously it sleeps and self-perpetuates, so the
// helpers skip it. No test asserts on blinking.
func isBlinkCmd(cmd tea.Cmd) bool {
	name := runtime.FuncForPC(reflect.ValueOf(cmd).Pointer()).Name()
	return strings.Contains(name, "bubbles/v2/cursor.")
}

// runCmd executes a command and feeds any resulting message back.
func runCmd(s *LessonScreen, cmd tea.Cmd) {
	for cmd != nil {
		if isBlinkCmd(cmd) {
			return
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = s.Update(msg)
	}
}

// toQuestions walks a fresh session to the questions step.
func toQuestions(t *testing.T, s *LessonScreen) {
	t.Helper()
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter})) // vocab done (single item is pre-read)
	require.Equal(t, lesson.StepArticle, s.sess.Step())
	runCmd(s, press(s, tea.KeyPressMsg{Code: 'r', Text: "r"}))
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))
	require.Equal(t, lesson.StepQuestions, s.sess.Step())
}

// answerAll answers both sample questions the way a user would: picking
// an mcq option, tabbing to the short question, and typing in the editor.
func answerAll(t *testing.T, s *LessonScreen) {
	t.Helper()
	runCmd(s, press(s, tea.KeyPressMsg{Code: '2', Text: "2"}))
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyTab}))
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))
	require.True(t, s.editing)
	for _, r := range "Die Blätter" {
		runCmd(s, press(s, tea.KeyPressMsg{Code: r, Text: string(r)}))
	}
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEscape}))
	require.False(t, s.editing)
}

func waitForUpdates(t *testing.T, backend *fakeBackend, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for backend.updateCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d saves, have %d", want, backend.updateCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamEventsAccumulateBeforeLessonReady(t *testing.T) {
	backend := &fakeBackend{
		lesson: sampleLesson(),
		stream: []api.StreamEvent{
			{Type: "progress", Step: "article", Message: "Writing the article"},
			{Type: "progress", Step: "questions", Message: "Preparing questions"},
		},
	}
	s := newTestScreen(t, backend)

	cmd := s.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, phaseStreaming, s.phase)

	msg := cmd()
	ev, ok := msg.(streamEventMsg)
	require.True(t, ok)
	assert.Equal(t, "Writing the article", ev.ev.Message)

	_, cmd = s.Update(msg)
	runCmd(s, cmd)

	assert.Equal(t, phaseReady, s.phase)
	assert.Len(t, s.streamLog, 2)
	require.NotNil(t, s.sess)
	assert.Equal(t, lesson.StepVocab, s.sess.Step())
	assert.Equal(t, 7, s.lessonID)
}

func TestCreateFailureShowsRetryableError(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("server on fire")}
	s := newTestScreen(t, backend)

	drainInit(t, s)
	assert.Equal(t, phaseFailed, s.phase)
	assert.Contains(t, s.loadErr, "server on fire")

	// Retry succeeds once the backend recovers.
	backend.createErr = nil
	backend.lesson = sampleLesson()
	runCmd(s, press(s, tea.KeyPressMsg{Code: 'r', Text: "r"}))
	assert.Equal(t, phaseReady, s.phase)
}

func TestLoadingALessonDoesNotSaveProgress(t *testing.T) {
	backend := &fakeBackend{lesson: sampleLesson()}
	s := newTestScreen(t, backend)

	drainInit(t, s)
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, backend.updateCount(), "loading must not write progress back")
}

func TestAnswerEditIsDebouncedAndCoalesced(t *testing.T) {
	backend := &fakeBackend{lesson: sampleLesson()}
	s := New(Deps{
		Backend:          backend,
		QuestionDebounce: 150 * time.Millisecond,
		EditDebounce:     100 * time.Millisecond,
	}, false)
	drainInit(t, s)
	toQuestions(t, s)
	saved := backend.updateCount() // step transitions flush eagerly

	// Two rapid mcq picks collapse into one save carrying the last one.
	runCmd(s, press(s, tea.KeyPressMsg{Code: '1', Text: "1"}))
	runCmd(s, press(s, tea.KeyPressMsg{Code: '2', Text: "2"}))

	waitForUpdates(t, backend, saved+1)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, saved+1, backend.updateCount())
	assert.Equal(t, "1", backend.lastUpdate().Answers[1], "last pick wins")
}

func TestStepTransitionFlushesImmediately(t *testing.T) {
	backend := &fakeBackend{lesson: sampleLesson()}
	s := newTestScreen(t, backend)
	drainInit(t, s)

	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))
	require.Equal(t, lesson.StepArticle, s.sess.Step())

	require.Equal(t, 1, backend.updateCount())
	assert.Equal(t, lesson.StepArticle, backend.lastUpdate().CurrentStep)
}

func TestSubmitIsSingleFlight(t *testing.T) {
	backend := &fakeBackend{
		lesson:     sampleLesson(),
		evalResult: &lesson.Evaluation{Score: 85, Summary: "Gut gemacht"},
	}
	s := newTestScreen(t, backend)
	drainInit(t, s)
	toQuestions(t, s)

	answerAll(t, s)
	require.True(t, s.sess.AllQuestionsAnswered())

	first := press(s, tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	require.NotNil(t, first)
	second := press(s, tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	assert.Nil(t, second, "a submission is already in flight")

	runCmd(s, first)
	assert.Equal(t, 1, backend.evalCalls)
	assert.Equal(t, lesson.StepEvaluation, s.sess.Step())
	assert.True(t, s.sess.ReadOnly())
	require.NotNil(t, s.sess.Evaluation())
	assert.Equal(t, 85, s.sess.Evaluation().Score)
}

func TestEvaluationFailureKeepsAnswersAndAllowsRetry(t *testing.T) {
	backend := &fakeBackend{
		lesson:  sampleLesson(),
		evalErr: errors.New("timeout"),
	}
	s := newTestScreen(t, backend)
	drainInit(t, s)
	toQuestions(t, s)

	answerAll(t, s)

	runCmd(s, press(s, tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl}))
	assert.Equal(t, lesson.StepQuestions, s.sess.Step())
	assert.False(t, s.sess.Evaluating())
	assert.Contains(t, s.statusMsg, "timeout")
	assert.NotEmpty(t, s.sess.Answer(2), "answers survive a failed submission")

	// The guard released, so a second attempt reaches the network.
	backend.evalErr = nil
	backend.evalResult = &lesson.Evaluation{Score: 70}
	runCmd(s, press(s, tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl}))
	assert.Equal(t, 2, backend.evalCalls)
	assert.Equal(t, lesson.StepEvaluation, s.sess.Step())
}

func TestHistoryPickerOpensSelectedLesson(t *testing.T) {
	score := 90
	created := "2026-08-20T09:00:00Z"
	old := sampleLesson()
	notToday := false
	old.IsToday = &notToday
	old.Completed = true
	old.Evaluation = &lesson.Evaluation{Score: score}

	backend := &fakeBackend{
		history: []lesson.HistoryItem{
			{ID: 7, Title: "Der Herbst in Berlin", Score: &score, Completed: true, CreatedAt: &created},
		},
		byID: map[int]*lesson.Lesson{7: old},
	}
	s := New(Deps{Backend: backend}, true)

	runCmd(s, s.Init())
	assert.False(t, s.historyBusy)
	require.Len(t, s.history, 1)

	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))
	assert.False(t, s.showHistory)
	require.NotNil(t, s.sess)
	assert.True(t, s.sess.ReadOnly())
	assert.Equal(t, lesson.StepEvaluation, s.sess.Step())
}

func TestReselectingOpenLessonKeepsSession(t *testing.T) {
	backend := &fakeBackend{
		lesson:  sampleLesson(),
		history: []lesson.HistoryItem{{ID: 7, Title: "Der Herbst in Berlin"}},
		byID:    map[int]*lesson.Lesson{7: sampleLesson()},
	}
	s := newTestScreen(t, backend)
	drainInit(t, s)
	require.Equal(t, 7, s.lessonID)

	runCmd(s, press(s, tea.KeyPressMsg{Code: 'h', Text: "h"}))
	require.True(t, s.showHistory)
	require.Len(t, s.history, 1)

	before := s.sess
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))

	assert.False(t, s.showHistory)
	assert.Same(t, before, s.sess)
	assert.Equal(t, 0, backend.byIDCalls)
}

func TestReadOnlyLessonNeverSaves(t *testing.T) {
	old := sampleLesson()
	notToday := false
	old.IsToday = &notToday
	old.Progress = &lesson.Progress{
		CurrentStep: lesson.StepQuestions,
		Answers:     map[int]string{1: "1"},
	}

	backend := &fakeBackend{
		history: []lesson.HistoryItem{{ID: 7, Title: "alt"}},
		byID:    map[int]*lesson.Lesson{7: old},
	}
	s := New(Deps{Backend: backend, EditDebounce: 10 * time.Millisecond}, true)
	runCmd(s, s.Init())
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))
	require.NotNil(t, s.sess)
	require.True(t, s.sess.ReadOnly())

	// Browsing questions in a finished lesson must not write anything.
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyTab}))
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyTab}))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, backend.updateCount())
}

func TestReadOnlyQuestionCursorMovesLocally(t *testing.T) {
	old := sampleLesson()
	notToday := false
	old.IsToday = &notToday

	backend := &fakeBackend{
		history: []lesson.HistoryItem{{ID: 7, Title: "alt"}},
		byID:    map[int]*lesson.Lesson{7: old},
	}
	s := New(Deps{Backend: backend}, true)
	runCmd(s, s.Init())
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))
	require.NotNil(t, s.sess)

	// Read-only sessions jump steps freely.
	runCmd(s, press(s, tea.KeyPressMsg{Code: '4', Text: "4"}))
	require.Equal(t, lesson.StepQuestions, s.sess.Step())

	// Session mutators no-op when read-only; the screen cursor still moves.
	require.Equal(t, 1, s.currentQuestion().ID)
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyTab}))
	assert.Equal(t, 2, s.currentQuestion().ID)
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyTab}))
	assert.Equal(t, 1, s.currentQuestion().ID, "cursor wraps")
}

func TestExplainAddsVocabDuringArticle(t *testing.T) {
	backend := &fakeBackend{lesson: sampleLesson()}
	s := newTestScreen(t, backend)
	drainInit(t, s)

	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter})) // to article
	runCmd(s, press(s, tea.KeyPressMsg{Code: 'e', Text: "e"}))
	require.True(t, s.explainMode)

	s.explainInput.SetValue("trotzdem")
	runCmd(s, press(s, tea.KeyPressMsg{Code: tea.KeyEnter}))

	assert.False(t, s.explainMode)
	vocabs := s.sess.Lesson().Vocabs
	require.Len(t, vocabs, 2)
	assert.Equal(t, "trotzdem", vocabs[1].Term)
	assert.Contains(t, s.statusMsg, "trotzdem")
}
