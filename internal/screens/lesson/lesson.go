package lesson

import (
	"context"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/autosave"
	"github.com/Muhsiinn/Jonas-AI/internal/evaluate"
	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/components"
)

// Backend is the slice of the API client the lesson flow needs.
type Backend interface {
	CreateLesson(ctx context.Context, onProgress api.ProgressFunc) (*lesson.Lesson, error)
	LessonByID(ctx context.Context, id int) (*lesson.Lesson, error)
	LessonHistory(ctx context.Context) ([]lesson.HistoryItem, error)
	UpdateProgress(ctx context.Context, p lesson.Progress) error
	EvaluateLesson(ctx context.Context, answers []lesson.AnswerSubmission) (*lesson.Evaluation, error)
	Explain(ctx context.Context, text string) (*lesson.VocabItem, error)
}

// Deps collects everything the lesson screen needs beyond the backend.
type Deps struct {
	Backend Backend
	Notes   store.NoteRepo    // nil disables the notes overlay
	Journal store.JournalRepo // nil disables journaling
	Log     *zap.Logger

	// Debounce windows for progress autosaves. Typing in the answer
	// editor uses the long window; discrete edits use the short one.
	QuestionDebounce time.Duration
	EditDebounce     time.Duration
}

type phase int

const (
	phaseLoading phase = iota
	phaseStreaming
	phaseReady
	phaseFailed
)

// LessonScreen drives one lesson end to end: stream-based creation or
// history retrieval, the five-step flow, autosaved progress, and
// submission for evaluation.
type LessonScreen struct {
	deps  Deps
	sched *autosave.Scheduler
	eval  *evaluate.Service

	phase      phase
	streamLog  []api.StreamEvent
	loadErr    string
	sess       *lesson.Session
	lessonID   int
	sessionGen int // guards stale async msgs after a history switch

	// creation stream plumbing
	events chan api.StreamEvent
	result chan lessonReadyMsg

	// history picker overlay
	showHistory   bool
	history       []lesson.HistoryItem
	historyCursor int
	historyErr    string
	historyBusy   bool

	// questions step widgets
	answerArea     components.TextArea
	choice         components.Choice
	editing        bool
	readOnlyCursor int // question cursor for read-only sessions

	// overlays
	showNotes    bool
	notesArea    components.TextArea
	explainMode  bool
	explainInput components.TextInput
	explainBusy  bool
	explainErr   string

	statusMsg string
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)

// New creates the lesson screen. With historyMode the screen opens on
// the history picker instead of streaming today's lesson.
func New(deps Deps, historyMode bool) *LessonScreen {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.QuestionDebounce <= 0 {
		deps.QuestionDebounce = 10 * time.Second
	}
	if deps.EditDebounce <= 0 {
		deps.EditDebounce = 2 * time.Second
	}

	s := &LessonScreen{
		deps:  deps,
		eval:  evaluate.New(deps.Backend, deps.Log),
		phase: phaseLoading,
	}
	s.sched = autosave.New(func(ctx context.Context, p lesson.Progress) error {
		return deps.Backend.UpdateProgress(ctx, p)
	}, deps.Log)

	if historyMode {
		s.showHistory = true
		s.historyBusy = true
	}
	return s
}

func (s *LessonScreen) Title() string { return "Lesson" }

func (s *LessonScreen) Init() tea.Cmd {
	if s.showHistory {
		return s.loadHistory()
	}
	return s.startCreate()
}

// startCreate launches the creation stream. Progress frames arrive over
// a channel so the UI can render them as they happen; the final result
// follows once the stream ends.
func (s *LessonScreen) startCreate() tea.Cmd {
	s.phase = phaseStreaming
	s.streamLog = nil

	events := make(chan api.StreamEvent, 16)
	result := make(chan lessonReadyMsg, 1)
	s.events = events
	s.result = result

	backend := s.deps.Backend
	go func() {
		l, err := backend.CreateLesson(context.Background(), func(ev api.StreamEvent) {
			events <- ev
		})
		close(events)
		result <- lessonReadyMsg{lesson: l, err: err}
	}()

	return s.nextStreamMsg()
}

// nextStreamMsg waits for the next frame, or the final result once the
// event channel closes.
func (s *LessonScreen) nextStreamMsg() tea.Cmd {
	events, result := s.events, s.result
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return <-result
		}
		return streamEventMsg{ev: ev}
	}
}

func (s *LessonScreen) loadHistory() tea.Cmd {
	backend := s.deps.Backend
	return func() tea.Msg {
		items, err := backend.LessonHistory(context.Background())
		return historyMsg{items: items, err: err}
	}
}

func (s *LessonScreen) loadLesson(id int) tea.Cmd {
	backend := s.deps.Backend
	return func() tea.Msg {
		l, err := backend.LessonByID(context.Background(), id)
		return lessonReadyMsg{lesson: l, err: err}
	}
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case streamEventMsg:
		s.streamLog = append(s.streamLog, msg.ev)
		return s, s.nextStreamMsg()

	case lessonReadyMsg:
		return s.handleLessonReady(msg)

	case historyMsg:
		s.historyBusy = false
		if msg.err != nil {
			s.historyErr = msg.err.Error()
			return s, nil
		}
		s.historyErr = ""
		s.history = msg.items
		if s.historyCursor >= len(s.history) {
			s.historyCursor = 0
		}
		return s, nil

	case evaluationMsg:
		return s.handleEvaluation(msg)

	case explainMsg:
		return s.handleExplain(msg)

	case noteLoadedMsg:
		if msg.note != nil {
			s.notesArea.SetValue(msg.note.Body)
		}
		return s, nil

	case noteSavedMsg:
		if msg.err != nil {
			s.statusMsg = "note not saved: " + msg.err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forwardToWidgets(msg)
}

func (s *LessonScreen) handleLessonReady(msg lessonReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.err != nil {
		s.phase = phaseFailed
		s.loadErr = msg.err.Error()
		return s, nil
	}

	l := msg.lesson
	s.sess = lesson.NewSession(l)
	s.lessonID = l.Article.ID
	s.phase = phaseReady
	s.showHistory = false
	s.statusMsg = ""
	s.sessionGen++
	s.readOnlyCursor = s.sess.ActiveQuestion()

	// New session: pending debounce from a previous lesson must never
	// flush against this one, and loading itself must not save.
	s.sched.Bind(s.sess.ReadOnly())
	s.sched.MarkLoaded()

	s.syncQuestionWidgets()

	var cmds []tea.Cmd
	if s.deps.Notes != nil {
		cmds = append(cmds, s.loadNote())
	}
	if s.deps.Journal != nil && !s.sess.ReadOnly() {
		journal, id := s.deps.Journal, s.lessonID
		cmds = append(cmds, func() tea.Msg {
			_ = journal.Append(context.Background(), store.JournalEntry{
				Kind: store.JournalLessonStarted, LessonID: id,
			})
			return nil
		})
	}
	return s, tea.Batch(cmds...)
}

func (s *LessonScreen) handleEvaluation(msg evaluationMsg) (screen.Screen, tea.Cmd) {
	if s.sess == nil {
		return s, nil
	}
	if err := s.eval.Finish(s.sess, msg.ev, msg.err); err != nil {
		s.statusMsg = "evaluation failed: " + err.Error()
		return s, nil
	}

	// Session is terminal now; nothing further autosaves.
	s.sched.Bind(true)
	s.statusMsg = ""

	if s.deps.Journal != nil {
		journal, id := s.deps.Journal, s.lessonID
		score := msg.ev.Score
		return s, func() tea.Msg {
			_ = journal.Append(context.Background(), store.JournalEntry{
				Kind:     store.JournalLessonCompleted,
				LessonID: id,
				Score:    &score,
			})
			return nil
		}
	}
	return s, nil
}

func (s *LessonScreen) handleExplain(msg explainMsg) (screen.Screen, tea.Cmd) {
	s.explainBusy = false
	if msg.err != nil {
		s.explainErr = msg.err.Error()
		return s, nil
	}
	s.explainMode = false
	s.explainErr = ""
	if s.sess.AddVocab(*msg.item) {
		s.statusMsg = "added to vocabulary: " + msg.item.Term
		return s, s.scheduleSave(s.deps.EditDebounce)
	}
	s.statusMsg = "already in vocabulary: " + msg.item.Term
	return s, nil
}

// scheduleSave queues a debounced save of the current snapshot.
func (s *LessonScreen) scheduleSave(delay time.Duration) tea.Cmd {
	s.sched.Schedule(s.sess.Snapshot(), delay)
	return nil
}

// flushSave persists the current snapshot immediately, off the UI loop.
func (s *LessonScreen) flushSave() tea.Cmd {
	snap := s.sess.Snapshot()
	sched := s.sched
	return func() tea.Msg {
		sched.Flush(context.Background(), snap)
		return nil
	}
}

// teardown makes a best-effort final save and leaves the screen.
func (s *LessonScreen) teardown() tea.Cmd {
	sched := s.sched
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sched.Teardown(ctx)
		sched.Unbind()
		return router.PopScreenMsg{}
	}
}

func (s *LessonScreen) loadNote() tea.Cmd {
	notes, id := s.deps.Notes, s.lessonID
	return func() tea.Msg {
		n, err := notes.ForLesson(context.Background(), id)
		if err != nil {
			return noteLoadedMsg{}
		}
		return noteLoadedMsg{note: n}
	}
}

func (s *LessonScreen) saveNote() tea.Cmd {
	notes, id, body := s.deps.Notes, s.lessonID, s.notesArea.Value()
	return func() tea.Msg {
		return noteSavedMsg{err: notes.Upsert(context.Background(), id, body)}
	}
}

// syncQuestionWidgets rebuilds the per-question editor state after the
// active question or step changed.
func (s *LessonScreen) syncQuestionWidgets() {
	if s.sess == nil {
		return
	}
	q := s.currentQuestion()
	if q == nil {
		return
	}
	answer := s.sess.Answer(q.ID)

	switch q.Type {
	case lesson.QuestionMCQ:
		chosen := -1
		if answer != "" {
			if i, err := strconv.Atoi(answer); err == nil && i >= 0 && i < len(q.Options) {
				chosen = i
			}
		}
		s.choice = components.NewChoice(q.Prompt, q.Options, chosen)
		s.choice.ReadOnly = s.sess.ReadOnly()
		if fb := s.feedbackFor(q.ID); fb != nil && fb.CorrectOptionIndex != nil {
			s.choice.CorrectIndex = *fb.CorrectOptionIndex
		}
	case lesson.QuestionShort:
		s.answerArea = components.NewTextArea("", "Antworte auf Deutsch...", 60, 5)
		s.answerArea.SetValue(answer)
	}
	s.editing = false
}

func (s *LessonScreen) feedbackFor(questionID int) *lesson.QuestionFeedback {
	if ev := s.sess.Evaluation(); ev != nil {
		return ev.Feedback(questionID)
	}
	return nil
}

func (s *LessonScreen) forwardToWidgets(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case s.showNotes:
		s.notesArea, cmd = s.notesArea.Update(msg)
	case s.explainMode:
		s.explainInput, cmd = s.explainInput.Update(msg)
	case s.editing:
		s.answerArea, cmd = s.answerArea.Update(msg)
	}
	return s, cmd
}
