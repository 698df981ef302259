package lesson

import "strings"

// Session owns the mutable state of one lesson: the current step, read
// flags, answers, and cursors. All mutators are no-ops once the session
// is read-only, so callers never need per-call-site guards.
type Session struct {
	lesson *Lesson

	step            Step
	vocabRead       []bool
	grammarRead     []bool
	articleReadOnce bool
	answers         map[int]string
	activeVocab     int
	activeGrammar   int
	activeQuestion  int

	evaluation *Evaluation
	evaluating bool
	readOnly   bool
}

// NewSession builds a Session from a fetched lesson, resuming from its
// embedded progress when present. A persisted evaluation jumps the
// session straight to the terminal step.
func NewSession(l *Lesson) *Session {
	s := &Session{
		lesson:      l,
		step:        StepVocab,
		vocabRead:   defaultReadFlags(len(l.Vocabs)),
		grammarRead: defaultReadFlags(len(l.Grammar)),
		answers:     make(map[int]string),
		readOnly:    l.ReadOnly(),
	}

	if p := l.Progress; p != nil {
		if p.CurrentStep.Index() >= 0 {
			s.step = p.CurrentStep
		}
		if len(p.VocabRead) == len(l.Vocabs) {
			s.vocabRead = append([]bool(nil), p.VocabRead...)
		}
		s.articleReadOnce = p.ArticleReadOnce
		for id, answer := range p.Answers {
			if l.question(id) != nil {
				s.answers[id] = answer
			}
		}
		s.activeVocab = clamp(p.ActiveVocabIndex, len(l.Vocabs))
		s.activeQuestion = clamp(p.ActiveQuestionIndex, len(l.Questions))
	}

	if l.Evaluation != nil {
		s.evaluation = l.Evaluation
		s.step = StepEvaluation
	}

	if s.step == StepGrammar && len(l.Grammar) == 0 {
		s.step = StepQuestions
	}

	return s
}

// defaultReadFlags marks only the first item read, matching the state a
// user sees on first load (item 0 is already displayed).
func defaultReadFlags(n int) []bool {
	flags := make([]bool, n)
	if n > 0 {
		flags[0] = true
	}
	return flags
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (l *Lesson) question(id int) *Question {
	for i := range l.Questions {
		if l.Questions[i].ID == id {
			return &l.Questions[i]
		}
	}
	return nil
}

// Lesson returns the owning lesson.
func (s *Session) Lesson() *Lesson { return s.lesson }

// Step returns the current step.
func (s *Session) Step() Step { return s.step }

// ReadOnly reports whether all mutators are disabled.
func (s *Session) ReadOnly() bool { return s.readOnly }

// Evaluation returns the scored feedback, or nil before submission.
func (s *Session) Evaluation() *Evaluation { return s.evaluation }

// Evaluating reports whether an evaluation submission is in flight.
func (s *Session) Evaluating() bool { return s.evaluating }

// ArticleReadOnce reports the user's "read once" assertion.
func (s *Session) ArticleReadOnce() bool { return s.articleReadOnce }

// ActiveVocab returns the cursor into the vocabulary list.
func (s *Session) ActiveVocab() int { return s.activeVocab }

// ActiveGrammar returns the cursor into the grammar list.
func (s *Session) ActiveGrammar() int { return s.activeGrammar }

// ActiveQuestion returns the cursor into the question list.
func (s *Session) ActiveQuestion() int { return s.activeQuestion }

// VocabReadFlags returns the per-item read flags (index-aligned with vocabs).
func (s *Session) VocabReadFlags() []bool { return s.vocabRead }

// GrammarReadFlags returns the per-item read flags (index-aligned with grammar).
func (s *Session) GrammarReadFlags() []bool { return s.grammarRead }

// Answer returns the stored answer for a question id ("" if unanswered).
func (s *Session) Answer(questionID int) string { return s.answers[questionID] }

// AllVocabRead reports whether every vocabulary item has been read.
func (s *Session) AllVocabRead() bool { return allTrue(s.vocabRead) }

// AllGrammarRead reports whether every grammar item has been read.
func (s *Session) AllGrammarRead() bool { return allTrue(s.grammarRead) }

// AllQuestionsAnswered reports whether every question has a non-empty
// trimmed answer.
func (s *Session) AllQuestionsAnswered() bool {
	for _, q := range s.lesson.Questions {
		if strings.TrimSpace(s.answers[q.ID]) == "" {
			return false
		}
	}
	return true
}

func allTrue(flags []bool) bool {
	for _, f := range flags {
		if !f {
			return false
		}
	}
	return true
}

// SetActiveVocab moves the vocabulary cursor. Displaying an item marks
// it read as a side effect.
func (s *Session) SetActiveVocab(i int) {
	if s.readOnly {
		return
	}
	s.activeVocab = clamp(i, len(s.lesson.Vocabs))
	if len(s.vocabRead) > 0 {
		s.vocabRead[s.activeVocab] = true
	}
}

// SetActiveGrammar moves the grammar cursor, marking the item read.
func (s *Session) SetActiveGrammar(i int) {
	if s.readOnly {
		return
	}
	s.activeGrammar = clamp(i, len(s.lesson.Grammar))
	if len(s.grammarRead) > 0 {
		s.grammarRead[s.activeGrammar] = true
	}
}

// SetActiveQuestion moves the question cursor.
func (s *Session) SetActiveQuestion(i int) {
	if s.readOnly {
		return
	}
	s.activeQuestion = clamp(i, len(s.lesson.Questions))
}

// SetArticleRead records the user's "read once" assertion.
func (s *Session) SetArticleRead(read bool) {
	if s.readOnly {
		return
	}
	s.articleReadOnce = read
}

// SetAnswer stores an answer for a question. Unknown question ids are
// ignored, keeping the answers-keys invariant.
func (s *Session) SetAnswer(questionID int, answer string) {
	if s.readOnly {
		return
	}
	if s.lesson.question(questionID) == nil {
		return
	}
	s.answers[questionID] = answer
}

// AddVocab appends an explained term to the vocabulary list, already
// marked read. Duplicate terms (case-insensitive) are ignored.
// Returns true if the item was added.
func (s *Session) AddVocab(v VocabItem) bool {
	if s.readOnly {
		return false
	}
	for _, existing := range s.lesson.Vocabs {
		if strings.EqualFold(existing.Term, v.Term) {
			return false
		}
	}
	s.lesson.Vocabs = append(s.lesson.Vocabs, v)
	s.vocabRead = append(s.vocabRead, true)
	return true
}

// CanAdvance reports whether the current step's completion condition
// holds. The terminal step never advances.
func (s *Session) CanAdvance() bool {
	switch s.step {
	case StepVocab:
		return s.AllVocabRead()
	case StepArticle:
		return s.articleReadOnce
	case StepGrammar:
		return s.AllGrammarRead()
	case StepQuestions:
		return s.AllQuestionsAnswered() && !s.evaluating
	default:
		return false
	}
}

// Advance moves to the next step when gating allows. The questions step
// does not advance here: evaluation is entered only via ApplyEvaluation.
// Returns true if the step changed.
func (s *Session) Advance() bool {
	if s.readOnly || !s.CanAdvance() {
		return false
	}
	switch s.step {
	case StepVocab:
		s.step = StepArticle
	case StepArticle:
		if len(s.lesson.Grammar) > 0 {
			s.step = StepGrammar
		} else {
			s.step = StepQuestions
		}
	case StepGrammar:
		s.step = StepQuestions
	default:
		return false
	}
	return true
}

// Back moves to the previous step. Backward navigation is always allowed.
func (s *Session) Back() bool {
	switch s.step {
	case StepArticle:
		s.step = StepVocab
	case StepGrammar:
		s.step = StepArticle
	case StepQuestions:
		if len(s.lesson.Grammar) > 0 {
			s.step = StepGrammar
		} else {
			s.step = StepArticle
		}
	case StepEvaluation:
		s.step = StepQuestions
	default:
		return false
	}
	return true
}

// GoTo jumps to a step directly. Writable sessions may only revisit
// already-reached steps; read-only sessions navigate freely. The
// evaluation step requires an evaluation to exist.
func (s *Session) GoTo(step Step) bool {
	idx := step.Index()
	if idx < 0 {
		return false
	}
	if step == StepGrammar && len(s.lesson.Grammar) == 0 {
		return false
	}
	if step == StepEvaluation && s.evaluation == nil {
		return false
	}
	if !s.readOnly && idx > s.step.Index() {
		return false
	}
	s.step = step
	return true
}

// BeginEvaluation marks a submission as in flight. Returns false if one
// is already pending or the questions gate does not hold. Re-entrant
// attempts are therefore no-ops.
func (s *Session) BeginEvaluation() bool {
	if s.readOnly || s.evaluating || s.step != StepQuestions || !s.AllQuestionsAnswered() {
		return false
	}
	s.evaluating = true
	return true
}

// FailEvaluation clears the in-flight flag after a failed submission.
// The session stays on the questions step with answers intact.
func (s *Session) FailEvaluation() {
	s.evaluating = false
}

// ApplyEvaluation retires the session: it records the result, marks the
// lesson completed, enters the terminal step, and freezes all mutators.
func (s *Session) ApplyEvaluation(e *Evaluation) {
	s.evaluating = false
	s.evaluation = e
	s.lesson.Completed = true
	s.lesson.Evaluation = e
	s.step = StepEvaluation
	s.readOnly = true
}

// AnswersPayload projects the answers map into the ordered submission
// list, covering every question (missing answers as empty strings).
func (s *Session) AnswersPayload() []AnswerSubmission {
	out := make([]AnswerSubmission, 0, len(s.lesson.Questions))
	for _, q := range s.lesson.Questions {
		out = append(out, AnswerSubmission{QuestionID: q.ID, Answer: s.answers[q.ID]})
	}
	return out
}

// Snapshot captures the current progress for persistence. The answers
// map is copied so later edits don't mutate an in-flight save.
func (s *Session) Snapshot() Progress {
	answers := make(map[int]string, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}
	return Progress{
		CurrentStep:         s.step,
		VocabRead:           append([]bool(nil), s.vocabRead...),
		ArticleReadOnce:     s.articleReadOnce,
		Answers:             answers,
		ActiveVocabIndex:    s.activeVocab,
		ActiveQuestionIndex: s.activeQuestion,
	}
}
