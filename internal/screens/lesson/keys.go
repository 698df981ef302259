package lesson

import (
	"context"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/router"
	"github.com/Muhsiinn/Jonas-AI/internal/screen"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/components"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/layout"
)

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.showHistory:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Select"},
			{Key: "Enter", Description: "Open lesson"},
			{Key: "Esc", Description: "Close"},
		}
	case s.showNotes:
		return []layout.KeyHint{{Key: "Esc", Description: "Save & close notes"}}
	case s.explainMode:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Explain"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.editing:
		return []layout.KeyHint{{Key: "Esc", Description: "Done typing"}}
	case s.sess != nil && s.sess.Step() == lesson.StepQuestions:
		hints := []layout.KeyHint{
			{Key: "Tab", Description: "Next question"},
			{Key: "Enter", Description: "Answer"},
		}
		if s.sess.AllQuestionsAnswered() && !s.sess.Evaluating() && !s.sess.ReadOnly() {
			hints = append(hints, layout.KeyHint{Key: "Ctrl+D", Description: "Submit lesson"})
		}
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
		return hints
	default:
		return []layout.KeyHint{
			{Key: "←→", Description: "Steps"},
			{Key: "H", Description: "History"},
			{Key: "N", Description: "Notes"},
			{Key: "Esc", Description: "Leave"},
		}
	}
}

func (s *LessonScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.phase == phaseFailed {
		switch key {
		case "r":
			if s.showHistory {
				s.phase = phaseLoading
				s.historyBusy = true
				return s, s.loadHistory()
			}
			return s, s.startCreate()
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.showHistory {
		return s.handleHistoryKey(key)
	}

	if s.showNotes {
		if key == "esc" {
			s.showNotes = false
			s.notesArea.Blur()
			return s, s.saveNote()
		}
		var cmd tea.Cmd
		s.notesArea, cmd = s.notesArea.Update(msg)
		return s, cmd
	}

	if s.explainMode {
		switch key {
		case "esc":
			s.explainMode = false
			s.explainErr = ""
			return s, nil
		case "enter":
			return s.submitExplain()
		}
		var cmd tea.Cmd
		s.explainInput, cmd = s.explainInput.Update(msg)
		return s, cmd
	}

	if s.editing {
		return s.handleEditingKey(msg, key)
	}

	if s.sess == nil {
		// Still loading or streaming; allow bailing out.
		if key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	return s.handleStepKey(msg, key)
}

func (s *LessonScreen) handleHistoryKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		if s.historyCursor > 0 {
			s.historyCursor--
		}
	case "down", "j":
		if s.historyCursor < len(s.history)-1 {
			s.historyCursor++
		}
	case "enter":
		if s.historyBusy || len(s.history) == 0 {
			return s, nil
		}
		id := s.history[s.historyCursor].ID
		if s.sess != nil && id == s.lessonID {
			// Reselecting the open session keeps its in-memory state.
			s.showHistory = false
			return s, nil
		}
		s.phase = phaseLoading
		s.showHistory = false
		// Any unsaved edit of the previous lesson flushes before the
		// switch; the new session starts with a clean scheduler.
		sched, load := s.sched, s.loadLesson(id)
		return s, func() tea.Msg {
			sched.Teardown(context.Background())
			return load()
		}
	case "esc":
		if s.sess == nil {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		s.showHistory = false
	}
	return s, nil
}

func (s *LessonScreen) handleEditingKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	if key == "esc" {
		s.editing = false
		s.answerArea.Blur()
		return s, s.flushSave()
	}

	var cmd tea.Cmd
	s.answerArea, cmd = s.answerArea.Update(msg)

	q := s.currentQuestion()
	if q != nil {
		s.sess.SetAnswer(q.ID, s.answerArea.Value())
		s.scheduleSave(s.deps.QuestionDebounce)
	}
	return s, cmd
}

func (s *LessonScreen) handleStepKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	// Global navigation.
	switch key {
	case "esc", "q":
		return s, s.teardown()
	case "h":
		s.showHistory = true
		s.historyBusy = true
		return s, s.loadHistory()
	case "n":
		if s.deps.Notes != nil {
			s.showNotes = true
			if s.notesArea.Value() == "" {
				s.notesArea = components.NewTextArea("Notes", "Wörter, Sätze, Gedanken...", 60, 8)
			}
			return s, s.notesArea.Focus()
		}
	case "right", "l":
		if s.sess.Advance() {
			s.syncQuestionWidgets()
			return s, s.flushSave()
		}
		return s, nil
	case "left":
		if s.sess.Back() {
			s.syncQuestionWidgets()
			return s, s.flushSave()
		}
		return s, nil
	}

	// Direct step jumps.
	if len(key) == 1 && key[0] >= '1' && key[0] <= '5' && s.sess.Step() != lesson.StepQuestions {
		idx := int(key[0] - '1')
		if idx < len(lesson.StepOrder) && s.sess.GoTo(lesson.StepOrder[idx]) {
			s.syncQuestionWidgets()
			return s, s.flushSave()
		}
		return s, nil
	}

	switch s.sess.Step() {
	case lesson.StepVocab:
		return s.handleVocabKey(key)
	case lesson.StepArticle:
		return s.handleArticleKey(key)
	case lesson.StepGrammar:
		return s.handleGrammarKey(key)
	case lesson.StepQuestions:
		return s.handleQuestionsKey(msg, key)
	case lesson.StepEvaluation:
		return s.handleEvaluationKey(key)
	}
	return s, nil
}

func (s *LessonScreen) handleVocabKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		s.sess.SetActiveVocab(s.sess.ActiveVocab() - 1)
		return s, s.scheduleSave(s.deps.EditDebounce)
	case "down", "j":
		s.sess.SetActiveVocab(s.sess.ActiveVocab() + 1)
		return s, s.scheduleSave(s.deps.EditDebounce)
	case "enter":
		if s.sess.Advance() {
			s.syncQuestionWidgets()
			return s, s.flushSave()
		}
	}
	return s, nil
}

func (s *LessonScreen) handleArticleKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "r", "space":
		s.sess.SetArticleRead(!s.sess.ArticleReadOnce())
		return s, s.scheduleSave(s.deps.EditDebounce)
	case "e":
		s.explainMode = true
		s.explainErr = ""
		s.explainInput = components.NewTextInput("Explain a word or phrase", "z.B. trotzdem", false)
		return s, s.explainInput.Focus()
	case "enter":
		if s.sess.Advance() {
			s.syncQuestionWidgets()
			return s, s.flushSave()
		}
	}
	return s, nil
}

func (s *LessonScreen) handleGrammarKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		s.sess.SetActiveGrammar(s.sess.ActiveGrammar() - 1)
		return s, nil
	case "down", "j":
		s.sess.SetActiveGrammar(s.sess.ActiveGrammar() + 1)
		return s, nil
	case "enter":
		if s.sess.Advance() {
			s.syncQuestionWidgets()
			return s, s.flushSave()
		}
	}
	return s, nil
}

func (s *LessonScreen) handleQuestionsKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "tab":
		s.moveQuestion(1)
		return s, s.scheduleSave(s.deps.EditDebounce)
	case "shift+tab":
		s.moveQuestion(-1)
		return s, s.scheduleSave(s.deps.EditDebounce)
	case "ctrl+d":
		return s.submitForEvaluation()
	}

	q := s.currentQuestion()
	if q == nil {
		return s, nil
	}

	switch q.Type {
	case lesson.QuestionMCQ:
		var changed bool
		s.choice, changed = s.choice.Update(msg)
		if changed {
			s.sess.SetAnswer(q.ID, strconv.Itoa(s.choice.Chosen))
			return s, s.scheduleSave(s.deps.EditDebounce)
		}
	case lesson.QuestionShort:
		if key == "enter" || key == "i" {
			if !s.sess.ReadOnly() {
				s.editing = true
				return s, s.answerArea.Focus()
			}
		}
	}
	return s, nil
}

func (s *LessonScreen) handleEvaluationKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "tab", "down", "j":
		s.moveQuestion(1)
	case "shift+tab", "up", "k":
		s.moveQuestion(-1)
	}
	return s, nil
}

func (s *LessonScreen) moveQuestion(delta int) {
	n := len(s.sess.Lesson().Questions)
	if n == 0 {
		return
	}
	cur := s.sess.ActiveQuestion()
	if s.sess.ReadOnly() {
		// Read-only sessions keep a local cursor since mutators no-op.
		cur = s.readOnlyCursor
	}
	next := (cur + delta + n) % n
	s.sess.SetActiveQuestion(next)
	s.readOnlyCursor = next
	s.syncQuestionWidgets()
}

func (s *LessonScreen) submitForEvaluation() (screen.Screen, tea.Cmd) {
	answers, ok := s.eval.Start(s.sess)
	if !ok {
		return s, nil
	}
	s.statusMsg = "evaluating..."

	// The pending progress is about to be superseded by completion.
	s.sched.Cancel()

	eval := s.eval
	return s, func() tea.Msg {
		ev, err := eval.Do(context.Background(), answers)
		return evaluationMsg{ev: ev, err: err}
	}
}

func (s *LessonScreen) submitExplain() (screen.Screen, tea.Cmd) {
	text := strings.TrimSpace(s.explainInput.Value())
	if text == "" {
		s.explainErr = "enter a word or phrase"
		return s, nil
	}
	s.explainBusy = true
	backend := s.deps.Backend
	return s, func() tea.Msg {
		item, err := backend.Explain(context.Background(), text)
		return explainMsg{item: item, err: err}
	}
}

func (s *LessonScreen) currentQuestion() *lesson.Question {
	qs := s.sess.Lesson().Questions
	if len(qs) == 0 {
		return nil
	}
	idx := s.sess.ActiveQuestion()
	if s.sess.ReadOnly() {
		idx = s.readOnlyCursor
	}
	if idx >= len(qs) {
		idx = len(qs) - 1
	}
	return &qs[idx]
}
