package lesson

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/components"
	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

func (s *LessonScreen) View(width, height int) string {
	switch {
	case s.showHistory:
		return s.viewHistory(width, height)
	case s.phase == phaseStreaming:
		return s.viewStream(width, height)
	case s.phase == phaseLoading:
		return center(width, height, theme.Hint.Render("loading lesson..."))
	case s.phase == phaseFailed:
		return center(width, height,
			theme.Incorrect.Render(s.loadErr)+"\n\n"+
				theme.Hint.Render("r retry · esc back"))
	}

	if s.showNotes {
		return s.viewNotes(width, height)
	}

	var b strings.Builder
	b.WriteString(s.viewStepTracker())
	b.WriteString("\n\n")

	switch s.sess.Step() {
	case lesson.StepVocab:
		b.WriteString(s.viewVocab())
	case lesson.StepArticle:
		b.WriteString(s.viewArticle(width))
	case lesson.StepGrammar:
		b.WriteString(s.viewGrammar())
	case lesson.StepQuestions:
		b.WriteString(s.viewQuestions())
	case lesson.StepEvaluation:
		b.WriteString(s.viewEvaluation())
	}

	if s.explainMode {
		b.WriteString("\n\n")
		b.WriteString(s.viewExplain())
	}
	if s.statusMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(s.statusMsg))
	}
	if s.sess.ReadOnly() && s.sess.Step() != lesson.StepEvaluation {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("read-only: this lesson is finished"))
	}

	card := theme.Card.Width(min(width-4, 88)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *LessonScreen) viewStepTracker() string {
	labels := []string{"Vocabulary", "Article"}
	current := s.sess.Step().Index()
	hasGrammar := len(s.sess.Lesson().Grammar) > 0
	if hasGrammar {
		labels = append(labels, "Grammar")
	} else if current > lesson.StepGrammar.Index() {
		current--
	}
	labels = append(labels, "Questions", "Results")

	title := theme.Title.Render(s.sess.Lesson().Article.Title)
	tracker := components.StepTracker{Labels: labels, Current: current}
	return title + "\n" + tracker.View()
}

func (s *LessonScreen) viewVocab() string {
	l := s.sess.Lesson()
	flags := s.sess.VocabReadFlags()
	active := s.sess.ActiveVocab()

	var b strings.Builder
	for i, v := range l.Vocabs {
		badge := theme.UnreadBadge.Render("○")
		if i < len(flags) && flags[i] {
			badge = theme.ReadBadge.Render("✓")
		}
		line := fmt.Sprintf("%s %s", badge, v.Term)
		if i == active {
			b.WriteString(theme.Selected.Render("▸ ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if active < len(l.Vocabs) {
		v := l.Vocabs[active]
		detail := theme.Body.Bold(true).Render(v.Term) + "\n" +
			theme.Body.Render(v.Meaning)
		if v.Example != "" {
			detail += "\n" + theme.Hint.Render("„"+v.Example+"“")
		}
		b.WriteString("\n" + theme.Card.Render(detail) + "\n")
	}

	if n := len(l.Vocabs); n > 0 {
		read := 0
		for _, f := range flags {
			if f {
				read++
			}
		}
		bar := components.NewProgressBar("Read", float64(read)/float64(n), true, 40)
		b.WriteString("\n" + bar.View() + "\n")
	}

	if s.sess.AllVocabRead() {
		b.WriteString("\n" + theme.Hint.Render("enter: read the article →"))
	} else {
		b.WriteString("\n" + theme.Hint.Render("read every word to continue"))
	}
	return b.String()
}

func (s *LessonScreen) viewArticle(width int) string {
	l := s.sess.Lesson()

	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(min(width-12, 80))
	for _, p := range l.Article.Paragraphs {
		b.WriteString(wrap.Foreground(theme.Text).Render(p))
		b.WriteString("\n\n")
	}

	if s.sess.ArticleReadOnce() {
		b.WriteString(theme.ReadBadge.Render("✓ I read the whole article"))
		b.WriteString("\n" + theme.Hint.Render("enter: continue → · e: explain a word"))
	} else {
		b.WriteString(theme.UnreadBadge.Render("○ I read the whole article") +
			theme.Hint.Render("  (press r when done)"))
		b.WriteString("\n" + theme.Hint.Render("e: explain a word"))
	}
	return b.String()
}

func (s *LessonScreen) viewGrammar() string {
	items := s.sess.Lesson().Grammar
	flags := s.sess.GrammarReadFlags()
	active := s.sess.ActiveGrammar()

	var b strings.Builder
	for i, g := range items {
		badge := theme.UnreadBadge.Render("○")
		if i < len(flags) && flags[i] {
			badge = theme.ReadBadge.Render("✓")
		}
		if i == active {
			b.WriteString(theme.Selected.Render("▸ ") + badge + " " + g.Rule + "\n")
		} else {
			b.WriteString("  " + badge + " " + g.Rule + "\n")
		}
	}

	if active < len(items) {
		g := items[active]
		detail := theme.Body.Bold(true).Render(g.Rule) + "\n" +
			theme.Body.Render(g.Explanation)
		for _, ex := range g.Examples {
			detail += "\n" + theme.Hint.Render("„"+ex.Sentence+"“ ("+ex.Explanation+")")
		}
		b.WriteString("\n" + theme.Card.Render(detail) + "\n")
	}

	if s.sess.AllGrammarRead() {
		b.WriteString("\n" + theme.Hint.Render("enter: questions →"))
	}
	return b.String()
}

func (s *LessonScreen) viewQuestions() string {
	qs := s.sess.Lesson().Questions
	q := s.currentQuestion()
	if q == nil {
		return theme.Hint.Render("no questions in this lesson")
	}

	var b strings.Builder

	// Answered markers across questions.
	var markers []string
	for i, question := range qs {
		label := fmt.Sprintf("%d", i+1)
		answered := strings.TrimSpace(s.sess.Answer(question.ID)) != ""
		switch {
		case question.ID == q.ID:
			markers = append(markers, theme.StepActive.Render("["+label+"]"))
		case answered:
			markers = append(markers, theme.StepDone.Render(label))
		default:
			markers = append(markers, theme.StepPending.Render(label))
		}
	}
	b.WriteString(strings.Join(markers, " ") + "\n\n")

	switch q.Type {
	case lesson.QuestionMCQ:
		b.WriteString(s.choice.View())
	case lesson.QuestionShort:
		b.WriteString(theme.Body.Bold(true).Render(q.Prompt) + "\n\n")
		if s.editing {
			b.WriteString(s.answerArea.View())
		} else {
			answer := s.sess.Answer(q.ID)
			if strings.TrimSpace(answer) == "" {
				b.WriteString(theme.Hint.Render("(press enter to answer)"))
			} else {
				b.WriteString(theme.Body.Render(answer))
			}
		}
	}

	if s.sess.Evaluating() {
		b.WriteString("\n\n" + theme.Hint.Render("evaluating your answers..."))
	} else if s.sess.AllQuestionsAnswered() && !s.sess.ReadOnly() {
		b.WriteString("\n\n" + theme.StepActive.Render("all answered — ctrl+d to submit"))
	}
	return b.String()
}

func (s *LessonScreen) viewEvaluation() string {
	ev := s.sess.Evaluation()
	if ev == nil {
		return theme.Hint.Render("no evaluation yet")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Score: %d", ev.Score)) + "\n\n")
	if ev.Summary != "" {
		b.WriteString(theme.Body.Render(ev.Summary) + "\n\n")
	}
	if len(ev.FocusAreas) > 0 {
		b.WriteString(theme.Body.Bold(true).Render("Focus next on:") + "\n")
		for _, f := range ev.FocusAreas {
			b.WriteString(theme.Body.Render("  · "+f) + "\n")
		}
		b.WriteString("\n")
	}

	q := s.currentQuestion()
	if q != nil {
		b.WriteString(theme.StepPending.Render("── question feedback (tab to cycle) ──") + "\n\n")
		b.WriteString(theme.Body.Bold(true).Render(q.Prompt) + "\n")
		answer := s.sess.Answer(q.ID)
		if answer != "" {
			b.WriteString(theme.Body.Render("Your answer: "+s.displayAnswer(q, answer)) + "\n")
		}
		if fb := s.feedbackFor(q.ID); fb != nil {
			if fb.Correct {
				b.WriteString(theme.Correct.Render("✓ correct") + "\n")
			} else {
				b.WriteString(theme.Incorrect.Render("✗ not quite") + "\n")
				if fb.IdealAnswer != "" {
					b.WriteString(theme.Body.Render("Better: "+fb.IdealAnswer) + "\n")
				}
			}
			if fb.Explanation != "" {
				b.WriteString(theme.Hint.Render(fb.Explanation) + "\n")
			}
		}
	}
	return b.String()
}

// displayAnswer maps a stored mcq answer index back to its option text.
func (s *LessonScreen) displayAnswer(q *lesson.Question, answer string) string {
	if q.Type != lesson.QuestionMCQ {
		return answer
	}
	var i int
	if _, err := fmt.Sscanf(answer, "%d", &i); err == nil && i >= 0 && i < len(q.Options) {
		return q.Options[i]
	}
	return answer
}

func (s *LessonScreen) viewStream(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Preparing today's lesson") + "\n\n")
	for i, ev := range s.streamLog {
		line := ev.Message
		if line == "" {
			line = ev.Step
		}
		if i == len(s.streamLog)-1 {
			b.WriteString(theme.StepActive.Render("● "+line) + "\n")
		} else {
			b.WriteString(theme.StepDone.Render("✓ "+line) + "\n")
		}
	}
	if len(s.streamLog) == 0 {
		b.WriteString(theme.Hint.Render("contacting the server..."))
	}
	return center(width, height, theme.Card.Width(min(width-4, 64)).Render(b.String()))
}

func (s *LessonScreen) viewHistory(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Lesson history") + "\n\n")

	switch {
	case s.historyBusy:
		b.WriteString(theme.Hint.Render("loading..."))
	case s.historyErr != "":
		b.WriteString(theme.Incorrect.Render(s.historyErr))
	case len(s.history) == 0:
		b.WriteString(theme.Hint.Render("no past lessons yet"))
	default:
		for i, item := range s.history {
			status := theme.UnreadBadge.Render("in progress")
			if item.Completed {
				if item.Score != nil {
					status = theme.ReadBadge.Render(fmt.Sprintf("scored %d", *item.Score))
				} else {
					status = theme.ReadBadge.Render("completed")
				}
			}
			date := ""
			if item.CreatedAt != nil {
				date = *item.CreatedAt
				if len(date) > 10 {
					date = date[:10]
				}
			}
			line := fmt.Sprintf("%-40s %s  %s", truncate(item.Title, 40), date, status)
			if i == s.historyCursor {
				b.WriteString(theme.Selected.Render("▸ "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	return center(width, height, theme.Card.Width(min(width-4, 76)).Render(b.String()))
}

func (s *LessonScreen) viewNotes(width, height int) string {
	content := theme.Title.Render("Notes") + "\n\n" + s.notesArea.View() + "\n\n" +
		theme.Hint.Render("esc: save & close")
	return center(width, height, theme.Card.Width(min(width-4, 68)).Render(content))
}

func (s *LessonScreen) viewExplain() string {
	b := s.explainInput.View()
	if s.explainBusy {
		b += "\n" + theme.Hint.Render("looking it up...")
	}
	if s.explainErr != "" {
		b += "\n" + theme.Incorrect.Render(s.explainErr)
	}
	return theme.Card.Render(b)
}

func center(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
