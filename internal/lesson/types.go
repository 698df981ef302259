package lesson

// Step identifies one stage of the reading-lesson flow.
type Step string

const (
	StepVocab      Step = "vocab"
	StepArticle    Step = "article"
	StepGrammar    Step = "grammar"
	StepQuestions  Step = "questions"
	StepEvaluation Step = "evaluation"
)

// StepOrder is the forward order of the lesson flow.
var StepOrder = []Step{StepVocab, StepArticle, StepGrammar, StepQuestions, StepEvaluation}

// Index returns the step's position in StepOrder, or -1 for an unknown step.
func (s Step) Index() int {
	for i, step := range StepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// QuestionType distinguishes multiple-choice from short-answer questions.
type QuestionType string

const (
	QuestionMCQ   QuestionType = "mcq"
	QuestionShort QuestionType = "short"
)

// VocabItem is one vocabulary entry of a lesson.
type VocabItem struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// GrammarExample is one example sentence for a grammar rule.
type GrammarExample struct {
	Sentence    string `json:"sentence"`
	Explanation string `json:"explanation"`
}

// GrammarItem is one grammar rule of a lesson.
type GrammarItem struct {
	Rule        string           `json:"rule"`
	Explanation string           `json:"explanation"`
	Examples    []GrammarExample `json:"examples"`
}

// Question is one comprehension question of a lesson.
type Question struct {
	ID      int          `json:"id"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"question"`
	Options []string     `json:"options"`
}

// Article is the reading text of a lesson.
type Article struct {
	ID         int      `json:"id"`
	UserID     *int     `json:"user_id"`
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Progress is the resumable cursor through a lesson. It is persisted
// server-side as an idempotent full replace and is meaningless without
// its owning lesson.
type Progress struct {
	CurrentStep         Step           `json:"current_step"`
	VocabRead           []bool         `json:"vocab_read"`
	ArticleReadOnce     bool           `json:"article_read_once"`
	Answers             map[int]string `json:"answers"`
	ActiveVocabIndex    int            `json:"active_vocab_index"`
	ActiveQuestionIndex int            `json:"active_question_index"`
}

// QuestionFeedback is the per-question verdict inside an Evaluation.
type QuestionFeedback struct {
	QuestionID         int    `json:"question_id"`
	Correct            bool   `json:"correct"`
	CorrectOptionIndex *int   `json:"correct_option_index,omitempty"`
	IdealAnswer        string `json:"ideal_answer,omitempty"`
	Explanation        string `json:"explanation,omitempty"`
}

// Evaluation is the scored feedback produced once per lesson.
type Evaluation struct {
	Score       int                `json:"score"`
	Summary     string             `json:"summary"`
	FocusAreas  []string           `json:"focus_areas"`
	PerQuestion []QuestionFeedback `json:"per_question"`
}

// Feedback returns the feedback for a question id, or nil.
func (e *Evaluation) Feedback(questionID int) *QuestionFeedback {
	for i := range e.PerQuestion {
		if e.PerQuestion[i].QuestionID == questionID {
			return &e.PerQuestion[i]
		}
	}
	return nil
}

// Lesson is one day's (or one historical) reading-lesson bundle as
// returned by the backend.
type Lesson struct {
	Article    Article       `json:"lesson"`
	Questions  []Question    `json:"questions"`
	Vocabs     []VocabItem   `json:"vocabs"`
	Grammar    []GrammarItem `json:"grammar,omitempty"`
	Progress   *Progress     `json:"progress,omitempty"`
	Completed  bool          `json:"completed,omitempty"`
	IsToday    *bool         `json:"is_today,omitempty"`
	CreatedAt  string        `json:"created_at,omitempty"`
	Evaluation *Evaluation   `json:"evaluation,omitempty"`
}

// Today reports whether this is today's lesson. The backend omits the
// flag on a freshly created lesson, which is always today's.
func (l *Lesson) Today() bool {
	return l.IsToday == nil || *l.IsToday
}

// ReadOnly reports whether the lesson accepts no further writes.
func (l *Lesson) ReadOnly() bool {
	return l.Completed || !l.Today()
}

// HistoryItem is one row of the lesson history list.
type HistoryItem struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Score     *int    `json:"score"`
	Completed bool    `json:"completed"`
	CreatedAt *string `json:"created_at"`
}

// AnswerSubmission is one answer in an evaluation request.
type AnswerSubmission struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}
