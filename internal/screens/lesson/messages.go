package lesson

import (
	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

// streamEventMsg carries one progress frame of the creation stream.
type streamEventMsg struct {
	ev api.StreamEvent
}

// lessonReadyMsg is sent when a lesson finished loading, either from the
// creation stream or a history fetch.
type lessonReadyMsg struct {
	lesson *lesson.Lesson
	err    error
}

// historyMsg carries the lesson history list.
type historyMsg struct {
	items []lesson.HistoryItem
	err   error
}

// evaluationMsg is the outcome of a submission.
type evaluationMsg struct {
	ev  *lesson.Evaluation
	err error
}

// explainMsg is the outcome of an explain lookup.
type explainMsg struct {
	item *lesson.VocabItem
	err  error
}

// noteLoadedMsg carries the stored note for the current lesson.
type noteLoadedMsg struct {
	note *store.Note
}

// noteSavedMsg confirms a note write.
type noteSavedMsg struct {
	err error
}
