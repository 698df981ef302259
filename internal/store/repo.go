package store

import (
	"context"
	"time"
)

// Credentials is the locally persisted login state.
type Credentials struct {
	Token   string
	Email   string
	SavedAt time.Time
}

// TokenRepo persists the single auth token for this machine.
type TokenRepo interface {
	// Save stores the credentials, replacing any previous ones.
	Save(ctx context.Context, c Credentials) error

	// Load returns the stored credentials, or nil if none exist.
	Load(ctx context.Context) (*Credentials, error)

	// Clear deletes the stored credentials.
	Clear(ctx context.Context) error
}

// Note is a free-form study note, optionally attached to a lesson.
// LessonID 0 means a global note.
type Note struct {
	ID        int64
	LessonID  int
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteRepo manages study notes.
type NoteRepo interface {
	// Upsert saves the note for a lesson (one note per lesson id).
	// Empty bodies delete the note.
	Upsert(ctx context.Context, lessonID int, body string) error

	// ForLesson returns the note for a lesson, or nil if none exists.
	ForLesson(ctx context.Context, lessonID int) (*Note, error)

	// List returns all notes, newest first.
	List(ctx context.Context) ([]Note, error)
}

// JournalEntry records one local activity, e.g. a completed lesson.
type JournalEntry struct {
	ID        int64
	Kind      string
	LessonID  int
	Score     *int
	Detail    string
	CreatedAt time.Time
}

// Journal entry kinds.
const (
	JournalLessonCompleted = "lesson_completed"
	JournalLessonStarted   = "lesson_started"
	JournalLogin           = "login"
)

// JournalRepo is an append-only log of local activity.
type JournalRepo interface {
	// Append records an entry.
	Append(ctx context.Context, e JournalEntry) error

	// Recent returns the latest entries, newest first.
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)
}
