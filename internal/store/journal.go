package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type journalRepo struct {
	db *sql.DB
}

func (r *journalRepo) Append(ctx context.Context, e JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	var score sql.NullInt64
	if e.Score != nil {
		score = sql.NullInt64{Int64: int64(*e.Score), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journal (kind, lesson_id, score, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Kind, e.LessonID, score, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func (r *journalRepo) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, lesson_id, score, detail, created_at
		 FROM journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			e     JournalEntry
			score sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.LessonID, &score, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			e.Score = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
