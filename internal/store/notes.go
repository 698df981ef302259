package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type noteRepo struct {
	db *sql.DB
}

func (r *noteRepo) Upsert(ctx context.Context, lessonID int, body string) error {
	if strings.TrimSpace(body) == "" {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM notes WHERE lesson_id = ?`, lessonID); err != nil {
			return fmt.Errorf("delete note: %w", err)
		}
		return nil
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET body = ?, updated_at = ? WHERE lesson_id = ?`,
		body, now, lessonID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO notes (lesson_id, body, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		lessonID, body, now, now)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *noteRepo) ForLesson(ctx context.Context, lessonID int) (*Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, body, created_at, updated_at
		 FROM notes WHERE lesson_id = ?`, lessonID,
	).Scan(&n.ID, &n.LessonID, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	return &n, nil
}

func (r *noteRepo) List(ctx context.Context) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, lesson_id, body, created_at, updated_at
		 FROM notes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.LessonID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
