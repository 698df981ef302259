package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type tokenRepo struct {
	db *sql.DB
}

func (r *tokenRepo) Save(ctx context.Context, c Credentials) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_token (id, token, email, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			email = excluded.email,
			saved_at = excluded.saved_at`,
		c.Token, c.Email, c.SavedAt)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *tokenRepo) Load(ctx context.Context) (*Credentials, error) {
	var c Credentials
	err := r.db.QueryRowContext(ctx,
		`SELECT token, email, saved_at FROM auth_token WHERE id = 1`,
	).Scan(&c.Token, &c.Email, &c.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &c, nil
}

func (r *tokenRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_token WHERE id = 1`); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
