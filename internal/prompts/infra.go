package prompts

import (
	"context"
	"database/sql"
	"errors"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) GetByName(ctx context.Context, name string) (string, error) {
	var prompt string
	err := r.db.QueryRowContext(ctx, `
		SELECT prompt
		FROM tutor_personas
		WHERE name = $1
	`, name).Scan(&prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return prompt, nil
}
