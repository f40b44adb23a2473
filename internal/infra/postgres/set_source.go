package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-companion/internal/document"
	"quiz-companion/internal/domain"
)

// SetSource resolves quiz sets from a Postgres catalog of JSONB documents,
// for deployments where course staff publish sets centrally instead of
// shipping files. It implements app.SetCatalog; the source reference is the
// set alias.
type SetSource struct {
	pool *pgxpool.Pool
}

func NewSetSource(pool *pgxpool.Pool) *SetSource {
	return &SetSource{pool: pool}
}

func (s *SetSource) Resolve(ctx context.Context, source string) (domain.QuizSet, string, error) {
	if source == "" {
		source = "default"
	}
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quiz_sets WHERE alias=$1`, source).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizSet{}, "", fmt.Errorf("%q: %w", source, domain.ErrSourceNotFound)
	}
	if err != nil {
		return domain.QuizSet{}, "", fmt.Errorf("load quiz set %q: %w", source, err)
	}

	set, err := document.Parse(raw)
	if err != nil {
		return domain.QuizSet{}, "", fmt.Errorf("quiz set %q: %w", source, err)
	}
	return set, "postgres:" + source, nil
}
