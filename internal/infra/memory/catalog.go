package memory

import (
	"context"
	"fmt"

	"quiz-companion/internal/domain"
)

// StaticCatalog serves quiz sets from an in-memory map keyed by source
// reference (useful for tests/demos).
type StaticCatalog struct {
	sets map[string]domain.QuizSet
}

func NewStaticCatalog(sets map[string]domain.QuizSet) *StaticCatalog {
	return &StaticCatalog{sets: sets}
}

func (c *StaticCatalog) Resolve(_ context.Context, source string) (domain.QuizSet, string, error) {
	if set, ok := c.sets[source]; ok {
		return set, source, nil
	}
	return domain.QuizSet{}, "", fmt.Errorf("%q: %w", source, domain.ErrSourceNotFound)
}
