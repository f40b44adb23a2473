package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-companion/internal/domain"
)

// SetCatalog resolves a quiz source reference into a parsed set. References
// follow the external convention: "" or "default" for the implicit set, an
// integer for a numbered set, otherwise a path or URL. The second return is
// the resolved location for display and audit.
type SetCatalog interface {
	Resolve(ctx context.Context, source string) (domain.QuizSet, string, error)
}

// AnswerLedger is the local append-only store of learner answers. It must be
// durable across restarts and reloadable to identical Current results.
type AnswerLedger interface {
	// Record appends an answer and returns it with its assigned ID. An
	// answer with an empty quiz UUID is still appended (local history) but
	// Record reports domain.ErrMissingIdentity and the record is excluded
	// from every sync feed.
	Record(ctx context.Context, ans domain.Answer) (domain.Answer, error)
	// Current returns the most recent answer for a quiz, or nil.
	Current(ctx context.Context, quizUUID string) (*domain.Answer, error)
	// History returns every answer for a quiz in submission order.
	History(ctx context.Context, quizUUID string) ([]domain.Answer, error)
	// Pending returns all pending answers with a quiz UUID, in submission order.
	Pending(ctx context.Context) ([]domain.Answer, error)
	// MarkSynced and MarkRejected transition records; both are idempotent
	// and only move records out of the pending state.
	MarkSynced(ctx context.Context, ids []int64) error
	MarkRejected(ctx context.Context, ids []int64, reason string) error
	// ProfileUUID is the stable random identifier of this learner profile,
	// created on first use. It carries no learner identity.
	ProfileUUID(ctx context.Context) (string, error)
}

// SelectRequest describes one display selection.
type SelectRequest struct {
	Source    string
	Group     *int   // nil selects every quiz; set filters by group tag
	Container string // raw container override, highest precedence
}

// QuizService implements quiz selection and answer recording. Recording is
// purely local and never touches the network.
type QuizService struct {
	catalog SetCatalog
	ledger  AnswerLedger
	now     func() time.Time
}

func NewQuizService(catalog SetCatalog, ledger AnswerLedger) *QuizService {
	return &QuizService{catalog: catalog, ledger: ledger, now: time.Now}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(catalog SetCatalog, ledger AnswerLedger, now func() time.Time) *QuizService {
	return &QuizService{catalog: catalog, ledger: ledger, now: now}
}

// Select builds a display plan: the chosen quizzes in document order, each
// with its resolved container and the learner's current answer for pre-fill.
func (s *QuizService) Select(ctx context.Context, req SelectRequest) (domain.DisplayPlan, error) {
	set, location, err := s.catalog.Resolve(ctx, req.Source)
	if err != nil {
		return domain.DisplayPlan{}, fmt.Errorf("select %q: %w", req.Source, err)
	}

	plan := domain.DisplayPlan{
		Source:     location,
		SourceUUID: set.UUID,
		Label:      set.Label,
	}
	for _, quiz := range set.Quizzes {
		if req.Group != nil && !quiz.InGroup(*req.Group) {
			continue
		}
		item := domain.PlanItem{
			Quiz:      quiz,
			Container: domain.ResolveContainer(req.Container, quiz, set),
		}
		if quiz.UUID != "" {
			current, err := s.ledger.Current(ctx, quiz.UUID)
			if err != nil {
				return domain.DisplayPlan{}, fmt.Errorf("load current answer for %s: %w", quiz.UUID, err)
			}
			item.Current = current
		}
		plan.Items = append(plan.Items, item)
	}
	return plan, nil
}

// Record grades a selection and appends it to the ledger as a pending
// answer. For a quiz without a UUID the answer is still kept locally and the
// caller gets domain.ErrMissingIdentity alongside the stored record.
func (s *QuizService) Record(ctx context.Context, set domain.QuizSet, quiz domain.Quiz, sel domain.Selection) (domain.Answer, error) {
	score, err := quiz.Grade(sel)
	if err != nil {
		return domain.Answer{}, err
	}
	return s.ledger.Record(ctx, domain.Answer{
		QuizUUID:    quiz.UUID,
		SourceUUID:  set.UUID,
		Selection:   sel,
		Score:       score,
		SubmittedAt: s.now(),
		SyncState:   domain.StatePending,
	})
}

// RecordFor resolves the source and quiz reference before recording; it is
// the entry point used by the host bridge, which addresses quizzes by UUID
// or, for UUID-less quizzes, by document position.
func (s *QuizService) RecordFor(ctx context.Context, source, quizUUID string, quizIndex int, sel domain.Selection) (domain.Answer, error) {
	set, _, err := s.catalog.Resolve(ctx, source)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("record for %q: %w", source, err)
	}

	quiz, ok := set.QuizByUUID(quizUUID)
	if !ok {
		if quizUUID != "" || quizIndex < 0 || quizIndex >= len(set.Quizzes) {
			return domain.Answer{}, fmt.Errorf("quiz %q (index %d): %w", quizUUID, quizIndex, domain.ErrQuizNotFound)
		}
		quiz = set.Quizzes[quizIndex]
	}
	return s.Record(ctx, set, quiz, sel)
}

// History exposes the full ledger trail for one quiz.
func (s *QuizService) History(ctx context.Context, quizUUID string) ([]domain.Answer, error) {
	if quizUUID == "" {
		return nil, domain.ErrMissingIdentity
	}
	return s.ledger.History(ctx, quizUUID)
}

// IsMissingIdentity reports whether an error is the partial-success signal
// from Record on a UUID-less quiz.
func IsMissingIdentity(err error) bool {
	return errors.Is(err, domain.ErrMissingIdentity)
}
