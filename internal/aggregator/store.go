// Package aggregator is the reference aggregation service: it applies answer
// uploads as idempotent upserts keyed by (quiz_uuid, profile_uuid), keeping
// the latest submission per profile, and serves anonymous aggregate
// scoreboards. Production runs it on Postgres; tests use a SQLite file.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"

	"quiz-companion/internal/domain"
)

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions,alias:submissions"`

	QuizUUID    string    `bun:"quiz_uuid,pk"`
	ProfileUUID string    `bun:"profile_uuid,pk"`
	SourceUUID  string    `bun:"source_uuid,notnull"`
	Selection   string    `bun:"selection,notnull"`
	SubmittedAt time.Time `bun:"submitted_at,notnull"`
}

// RejectError marks an upload the service refuses structurally. The client
// transitions the corresponding record to Rejected and stops retrying it.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string {
	return "submission rejected: " + e.Reason
}

// Store applies uploads and computes scoreboards.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Upsert applies one upload. Re-sending the same upload is a no-op and an
// older submission never overwrites a newer one, which is what makes the
// client's at-least-once push safe.
func (s *Store) Upsert(ctx context.Context, up domain.AnswerUpload) error {
	if err := validateUpload(up); err != nil {
		return err
	}

	sel, err := json.Marshal(up.Selection)
	if err != nil {
		return &RejectError{Reason: "unreadable selection"}
	}

	row := submissionRow{
		QuizUUID:    up.QuizUUID,
		ProfileUUID: up.ProfileUUID,
		SourceUUID:  up.SourceUUID,
		Selection:   string(sel),
		SubmittedAt: up.SubmittedAt.UTC(),
	}
	_, err = s.db.NewInsert().Model(&row).
		On("CONFLICT (quiz_uuid, profile_uuid) DO UPDATE").
		Set("source_uuid = EXCLUDED.source_uuid").
		Set("selection = EXCLUDED.selection").
		Set("submitted_at = EXCLUDED.submitted_at").
		Where("EXCLUDED.submitted_at >= submissions.submitted_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

func validateUpload(up domain.AnswerUpload) error {
	switch {
	case up.QuizUUID == "":
		return &RejectError{Reason: "missing quiz_uuid"}
	case up.ProfileUUID == "":
		return &RejectError{Reason: "missing profile_uuid"}
	case up.SubmittedAt.IsZero():
		return &RejectError{Reason: "missing submitted_at"}
	case up.Selection.Kind != domain.SelectionSingle && up.Selection.Kind != domain.SelectionMulti:
		return &RejectError{Reason: "unknown selection kind"}
	}
	return nil
}

// Scoreboard aggregates the latest submission of every profile for one quiz:
// per-option counts plus the number of distinct respondents. Unknown quizzes
// yield an empty board, not an error.
func (s *Store) Scoreboard(ctx context.Context, quizUUID string) (domain.Scoreboard, error) {
	var rows []submissionRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_uuid = ?", quizUUID).
		Scan(ctx)
	if err != nil {
		return domain.Scoreboard{}, fmt.Errorf("load submissions: %w", err)
	}

	board := domain.Scoreboard{
		QuizUUID:  quizUUID,
		Counts:    make(map[string]int),
		UpdatedAt: s.now().UTC(),
	}
	for _, row := range rows {
		var sel domain.Selection
		if err := json.Unmarshal([]byte(row.Selection), &sel); err != nil {
			continue // tolerate rows written by newer selection formats
		}
		board.Respondents++
		switch sel.Kind {
		case domain.SelectionSingle:
			board.Counts[strconv.Itoa(sel.Index)]++
		case domain.SelectionMulti:
			for _, key := range sel.Picked {
				board.Counts[key]++
			}
		}
	}
	return board, nil
}
