// Package sqlite holds the durable answer ledger. One database file per
// learner profile, reloaded at session start; reloading reconstructs
// identical Current results for every quiz ever answered.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os/user"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"quiz-companion/internal/domain"
)

type answerRow struct {
	bun.BaseModel `bun:"table:answers"`

	ID           int64     `bun:"id,pk,autoincrement"`
	QuizUUID     string    `bun:"quiz_uuid,notnull"`
	SourceUUID   string    `bun:"source_uuid,notnull"`
	Selection    string    `bun:"selection,notnull"`
	Score        float64   `bun:"score,notnull"`
	SubmittedAt  time.Time `bun:"submitted_at,notnull"`
	SyncState    string    `bun:"sync_state,notnull"`
	RejectReason string    `bun:"reject_reason"`
}

type profileRow struct {
	bun.BaseModel `bun:"table:profile"`

	UUID      string    `bun:"uuid,pk"`
	Alias     string    `bun:"alias"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Ledger is the SQLite-backed app.AnswerLedger.
type Ledger struct {
	db      *bun.DB
	profile string
}

// Open opens (or creates) the ledger at path and bootstraps the anonymous
// learner profile: a random UUID plus the OS username as a local alias. The
// UUID is the pseudonymous key used by sync; the alias never leaves the
// machine.
func Open(ctx context.Context, path string) (*Ledger, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// The ledger is single-session; one connection avoids sqlite lock churn.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{(*answerRow)(nil), (*profileRow)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("create ledger schema: %w", err)
		}
	}

	profile, err := ensureProfile(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db, profile: profile}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func ensureProfile(ctx context.Context, db *bun.DB) (string, error) {
	var row profileRow
	err := db.NewSelect().Model(&row).OrderExpr("created_at ASC").Limit(1).Scan(ctx)
	if err == nil {
		return row.UUID, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("load profile: %w", err)
	}

	row = profileRow{
		UUID:      uuid.NewString(),
		Alias:     localAlias(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return "", fmt.Errorf("create profile: %w", err)
	}
	return row.UUID, nil
}

func localAlias() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "learner"
}

func (l *Ledger) Record(ctx context.Context, ans domain.Answer) (domain.Answer, error) {
	sel, err := json.Marshal(ans.Selection)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("encode selection: %w", err)
	}
	row := answerRow{
		QuizUUID:     ans.QuizUUID,
		SourceUUID:   ans.SourceUUID,
		Selection:    string(sel),
		Score:        ans.Score,
		SubmittedAt:  ans.SubmittedAt.UTC(),
		SyncState:    string(domain.StatePending),
		RejectReason: "",
	}
	if _, err := l.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Answer{}, fmt.Errorf("append answer: %w", err)
	}
	ans.ID = row.ID
	ans.SyncState = domain.StatePending

	if ans.QuizUUID == "" {
		// Kept for local history, invisible to sync.
		return ans, domain.ErrMissingIdentity
	}
	return ans, nil
}

func (l *Ledger) Current(ctx context.Context, quizUUID string) (*domain.Answer, error) {
	var row answerRow
	err := l.db.NewSelect().Model(&row).
		Where("quiz_uuid = ?", quizUUID).
		OrderExpr("id DESC").
		Limit(1).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current answer: %w", err)
	}
	ans, err := row.toAnswer()
	if err != nil {
		return nil, err
	}
	return &ans, nil
}

func (l *Ledger) History(ctx context.Context, quizUUID string) ([]domain.Answer, error) {
	var rows []answerRow
	err := l.db.NewSelect().Model(&rows).
		Where("quiz_uuid = ?", quizUUID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load answer history: %w", err)
	}
	return toAnswers(rows)
}

func (l *Ledger) Pending(ctx context.Context) ([]domain.Answer, error) {
	var rows []answerRow
	err := l.db.NewSelect().Model(&rows).
		Where("sync_state = ?", string(domain.StatePending)).
		Where("quiz_uuid <> ''").
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending answers: %w", err)
	}
	return toAnswers(rows)
}

// MarkSynced transitions pending records to synced. Re-marking records is a
// no-op, and each row flips atomically, so a reader racing a sync push sees
// either state but never a half-written record.
func (l *Ledger) MarkSynced(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := l.db.NewUpdate().Model((*answerRow)(nil)).
		Set("sync_state = ?", string(domain.StateSynced)).
		Where("id IN (?)", bun.In(ids)).
		Where("sync_state = ?", string(domain.StatePending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (l *Ledger) MarkRejected(ctx context.Context, ids []int64, reason string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := l.db.NewUpdate().Model((*answerRow)(nil)).
		Set("sync_state = ?", string(domain.StateRejected)).
		Set("reject_reason = ?", reason).
		Where("id IN (?)", bun.In(ids)).
		Where("sync_state = ?", string(domain.StatePending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("mark rejected: %w", err)
	}
	return nil
}

func (l *Ledger) ProfileUUID(_ context.Context) (string, error) {
	return l.profile, nil
}

func (r answerRow) toAnswer() (domain.Answer, error) {
	var sel domain.Selection
	if err := json.Unmarshal([]byte(r.Selection), &sel); err != nil {
		return domain.Answer{}, fmt.Errorf("decode selection of answer %d: %w", r.ID, err)
	}
	return domain.Answer{
		ID:           r.ID,
		QuizUUID:     r.QuizUUID,
		SourceUUID:   r.SourceUUID,
		Selection:    sel,
		Score:        r.Score,
		SubmittedAt:  r.SubmittedAt,
		SyncState:    domain.SyncState(r.SyncState),
		RejectReason: r.RejectReason,
	}, nil
}

func toAnswers(rows []answerRow) ([]domain.Answer, error) {
	answers := make([]domain.Answer, 0, len(rows))
	for _, row := range rows {
		ans, err := row.toAnswer()
		if err != nil {
			return nil, err
		}
		answers = append(answers, ans)
	}
	return answers, nil
}
