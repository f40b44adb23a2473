package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"quiz-companion/internal/domain"
)

// RemoteClient is the narrow capability boundary to the aggregation service:
// at-least-once answer upload with idempotent application at the receiver,
// and aggregate reads. Implementations must bound every call with a timeout.
type RemoteClient interface {
	PushAnswers(ctx context.Context, uploads []domain.AnswerUpload) ([]domain.PushResult, error)
	FetchScoreboard(ctx context.Context, quizUUID string) (domain.Scoreboard, error)
}

// ScoreboardCache keeps the last successfully pulled scoreboard per quiz so
// a remote outage degrades to stale data instead of no data.
type ScoreboardCache interface {
	Get(ctx context.Context, quizUUID string) (domain.Scoreboard, bool)
	Put(ctx context.Context, board domain.Scoreboard)
}

// SyncEngine reconciles the local ledger with the remote aggregation
// service. It runs only when explicitly invoked; nothing here sits on the
// rendering path.
type SyncEngine struct {
	ledger AnswerLedger
	remote RemoteClient
	boards ScoreboardCache
	sf     singleflight.Group
}

func NewSyncEngine(ledger AnswerLedger, remote RemoteClient, boards ScoreboardCache) *SyncEngine {
	return &SyncEngine{ledger: ledger, remote: remote, boards: boards}
}

// Push sends every pending answer upstream. Accepted records become Synced,
// structurally rejected ones become Rejected (and leave the push feed for
// good), and on any transport failure everything stays Pending for the next
// attempt. Repeated pushes are harmless: the receiver upserts by latest
// timestamp.
func (e *SyncEngine) Push(ctx context.Context) (domain.SyncReport, error) {
	pending, err := e.ledger.Pending(ctx)
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("load pending answers: %w", err)
	}
	if len(pending) == 0 {
		return domain.SyncReport{}, nil
	}

	profile, err := e.ledger.ProfileUUID(ctx)
	if err != nil {
		return domain.SyncReport{}, fmt.Errorf("load profile: %w", err)
	}

	uploads := make([]domain.AnswerUpload, len(pending))
	for i, ans := range pending {
		uploads[i] = domain.AnswerUpload{
			ProfileUUID: profile,
			SourceUUID:  ans.SourceUUID,
			QuizUUID:    ans.QuizUUID,
			Selection:   ans.Selection,
			SubmittedAt: ans.SubmittedAt,
		}
	}

	report := domain.SyncReport{Attempted: len(pending)}
	results, err := e.remote.PushAnswers(ctx, uploads)
	if err != nil {
		// Everything stays pending; the next Push retries in full.
		return report, fmt.Errorf("push answers: %w", err)
	}
	if len(results) != len(pending) {
		return report, fmt.Errorf("push answers: got %d results for %d records: %w",
			len(results), len(pending), domain.ErrSyncUnavailable)
	}

	var synced []int64
	rejected := make(map[string][]int64)
	for i, res := range results {
		switch res.Status {
		case domain.PushAccepted:
			synced = append(synced, pending[i].ID)
		case domain.PushRejected:
			rejected[res.Reason] = append(rejected[res.Reason], pending[i].ID)
		default:
			// Unknown status: leave the record pending rather than guess.
			log.Printf("push: unknown result status %q for answer %d", res.Status, pending[i].ID)
		}
	}

	if len(synced) > 0 {
		if err := e.ledger.MarkSynced(ctx, synced); err != nil {
			return report, fmt.Errorf("mark synced: %w", err)
		}
		report.Synced = len(synced)
	}
	for reason, ids := range rejected {
		if err := e.ledger.MarkRejected(ctx, ids, reason); err != nil {
			return report, fmt.Errorf("mark rejected: %w", err)
		}
		report.Rejected += len(ids)
	}
	return report, nil
}

// Pull fetches the aggregate scoreboard for one quiz. Concurrent pulls for
// the same quiz collapse into one remote call. On failure the last cached
// board is served marked stale; with no cache the caller gets
// domain.ErrSyncUnavailable.
func (e *SyncEngine) Pull(ctx context.Context, quizUUID string) (domain.Scoreboard, error) {
	if quizUUID == "" {
		return domain.Scoreboard{}, domain.ErrMissingIdentity
	}

	v, err, _ := e.sf.Do(quizUUID, func() (interface{}, error) {
		board, err := e.remote.FetchScoreboard(ctx, quizUUID)
		if err != nil {
			if cached, ok := e.boards.Get(ctx, quizUUID); ok {
				log.Printf("scoreboard pull for %s failed, serving cached copy: %v", quizUUID, err)
				cached.Stale = true
				return cached, nil
			}
			return domain.Scoreboard{}, fmt.Errorf("fetch scoreboard: %w", err)
		}
		e.boards.Put(ctx, board)
		return board, nil
	})
	if err != nil {
		return domain.Scoreboard{}, err
	}
	return v.(domain.Scoreboard), nil
}
