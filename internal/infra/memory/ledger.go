package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"quiz-companion/internal/domain"
)

// Ledger is an in-memory implementation of app.AnswerLedger, used in tests
// and as a fallback when no profile directory is writable. It mirrors the
// SQLite ledger's semantics exactly, durability aside.
type Ledger struct {
	mu      sync.RWMutex
	answers []domain.Answer
	nextID  int64
	profile string
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1, profile: uuid.NewString()}
}

func (l *Ledger) Record(_ context.Context, ans domain.Answer) (domain.Answer, error) {
	l.mu.Lock()
	ans.ID = l.nextID
	l.nextID++
	l.answers = append(l.answers, ans)
	l.mu.Unlock()

	if ans.QuizUUID == "" {
		return ans, domain.ErrMissingIdentity
	}
	return ans, nil
}

func (l *Ledger) Current(_ context.Context, quizUUID string) (*domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.answers) - 1; i >= 0; i-- {
		if l.answers[i].QuizUUID == quizUUID {
			ans := l.answers[i]
			return &ans, nil
		}
	}
	return nil, nil
}

func (l *Ledger) History(_ context.Context, quizUUID string) ([]domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var history []domain.Answer
	for _, ans := range l.answers {
		if ans.QuizUUID == quizUUID {
			history = append(history, ans)
		}
	}
	return history, nil
}

func (l *Ledger) Pending(_ context.Context) ([]domain.Answer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var pending []domain.Answer
	for _, ans := range l.answers {
		if ans.SyncState == domain.StatePending && ans.QuizUUID != "" {
			pending = append(pending, ans)
		}
	}
	return pending, nil
}

func (l *Ledger) MarkSynced(_ context.Context, ids []int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		for i := range l.answers {
			if l.answers[i].ID == id && l.answers[i].SyncState == domain.StatePending {
				l.answers[i].SyncState = domain.StateSynced
			}
		}
	}
	return nil
}

func (l *Ledger) MarkRejected(_ context.Context, ids []int64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		for i := range l.answers {
			if l.answers[i].ID == id && l.answers[i].SyncState == domain.StatePending {
				l.answers[i].SyncState = domain.StateRejected
				l.answers[i].RejectReason = reason
			}
		}
	}
	return nil
}

func (l *Ledger) ProfileUUID(_ context.Context) (string, error) {
	return l.profile, nil
}
