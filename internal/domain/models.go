package domain

import (
	"fmt"
	"time"
)

// QuizType discriminates the two option representations a quiz may use.
type QuizType int

const (
	// SingleChoice quizzes carry an ordered option list and exactly one
	// correct index.
	SingleChoice QuizType = iota + 1
	// MultiChoice quizzes carry a per-option correctness flag; any subset
	// of options may be checked.
	MultiChoice
)

// Options is the tagged union behind a quiz's answer choices. Only the
// fields belonging to Kind are populated; the other variant's fields stay
// zero.
type Options struct {
	Kind    QuizType        `json:"kind"`
	Choices []string        `json:"choices"`           // ordered option texts, both variants
	Answer  int             `json:"answer"`            // SingleChoice: index of the correct choice
	Correct map[string]bool `json:"correct,omitempty"` // MultiChoice: correctness flag per choice
}

// Quiz is one question inside a set. A quiz without a UUID can be rendered
// and answered locally but is never synchronized.
type Quiz struct {
	UUID      string  `json:"uuid,omitempty"`
	Label     string  `json:"label,omitempty"`
	Question  string  `json:"question"`
	Options   Options `json:"options"`
	Groups    []int   `json:"groups,omitempty"`
	Container string  `json:"container,omitempty"` // raw override name from the document, resolved lazily
}

// InGroup reports whether the quiz is tagged with the given group.
func (q Quiz) InGroup(group int) bool {
	for _, g := range q.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// QuizSet is one parsed quiz document. Sets are read-only after parsing.
type QuizSet struct {
	UUID      string `json:"uuid"`
	Label     string `json:"label,omitempty"`
	Container string `json:"container,omitempty"` // set-level default container name, may be empty
	Quizzes   []Quiz `json:"quizzes"`
}

// QuizByUUID returns the quiz with the given UUID, if present.
func (s QuizSet) QuizByUUID(uuid string) (Quiz, bool) {
	if uuid == "" {
		return Quiz{}, false
	}
	for _, q := range s.Quizzes {
		if q.UUID == uuid {
			return q, true
		}
	}
	return Quiz{}, false
}

// Selection kinds, mirroring the two option representations.
const (
	SelectionSingle = "single"
	SelectionMulti  = "multi"
)

// Selection is a learner's choice for one quiz: an index for single-choice
// quizzes, a set of checked option keys for multi-choice ones.
type Selection struct {
	Kind   string   `json:"kind"`
	Index  int      `json:"index,omitempty"`
	Picked []string `json:"picked,omitempty"`
}

// SingleSelection builds a single-choice selection.
func SingleSelection(index int) Selection {
	return Selection{Kind: SelectionSingle, Index: index}
}

// MultiSelection builds a multi-choice selection from the checked keys.
func MultiSelection(picked ...string) Selection {
	return Selection{Kind: SelectionMulti, Picked: picked}
}

// Grade scores a selection against the quiz key. Single-choice quizzes score
// 1 or 0; multi-choice quizzes score the fraction of options whose checked
// state matches the key.
func (q Quiz) Grade(sel Selection) (float64, error) {
	switch q.Options.Kind {
	case SingleChoice:
		if sel.Kind != SelectionSingle {
			return 0, fmt.Errorf("quiz %q expects a single choice: %w", q.Label, ErrSelectionMismatch)
		}
		if sel.Index < 0 || sel.Index >= len(q.Options.Choices) {
			return 0, fmt.Errorf("selection index %d out of range: %w", sel.Index, ErrSelectionMismatch)
		}
		if sel.Index == q.Options.Answer {
			return 1, nil
		}
		return 0, nil
	case MultiChoice:
		if sel.Kind != SelectionMulti {
			return 0, fmt.Errorf("quiz %q expects checked options: %w", q.Label, ErrSelectionMismatch)
		}
		picked := make(map[string]bool, len(sel.Picked))
		for _, key := range sel.Picked {
			if _, ok := q.Options.Correct[key]; !ok {
				return 0, fmt.Errorf("unknown option %q: %w", key, ErrSelectionMismatch)
			}
			picked[key] = true
		}
		matched := 0
		for _, choice := range q.Options.Choices {
			if picked[choice] == q.Options.Correct[choice] {
				matched++
			}
		}
		return float64(matched) / float64(len(q.Options.Choices)), nil
	default:
		return 0, fmt.Errorf("quiz %q has no options: %w", q.Label, ErrSelectionMismatch)
	}
}

// SyncState is the synchronization lifecycle of a recorded answer.
type SyncState string

const (
	StatePending  SyncState = "pending"
	StateSynced   SyncState = "synced"
	StateRejected SyncState = "rejected"
)

// Answer is one learner submission. Immutable once recorded except for the
// sync state transition.
type Answer struct {
	ID           int64     `json:"id"`
	QuizUUID     string    `json:"quiz_uuid,omitempty"`
	SourceUUID   string    `json:"source_uuid,omitempty"`
	Selection    Selection `json:"selection"`
	Score        float64   `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
	SyncState    SyncState `json:"sync_state"`
	RejectReason string    `json:"reject_reason,omitempty"`
}

// Scoreboard is the remote-derived aggregate for one quiz. Counts are keyed
// by option identifier: the option index for single-choice quizzes, the
// option key for multi-choice ones.
type Scoreboard struct {
	QuizUUID    string         `json:"quiz_uuid"`
	Respondents int            `json:"respondents"`
	Counts      map[string]int `json:"counts"`
	UpdatedAt   time.Time      `json:"updated_at"`
	// Stale marks a cached copy served because the remote was unreachable.
	Stale bool `json:"stale,omitempty"`
}

// AnswerUpload is the wire form of one answer pushed to the aggregation
// endpoint. ProfileUUID is the random per-profile identifier; no
// learner-identifying fields travel with it.
type AnswerUpload struct {
	ProfileUUID string    `json:"profile_uuid"`
	SourceUUID  string    `json:"source_uuid"`
	QuizUUID    string    `json:"quiz_uuid"`
	Selection   Selection `json:"selection"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Push result statuses returned by the aggregation endpoint.
const (
	PushAccepted = "accepted"
	PushRejected = "rejected"
)

// PushResult is the per-record outcome of a push, aligned positionally with
// the uploaded answers.
type PushResult struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// SyncReport summarizes one push attempt.
type SyncReport struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Rejected  int `json:"rejected"`
}

// DisplayPlan pairs selected quizzes with their resolved containers and the
// learner's current answers, ready for the host environment to render.
type DisplayPlan struct {
	Source     string     `json:"source"`
	SourceUUID string     `json:"source_uuid"`
	Label      string     `json:"label,omitempty"`
	Items      []PlanItem `json:"items"`
}

// PlanItem is one quiz scheduled for display.
type PlanItem struct {
	Quiz      Quiz          `json:"quiz"`
	Container ContainerKind `json:"container"`
	Current   *Answer       `json:"current,omitempty"`
}
