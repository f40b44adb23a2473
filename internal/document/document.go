// Package document parses, validates, and serializes quiz-set documents.
// It is a pure transformation layer: no storage, no network.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"quiz-companion/internal/domain"
)

type rawDocument struct {
	Context rawContext `json:"context"`
	Config  rawConfig  `json:"config,omitempty"`
	Quizzes []rawQuiz  `json:"quizzes"`
}

type rawContext struct {
	UUID  string `json:"uuid"`
	Label string `json:"label,omitempty"`
}

type rawConfig struct {
	Container string `json:"container,omitempty"`
}

type rawQuiz struct {
	UUID      string          `json:"uuid,omitempty"`
	Label     string          `json:"label,omitempty"`
	Question  string          `json:"question"`
	Options   json.RawMessage `json:"options"`
	Answer    *int            `json:"answer,omitempty"`
	Groups    []int           `json:"groups,omitempty"`
	Container string          `json:"container,omitempty"`
}

// Parse turns a raw quiz-set document into a validated QuizSet. Failures are
// reported as *domain.DocumentError naming the offending field path.
func Parse(data []byte) (domain.QuizSet, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.QuizSet{}, &domain.DocumentError{Path: "$", Reason: err.Error()}
	}

	if raw.Context.UUID == "" {
		return domain.QuizSet{}, &domain.DocumentError{Path: "context.uuid", Reason: "required"}
	}

	set := domain.QuizSet{
		UUID:      raw.Context.UUID,
		Label:     raw.Context.Label,
		Container: raw.Config.Container,
	}

	seen := make(map[string]int, len(raw.Quizzes))
	for i, rq := range raw.Quizzes {
		path := fmt.Sprintf("quizzes[%d]", i)

		if rq.UUID != "" {
			if prev, dup := seen[rq.UUID]; dup {
				return domain.QuizSet{}, &domain.DocumentError{
					Path:   path + ".uuid",
					Reason: fmt.Sprintf("duplicate of quizzes[%d]", prev),
				}
			}
			seen[rq.UUID] = i
		}
		if rq.Question == "" {
			return domain.QuizSet{}, &domain.DocumentError{Path: path + ".question", Reason: "required"}
		}
		for j, g := range rq.Groups {
			if g < 0 {
				return domain.QuizSet{}, &domain.DocumentError{
					Path:   fmt.Sprintf("%s.groups[%d]", path, j),
					Reason: "must be a non-negative integer",
				}
			}
		}
		if len(rq.Groups) == 0 {
			// "groups": [] and an absent key mean the same thing; normalize
			// so a serialized set re-parses identically.
			rq.Groups = nil
		}

		opts, err := parseOptions(rq.Options, rq.Answer, path+".options")
		if err != nil {
			return domain.QuizSet{}, err
		}

		set.Quizzes = append(set.Quizzes, domain.Quiz{
			UUID:      rq.UUID,
			Label:     rq.Label,
			Question:  rq.Question,
			Options:   opts,
			Groups:    rq.Groups,
			Container: rq.Container,
		})
	}

	return set, nil
}

// parseOptions decodes the tagged union behind "options": a JSON array is the
// single-choice form (requires a valid "answer" index), a JSON object is the
// multi-choice form (forbids "answer"). Object key order is preserved so the
// document round-trips byte-order stable.
func parseOptions(raw json.RawMessage, answer *int, path string) (domain.Options, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return domain.Options{}, &domain.DocumentError{Path: path, Reason: "required"}
	}

	switch trimmed[0] {
	case '[':
		var choices []string
		if err := json.Unmarshal(trimmed, &choices); err != nil {
			return domain.Options{}, &domain.DocumentError{Path: path, Reason: "mixed list/mapping form"}
		}
		if len(choices) == 0 {
			return domain.Options{}, &domain.DocumentError{Path: path, Reason: "must not be empty"}
		}
		if answer == nil {
			return domain.Options{}, &domain.DocumentError{Path: path, Reason: "list form requires an answer index"}
		}
		if *answer < 0 || *answer >= len(choices) {
			return domain.Options{}, &domain.DocumentError{
				Path:   path,
				Reason: fmt.Sprintf("answer index %d out of range [0,%d)", *answer, len(choices)),
			}
		}
		return domain.Options{Kind: domain.SingleChoice, Choices: choices, Answer: *answer}, nil

	case '{':
		if answer != nil {
			return domain.Options{}, &domain.DocumentError{Path: path, Reason: "mapping form forbids an answer index"}
		}
		choices, correct, err := decodeOptionMap(trimmed)
		if err != nil {
			return domain.Options{}, &domain.DocumentError{Path: path, Reason: err.Error()}
		}
		if len(choices) == 0 {
			return domain.Options{}, &domain.DocumentError{Path: path, Reason: "must not be empty"}
		}
		return domain.Options{Kind: domain.MultiChoice, Choices: choices, Correct: correct}, nil

	default:
		return domain.Options{}, &domain.DocumentError{Path: path, Reason: "mixed list/mapping form"}
	}
}

// decodeOptionMap walks the object token by token so the option order in the
// document survives (encoding/json map decoding would scramble it).
func decodeOptionMap(raw []byte) ([]string, map[string]bool, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, nil, err
	}

	var choices []string
	correct := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("option key must be a string")
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		val, ok := valTok.(bool)
		if !ok {
			return nil, nil, fmt.Errorf("option %q: value must be a boolean", key)
		}
		if _, dup := correct[key]; dup {
			return nil, nil, fmt.Errorf("option %q: duplicate key", key)
		}
		choices = append(choices, key)
		correct[key] = val
	}
	return choices, correct, nil
}

// Marshal serializes a QuizSet back into the document format. Parsing the
// result yields an identical set.
func Marshal(set domain.QuizSet) ([]byte, error) {
	raw := rawDocument{
		Context: rawContext{UUID: set.UUID, Label: set.Label},
		Config:  rawConfig{Container: set.Container},
	}
	for i, q := range set.Quizzes {
		opts, answer, err := marshalOptions(q.Options)
		if err != nil {
			return nil, fmt.Errorf("quizzes[%d].options: %w", i, err)
		}
		raw.Quizzes = append(raw.Quizzes, rawQuiz{
			UUID:      q.UUID,
			Label:     q.Label,
			Question:  q.Question,
			Options:   opts,
			Answer:    answer,
			Groups:    q.Groups,
			Container: q.Container,
		})
	}
	return json.MarshalIndent(raw, "", "  ")
}

func marshalOptions(opts domain.Options) (json.RawMessage, *int, error) {
	switch opts.Kind {
	case domain.SingleChoice:
		data, err := json.Marshal(opts.Choices)
		if err != nil {
			return nil, nil, err
		}
		answer := opts.Answer
		return data, &answer, nil
	case domain.MultiChoice:
		// Hand-rolled object so the choice order is kept.
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, choice := range opts.Choices {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(choice)
			if err != nil {
				return nil, nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.WriteString(strconv.FormatBool(opts.Correct[choice]))
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown options kind %d", opts.Kind)
	}
}
