package document_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"quiz-companion/internal/document"
	"quiz-companion/internal/domain"
)

const sampleDoc = `{
  "context": {"uuid": "set-1", "label": "Week 3"},
  "config": {"container": "accordion"},
  "quizzes": [
    {
      "uuid": "q-1",
      "label": "Q1",
      "question": "What is 2 + 2?",
      "options": ["3", "4", "5"],
      "answer": 1,
      "groups": [1, 2]
    },
    {
      "uuid": "q-2",
      "question": "Which are prime?",
      "options": {"2": true, "4": false, "7": true},
      "groups": [2],
      "container": "none"
    },
    {
      "question": "Ungrouped, no uuid",
      "options": ["yes", "no"],
      "answer": 0,
      "groups": []
    }
  ]
}`

func TestParseValidDocument(t *testing.T) {
	set, err := document.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.UUID != "set-1" || set.Label != "Week 3" || set.Container != "accordion" {
		t.Fatalf("unexpected set header: %+v", set)
	}
	if len(set.Quizzes) != 3 {
		t.Fatalf("expected 3 quizzes, got %d", len(set.Quizzes))
	}

	single := set.Quizzes[0]
	if single.Options.Kind != domain.SingleChoice || single.Options.Answer != 1 {
		t.Fatalf("expected single-choice with answer 1, got %+v", single.Options)
	}

	multi := set.Quizzes[1]
	if multi.Options.Kind != domain.MultiChoice {
		t.Fatalf("expected multi-choice, got %+v", multi.Options)
	}
	if !reflect.DeepEqual(multi.Options.Choices, []string{"2", "4", "7"}) {
		t.Fatalf("option order not preserved: %v", multi.Options.Choices)
	}
	if !multi.Options.Correct["7"] || multi.Options.Correct["4"] {
		t.Fatalf("wrong correctness flags: %v", multi.Options.Correct)
	}

	if set.Quizzes[2].UUID != "" {
		t.Fatalf("expected third quiz without uuid")
	}
	if set.Quizzes[2].Groups != nil {
		t.Fatalf(`expected "groups": [] to normalize to nil, got %#v`, set.Quizzes[2].Groups)
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
	}{
		{
			name: "missing context uuid",
			doc:  `{"context": {"label": "x"}, "quizzes": []}`,
			path: "context.uuid",
		},
		{
			name: "duplicate quiz uuid",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"uuid": "q", "question": "a?", "options": ["x"], "answer": 0},
				{"uuid": "q", "question": "b?", "options": ["x"], "answer": 0}]}`,
			path: "quizzes[1].uuid",
		},
		{
			name: "answer out of range",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"question": "a?", "options": ["x", "y"], "answer": 2}]}`,
			path: "quizzes[0].options",
		},
		{
			name: "list form without answer",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"question": "a?", "options": ["x", "y"]}]}`,
			path: "quizzes[0].options",
		},
		{
			name: "mapping form with answer",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"question": "a?", "options": {"x": true}, "answer": 0}]}`,
			path: "quizzes[0].options",
		},
		{
			name: "mapping form with non-boolean value",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"question": "a?", "options": {"x": 1}}]}`,
			path: "quizzes[0].options",
		},
		{
			name: "options neither list nor mapping",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"question": "a?", "options": "x", "answer": 0}]}`,
			path: "quizzes[0].options",
		},
		{
			name: "negative group",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"question": "a?", "options": ["x"], "answer": 0, "groups": [-1]}]}`,
			path: "quizzes[0].groups[0]",
		},
		{
			name: "missing question",
			doc: `{"context": {"uuid": "s"}, "quizzes": [
				{"options": ["x"], "answer": 0}]}`,
			path: "quizzes[0].question",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := document.Parse([]byte(tc.doc))
			var docErr *domain.DocumentError
			if !errors.As(err, &docErr) {
				t.Fatalf("expected DocumentError, got %v", err)
			}
			if docErr.Path != tc.path {
				t.Fatalf("expected path %q, got %q (%s)", tc.path, docErr.Path, docErr.Reason)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	set, err := document.Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	data, err := document.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	again, err := document.Parse(data)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(set, again) {
		t.Fatalf("round trip changed the set:\nfirst:  %+v\nsecond: %+v", set, again)
	}
	if !strings.Contains(string(data), `"accordion"`) {
		t.Fatalf("expected set container in output:\n%s", data)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := document.Parse([]byte(`{"context": `))
	var docErr *domain.DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentError, got %v", err)
	}
}
