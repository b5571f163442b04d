package engine

import (
	"reflect"
	"testing"

	"tracer_study_backend/internal/model"
)

func TestValueForTextTypes(t *testing.T) {
	q := &Question{ID: "q", Type: model.Essay}

	v := ValueFor(q, "hello", nil)
	if v.Kind != KindText || v.Text != "hello" {
		t.Errorf("unexpected value %+v", v)
	}

	// Option ids are ignored for text questions.
	v = ValueFor(q, "hello", []string{"bogus"})
	if v.Kind != KindText {
		t.Errorf("text question produced kind %d", v.Kind)
	}
}

func TestValueForSingleSelect(t *testing.T) {
	q := &Question{
		ID: "q", Type: model.SingleChoice,
		Options: []Option{{ID: "a"}, {ID: "b"}},
	}

	v := ValueFor(q, "", []string{"b"})
	if v.Kind != KindSingle || v.OptionID != "b" {
		t.Errorf("unexpected value %+v", v)
	}

	// Unknown option ids are dropped, not stored.
	v = ValueFor(q, "", []string{"zzz"})
	if v.OptionID != "" || v.IsAnswered() {
		t.Errorf("unknown option should leave the answer empty, got %+v", v)
	}

	v = ValueFor(q, "", nil)
	if v.IsAnswered() {
		t.Error("empty selection should not count as answered")
	}
}

func TestValueForMultipleChoice(t *testing.T) {
	q := &Question{
		ID: "q", Type: model.MultipleChoice,
		Options: []Option{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}

	v := ValueFor(q, "", []string{"c", "zzz", "a"})
	if v.Kind != KindMulti {
		t.Fatalf("kind = %d, want multi", v.Kind)
	}
	if !reflect.DeepEqual(v.OptionIDs, []string{"c", "a"}) {
		t.Errorf("OptionIDs = %v, want [c a]", v.OptionIDs)
	}
}

func TestAnswerSetContains(t *testing.T) {
	set := AnswerSet{
		"s": SingleAnswer("x"),
		"m": MultiAnswer([]string{"p", "q"}),
		"t": TextAnswer("words"),
	}

	if !set.Contains("s", "x") || set.Contains("s", "y") {
		t.Error("single-answer containment wrong")
	}
	if !set.Contains("m", "q") || set.Contains("m", "r") {
		t.Error("multi-answer containment wrong")
	}
	if set.Contains("t", "words") {
		t.Error("text answers never contain options")
	}
	if set.Contains("missing", "x") {
		t.Error("unknown question should not contain anything")
	}
}

func TestDisplayAnswer(t *testing.T) {
	q := &Question{
		ID: "q", Type: model.MultipleChoice,
		Options: []Option{
			{ID: "a", Text: "Alpha", SortOrder: 1},
			{ID: "b", Text: "Beta", SortOrder: 2},
			{ID: "c", Text: "Gamma", SortOrder: 3},
		},
	}

	// Multi selections render in option sort order regardless of pick order.
	got := DisplayAnswer(q, MultiAnswer([]string{"c", "a"}))
	if got != "Alpha, Gamma" {
		t.Errorf("DisplayAnswer = %q, want %q", got, "Alpha, Gamma")
	}

	single := &Question{ID: "s", Type: model.SingleChoice, Options: []Option{{ID: "a", Text: "Alpha"}}}
	if got := DisplayAnswer(single, SingleAnswer("a")); got != "Alpha" {
		t.Errorf("DisplayAnswer = %q, want Alpha", got)
	}
	if got := DisplayAnswer(single, SingleAnswer("gone")); got != "" {
		t.Errorf("DisplayAnswer for dangling option = %q, want empty", got)
	}

	text := &Question{ID: "t", Type: model.Essay}
	if got := DisplayAnswer(text, TextAnswer("raw")); got != "raw" {
		t.Errorf("DisplayAnswer = %q, want raw", got)
	}
}

func TestSelectionState(t *testing.T) {
	q := &Question{
		ID: "q", Type: model.MultipleChoice,
		Options: []Option{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}

	state := SelectionState(q, MultiAnswer([]string{"b"}))
	want := map[string]bool{"a": false, "b": true, "c": false}
	if !reflect.DeepEqual(state, want) {
		t.Errorf("SelectionState = %v, want %v", state, want)
	}
}
