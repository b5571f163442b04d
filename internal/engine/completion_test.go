package engine

import (
	"reflect"
	"testing"

	"tracer_study_backend/internal/model"
)

func TestScoreNoAnswers(t *testing.T) {
	g := testGraph()
	c := Score(g, AnswerSet{})

	// Required and visible with no answers: q1, c1, c2.
	if c.TotalRequired != 3 {
		t.Errorf("TotalRequired = %d, want 3", c.TotalRequired)
	}
	if c.AnsweredRequired != 0 {
		t.Errorf("AnsweredRequired = %d, want 0", c.AnsweredRequired)
	}
	if c.Percentage != 0 {
		t.Errorf("Percentage = %d, want 0", c.Percentage)
	}
}

func TestScoreGrowsWithBranches(t *testing.T) {
	g := testGraph()

	// Answering q1=yes reveals the required q2 and q5, so the denominator
	// grows from 3 to 5.
	c := Score(g, AnswerSet{"q1": SingleAnswer("yes")})
	if c.TotalRequired != 5 {
		t.Errorf("TotalRequired = %d, want 5", c.TotalRequired)
	}
	if c.AnsweredRequired != 1 {
		t.Errorf("AnsweredRequired = %d, want 1", c.AnsweredRequired)
	}
	if c.Percentage != 20 {
		t.Errorf("Percentage = %d, want 20", c.Percentage)
	}
}

func TestScoreFullCompletion(t *testing.T) {
	g := testGraph()
	answers := AnswerSet{
		"q1": SingleAnswer("yes"),
		"q2": TextAnswer("essay body"),
		"q5": SingleAnswer("o51"),
		"q6": TextAnswer("chained answer"),
		"c1": SingleAnswer("scale1"),
		"c2": SingleAnswer("scale2"),
	}
	c := Score(g, answers)

	if c.TotalRequired != 6 || c.AnsweredRequired != 6 {
		t.Errorf("got %d/%d, want 6/6", c.AnsweredRequired, c.TotalRequired)
	}
	if c.Percentage != 100 {
		t.Errorf("Percentage = %d, want 100", c.Percentage)
	}
}

func TestScoreBlankTextNotAnswered(t *testing.T) {
	g := testGraph()
	answers := AnswerSet{
		"q1": SingleAnswer("yes"),
		"q2": TextAnswer("   "),
	}
	c := Score(g, answers)
	if c.AnsweredRequired != 1 {
		t.Errorf("whitespace-only essay counted as answered: %d/%d", c.AnsweredRequired, c.TotalRequired)
	}
}

func TestScoreZeroRequiredIsComplete(t *testing.T) {
	sections := []Section{
		{
			ID: "sec", Code: "A1",
			Questions: []*Question{
				{ID: "opt1", SectionID: "sec", Type: model.Essay},
				{ID: "opt2", SectionID: "sec", Type: model.Essay},
			},
		},
	}
	g := NewGraph("s", sections, nil)

	c := Score(g, AnswerSet{})
	if c.Percentage != 100 {
		t.Errorf("a survey with no required questions should score 100, got %d", c.Percentage)
	}
	if c.TotalRequired != 0 {
		t.Errorf("TotalRequired = %d, want 0", c.TotalRequired)
	}
}

func TestScoreHiddenRequiredNotCounted(t *testing.T) {
	g := testGraph()

	// q2 was answered while visible, then q1 flipped to no. The hidden q2
	// must drop out of both sides of the ratio.
	answers := AnswerSet{
		"q1": SingleAnswer("no"),
		"q2": TextAnswer("stale"),
	}
	c := Score(g, answers)
	if c.TotalRequired != 3 {
		t.Errorf("TotalRequired = %d, want 3 (hidden q2 excluded)", c.TotalRequired)
	}
	if c.AnsweredRequired != 1 {
		t.Errorf("AnsweredRequired = %d, want 1 (q1 only)", c.AnsweredRequired)
	}
}

func TestMissingRequiredOrder(t *testing.T) {
	g := testGraph()
	answers := AnswerSet{
		"q1": SingleAnswer("yes"),
		"q5": SingleAnswer("o51"),
	}

	missing := MissingRequired(g, answers)
	want := []string{"q2", "q6", "c1", "c2"}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("MissingRequired = %v, want %v", missing, want)
	}
}

func TestMissingRequiredEmptyWhenComplete(t *testing.T) {
	g := testGraph()
	answers := AnswerSet{
		"q1": SingleAnswer("no"),
		"c1": SingleAnswer("scale1"),
		"c2": SingleAnswer("scale1"),
	}
	if missing := MissingRequired(g, answers); len(missing) != 0 {
		t.Errorf("expected no missing questions, got %v", missing)
	}
}
