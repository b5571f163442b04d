package engine

import (
	"testing"

	"tracer_study_backend/internal/model"
)

// testGraph builds one survey used across the engine tests:
//
//	A1: q1 SINGLE_CHOICE required (yes/no)
//	    q2 ESSAY required, visible when q1=yes
//	    q3 MULTIPLE_CHOICE optional (m1/m2)
//	    q4 ESSAY optional, visible when q3 contains m1
//	    q5 SINGLE_CHOICE required (o51/o52), visible when q1=yes
//	    q6 ESSAY required, visible when q5=o51 (chained)
//	B1: qm MATRIX_SINGLE_CHOICE container (scale1/scale2) with required
//	    children c1, c2 inheriting the parent's options
func testGraph() *Graph {
	sections := []Section{
		{
			ID: "secA", Code: "A1", SortOrder: 1,
			Questions: []*Question{
				{
					ID: "q1", SectionID: "secA", Type: model.SingleChoice, IsRequired: true, SortOrder: 1,
					Options: []Option{{ID: "yes", Text: "Yes", SortOrder: 1}, {ID: "no", Text: "No", SortOrder: 2}},
				},
				{ID: "q2", SectionID: "secA", Type: model.Essay, IsRequired: true, SortOrder: 2},
				{
					ID: "q3", SectionID: "secA", Type: model.MultipleChoice, SortOrder: 3,
					Options: []Option{{ID: "m1", Text: "First", SortOrder: 1}, {ID: "m2", Text: "Second", SortOrder: 2}},
				},
				{ID: "q4", SectionID: "secA", Type: model.Essay, SortOrder: 4},
				{
					ID: "q5", SectionID: "secA", Type: model.SingleChoice, IsRequired: true, SortOrder: 5,
					Options: []Option{{ID: "o51", Text: "Option 51", SortOrder: 1}, {ID: "o52", Text: "Option 52", SortOrder: 2}},
				},
				{ID: "q6", SectionID: "secA", Type: model.Essay, IsRequired: true, SortOrder: 6},
			},
		},
		{
			ID: "secB", Code: "B1", SortOrder: 2,
			Questions: []*Question{
				{
					ID: "qm", SectionID: "secB", Type: model.MatrixSingleChoice, SortOrder: 1,
					Options: []Option{{ID: "scale1", Text: "Agree", SortOrder: 1}, {ID: "scale2", Text: "Disagree", SortOrder: 2}},
					Children: []*Question{
						{ID: "c1", SectionID: "secB", ParentID: "qm", Type: model.SingleChoice, IsRequired: true, SortOrder: 1},
						{ID: "c2", SectionID: "secB", ParentID: "qm", Type: model.SingleChoice, IsRequired: true, SortOrder: 2},
					},
				},
			},
		},
	}
	rules := []Rule{
		{TriggerQuestionID: "q1", TriggerOptionID: "yes", TargetQuestionID: "q2"},
		{TriggerQuestionID: "q3", TriggerOptionID: "m1", TargetQuestionID: "q4"},
		{TriggerQuestionID: "q1", TriggerOptionID: "yes", TargetQuestionID: "q5"},
		{TriggerQuestionID: "q5", TriggerOptionID: "o51", TargetQuestionID: "q6"},
	}
	return NewGraph("survey1", sections, rules)
}

func TestVisibleQuestionsUnconditional(t *testing.T) {
	g := testGraph()
	visible := VisibleQuestions(g, AnswerSet{})

	for _, id := range []string{"q1", "q3", "qm", "c1", "c2"} {
		if !visible[id] {
			t.Errorf("expected %s visible with no answers", id)
		}
	}
	for _, id := range []string{"q2", "q4", "q5", "q6"} {
		if visible[id] {
			t.Errorf("expected %s hidden with no answers", id)
		}
	}
}

func TestVisibleQuestionsTriggered(t *testing.T) {
	g := testGraph()
	answers := AnswerSet{"q1": SingleAnswer("yes")}
	visible := VisibleQuestions(g, answers)

	if !visible["q2"] {
		t.Error("q2 should become visible once q1=yes")
	}
	if !visible["q5"] {
		t.Error("q5 should become visible once q1=yes")
	}
	if visible["q6"] {
		t.Error("q6 needs q5=o51, not just q1=yes")
	}
}

func TestVisibleQuestionsMultiTrigger(t *testing.T) {
	g := testGraph()

	visible := VisibleQuestions(g, AnswerSet{"q3": MultiAnswer([]string{"m2"})})
	if visible["q4"] {
		t.Error("q4 should stay hidden when only m2 is selected")
	}

	visible = VisibleQuestions(g, AnswerSet{"q3": MultiAnswer([]string{"m2", "m1"})})
	if !visible["q4"] {
		t.Error("q4 should be visible when the selection contains m1")
	}
}

func TestVisibleQuestionsChainRequiresVisibleTrigger(t *testing.T) {
	g := testGraph()

	// q5 answered o51, but q1 is not yes so q5 itself is hidden. The stale
	// answer must not pull q6 into view.
	answers := AnswerSet{
		"q1": SingleAnswer("no"),
		"q5": SingleAnswer("o51"),
	}
	visible := VisibleQuestions(g, answers)

	if visible["q5"] {
		t.Error("q5 should be hidden when q1=no")
	}
	if visible["q6"] {
		t.Error("q6 must not be visible through a hidden trigger")
	}

	answers["q1"] = SingleAnswer("yes")
	visible = VisibleQuestions(g, answers)
	if !visible["q6"] {
		t.Error("q6 should be visible once the whole chain is satisfied")
	}
}

func TestVisibleQuestionsHiddenAnswerKept(t *testing.T) {
	g := testGraph()

	// Answer q2 while visible, then flip q1 to no: the q2 answer stays in
	// the set but q2 drops out of the visible map.
	answers := AnswerSet{
		"q1": SingleAnswer("yes"),
		"q2": TextAnswer("some essay"),
	}
	if !VisibleQuestions(g, answers)["q2"] {
		t.Fatal("q2 should be visible before the flip")
	}

	answers["q1"] = SingleAnswer("no")
	visible := VisibleQuestions(g, answers)
	if visible["q2"] {
		t.Error("q2 should be hidden after q1 flips to no")
	}
	if _, ok := answers["q2"]; !ok {
		t.Error("the stored q2 answer must survive the flip")
	}
}

func TestVisibleQuestionsRuleCycle(t *testing.T) {
	sections := []Section{
		{
			ID: "sec", Code: "A1",
			Questions: []*Question{
				{ID: "a", SectionID: "sec", Type: model.SingleChoice, Options: []Option{{ID: "ao"}}},
				{ID: "b", SectionID: "sec", Type: model.SingleChoice, Options: []Option{{ID: "bo"}}},
			},
		},
	}
	rules := []Rule{
		{TriggerQuestionID: "a", TriggerOptionID: "ao", TargetQuestionID: "b"},
		{TriggerQuestionID: "b", TriggerOptionID: "bo", TargetQuestionID: "a"},
	}
	g := NewGraph("s", sections, rules)

	visible := VisibleQuestions(g, AnswerSet{
		"a": SingleAnswer("ao"),
		"b": SingleAnswer("bo"),
	})
	if visible["a"] || visible["b"] {
		t.Error("mutually dependent rules should resolve to hidden, not recurse")
	}
}

func TestChildrenInheritMatrixOptions(t *testing.T) {
	g := testGraph()

	c1, ok := g.Question("c1")
	if !ok {
		t.Fatal("c1 missing from graph index")
	}
	if len(c1.Options) != 2 || c1.Options[0].ID != "scale1" {
		t.Errorf("c1 should inherit the matrix options, got %+v", c1.Options)
	}
}

func TestLeafQuestionsExcludeContainers(t *testing.T) {
	g := testGraph()

	for _, q := range g.LeafQuestions() {
		if q.ID == "qm" {
			t.Error("container qm must not be a leaf")
		}
	}
	if len(g.LeafQuestions()) != 8 {
		t.Errorf("expected 8 leaves, got %d", len(g.LeafQuestions()))
	}
}
