package engine

import (
	"testing"
)

func TestDeletePlanLeafOrder(t *testing.T) {
	g := testGraph()

	steps, err := DeletePlan(g, "q1")
	if err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}

	want := []DeleteTarget{DeleteBranchRules, DeleteOptions, DeleteAnswers, DeleteMultiAnswers, DeleteQuestion}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.Target != want[i] {
			t.Errorf("step %d: target %s, want %s", i, step.Target, want[i])
		}
		if step.QuestionID != "q1" {
			t.Errorf("step %d: question %s, want q1", i, step.QuestionID)
		}
	}
}

func TestDeletePlanChildrenFirst(t *testing.T) {
	g := testGraph()

	steps, err := DeletePlan(g, "qm")
	if err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}

	// c1 block, c2 block, then qm block: 15 steps total.
	if len(steps) != 15 {
		t.Fatalf("got %d steps, want 15", len(steps))
	}

	rowDeleted := make(map[string]int)
	for i, step := range steps {
		if step.Target == DeleteQuestion {
			rowDeleted[step.QuestionID] = i
		}
	}
	if rowDeleted["c1"] > rowDeleted["qm"] || rowDeleted["c2"] > rowDeleted["qm"] {
		t.Errorf("children must be removed before the container: %v", rowDeleted)
	}
	if steps[len(steps)-1].Target != DeleteQuestion || steps[len(steps)-1].QuestionID != "qm" {
		t.Errorf("last step should delete the qm row, got %+v", steps[len(steps)-1])
	}
}

func TestDeletePlanUnknownQuestion(t *testing.T) {
	g := testGraph()
	if _, err := DeletePlan(g, "nope"); err == nil {
		t.Error("expected an error for a question not in the graph")
	}
}

func TestDeleteTargetString(t *testing.T) {
	if DeleteBranchRules.String() != "branch_rules" {
		t.Errorf("unexpected name %s", DeleteBranchRules)
	}
	if DeleteTarget(99).String() != "unknown" {
		t.Errorf("unexpected name for invalid target")
	}
}
