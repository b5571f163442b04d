package engine

import "fmt"

// DeleteTarget names one table touched by a question cascade delete.
type DeleteTarget int

const (
	DeleteBranchRules DeleteTarget = iota + 1 // rules where the question is trigger or target
	DeleteOptions
	DeleteAnswers
	DeleteMultiAnswers
	DeleteQuestion
)

func (t DeleteTarget) String() string {
	switch t {
	case DeleteBranchRules:
		return "branch_rules"
	case DeleteOptions:
		return "answer_options"
	case DeleteAnswers:
		return "answers"
	case DeleteMultiAnswers:
		return "answer_multiple_choices"
	case DeleteQuestion:
		return "questions"
	}
	return "unknown"
}

// DeleteStep is one ordered operation of a cascade delete.
type DeleteStep struct {
	Target     DeleteTarget
	QuestionID string
}

// DeletePlan computes the ordered steps to remove a question and everything
// referencing it: children first (recursively), then for each question its
// branch rules, options, answers, multi answers and finally the question row.
// The repository must execute the steps in this exact order inside one
// transaction; reversing it leaves dangling references.
func DeletePlan(g *Graph, questionID string) ([]DeleteStep, error) {
	q, ok := g.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("question %s not in graph", questionID)
	}

	var steps []DeleteStep
	var walk func(q *Question)
	walk = func(q *Question) {
		for _, child := range q.Children {
			walk(child)
		}
		steps = append(steps,
			DeleteStep{Target: DeleteBranchRules, QuestionID: q.ID},
			DeleteStep{Target: DeleteOptions, QuestionID: q.ID},
			DeleteStep{Target: DeleteAnswers, QuestionID: q.ID},
			DeleteStep{Target: DeleteMultiAnswers, QuestionID: q.ID},
			DeleteStep{Target: DeleteQuestion, QuestionID: q.ID},
		)
	}
	walk(q)

	return steps, nil
}
