package engine

// VisibleQuestions derives the set of currently applicable question ids from
// the answers so far. Unconditional questions are always visible; a
// conditional question is visible iff any of its rules' trigger options is
// contained in the trigger question's current answer, and the trigger itself
// is visible. Children follow their container. The set is recomputed on
// every save: an earlier answer change can toggle later questions, and
// answers of questions that became hidden stay stored but stop counting.
func VisibleQuestions(g *Graph, answers AnswerSet) map[string]bool {
	visible := make(map[string]bool)
	visiting := make(map[string]bool)

	var isVisible func(q *Question) bool
	isVisible = func(q *Question) bool {
		if v, ok := visible[q.ID]; ok {
			return v
		}
		if visiting[q.ID] {
			// Rule cycle: treat as not visible rather than recursing forever.
			return false
		}
		visiting[q.ID] = true
		defer delete(visiting, q.ID)

		if q.ParentID != "" {
			if parent, ok := g.Question(q.ParentID); ok && !isVisible(parent) {
				visible[q.ID] = false
				return false
			}
		}

		rules := g.RulesFor(q.ID)
		if len(rules) == 0 {
			visible[q.ID] = true
			return true
		}

		for _, r := range rules {
			trigger, ok := g.Question(r.TriggerQuestionID)
			if !ok {
				continue
			}
			if isVisible(trigger) && answers.Contains(r.TriggerQuestionID, r.TriggerOptionID) {
				visible[q.ID] = true
				return true
			}
		}

		visible[q.ID] = false
		return false
	}

	for _, q := range g.Questions() {
		isVisible(q)
	}

	out := make(map[string]bool, len(visible))
	for id, v := range visible {
		if v {
			out[id] = true
		}
	}
	return out
}
