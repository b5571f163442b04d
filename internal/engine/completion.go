package engine

import "math"

// Completion is the derived progress of a response.
type Completion struct {
	TotalRequired    int `json:"totalRequired"`
	AnsweredRequired int `json:"answeredRequired"`
	Percentage       int `json:"percentage"`
}

// Score computes completion over visible leaf questions only. Container
// questions never count; their children do. A survey with no visible
// required questions is vacuously complete (100).
func Score(g *Graph, answers AnswerSet) Completion {
	visible := VisibleQuestions(g, answers)

	c := Completion{}
	for _, q := range g.LeafQuestions() {
		if !q.IsRequired || !visible[q.ID] {
			continue
		}
		c.TotalRequired++
		if v, ok := answers[q.ID]; ok && v.IsAnswered() {
			c.AnsweredRequired++
		}
	}

	if c.TotalRequired == 0 {
		c.Percentage = 100
		return c
	}
	c.Percentage = int(math.Round(float64(c.AnsweredRequired) / float64(c.TotalRequired) * 100))
	return c
}

// MissingRequired returns the ids of visible required leaf questions without
// an answer, in graph order. A non-empty result blocks submission.
func MissingRequired(g *Graph, answers AnswerSet) []string {
	visible := VisibleQuestions(g, answers)

	var missing []string
	for _, q := range g.LeafQuestions() {
		if !q.IsRequired || !visible[q.ID] {
			continue
		}
		if v, ok := answers[q.ID]; !ok || !v.IsAnswered() {
			missing = append(missing, q.ID)
		}
	}
	return missing
}
