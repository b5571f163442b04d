package engine

import (
	"sort"

	"tracer_study_backend/internal/model"
)

// Option is an answer option of a question.
type Option struct {
	ID          string
	Text        string
	SortOrder   int
	IsTriggered bool
	Placeholder string
}

// Question is a node of the survey definition. A question with children is a
// container (matrix): only its children are answerable and scored. Depth is
// bounded at two; the builder rejects anything deeper.
type Question struct {
	ID          string
	SectionID   string
	ParentID    string
	GroupLabel  string
	Type        model.QuestionType
	Text        string
	IsRequired  bool
	SortOrder   int
	PageNumber  int
	Placeholder string
	Options     []Option
	Children    []*Question
}

// IsContainer reports whether the question is answered through its children.
func (q *Question) IsContainer() bool {
	return len(q.Children) > 0
}

// Option returns the option with the given id, if any.
func (q *Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Section is a code-question bucket ("A1", "C1") holding top-level questions.
type Section struct {
	ID        string
	Code      string
	Title     string
	SortOrder int
	Questions []*Question
}

// Rule makes the target question visible when the trigger question's answer
// contains the trigger option. Rules for the same target are OR'd; there is
// no AND combination.
type Rule struct {
	TriggerQuestionID string
	TriggerOptionID   string
	TargetQuestionID  string
}

// EligibilityRule restricts which respondents may answer the survey.
type EligibilityRule struct {
	Field    string
	Operator string
	Value    string
}

// Graph is the static definition of one survey: sections, questions with
// options and children, and the flat branching rule list. It is read-only
// once built.
type Graph struct {
	SurveyID    string
	Title       string
	Status      model.SurveyStatus
	TargetRole  model.UserRole
	OpeningText string
	ClosingText string
	Eligibility []EligibilityRule

	Sections []Section
	Rules    []Rule

	byID          map[string]*Question
	rulesByTarget map[string][]Rule
}

// NewGraph assembles a graph and its lookup indexes. Sections, questions,
// children and options are sorted by sort order. Matrix children without own
// options inherit the parent's option set.
func NewGraph(surveyID string, sections []Section, rules []Rule) *Graph {
	g := &Graph{
		SurveyID:      surveyID,
		Sections:      sections,
		Rules:         rules,
		byID:          make(map[string]*Question),
		rulesByTarget: make(map[string][]Rule),
	}

	sort.SliceStable(g.Sections, func(i, j int) bool {
		return g.Sections[i].SortOrder < g.Sections[j].SortOrder
	})

	for si := range g.Sections {
		sec := &g.Sections[si]
		sort.SliceStable(sec.Questions, func(i, j int) bool {
			return sec.Questions[i].SortOrder < sec.Questions[j].SortOrder
		})
		for _, q := range sec.Questions {
			g.indexQuestion(q)
		}
	}

	for _, r := range rules {
		g.rulesByTarget[r.TargetQuestionID] = append(g.rulesByTarget[r.TargetQuestionID], r)
	}

	return g
}

func (g *Graph) indexQuestion(q *Question) {
	g.byID[q.ID] = q

	sort.SliceStable(q.Options, func(i, j int) bool {
		return q.Options[i].SortOrder < q.Options[j].SortOrder
	})
	sort.SliceStable(q.Children, func(i, j int) bool {
		return q.Children[i].SortOrder < q.Children[j].SortOrder
	})

	for _, child := range q.Children {
		if len(child.Options) == 0 && q.Type == model.MatrixSingleChoice {
			child.Options = q.Options
		}
		g.indexQuestion(child)
	}
}

// Question looks a question up by id, containers and children alike.
func (g *Graph) Question(id string) (*Question, bool) {
	q, ok := g.byID[id]
	return q, ok
}

// Questions returns every question in section/sort order, containers included.
func (g *Graph) Questions() []*Question {
	var out []*Question
	for si := range g.Sections {
		for _, q := range g.Sections[si].Questions {
			out = append(out, q)
			out = append(out, q.Children...)
		}
	}
	return out
}

// LeafQuestions returns the answerable questions in order: top-level
// questions without children, and the children of containers. Container
// questions themselves are never leaves.
func (g *Graph) LeafQuestions() []*Question {
	var out []*Question
	for _, q := range g.Questions() {
		if !q.IsContainer() {
			out = append(out, q)
		}
	}
	return out
}

// RulesFor returns the branching rules naming the question as target.
func (g *Graph) RulesFor(targetID string) []Rule {
	return g.rulesByTarget[targetID]
}

// IsConditional reports whether the question only appears when a branching
// rule fires. Questions no rule targets are unconditional.
func (g *Graph) IsConditional(id string) bool {
	return len(g.rulesByTarget[id]) > 0
}
