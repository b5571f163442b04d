package engine

import (
	"strings"

	"tracer_study_backend/internal/model"
)

type AnswerKind int

const (
	KindText AnswerKind = iota + 1
	KindSingle
	KindMulti
)

// AnswerValue is the single in-memory shape for all three stored answer
// forms: free text, one option, or an option set.
type AnswerValue struct {
	Kind      AnswerKind
	Text      string
	OptionID  string
	OptionIDs []string
}

func TextAnswer(text string) AnswerValue {
	return AnswerValue{Kind: KindText, Text: text}
}

func SingleAnswer(optionID string) AnswerValue {
	return AnswerValue{Kind: KindSingle, OptionID: optionID}
}

func MultiAnswer(optionIDs []string) AnswerValue {
	return AnswerValue{Kind: KindMulti, OptionIDs: optionIDs}
}

// IsAnswered reports whether the value counts as an answer: non-blank text,
// a bound option, or at least one selection.
func (v AnswerValue) IsAnswered() bool {
	switch v.Kind {
	case KindText:
		return strings.TrimSpace(v.Text) != ""
	case KindSingle:
		return v.OptionID != ""
	case KindMulti:
		return len(v.OptionIDs) > 0
	}
	return false
}

// Contains reports whether the answer includes the option, used when
// checking branching triggers.
func (v AnswerValue) Contains(optionID string) bool {
	switch v.Kind {
	case KindSingle:
		return v.OptionID == optionID
	case KindMulti:
		for _, id := range v.OptionIDs {
			if id == optionID {
				return true
			}
		}
	}
	return false
}

// AnswerSet is a response's answers keyed by question id.
type AnswerSet map[string]AnswerValue

// Contains reports whether the question's current answer includes the option.
func (s AnswerSet) Contains(questionID, optionID string) bool {
	v, ok := s[questionID]
	return ok && v.Contains(optionID)
}

// ValueFor builds the AnswerValue matching a question's type from a raw
// client payload. Unknown option ids are dropped rather than stored.
func ValueFor(q *Question, text string, optionIDs []string) AnswerValue {
	switch {
	case q.Type.IsText():
		return TextAnswer(text)
	case q.Type == model.MultipleChoice:
		var kept []string
		for _, id := range optionIDs {
			if _, ok := q.Option(id); ok {
				kept = append(kept, id)
			}
		}
		return MultiAnswer(kept)
	default:
		if len(optionIDs) == 0 {
			return SingleAnswer("")
		}
		if _, ok := q.Option(optionIDs[0]); !ok {
			return SingleAnswer("")
		}
		return SingleAnswer(optionIDs[0])
	}
}

// DisplayAnswer renders the answer for listings and exports: option text for
// choice questions (multi selections joined by ", " in option sort order),
// the raw text otherwise.
func DisplayAnswer(q *Question, v AnswerValue) string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindSingle:
		if o, ok := q.Option(v.OptionID); ok {
			return o.Text
		}
		return ""
	case KindMulti:
		var parts []string
		for _, o := range q.Options { // options are already in sort order
			if v.Contains(o.ID) {
				parts = append(parts, o.Text)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// SelectionState exposes optionID -> selected for re-rendering a form.
func SelectionState(q *Question, v AnswerValue) map[string]bool {
	state := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		state[o.ID] = v.Contains(o.ID)
	}
	return state
}
