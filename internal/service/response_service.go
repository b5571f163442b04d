package service

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"

	"gorm.io/gorm"
)

// The coordinator only needs narrow views of the repositories, which also
// keeps it testable without a database.

type GraphLoader interface {
	LoadGraph(surveyID string) (*engine.Graph, error)
}

type AnswerStore interface {
	UpsertAnswer(responseID, questionID string, v engine.AnswerValue) error
	GetAnswers(responseID string) (engine.AnswerSet, error)
}

type ResponseStore interface {
	GetOrCreateDraft(surveyID, respondentID string) (*model.Response, error)
	FindByID(id string) (*model.Response, error)
	FindBySurveyAndRespondent(surveyID, respondentID string) (*model.Response, error)
	Submit(responseID string, check func(engine.AnswerSet) error) error
	ListBySurvey(surveyID string, page, limit int) ([]repository.ResponseListRow, int64, error)
}

type RespondentFinder interface {
	FindByID(id string) (*model.Respondent, error)
	FindAlumniProfile(respondentID string) (*model.AlumniProfile, error)
}

// ResponseService drives the response lifecycle: NoResponse -> Draft ->
// Submitted, with Submitted terminal. Every save re-loads the graph,
// re-derives visibility and re-scores completion from persisted state.
type ResponseService struct {
	Graphs      GraphLoader
	Answers     AnswerStore
	Responses   ResponseStore
	Respondents RespondentFinder
}

func NewResponseService(graphs GraphLoader, answers AnswerStore, responses ResponseStore, respondents RespondentFinder) *ResponseService {
	return &ResponseService{
		Graphs:      graphs,
		Answers:     answers,
		Responses:   responses,
		Respondents: respondents,
	}
}

// AnswerItem is the client payload for one question.
type AnswerItem struct {
	QuestionID      string   `json:"questionId" binding:"required"`
	AnswerText      string   `json:"answerText"`
	AnswerOptionIDs []string `json:"answerOptionIds"`
}

// DraftState is returned after every save so the client can re-render.
type DraftState struct {
	ResponseID string            `json:"responseId"`
	Submitted  bool              `json:"submitted"`
	Completion engine.Completion `json:"completion"`
	VisibleIDs []string          `json:"visibleQuestionIds"`
}

// SaveDraft upserts the given answers into the respondent's draft, creating
// the response row on first save. Partial and empty payloads are accepted;
// validation only happens at submit.
func (s *ResponseService) SaveDraft(surveyID, respondentID string, items []AnswerItem) (*DraftState, error) {
	g, err := s.loadForWrite(surveyID, respondentID)
	if err != nil {
		return nil, err
	}

	resp, err := s.Responses.GetOrCreateDraft(surveyID, respondentID)
	if err != nil {
		return nil, err
	}
	if resp.IsSubmitted() {
		return nil, util.ErrAlreadySubmitted
	}

	if err := s.saveAnswers(g, resp.ID, items); err != nil {
		return nil, err
	}

	return s.draftState(g, resp)
}

// Submit persists any answers in the payload, then validates every visible
// required question inside the submit transaction and stamps submittedAt.
// Submission is final; a second submit is a conflict.
func (s *ResponseService) Submit(surveyID, respondentID string, items []AnswerItem) (*DraftState, error) {
	g, err := s.loadForWrite(surveyID, respondentID)
	if err != nil {
		return nil, err
	}

	resp, err := s.Responses.GetOrCreateDraft(surveyID, respondentID)
	if err != nil {
		return nil, err
	}
	if resp.IsSubmitted() {
		return nil, util.ErrAlreadySubmitted
	}

	if err := s.saveAnswers(g, resp.ID, items); err != nil {
		return nil, err
	}

	err = s.Responses.Submit(resp.ID, func(set engine.AnswerSet) error {
		if missing := engine.MissingRequired(g, set); len(missing) > 0 {
			return &util.UnansweredRequiredError{QuestionIDs: missing}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err = s.Responses.FindByID(resp.ID)
	if err != nil {
		return nil, err
	}
	return s.draftState(g, resp)
}

func (s *ResponseService) loadForWrite(surveyID, respondentID string) (*engine.Graph, error) {
	g, err := s.Graphs.LoadGraph(surveyID)
	if err != nil {
		return nil, err
	}
	if !g.Status.AcceptsResponses() {
		return nil, util.ErrSurveyNotAccepting
	}

	respondent, err := s.Respondents.FindByID(respondentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRespondentNotFound
		}
		return nil, err
	}
	if respondent.Role != g.TargetRole {
		return nil, util.ErrSurveyRoleMismatch
	}

	if err := s.checkEligibility(g, respondent); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *ResponseService) checkEligibility(g *engine.Graph, respondent *model.Respondent) error {
	if len(g.Eligibility) == 0 || g.TargetRole != model.Alumni {
		return nil
	}

	profile, err := s.Respondents.FindAlumniProfile(respondent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEligible
		}
		return err
	}

	for _, rule := range g.Eligibility {
		if !eligibilityMatches(rule, profile) {
			return util.ErrNotEligible
		}
	}
	return nil
}

func eligibilityMatches(rule engine.EligibilityRule, p *model.AlumniProfile) bool {
	switch rule.Field {
	case "graduation_year":
		want, err := strconv.Atoi(rule.Value)
		if err != nil {
			return false
		}
		switch rule.Operator {
		case "eq":
			return p.GraduationYear == want
		case "gte":
			return p.GraduationYear >= want
		case "lte":
			return p.GraduationYear <= want
		}
		return false
	case "faculty":
		return strings.EqualFold(p.Faculty, rule.Value)
	case "major":
		return strings.EqualFold(p.Major, rule.Value)
	}
	return false
}

func (s *ResponseService) saveAnswers(g *engine.Graph, responseID string, items []AnswerItem) error {
	for _, item := range items {
		q, ok := g.Question(item.QuestionID)
		if !ok {
			return util.ErrQuestionNotFound
		}
		if q.IsContainer() {
			return util.ErrContainerAnswered
		}
		value := engine.ValueFor(q, item.AnswerText, item.AnswerOptionIDs)
		if err := s.Answers.UpsertAnswer(responseID, q.ID, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *ResponseService) draftState(g *engine.Graph, resp *model.Response) (*DraftState, error) {
	set, err := s.Answers.GetAnswers(resp.ID)
	if err != nil {
		return nil, err
	}

	visible := engine.VisibleQuestions(g, set)
	ids := make([]string, 0, len(visible))
	for id := range visible {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &DraftState{
		ResponseID: resp.ID,
		Submitted:  resp.IsSubmitted(),
		Completion: engine.Score(g, set),
		VisibleIDs: ids,
	}, nil
}

// Form rendering.

type FormOption struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Placeholder string `json:"placeholder,omitempty"`
	IsTriggered bool   `json:"isTriggered"`
	Selected    bool   `json:"selected"`
}

type FormQuestion struct {
	ID            string             `json:"id"`
	Text          string             `json:"text"`
	GroupLabel    string             `json:"groupLabel,omitempty"`
	Type          model.QuestionType `json:"type"`
	IsRequired    bool               `json:"isRequired"`
	PageNumber    int                `json:"pageNumber"`
	Placeholder   string             `json:"placeholder,omitempty"`
	Visible       bool               `json:"visible"`
	Answered      bool               `json:"answered"`
	DisplayAnswer string             `json:"displayAnswer,omitempty"`
	TextAnswer    string             `json:"textAnswer,omitempty"`
	Options       []FormOption       `json:"options,omitempty"`
	Children      []FormQuestion     `json:"children,omitempty"`
}

type FormSection struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Title     string         `json:"title,omitempty"`
	Questions []FormQuestion `json:"questions"`
}

type SurveyForm struct {
	SurveyID    string             `json:"surveyId"`
	Title       string             `json:"title"`
	Status      model.SurveyStatus `json:"status"`
	OpeningText string             `json:"openingText,omitempty"`
	ClosingText string             `json:"closingText,omitempty"`
	Submitted   bool               `json:"submitted"`
	Completion  engine.Completion  `json:"completion"`
	Sections    []FormSection      `json:"sections"`
}

// GetForm returns the survey rendered for the respondent: questions in
// order, options with their selection state, visibility flags and the
// current completion. Hidden questions keep their stored answers but are
// flagged invisible.
func (s *ResponseService) GetForm(surveyID, respondentID string) (*SurveyForm, error) {
	g, err := s.Graphs.LoadGraph(surveyID)
	if err != nil {
		return nil, err
	}

	set := make(engine.AnswerSet)
	submitted := false
	resp, err := s.Responses.FindBySurveyAndRespondent(surveyID, respondentID)
	if err == nil {
		submitted = resp.IsSubmitted()
		if set, err = s.Answers.GetAnswers(resp.ID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, util.ErrResponseNotFound) {
		return nil, err
	}

	visible := engine.VisibleQuestions(g, set)

	form := &SurveyForm{
		SurveyID:    g.SurveyID,
		Title:       g.Title,
		Status:      g.Status,
		OpeningText: g.OpeningText,
		ClosingText: g.ClosingText,
		Submitted:   submitted,
		Completion:  engine.Score(g, set),
	}

	for _, sec := range g.Sections {
		fs := FormSection{ID: sec.ID, Code: sec.Code, Title: sec.Title}
		for _, q := range sec.Questions {
			fs.Questions = append(fs.Questions, renderQuestion(q, set, visible))
		}
		form.Sections = append(form.Sections, fs)
	}
	return form, nil
}

func renderQuestion(q *engine.Question, set engine.AnswerSet, visible map[string]bool) FormQuestion {
	v := set[q.ID]

	fq := FormQuestion{
		ID:          q.ID,
		Text:        q.Text,
		GroupLabel:  q.GroupLabel,
		Type:        q.Type,
		IsRequired:  q.IsRequired,
		PageNumber:  q.PageNumber,
		Placeholder: q.Placeholder,
		Visible:     visible[q.ID],
		Answered:    v.IsAnswered(),
	}

	if !q.IsContainer() {
		fq.DisplayAnswer = engine.DisplayAnswer(q, v)
		if v.Kind == engine.KindText {
			fq.TextAnswer = v.Text
		}
	}

	selection := engine.SelectionState(q, v)
	for _, o := range q.Options {
		fq.Options = append(fq.Options, FormOption{
			ID:          o.ID,
			Text:        o.Text,
			Placeholder: o.Placeholder,
			IsTriggered: o.IsTriggered,
			Selected:    selection[o.ID],
		})
	}

	for _, child := range q.Children {
		fq.Children = append(fq.Children, renderQuestion(child, set, visible))
	}
	return fq
}

// Completion recomputes a response's score for the admin badge and the
// manager-generation gate.
func (s *ResponseService) Completion(responseID string) (engine.Completion, error) {
	resp, err := s.Responses.FindByID(responseID)
	if err != nil {
		return engine.Completion{}, err
	}
	g, err := s.Graphs.LoadGraph(resp.SurveyID)
	if err != nil {
		return engine.Completion{}, err
	}
	set, err := s.Answers.GetAnswers(resp.ID)
	if err != nil {
		return engine.Completion{}, err
	}
	return engine.Score(g, set), nil
}

// ResponseSummary is one admin listing row with its completion badge.
type ResponseSummary struct {
	repository.ResponseListRow
	Completion engine.Completion `json:"completion"`
}

func (s *ResponseService) ListResponses(surveyID string, page, limit int) ([]ResponseSummary, int64, error) {
	g, err := s.Graphs.LoadGraph(surveyID)
	if err != nil {
		return nil, 0, err
	}

	rows, total, err := s.Responses.ListBySurvey(surveyID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ResponseSummary, len(rows))
	for i, row := range rows {
		set, err := s.Answers.GetAnswers(row.ID)
		if err != nil {
			return nil, 0, err
		}
		out[i] = ResponseSummary{
			ResponseListRow: row,
			Completion:      engine.Score(g, set),
		}
	}
	return out, total, nil
}
