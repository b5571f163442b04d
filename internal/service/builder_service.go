package service

import (
	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"
)

// BuilderService owns survey authoring: code-question buckets, questions,
// options and branching rules. Once a survey has responses the definition is
// locked; only cascade deletes remain possible.
type BuilderService struct {
	Graph     *repository.GraphRepository
	Surveys   *repository.SurveyRepository
	Responses *repository.ResponseRepository
}

func NewBuilderService(graph *repository.GraphRepository, surveys *repository.SurveyRepository, responses *repository.ResponseRepository) *BuilderService {
	return &BuilderService{Graph: graph, Surveys: surveys, Responses: responses}
}

func (s *BuilderService) ensureEditable(surveyID string) error {
	if _, err := s.Surveys.FindByID(surveyID); err != nil {
		return err
	}
	count, err := s.Responses.CountBySurvey(surveyID)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.ErrSurveyLocked
	}
	return nil
}

// GetGraph returns the full definition for the builder UI.
func (s *BuilderService) GetGraph(surveyID string) (*engine.Graph, error) {
	return s.Graph.LoadGraph(surveyID)
}

type CodeQuestionRequest struct {
	SurveyID  string `json:"surveyId" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Title     string `json:"title"`
	SortOrder int    `json:"sortOrder"`
}

func (s *BuilderService) CreateCodeQuestion(req CodeQuestionRequest) (*model.CodeQuestion, error) {
	if err := s.ensureEditable(req.SurveyID); err != nil {
		return nil, err
	}
	code := &model.CodeQuestion{
		SurveyID:  req.SurveyID,
		Code:      req.Code,
		Title:     req.Title,
		SortOrder: req.SortOrder,
	}
	if err := s.Graph.CreateCodeQuestion(code); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *BuilderService) DeleteCodeQuestion(id string) error {
	return s.Graph.DeleteCodeQuestionCascade(id)
}

type QuestionRequest struct {
	CodeQuestionID string             `json:"codeQuestionId" binding:"required"`
	ParentID       *string            `json:"parentId"`
	GroupLabel     string             `json:"groupLabel"`
	Type           model.QuestionType `json:"type" binding:"required"`
	Text           string             `json:"text" binding:"required"`
	IsRequired     bool               `json:"isRequired"`
	SortOrder      int                `json:"sortOrder"`
	PageNumber     int                `json:"pageNumber"`
	Placeholder    string             `json:"placeholder"`
}

// validateParent enforces the depth bound: a child can only hang off a
// matrix question that itself has no parent, in the same bucket.
func validateParent(parent *model.Question, codeQuestionID string) error {
	if parent.ParentID != nil {
		return util.ErrQuestionDepth
	}
	if parent.Type != model.MatrixSingleChoice {
		return util.ErrParentNotMatrix
	}
	if parent.CodeQuestionID != codeQuestionID {
		return util.ErrParentOtherBucket
	}
	return nil
}

func (s *BuilderService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	code, err := s.Graph.FindCodeQuestion(req.CodeQuestionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, util.ErrQuestionNotFound
	}

	if req.ParentID != nil {
		parent, err := s.Graph.FindQuestion(*req.ParentID)
		if err != nil {
			return nil, err
		}
		if err := validateParent(parent, req.CodeQuestionID); err != nil {
			return nil, err
		}
	}

	q := &model.Question{
		CodeQuestionID: req.CodeQuestionID,
		ParentID:       req.ParentID,
		GroupLabel:     req.GroupLabel,
		Type:           req.Type,
		Text:           req.Text,
		IsRequired:     req.IsRequired,
		SortOrder:      req.SortOrder,
		PageNumber:     req.PageNumber,
		Placeholder:    req.Placeholder,
	}
	if q.PageNumber == 0 {
		q.PageNumber = 1
	}
	if err := s.Graph.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *BuilderService) UpdateQuestion(id string, req QuestionRequest) (*model.Question, error) {
	q, err := s.Graph.FindQuestion(id)
	if err != nil {
		return nil, err
	}
	code, err := s.Graph.FindCodeQuestion(q.CodeQuestionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.Graph.FindQuestion(*req.ParentID)
		if err != nil {
			return nil, err
		}
		if err := validateParent(parent, q.CodeQuestionID); err != nil {
			return nil, err
		}
	}

	q.ParentID = req.ParentID
	q.GroupLabel = req.GroupLabel
	if req.Type.IsValid() {
		q.Type = req.Type
	}
	q.Text = req.Text
	q.IsRequired = req.IsRequired
	q.SortOrder = req.SortOrder
	if req.PageNumber > 0 {
		q.PageNumber = req.PageNumber
	}
	q.Placeholder = req.Placeholder

	if err := s.Graph.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion cascades children, rules, options and answers before the
// question row; it stays available on locked surveys because it is the only
// way to retire a question that already has answers.
func (s *BuilderService) DeleteQuestion(id string) error {
	return s.Graph.DeleteQuestionCascade(id)
}

func (s *BuilderService) ReorderQuestions(codeQuestionID string, orderedIDs []string) error {
	code, err := s.Graph.FindCodeQuestion(codeQuestionID)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return err
	}
	return s.Graph.ReorderQuestions(orderedIDs)
}

type OptionRequest struct {
	QuestionID  string `json:"questionId" binding:"required"`
	Text        string `json:"text" binding:"required"`
	SortOrder   int    `json:"sortOrder"`
	Placeholder string `json:"placeholder"`
}

func (s *BuilderService) CreateOption(req OptionRequest) (*model.AnswerOption, error) {
	q, err := s.Graph.FindQuestion(req.QuestionID)
	if err != nil {
		return nil, err
	}
	code, err := s.Graph.FindCodeQuestion(q.CodeQuestionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return nil, err
	}

	o := &model.AnswerOption{
		QuestionID:  req.QuestionID,
		Text:        req.Text,
		SortOrder:   req.SortOrder,
		Placeholder: req.Placeholder,
	}
	if err := s.Graph.CreateOption(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *BuilderService) UpdateOption(id string, req OptionRequest) (*model.AnswerOption, error) {
	o, err := s.Graph.FindOption(id)
	if err != nil {
		return nil, err
	}
	q, err := s.Graph.FindQuestion(o.QuestionID)
	if err != nil {
		return nil, err
	}
	code, err := s.Graph.FindCodeQuestion(q.CodeQuestionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return nil, err
	}

	o.Text = req.Text
	o.SortOrder = req.SortOrder
	o.Placeholder = req.Placeholder
	if err := s.Graph.UpdateOption(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *BuilderService) DeleteOption(id string) error {
	o, err := s.Graph.FindOption(id)
	if err != nil {
		return err
	}
	q, err := s.Graph.FindQuestion(o.QuestionID)
	if err != nil {
		return err
	}
	code, err := s.Graph.FindCodeQuestion(q.CodeQuestionID)
	if err != nil {
		return err
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return err
	}
	return s.Graph.DeleteOption(id)
}

type BranchRuleRequest struct {
	TriggerQuestionID string `json:"triggerQuestionId" binding:"required"`
	TriggerOptionID   string `json:"triggerOptionId" binding:"required"`
	TargetQuestionID  string `json:"targetQuestionId" binding:"required"`
}

// CreateBranchRule wires (trigger, option) -> target and marks the option as
// a trigger. Several rules may share a target; they are OR'd at evaluation.
func (s *BuilderService) CreateBranchRule(req BranchRuleRequest) (*model.BranchRule, error) {
	trigger, err := s.Graph.FindQuestion(req.TriggerQuestionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Graph.FindQuestion(req.TargetQuestionID); err != nil {
		return nil, err
	}
	option, err := s.Graph.FindOption(req.TriggerOptionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if option.QuestionID != trigger.ID {
		return nil, util.ErrOptionNotOnQuestion
	}

	code, err := s.Graph.FindCodeQuestion(trigger.CodeQuestionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(code.SurveyID); err != nil {
		return nil, err
	}

	rule := &model.BranchRule{
		SurveyID:          code.SurveyID,
		TriggerQuestionID: req.TriggerQuestionID,
		TriggerOptionID:   req.TriggerOptionID,
		TargetQuestionID:  req.TargetQuestionID,
	}
	if err := s.Graph.CreateBranchRule(rule); err != nil {
		return nil, err
	}
	if err := s.Graph.MarkOptionTriggered(option.ID, true); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *BuilderService) DeleteBranchRule(id string) error {
	return s.Graph.DeleteBranchRule(id)
}
