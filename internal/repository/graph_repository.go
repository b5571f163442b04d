package repository

import (
	"errors"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/util"

	"gorm.io/gorm"
)

// GraphRepository loads the static survey definition and owns the authoring
// writes against it (code questions, questions, options, branch rules).
type GraphRepository struct {
	DB *gorm.DB
}

func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{DB: db}
}

// LoadGraph reads the full definition of one survey: sections, questions
// with children nested, options, branching and eligibility rules. Every
// save re-reads the graph; nothing is cached across requests.
func (r *GraphRepository) LoadGraph(surveyID string) (*engine.Graph, error) {
	var survey model.Survey
	if err := r.DB.First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSurveyNotFound
		}
		return nil, err
	}

	var codes []model.CodeQuestion
	if err := r.DB.Where("survey_id = ?", surveyID).
		Order("sort_order asc, code asc").Find(&codes).Error; err != nil {
		return nil, err
	}

	codeIDs := make([]string, len(codes))
	for i, c := range codes {
		codeIDs[i] = c.ID
	}

	var questions []model.Question
	if len(codeIDs) > 0 {
		if err := r.DB.Where("code_question_id IN ?", codeIDs).
			Order("sort_order asc").Find(&questions).Error; err != nil {
			return nil, err
		}
	}

	questionIDs := make([]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}

	var options []model.AnswerOption
	if len(questionIDs) > 0 {
		if err := r.DB.Where("question_id IN ?", questionIDs).
			Order("sort_order asc").Find(&options).Error; err != nil {
			return nil, err
		}
	}

	var branchRules []model.BranchRule
	if err := r.DB.Where("survey_id = ?", surveyID).Find(&branchRules).Error; err != nil {
		return nil, err
	}

	var eligibility []model.SurveyEligibility
	if err := r.DB.Where("survey_id = ?", surveyID).Find(&eligibility).Error; err != nil {
		return nil, err
	}

	g := assembleGraph(&survey, codes, questions, options, branchRules)
	for _, e := range eligibility {
		g.Eligibility = append(g.Eligibility, engine.EligibilityRule{
			Field:    e.Field,
			Operator: e.Operator,
			Value:    e.Value,
		})
	}
	return g, nil
}

func assembleGraph(survey *model.Survey, codes []model.CodeQuestion, questions []model.Question,
	options []model.AnswerOption, branchRules []model.BranchRule) *engine.Graph {

	optionsByQuestion := make(map[string][]engine.Option)
	for _, o := range options {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], engine.Option{
			ID:          o.ID,
			Text:        o.Text,
			SortOrder:   o.SortOrder,
			IsTriggered: o.IsTriggered,
			Placeholder: o.Placeholder,
		})
	}

	nodes := make(map[string]*engine.Question, len(questions))
	for _, q := range questions {
		parentID := ""
		if q.ParentID != nil {
			parentID = *q.ParentID
		}
		nodes[q.ID] = &engine.Question{
			ID:          q.ID,
			SectionID:   q.CodeQuestionID,
			ParentID:    parentID,
			GroupLabel:  q.GroupLabel,
			Type:        q.Type,
			Text:        q.Text,
			IsRequired:  q.IsRequired,
			SortOrder:   q.SortOrder,
			PageNumber:  q.PageNumber,
			Placeholder: q.Placeholder,
			Options:     optionsByQuestion[q.ID],
		}
	}

	topLevel := make(map[string][]*engine.Question)
	for _, q := range questions {
		node := nodes[q.ID]
		if node.ParentID == "" {
			topLevel[node.SectionID] = append(topLevel[node.SectionID], node)
			continue
		}
		if parent, ok := nodes[node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	sections := make([]engine.Section, 0, len(codes))
	for _, c := range codes {
		sections = append(sections, engine.Section{
			ID:        c.ID,
			Code:      c.Code,
			Title:     c.Title,
			SortOrder: c.SortOrder,
			Questions: topLevel[c.ID],
		})
	}

	rules := make([]engine.Rule, 0, len(branchRules))
	for _, br := range branchRules {
		rules = append(rules, engine.Rule{
			TriggerQuestionID: br.TriggerQuestionID,
			TriggerOptionID:   br.TriggerOptionID,
			TargetQuestionID:  br.TargetQuestionID,
		})
	}

	g := engine.NewGraph(survey.ID, sections, rules)
	g.Title = survey.Title
	g.Status = survey.Status
	g.TargetRole = survey.TargetRole
	g.OpeningText = survey.OpeningText
	g.ClosingText = survey.ClosingText
	return g
}

// DeleteQuestionCascade removes a question, its children and every row
// referencing them, in the order the engine plan dictates, inside one
// transaction. A failure rolls the whole cascade back.
func (r *GraphRepository) DeleteQuestionCascade(questionID string) error {
	var q model.Question
	if err := r.DB.First(&q, "id = ?", questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}

	var code model.CodeQuestion
	if err := r.DB.First(&code, "id = ?", q.CodeQuestionID).Error; err != nil {
		return err
	}

	g, err := r.LoadGraph(code.SurveyID)
	if err != nil {
		return err
	}

	plan, err := engine.DeletePlan(g, questionID)
	if err != nil {
		return util.ErrQuestionNotFound
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		return executeDeletePlan(tx, plan)
	})
}

// DeleteCodeQuestionCascade removes a whole bucket: each of its top-level
// questions cascades first, then the code question row itself.
func (r *GraphRepository) DeleteCodeQuestionCascade(codeQuestionID string) error {
	var code model.CodeQuestion
	if err := r.DB.First(&code, "id = ?", codeQuestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}

	g, err := r.LoadGraph(code.SurveyID)
	if err != nil {
		return err
	}

	var plan []engine.DeleteStep
	for _, sec := range g.Sections {
		if sec.ID != codeQuestionID {
			continue
		}
		for _, q := range sec.Questions {
			steps, err := engine.DeletePlan(g, q.ID)
			if err != nil {
				return err
			}
			plan = append(plan, steps...)
		}
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := executeDeletePlan(tx, plan); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.CodeQuestion{}, "id = ?", codeQuestionID).Error
	})
}

func executeDeletePlan(tx *gorm.DB, plan []engine.DeleteStep) error {
	for _, step := range plan {
		var err error
		switch step.Target {
		case engine.DeleteBranchRules:
			err = tx.Unscoped().
				Where("trigger_question_id = ? OR target_question_id = ?", step.QuestionID, step.QuestionID).
				Delete(&model.BranchRule{}).Error
		case engine.DeleteOptions:
			err = tx.Unscoped().Where("question_id = ?", step.QuestionID).
				Delete(&model.AnswerOption{}).Error
		case engine.DeleteAnswers:
			err = tx.Unscoped().Where("question_id = ?", step.QuestionID).
				Delete(&model.Answer{}).Error
		case engine.DeleteMultiAnswers:
			err = tx.Unscoped().Where("question_id = ?", step.QuestionID).
				Delete(&model.AnswerMultipleChoice{}).Error
		case engine.DeleteQuestion:
			err = tx.Unscoped().Delete(&model.Question{}, "id = ?", step.QuestionID).Error
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Authoring writes.

func (r *GraphRepository) CreateCodeQuestion(code *model.CodeQuestion) error {
	return r.DB.Create(code).Error
}

func (r *GraphRepository) FindCodeQuestion(id string) (*model.CodeQuestion, error) {
	var code model.CodeQuestion
	err := r.DB.First(&code, "id = ?", id).Error
	return &code, err
}

func (r *GraphRepository) UpdateCodeQuestion(code *model.CodeQuestion) error {
	return r.DB.Save(code).Error
}

func (r *GraphRepository) ListCodeQuestions(surveyID string) ([]model.CodeQuestion, error) {
	var codes []model.CodeQuestion
	err := r.DB.Where("survey_id = ?", surveyID).
		Order("sort_order asc, code asc").Find(&codes).Error
	return codes, err
}

func (r *GraphRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *GraphRepository) FindQuestion(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return &q, err
}

func (r *GraphRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

// ReorderQuestions rewrites sort orders to match the given id sequence.
func (r *GraphRepository) ReorderQuestions(orderedIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&model.Question{}).Where("id = ?", id).
				Update("sort_order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GraphRepository) CreateOption(o *model.AnswerOption) error {
	return r.DB.Create(o).Error
}

func (r *GraphRepository) FindOption(id string) (*model.AnswerOption, error) {
	var o model.AnswerOption
	err := r.DB.First(&o, "id = ?", id).Error
	return &o, err
}

func (r *GraphRepository) UpdateOption(o *model.AnswerOption) error {
	return r.DB.Save(o).Error
}

// DeleteOption removes an option together with the branch rules it triggers.
func (r *GraphRepository) DeleteOption(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("trigger_option_id = ?", id).
			Delete(&model.BranchRule{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.AnswerOption{}, "id = ?", id).Error
	})
}

func (r *GraphRepository) CreateBranchRule(rule *model.BranchRule) error {
	return r.DB.Create(rule).Error
}

func (r *GraphRepository) DeleteBranchRule(id string) error {
	return r.DB.Unscoped().Delete(&model.BranchRule{}, "id = ?", id).Error
}

func (r *GraphRepository) MarkOptionTriggered(optionID string, triggered bool) error {
	return r.DB.Model(&model.AnswerOption{}).Where("id = ?", optionID).
		Update("is_triggered", triggered).Error
}
