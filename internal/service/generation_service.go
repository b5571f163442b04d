package service

import (
	"errors"
	"strings"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GenerationService mints manager respondents from fully completed alumni
// responses. The survey's generation rules map answers onto the manager's
// contact fields; the alumni names their supervisor, we invite them.
type GenerationService struct {
	Surveys     *repository.SurveyRepository
	Graph       *repository.GraphRepository
	Responses   *repository.ResponseRepository
	Answers     *repository.AnswerRepository
	Respondents *repository.RespondentRepository
	Users       *repository.UserRepository
	Logger      *zap.Logger
}

func NewGenerationService(surveys *repository.SurveyRepository, graph *repository.GraphRepository,
	responses *repository.ResponseRepository, answers *repository.AnswerRepository,
	respondents *repository.RespondentRepository, users *repository.UserRepository,
	logger *zap.Logger) *GenerationService {
	return &GenerationService{
		Surveys:     surveys,
		Graph:       graph,
		Responses:   responses,
		Answers:     answers,
		Respondents: respondents,
		Users:       users,
		Logger:      logger,
	}
}

type GenerationRuleRequest struct {
	Field      string `json:"field" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
}

var generationFields = map[string]bool{
	"name":     true,
	"email":    true,
	"company":  true,
	"position": true,
}

func (s *GenerationService) GetRules(surveyID string) ([]model.GenerationRule, error) {
	if _, err := s.Surveys.FindByID(surveyID); err != nil {
		return nil, err
	}
	return s.Surveys.ListGenerationRules(surveyID)
}

// SetRules replaces the survey's rule set. Each question must exist on the
// survey and each field must be one of name, email, company, position.
func (s *GenerationService) SetRules(surveyID string, reqs []GenerationRuleRequest) ([]model.GenerationRule, error) {
	g, err := s.Graph.LoadGraph(surveyID)
	if err != nil {
		return nil, err
	}

	rules := make([]model.GenerationRule, len(reqs))
	for i, req := range reqs {
		if !generationFields[req.Field] {
			return nil, util.ErrQuestionNotFound
		}
		if _, ok := g.Question(req.QuestionID); !ok {
			return nil, util.ErrQuestionNotFound
		}
		rules[i] = model.GenerationRule{
			Field:      req.Field,
			QuestionID: req.QuestionID,
		}
	}

	if err := s.Surveys.ReplaceGenerationRules(surveyID, rules); err != nil {
		return nil, err
	}
	return s.Surveys.ListGenerationRules(surveyID)
}

// GenerationResult summarizes one generation run.
type GenerationResult struct {
	Scanned    int      `json:"scanned"`
	Generated  int      `json:"generated"`
	Skipped    int      `json:"skipped"`
	NewEmails  []string `json:"newEmails"`
}

// Generate walks a survey's submitted responses and mints a manager account
// for every 100%-complete one whose mapped email is not registered yet.
// Partial completions and duplicate emails are skipped, never errors.
func (s *GenerationService) Generate(surveyID string) (*GenerationResult, error) {
	g, err := s.Graph.LoadGraph(surveyID)
	if err != nil {
		return nil, err
	}

	rules, err := s.Surveys.ListGenerationRules(surveyID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return &GenerationResult{}, nil
	}

	questionByField := make(map[string]string, len(rules))
	for _, r := range rules {
		questionByField[r.Field] = r.QuestionID
	}

	responses, err := s.Responses.ListSubmittedBySurvey(surveyID)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{Scanned: len(responses)}
	for _, resp := range responses {
		answers, err := s.Answers.GetAnswers(resp.ID)
		if err != nil {
			return nil, err
		}
		if engine.Score(g, answers).Percentage < 100 {
			result.Skipped++
			continue
		}

		fields := extractFields(g, answers, questionByField)
		email := strings.ToLower(strings.TrimSpace(fields["email"]))
		if email == "" {
			result.Skipped++
			continue
		}
		if _, err := s.Users.FindByEmail(email); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if err := s.mintManager(resp.ID, email, fields); err != nil {
			return nil, err
		}
		result.Generated++
		result.NewEmails = append(result.NewEmails, email)
	}

	if s.Logger != nil {
		s.Logger.Info("manager generation finished",
			zap.String("surveyId", surveyID),
			zap.Int("scanned", result.Scanned),
			zap.Int("generated", result.Generated),
			zap.Int("skipped", result.Skipped))
	}
	return result, nil
}

func extractFields(g *engine.Graph, answers engine.AnswerSet, questionByField map[string]string) map[string]string {
	fields := make(map[string]string, len(questionByField))
	for field, questionID := range questionByField {
		q, ok := g.Question(questionID)
		if !ok {
			continue
		}
		if v, ok := answers[questionID]; ok {
			fields[field] = engine.DisplayAnswer(q, v)
		}
	}
	return fields
}

// mintManager creates the user, respondent and manager profile for one
// generated manager. The account starts with a random password; the invite
// blast carries the reset flow.
func (s *GenerationService) mintManager(sourceResponseID, email string, fields map[string]string) error {
	name := fields["name"]
	if name == "" {
		name = email
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     model.Manager,
	}
	if err := s.Users.Create(user); err != nil {
		return err
	}

	respondent := &model.Respondent{
		UserID: user.ID,
		Role:   model.Manager,
		Name:   name,
		Email:  email,
	}
	if err := s.Respondents.Create(respondent); err != nil {
		return err
	}

	profile := &model.ManagerProfile{
		RespondentID:     respondent.ID,
		Company:          fields["company"],
		Position:         fields["position"],
		SourceResponseID: &sourceResponseID,
	}
	return s.Respondents.CreateManagerProfile(profile)
}
