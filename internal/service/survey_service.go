package service

import (
	"context"
	"encoding/json"
	"time"

	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// SurveyService manages the survey lifecycle: creation, metadata updates,
// status transitions and aggregate statistics.
type SurveyService struct {
	Surveys   *repository.SurveyRepository
	Responses *repository.ResponseRepository
	Redis     *redis.Client
}

func NewSurveyService(surveys *repository.SurveyRepository, responses *repository.ResponseRepository, rdb *redis.Client) *SurveyService {
	return &SurveyService{Surveys: surveys, Responses: responses, Redis: rdb}
}

type SurveyRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	TargetRole  model.UserRole `json:"targetRole"`
	OpeningText string         `json:"openingText"`
	ClosingText string         `json:"closingText"`
}

func (s *SurveyService) Create(req SurveyRequest, creatorID uint) (*model.Survey, error) {
	role := req.TargetRole
	if role == "" {
		role = model.Alumni
	}
	if !role.IsValid() || role == model.Admin {
		return nil, util.ErrSurveyRoleMismatch
	}
	survey := &model.Survey{
		Title:       req.Title,
		Description: req.Description,
		TargetRole:  role,
		Status:      model.SurveyDraft,
		OpeningText: req.OpeningText,
		ClosingText: req.ClosingText,
		CreatorID:   creatorID,
	}
	if err := s.Surveys.Create(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) Get(id string) (*model.Survey, error) {
	return s.Surveys.FindByID(id)
}

func (s *SurveyService) List(page, limit int, status model.SurveyStatus, role model.UserRole) ([]model.Survey, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Surveys.List(page, limit, status, role)
}

func (s *SurveyService) Update(id string, req SurveyRequest) (*model.Survey, error) {
	survey, err := s.Surveys.FindByID(id)
	if err != nil {
		return nil, err
	}
	survey.Title = req.Title
	survey.Description = req.Description
	if req.TargetRole.IsValid() && req.TargetRole != model.Admin {
		survey.TargetRole = req.TargetRole
	}
	survey.OpeningText = req.OpeningText
	survey.ClosingText = req.ClosingText
	if err := s.Surveys.Update(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) Delete(id string) error {
	if _, err := s.Surveys.FindByID(id); err != nil {
		return err
	}
	return s.Surveys.Delete(id)
}

// validTransitions encodes the lifecycle: drafts publish, published surveys
// close, and anything may be archived.
var validTransitions = map[model.SurveyStatus][]model.SurveyStatus{
	model.SurveyDraft:     {model.SurveyPublished, model.SurveyArchived},
	model.SurveyPublished: {model.SurveyClosed, model.SurveyArchived},
	model.SurveyClosed:    {model.SurveyArchived},
	model.SurveyArchived:  {},
}

func (s *SurveyService) Transition(id string, target model.SurveyStatus) (*model.Survey, error) {
	if !target.IsValid() {
		return nil, util.ErrInvalidTransition
	}
	survey, err := s.Surveys.FindByID(id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validTransitions[survey.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, util.ErrInvalidTransition
	}

	if err := s.Surveys.UpdateStatus(id, target); err != nil {
		return nil, err
	}
	survey.Status = target
	s.invalidateStats(context.Background(), id)
	return survey, nil
}

func (s *SurveyService) GetEligibility(surveyID string) ([]model.SurveyEligibility, error) {
	if _, err := s.Surveys.FindByID(surveyID); err != nil {
		return nil, err
	}
	return s.Surveys.ListEligibility(surveyID)
}

type EligibilityRuleRequest struct {
	Field    string `json:"field" binding:"required"`
	Operator string `json:"operator" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

func (s *SurveyService) SetEligibility(surveyID string, reqs []EligibilityRuleRequest) ([]model.SurveyEligibility, error) {
	if _, err := s.Surveys.FindByID(surveyID); err != nil {
		return nil, err
	}
	rules := make([]model.SurveyEligibility, len(reqs))
	for i, req := range reqs {
		rules[i] = model.SurveyEligibility{
			Field:    req.Field,
			Operator: req.Operator,
			Value:    req.Value,
		}
	}
	if err := s.Surveys.ReplaceEligibility(surveyID, rules); err != nil {
		return nil, err
	}
	return s.Surveys.ListEligibility(surveyID)
}

// SurveyStats is the admin dashboard aggregate for one survey.
type SurveyStats struct {
	SurveyID       string  `json:"surveyId"`
	TotalResponses int64   `json:"totalResponses"`
	Submitted      int64   `json:"submitted"`
	Drafts         int64   `json:"drafts"`
	SubmitRate     float64 `json:"submitRate"`
}

const statsCacheTTL = 5 * time.Minute

func statsCacheKey(surveyID string) string {
	return "survey:stats:" + surveyID
}

// Stats returns response counts for a survey, cached in redis for a few
// minutes since the dashboard polls it.
func (s *SurveyService) Stats(ctx context.Context, surveyID string) (*SurveyStats, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, statsCacheKey(surveyID)).Result(); err == nil {
			var stats SurveyStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	if _, err := s.Surveys.FindByID(surveyID); err != nil {
		return nil, err
	}
	total, err := s.Responses.CountBySurvey(surveyID)
	if err != nil {
		return nil, err
	}
	submitted, err := s.Responses.CountSubmittedBySurvey(surveyID)
	if err != nil {
		return nil, err
	}

	stats := &SurveyStats{
		SurveyID:       surveyID,
		TotalResponses: total,
		Submitted:      submitted,
		Drafts:         total - submitted,
	}
	if total > 0 {
		stats.SubmitRate = float64(submitted) / float64(total) * 100
	}

	if s.Redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			s.Redis.Set(ctx, statsCacheKey(surveyID), data, statsCacheTTL)
		}
	}
	return stats, nil
}

func (s *SurveyService) invalidateStats(ctx context.Context, surveyID string) {
	if s.Redis != nil {
		s.Redis.Del(ctx, statsCacheKey(surveyID))
	}
}
