package repository

import (
	"errors"

	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/util"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func (r *SurveyRepository) Create(survey *model.Survey) error {
	return r.DB.Create(survey).Error
}

func (r *SurveyRepository) FindByID(id string) (*model.Survey, error) {
	var s model.Survey
	err := r.DB.First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSurveyNotFound
	}
	return &s, err
}

func (r *SurveyRepository) List(page, limit int, status model.SurveyStatus, role model.UserRole) ([]model.Survey, int64, error) {
	var ss []model.Survey
	var total int64
	query := r.DB.Model(&model.Survey{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if role != "" {
		query = query.Where("target_role = ?", role)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

func (r *SurveyRepository) Update(survey *model.Survey) error {
	return r.DB.Save(survey).Error
}

func (r *SurveyRepository) UpdateStatus(id string, status model.SurveyStatus) error {
	return r.DB.Model(&model.Survey{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *SurveyRepository) Delete(id string) error {
	return r.DB.Delete(&model.Survey{}, "id = ?", id).Error
}

func (r *SurveyRepository) ListEligibility(surveyID string) ([]model.SurveyEligibility, error) {
	var rules []model.SurveyEligibility
	err := r.DB.Where("survey_id = ?", surveyID).Find(&rules).Error
	return rules, err
}

// ReplaceEligibility swaps the survey's whole rule set in one transaction.
func (r *SurveyRepository) ReplaceEligibility(surveyID string, rules []model.SurveyEligibility) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("survey_id = ?", surveyID).
			Delete(&model.SurveyEligibility{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].SurveyID = surveyID
			if err := tx.Create(&rules[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SurveyRepository) ListGenerationRules(surveyID string) ([]model.GenerationRule, error) {
	var rules []model.GenerationRule
	err := r.DB.Where("survey_id = ?", surveyID).Find(&rules).Error
	return rules, err
}

func (r *SurveyRepository) ReplaceGenerationRules(surveyID string, rules []model.GenerationRule) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("survey_id = ?", surveyID).
			Delete(&model.GenerationRule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].SurveyID = surveyID
			if err := tx.Create(&rules[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
