package repository

import (
	"errors"
	"time"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/util"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// GetOrCreateDraft returns the single response row of (survey, respondent),
// creating it as a draft on first save. The unique index makes concurrent
// first saves converge on one row.
func (r *ResponseRepository) GetOrCreateDraft(surveyID, respondentID string) (*model.Response, error) {
	var resp model.Response
	err := r.DB.Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
		First(&resp).Error
	if err == nil {
		return &resp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	resp = model.Response{SurveyID: surveyID, RespondentID: respondentID}
	if err := r.DB.Create(&resp).Error; err != nil {
		// Lost a concurrent-create race on the unique index; the row exists now.
		var existing model.Response
		if ferr := r.DB.Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
			First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &resp, nil
}

func (r *ResponseRepository) FindByID(id string) (*model.Response, error) {
	var resp model.Response
	err := r.DB.First(&resp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResponseNotFound
	}
	return &resp, err
}

func (r *ResponseRepository) FindBySurveyAndRespondent(surveyID, respondentID string) (*model.Response, error) {
	var resp model.Response
	err := r.DB.Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
		First(&resp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResponseNotFound
	}
	return &resp, err
}

// Submit runs the required-answer check and the submitted_at write in one
// transaction, so a response can never be stamped submitted against answers
// that fail validation. The guarded update also rejects double submits.
func (r *ResponseRepository) Submit(responseID string, check func(engine.AnswerSet) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		set, err := loadAnswerSet(tx, responseID)
		if err != nil {
			return err
		}
		if err := check(set); err != nil {
			return err
		}

		res := tx.Model(&model.Response{}).
			Where("id = ? AND submitted_at IS NULL", responseID).
			Update("submitted_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAlreadySubmitted
		}
		return nil
	})
}

func (r *ResponseRepository) CountBySurvey(surveyID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Response{}).Where("survey_id = ?", surveyID).
		Count(&count).Error
	return count, err
}

func (r *ResponseRepository) CountSubmittedBySurvey(surveyID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Response{}).
		Where("survey_id = ? AND submitted_at IS NOT NULL", surveyID).
		Count(&count).Error
	return count, err
}

// ResponseListRow is a response joined with its respondent for admin
// listings; completion is filled in by the service.
type ResponseListRow struct {
	model.Response
	RespondentName  string `gorm:"column:respondent_name" json:"respondentName"`
	RespondentEmail string `gorm:"column:respondent_email" json:"respondentEmail"`
}

func (r *ResponseRepository) ListBySurvey(surveyID string, page, limit int) ([]ResponseListRow, int64, error) {
	var total int64
	query := r.DB.Model(&model.Response{}).Where("responses.survey_id = ?", surveyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ResponseListRow
	offset := (page - 1) * limit
	err := r.DB.Table("responses").
		Select("responses.*, respondents.name as respondent_name, respondents.email as respondent_email").
		Joins("LEFT JOIN respondents ON respondents.id = responses.respondent_id AND respondents.deleted_at IS NULL").
		Where("responses.survey_id = ? AND responses.deleted_at IS NULL", surveyID).
		Order("responses.created_at desc").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// ListSubmittedBySurvey returns every submitted response of a survey, for
// export and manager generation.
func (r *ResponseRepository) ListSubmittedBySurvey(surveyID string) ([]model.Response, error) {
	var rs []model.Response
	err := r.DB.Where("survey_id = ? AND submitted_at IS NOT NULL", surveyID).
		Order("submitted_at asc").Find(&rs).Error
	return rs, err
}
