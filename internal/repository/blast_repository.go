package repository

import (
	"time"

	"tracer_study_backend/internal/model"

	"gorm.io/gorm"
)

type BlastRepository struct {
	DB *gorm.DB
}

func NewBlastRepository(db *gorm.DB) *BlastRepository {
	return &BlastRepository{DB: db}
}

func (r *BlastRepository) Create(blast *model.EmailBlast) error {
	return r.DB.Create(blast).Error
}

func (r *BlastRepository) FindByID(id string) (*model.EmailBlast, error) {
	var b model.EmailBlast
	err := r.DB.First(&b, "id = ?", id).Error
	return &b, err
}

func (r *BlastRepository) List(page, limit int, surveyID string) ([]model.EmailBlast, int64, error) {
	var bs []model.EmailBlast
	var total int64
	query := r.DB.Model(&model.EmailBlast{})
	if surveyID != "" {
		query = query.Where("survey_id = ?", surveyID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("scheduled_at desc").Offset(offset).Limit(limit).Find(&bs).Error
	return bs, total, err
}

func (r *BlastRepository) Update(blast *model.EmailBlast) error {
	return r.DB.Save(blast).Error
}

func (r *BlastRepository) UpdateStatus(id string, status model.BlastStatus) error {
	return r.DB.Model(&model.EmailBlast{}).Where("id = ?", id).
		Update("status", status).Error
}

// FindDue returns pending blasts whose schedule has passed.
func (r *BlastRepository) FindDue(now time.Time) ([]model.EmailBlast, error) {
	var bs []model.EmailBlast
	err := r.DB.Where("status = ? AND scheduled_at <= ?", model.BlastPending, now).
		Find(&bs).Error
	return bs, err
}
