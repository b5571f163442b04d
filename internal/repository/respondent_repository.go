package repository

import (
	"tracer_study_backend/internal/model"

	"gorm.io/gorm"
)

type RespondentRepository struct {
	DB *gorm.DB
}

func NewRespondentRepository(db *gorm.DB) *RespondentRepository {
	return &RespondentRepository{DB: db}
}

func (r *RespondentRepository) Create(respondent *model.Respondent) error {
	return r.DB.Create(respondent).Error
}

func (r *RespondentRepository) FindByID(id string) (*model.Respondent, error) {
	var resp model.Respondent
	err := r.DB.First(&resp, "id = ?", id).Error
	return &resp, err
}

func (r *RespondentRepository) FindByUserID(userID uint) (*model.Respondent, error) {
	var resp model.Respondent
	err := r.DB.Where("user_id = ?", userID).First(&resp).Error
	return &resp, err
}

func (r *RespondentRepository) FindByEmail(email string) (*model.Respondent, error) {
	var resp model.Respondent
	err := r.DB.Where("email = ?", email).First(&resp).Error
	return &resp, err
}

// List pages through respondents, optionally filtered by role and a
// name/email search term.
func (r *RespondentRepository) List(role model.UserRole, search string, page, limit int) ([]model.Respondent, int64, error) {
	var rs []model.Respondent
	var total int64
	query := r.DB.Model(&model.Respondent{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&rs).Error
	return rs, total, err
}

// ListEmailsByRole returns the distinct non-empty addresses of a role, used
// as the audience of an email blast.
func (r *RespondentRepository) ListEmailsByRole(role model.UserRole) ([]string, error) {
	var emails []string
	err := r.DB.Model(&model.Respondent{}).
		Where("role = ? AND email <> ''", role).
		Distinct().Pluck("email", &emails).Error
	return emails, err
}

func (r *RespondentRepository) CreateAlumniProfile(p *model.AlumniProfile) error {
	return r.DB.Create(p).Error
}

func (r *RespondentRepository) CreateManagerProfile(p *model.ManagerProfile) error {
	return r.DB.Create(p).Error
}

func (r *RespondentRepository) FindAlumniProfile(respondentID string) (*model.AlumniProfile, error) {
	var p model.AlumniProfile
	err := r.DB.Where("respondent_id = ?", respondentID).First(&p).Error
	return &p, err
}

func (r *RespondentRepository) FindManagerProfile(respondentID string) (*model.ManagerProfile, error) {
	var p model.ManagerProfile
	err := r.DB.Where("respondent_id = ?", respondentID).First(&p).Error
	return &p, err
}

func (r *RespondentRepository) UpdateAlumniProfile(p *model.AlumniProfile) error {
	return r.DB.Save(p).Error
}

func (r *RespondentRepository) UpdateManagerProfile(p *model.ManagerProfile) error {
	return r.DB.Save(p).Error
}

// HasProfile reports which profile kind a respondent already owns, if any.
// A respondent owns at most one of the two.
func (r *RespondentRepository) HasProfile(respondentID string) (hasAlumni, hasManager bool, err error) {
	var count int64
	if err = r.DB.Model(&model.AlumniProfile{}).
		Where("respondent_id = ?", respondentID).Count(&count).Error; err != nil {
		return
	}
	hasAlumni = count > 0

	if err = r.DB.Model(&model.ManagerProfile{}).
		Where("respondent_id = ?", respondentID).Count(&count).Error; err != nil {
		return
	}
	hasManager = count > 0
	return
}
