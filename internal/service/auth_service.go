package service

import (
	"errors"

	"tracer_study_backend/internal/config"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/repository"
	"tracer_study_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and respondent profiles. Every
// non-admin user gets a respondent row at registration; the respondent id
// rides inside the JWT so survey endpoints never look it up again.
type AuthService struct {
	Users       *repository.UserRepository
	Respondents *repository.RespondentRepository
	Config      *config.Config
}

func NewAuthService(users *repository.UserRepository, respondents *repository.RespondentRepository, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Respondents: respondents, Config: cfg}
}

type RegisterRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Role     model.UserRole `json:"role"`
	Phone    string         `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token        string      `json:"token"`
	User         *model.User `json:"user"`
	RespondentID string      `json:"respondentId,omitempty"`
}

func (s *AuthService) Register(req RegisterRequest) (*AuthResult, error) {
	if _, err := s.Users.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.Alumni
	}
	if !role.IsValid() || role == model.Admin {
		// Admins are seeded, never self-registered.
		role = model.Alumni
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.Users.Create(user); err != nil {
		return nil, err
	}

	respondent := &model.Respondent{
		UserID: user.ID,
		Role:   role,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	}
	if err := s.Respondents.Create(respondent); err != nil {
		return nil, err
	}

	token, err := util.GenerateJWT(user, respondent.ID, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user, RespondentID: respondent.ID}, nil
}

func (s *AuthService) Login(req LoginRequest) (*AuthResult, error) {
	user, err := s.Users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Disabled {
		return nil, util.ErrPermissionDenied
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, util.ErrInvalidCredentials
	}

	respondentID := ""
	if respondent, err := s.Respondents.FindByUserID(user.ID); err == nil {
		respondentID = respondent.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := util.GenerateJWT(user, respondentID, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	s.Users.UpdateLastLogin(user.ID)
	return &AuthResult{Token: token, User: user, RespondentID: respondentID}, nil
}

// Profile bundles a respondent with whichever profile kind it owns.
type Profile struct {
	Respondent *model.Respondent    `json:"respondent"`
	Alumni     *model.AlumniProfile `json:"alumni,omitempty"`
	Manager    *model.ManagerProfile `json:"manager,omitempty"`
}

func (s *AuthService) GetProfile(respondentID string) (*Profile, error) {
	respondent, err := s.Respondents.FindByID(respondentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRespondentNotFound
		}
		return nil, err
	}

	profile := &Profile{Respondent: respondent}
	if alumni, err := s.Respondents.FindAlumniProfile(respondentID); err == nil {
		profile.Alumni = alumni
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if manager, err := s.Respondents.FindManagerProfile(respondentID); err == nil {
		profile.Manager = manager
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return profile, nil
}

type AlumniProfileRequest struct {
	NIM            string `json:"nim"`
	Faculty        string `json:"faculty"`
	Major          string `json:"major"`
	GraduationYear int    `json:"graduationYear"`
}

// SaveAlumniProfile creates or updates the alumni profile. A respondent that
// already owns a manager profile cannot grow an alumni one.
func (s *AuthService) SaveAlumniProfile(respondentID string, req AlumniProfileRequest) (*model.AlumniProfile, error) {
	if _, err := s.Respondents.FindByID(respondentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRespondentNotFound
		}
		return nil, err
	}

	_, hasManager, err := s.Respondents.HasProfile(respondentID)
	if err != nil {
		return nil, err
	}
	if hasManager {
		return nil, util.ErrProfileConflict
	}

	existing, err := s.Respondents.FindAlumniProfile(respondentID)
	if err == nil {
		existing.NIM = req.NIM
		existing.Faculty = req.Faculty
		existing.Major = req.Major
		existing.GraduationYear = req.GraduationYear
		if err := s.Respondents.UpdateAlumniProfile(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.AlumniProfile{
		RespondentID:   respondentID,
		NIM:            req.NIM,
		Faculty:        req.Faculty,
		Major:          req.Major,
		GraduationYear: req.GraduationYear,
	}
	if err := s.Respondents.CreateAlumniProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

type ManagerProfileRequest struct {
	Company  string `json:"company"`
	Position string `json:"position"`
}

func (s *AuthService) SaveManagerProfile(respondentID string, req ManagerProfileRequest) (*model.ManagerProfile, error) {
	if _, err := s.Respondents.FindByID(respondentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRespondentNotFound
		}
		return nil, err
	}

	hasAlumni, _, err := s.Respondents.HasProfile(respondentID)
	if err != nil {
		return nil, err
	}
	if hasAlumni {
		return nil, util.ErrProfileConflict
	}

	existing, err := s.Respondents.FindManagerProfile(respondentID)
	if err == nil {
		existing.Company = req.Company
		existing.Position = req.Position
		if err := s.Respondents.UpdateManagerProfile(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.ManagerProfile{
		RespondentID: respondentID,
		Company:      req.Company,
		Position:     req.Position,
	}
	if err := s.Respondents.CreateManagerProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListRespondents is the admin directory: optional role filter and a
// name/email search term.
func (s *AuthService) ListRespondents(role model.UserRole, search string, page, limit int) ([]model.Respondent, int64, error) {
	if role != "" && !role.IsValid() {
		return nil, 0, util.ErrInvalidRole
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.Respondents.List(role, search, page, limit)
}
