package model

// Respondent is the survey-facing identity of a user. A respondent owns at
// most one profile: an alumni profile or a manager profile, never both.
// swagger:model Respondent
type Respondent struct {
	UUIDBase
	UserID uint     `gorm:"index;type:bigint unsigned" json:"userId"`
	Role   UserRole `gorm:"type:enum('admin','alumni','manager');not null" json:"role"`
	Name   string   `gorm:"size:100;not null" json:"name"`
	Email  string   `gorm:"size:100;index" json:"email"`
	Phone  string   `gorm:"size:30" json:"phone"`
}

func (Respondent) TableName() string {
	return "respondents"
}

// swagger:model AlumniProfile
type AlumniProfile struct {
	UUIDBase
	RespondentID   string `gorm:"uniqueIndex;type:varchar(36);not null" json:"respondentId"`
	NIM            string `gorm:"size:30;index" json:"nim"`
	Faculty        string `gorm:"size:100" json:"faculty"`
	Major          string `gorm:"size:100" json:"major"`
	GraduationYear int    `gorm:"default:0" json:"graduationYear"`
}

func (AlumniProfile) TableName() string {
	return "alumni_profiles"
}

// swagger:model ManagerProfile
type ManagerProfile struct {
	UUIDBase
	RespondentID string `gorm:"uniqueIndex;type:varchar(36);not null" json:"respondentId"`
	Company      string `gorm:"size:150" json:"company"`
	Position     string `gorm:"size:100" json:"position"`
	// SourceResponseID links a generated manager back to the alumni response
	// it was minted from.
	SourceResponseID *string `gorm:"type:varchar(36);index" json:"sourceResponseId,omitempty"`
}

func (ManagerProfile) TableName() string {
	return "manager_profiles"
}
