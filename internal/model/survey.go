package model

type SurveyStatus string

const (
	SurveyDraft     SurveyStatus = "DRAFT"
	SurveyPublished SurveyStatus = "PUBLISHED"
	SurveyClosed    SurveyStatus = "CLOSED"
	SurveyArchived  SurveyStatus = "ARCHIVED"
)

func (s SurveyStatus) IsValid() bool {
	switch s {
	case SurveyDraft, SurveyPublished, SurveyClosed, SurveyArchived:
		return true
	}
	return false
}

// AcceptsResponses reports whether a survey in this status may receive new
// drafts or submissions.
func (s SurveyStatus) AcceptsResponses() bool {
	return s == SurveyPublished
}

// swagger:model Survey
type Survey struct {
	UUIDBase
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	TargetRole  UserRole     `gorm:"type:enum('alumni','manager');default:'alumni'" json:"targetRole"`
	Status      SurveyStatus `gorm:"size:20;default:'DRAFT'" json:"status"`
	OpeningText string       `gorm:"type:text" json:"openingText"`
	ClosingText string       `gorm:"type:text" json:"closingText"`
	CreatorID   uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Survey) TableName() string {
	return "surveys"
}

// SurveyEligibility restricts who may answer a survey. Rules are evaluated
// against the respondent's alumni profile; a respondent is eligible when
// every rule matches.
type SurveyEligibility struct {
	UUIDBase
	SurveyID string `gorm:"index;type:varchar(36);not null" json:"surveyId"`
	Field    string `gorm:"size:50;not null" json:"field"`   // graduation_year, faculty, major
	Operator string `gorm:"size:10;not null" json:"operator"` // eq, gte, lte
	Value    string `gorm:"size:100;not null" json:"value"`
}

func (SurveyEligibility) TableName() string {
	return "survey_eligibilities"
}

// GenerationRule maps a question of an alumni survey onto a manager-record
// field, used when minting manager respondents from completed responses.
type GenerationRule struct {
	UUIDBase
	SurveyID   string `gorm:"index;type:varchar(36);not null" json:"surveyId"`
	Field      string `gorm:"size:30;not null" json:"field"` // name, email, company, position
	QuestionID string `gorm:"type:varchar(36);not null" json:"questionId"`
}

func (GenerationRule) TableName() string {
	return "generation_rules"
}
