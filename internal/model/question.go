package model

type QuestionType string

const (
	Essay              QuestionType = "ESSAY"
	LongText           QuestionType = "LONG_TEXT"
	SingleChoice       QuestionType = "SINGLE_CHOICE"
	MultipleChoice     QuestionType = "MULTIPLE_CHOICE"
	MatrixSingleChoice QuestionType = "MATRIX_SINGLE_CHOICE"
	ComboBox           QuestionType = "COMBO_BOX"
)

func (t QuestionType) IsValid() bool {
	switch t {
	case Essay, LongText, SingleChoice, MultipleChoice, MatrixSingleChoice, ComboBox:
		return true
	}
	return false
}

// IsText reports whether answers are free text rather than option picks.
func (t QuestionType) IsText() bool {
	return t == Essay || t == LongText
}

// IsSingleSelect covers the types answered with exactly one option id.
func (t QuestionType) IsSingleSelect() bool {
	return t == SingleChoice || t == ComboBox
}

// CodeQuestion is a named bucket (e.g. "A1") scoping questions to one survey.
// The code is unique per survey via the composite index, not globally.
// swagger:model CodeQuestion
type CodeQuestion struct {
	UUIDBase
	SurveyID string `gorm:"uniqueIndex:idx_code_survey;type:varchar(36);not null" json:"surveyId"`
	Code     string `gorm:"uniqueIndex:idx_code_survey;size:30;not null" json:"code"`
	Title    string `gorm:"size:255" json:"title"`
	SortOrder int   `gorm:"default:0" json:"sortOrder"`
}

func (CodeQuestion) TableName() string {
	return "code_questions"
}

// swagger:model Question
type Question struct {
	UUIDBase
	CodeQuestionID string       `gorm:"index;type:varchar(36);not null" json:"codeQuestionId"`
	ParentID       *string      `gorm:"index;type:varchar(36)" json:"parentId,omitempty"`
	GroupLabel     string       `gorm:"size:100" json:"groupLabel"`
	Type           QuestionType `gorm:"size:30;not null" json:"type"`
	Text           string       `gorm:"type:text;not null" json:"text"`
	IsRequired     bool         `gorm:"default:false" json:"isRequired"`
	SortOrder      int          `gorm:"default:0" json:"sortOrder"`
	PageNumber     int          `gorm:"default:1" json:"pageNumber"`
	Placeholder    string       `gorm:"size:255" json:"placeholder"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model AnswerOption
type AnswerOption struct {
	UUIDBase
	QuestionID  string `gorm:"index;type:varchar(36);not null" json:"questionId"`
	Text        string `gorm:"size:255;not null" json:"text"`
	SortOrder   int    `gorm:"default:0" json:"sortOrder"`
	IsTriggered bool   `gorm:"default:false" json:"isTriggered"`
	// Placeholder is shown when picking this option requires free-text
	// elaboration ("Other: ___").
	Placeholder string `gorm:"size:255" json:"placeholder"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}

// BranchRule makes the target question visible when the trigger question's
// answer contains the trigger option. Multiple rules for one target are OR'd.
// swagger:model BranchRule
type BranchRule struct {
	UUIDBase
	SurveyID          string `gorm:"index;type:varchar(36);not null" json:"surveyId"`
	TriggerQuestionID string `gorm:"index;type:varchar(36);not null" json:"triggerQuestionId"`
	TriggerOptionID   string `gorm:"type:varchar(36);not null" json:"triggerOptionId"`
	TargetQuestionID  string `gorm:"index;type:varchar(36);not null" json:"targetQuestionId"`
}

func (BranchRule) TableName() string {
	return "branch_rules"
}
