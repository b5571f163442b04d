package model

import "time"

// Response is the single row per (survey, respondent). A nil SubmittedAt
// means draft; draft and submitted are the same row changing state.
// swagger:model Response
type Response struct {
	UUIDBase
	SurveyID     string     `gorm:"uniqueIndex:idx_survey_respondent;type:varchar(36);not null" json:"surveyId"`
	RespondentID string     `gorm:"uniqueIndex:idx_survey_respondent;type:varchar(36);not null" json:"respondentId"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) IsSubmitted() bool {
	return r.SubmittedAt != nil
}

// Answer holds free-text and single-option answers, one row per answered
// question of ESSAY/LONG_TEXT/SINGLE_CHOICE/COMBO_BOX type.
// swagger:model Answer
type Answer struct {
	UUIDBase
	ResponseID     string  `gorm:"uniqueIndex:idx_response_question;type:varchar(36);not null" json:"responseId"`
	QuestionID     string  `gorm:"uniqueIndex:idx_response_question;index;type:varchar(36);not null" json:"questionId"`
	TextAnswer     string  `gorm:"type:text" json:"textAnswer"`
	AnswerOptionID *string `gorm:"type:varchar(36)" json:"answerOptionId,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

// AnswerMultipleChoice holds one row per selected option of a
// MULTIPLE_CHOICE question; a question can have 0..N rows per response.
// swagger:model AnswerMultipleChoice
type AnswerMultipleChoice struct {
	UUIDBase
	ResponseID     string `gorm:"index:idx_multi_response_question;type:varchar(36);not null" json:"responseId"`
	QuestionID     string `gorm:"index:idx_multi_response_question;index;type:varchar(36);not null" json:"questionId"`
	AnswerOptionID string `gorm:"type:varchar(36);not null" json:"answerOptionId"`
}

func (AnswerMultipleChoice) TableName() string {
	return "answer_multiple_choices"
}
