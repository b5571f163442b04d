package model

import "time"

type BlastStatus string

const (
	BlastPending  BlastStatus = "PENDING"
	BlastSent     BlastStatus = "SENT"
	BlastFailed   BlastStatus = "FAILED"
	BlastCanceled BlastStatus = "CANCELED"
)

// EmailBlast is a scheduled mail-out inviting a role's respondents to a
// survey. Delivery happens in the background once ScheduledAt passes.
// swagger:model EmailBlast
type EmailBlast struct {
	UUIDBase
	SurveyID    string      `gorm:"index;type:varchar(36);not null" json:"surveyId"`
	Subject     string      `gorm:"size:255;not null" json:"subject"`
	Body        string      `gorm:"type:text;not null" json:"body"`
	TargetRole  UserRole    `gorm:"type:enum('alumni','manager');default:'alumni'" json:"targetRole"`
	ScheduledAt time.Time   `json:"scheduledAt"`
	Status      BlastStatus `gorm:"size:20;default:'PENDING'" json:"status"`
	SentAt      *time.Time  `json:"sentAt,omitempty"`
	SentCount   int         `gorm:"default:0" json:"sentCount"`
	FailedCount int         `gorm:"default:0" json:"failedCount"`
	LastError   string      `gorm:"size:500" json:"lastError,omitempty"`
}

func (EmailBlast) TableName() string {
	return "email_blasts"
}
