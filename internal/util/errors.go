package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrSurveyNotFound      = errors.New("survey not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrResponseNotFound    = errors.New("response not found")
	ErrRespondentNotFound  = errors.New("respondent not found")
	ErrSurveyNotAccepting  = errors.New("survey is not accepting responses")
	ErrSurveyRoleMismatch  = errors.New("survey does not target this respondent role")
	ErrNotEligible         = errors.New("respondent does not meet the survey eligibility rules")
	ErrAlreadySubmitted    = errors.New("response already submitted")
	ErrSurveyLocked        = errors.New("survey already has responses; questions can no longer be edited")
	ErrQuestionDepth       = errors.New("parent question already has a parent; nesting is limited to one level")
	ErrParentNotMatrix     = errors.New("only matrix questions can have child questions")
	ErrParentOtherBucket   = errors.New("parent question belongs to another code question")
	ErrContainerAnswered   = errors.New("container question cannot be answered directly")
	ErrInvalidTransition   = errors.New("invalid survey status transition")
	ErrProfileConflict     = errors.New("respondent already has a profile of another kind")
	ErrInvalidRole         = errors.New("unknown respondent role")
	ErrOptionNotOnQuestion = errors.New("option does not belong to the question")
)

// UnansweredRequiredError rejects a submit while visible required questions
// remain unanswered; it carries the offending question ids for the client.
type UnansweredRequiredError struct {
	QuestionIDs []string
}

func (e *UnansweredRequiredError) Error() string {
	return fmt.Sprintf("%d required questions unanswered: %s",
		len(e.QuestionIDs), strings.Join(e.QuestionIDs, ", "))
}
