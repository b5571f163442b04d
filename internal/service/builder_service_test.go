package service

import (
	"errors"
	"testing"

	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/util"
)

func TestValidateParent(t *testing.T) {
	grandparent := "grandparent"

	tests := []struct {
		name   string
		parent model.Question
		want   error
	}{
		{
			name:   "matrix in same bucket",
			parent: model.Question{CodeQuestionID: "cq1", Type: model.MatrixSingleChoice},
			want:   nil,
		},
		{
			name:   "parent already nested",
			parent: model.Question{CodeQuestionID: "cq1", Type: model.MatrixSingleChoice, ParentID: &grandparent},
			want:   util.ErrQuestionDepth,
		},
		{
			name:   "parent is not a matrix",
			parent: model.Question{CodeQuestionID: "cq1", Type: model.SingleChoice},
			want:   util.ErrParentNotMatrix,
		},
		{
			name:   "parent lives in another bucket",
			parent: model.Question{CodeQuestionID: "cq2", Type: model.MatrixSingleChoice},
			want:   util.ErrParentOtherBucket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateParent(&tt.parent, "cq1")
			if !errors.Is(err, tt.want) {
				t.Errorf("validateParent = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSurveyLifecycleMap(t *testing.T) {
	allowed := func(from, to model.SurveyStatus) bool {
		for _, next := range validTransitions[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	if !allowed(model.SurveyDraft, model.SurveyPublished) {
		t.Error("a draft must be publishable")
	}
	if !allowed(model.SurveyPublished, model.SurveyClosed) {
		t.Error("a published survey must be closable")
	}
	for _, from := range []model.SurveyStatus{model.SurveyDraft, model.SurveyPublished, model.SurveyClosed} {
		if !allowed(from, model.SurveyArchived) {
			t.Errorf("%s must be archivable", from)
		}
	}

	if allowed(model.SurveyPublished, model.SurveyDraft) {
		t.Error("publishing must not be reversible")
	}
	if allowed(model.SurveyClosed, model.SurveyPublished) {
		t.Error("a closed survey must not reopen")
	}
	if len(validTransitions[model.SurveyArchived]) != 0 {
		t.Error("archived is terminal")
	}
}
