package repository

import (
	"errors"

	"tracer_study_backend/internal/engine"
	"tracer_study_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// UpsertAnswer replaces whatever answer the response already holds for the
// question. Multi-choice replaces the whole option set (delete then
// reinsert, never a diff); text and single answers update in place.
func (r *AnswerRepository) UpsertAnswer(responseID, questionID string, v engine.AnswerValue) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return upsertAnswerTx(tx, responseID, questionID, v)
	})
}

func upsertAnswerTx(tx *gorm.DB, responseID, questionID string, v engine.AnswerValue) error {
	if v.Kind == engine.KindMulti {
		if err := tx.Unscoped().
			Where("response_id = ? AND question_id = ?", responseID, questionID).
			Delete(&model.AnswerMultipleChoice{}).Error; err != nil {
			return err
		}
		for _, optionID := range v.OptionIDs {
			row := model.AnswerMultipleChoice{
				ResponseID:     responseID,
				QuestionID:     questionID,
				AnswerOptionID: optionID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	}

	var answer model.Answer
	err := tx.Where("response_id = ? AND question_id = ?", responseID, questionID).
		First(&answer).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	answer.ResponseID = responseID
	answer.QuestionID = questionID
	switch v.Kind {
	case engine.KindText:
		answer.TextAnswer = v.Text
		answer.AnswerOptionID = nil
	case engine.KindSingle:
		answer.TextAnswer = ""
		if v.OptionID == "" {
			answer.AnswerOptionID = nil
		} else {
			optionID := v.OptionID
			answer.AnswerOptionID = &optionID
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&answer).Error
	}
	return tx.Save(&answer).Error
}

// GetAnswers returns all three answer kinds of a response as one set keyed
// by question id.
func (r *AnswerRepository) GetAnswers(responseID string) (engine.AnswerSet, error) {
	return loadAnswerSet(r.DB, responseID)
}

// loadAnswerSet is shared with the submit transaction so validation sees the
// same rows the commit does.
func loadAnswerSet(tx *gorm.DB, responseID string) (engine.AnswerSet, error) {
	set := make(engine.AnswerSet)

	var answers []model.Answer
	if err := tx.Where("response_id = ?", responseID).Find(&answers).Error; err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.AnswerOptionID != nil {
			set[a.QuestionID] = engine.SingleAnswer(*a.AnswerOptionID)
		} else {
			set[a.QuestionID] = engine.TextAnswer(a.TextAnswer)
		}
	}

	var multi []model.AnswerMultipleChoice
	if err := tx.Where("response_id = ?", responseID).Find(&multi).Error; err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]string)
	for _, m := range multi {
		byQuestion[m.QuestionID] = append(byQuestion[m.QuestionID], m.AnswerOptionID)
	}
	for questionID, optionIDs := range byQuestion {
		set[questionID] = engine.MultiAnswer(optionIDs)
	}

	return set, nil
}
