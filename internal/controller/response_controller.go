package controller

import (
	"errors"

	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/service"
	"tracer_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResponseController struct {
	ResponseService *service.ResponseService
	SurveyService   *service.SurveyService
}

func NewResponseController(responseService *service.ResponseService, surveyService *service.SurveyService) *ResponseController {
	return &ResponseController{ResponseService: responseService, SurveyService: surveyService}
}

type saveAnswersRequest struct {
	Answers []service.AnswerItem `json:"answers"`
}

// responseError maps response-lifecycle failures. Unanswered required
// questions come back as 422 carrying the offending question ids.
func responseError(ctx *gin.Context, err error) {
	var unanswered *util.UnansweredRequiredError
	switch {
	case errors.As(err, &unanswered):
		util.UnprocessableEntity(ctx, "required questions unanswered",
			gin.H{"questionIds": unanswered.QuestionIDs})
	case errors.Is(err, util.ErrSurveyNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrResponseNotFound),
		errors.Is(err, util.ErrRespondentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrSurveyRoleMismatch),
		errors.Is(err, util.ErrNotEligible):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrSurveyNotAccepting),
		errors.Is(err, util.ErrAlreadySubmitted),
		errors.Is(err, util.ErrContainerAnswered):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// AvailableSurveys godoc
// @Summary Published surveys targeting the caller's role
// @Tags responses
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse} "ok"
// @Router /api/surveys [get]
func (c *ResponseController) AvailableSurveys(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pageParams(ctx)
	surveys, total, err := c.SurveyService.List(page, limit, model.SurveyPublished, claims.Role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: surveys, Total: total, Page: page, Limit: limit})
}

// GetForm godoc
// @Summary Render a survey form with the caller's answers
// @Description Includes visibility flags, selection state and completion
// @Tags responses
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=service.SurveyForm} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/surveys/{id}/form [get]
func (c *ResponseController) GetForm(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.RespondentID == "" {
		util.Unauthorized(ctx)
		return
	}

	form, err := c.ResponseService.GetForm(ctx.Param("id"), claims.RespondentID)
	if err != nil {
		responseError(ctx, err)
		return
	}
	util.Success(ctx, form)
}

// SaveDraft godoc
// @Summary Save draft answers
// @Description Accepts partial payloads; validation only happens at submit
// @Tags responses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   body body saveAnswersRequest true "answers"
// @Success 200 {object} util.Response{data=service.DraftState} "ok"
// @Failure 403 {object} util.Response "wrong role or not eligible"
// @Failure 409 {object} util.Response "already submitted or survey closed"
// @Router /api/surveys/{id}/draft [put]
func (c *ResponseController) SaveDraft(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.RespondentID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req saveAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.ResponseService.SaveDraft(ctx.Param("id"), claims.RespondentID, req.Answers)
	if err != nil {
		responseError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// Submit godoc
// @Summary Submit the response
// @Description Persists any payload answers, then validates and stamps the submission
// @Tags responses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   body body saveAnswersRequest true "answers"
// @Success 200 {object} util.Response{data=service.DraftState} "ok"
// @Failure 409 {object} util.Response "already submitted or survey closed"
// @Failure 422 {object} util.Response "required questions unanswered"
// @Router /api/surveys/{id}/submit [post]
func (c *ResponseController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.RespondentID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req saveAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.ResponseService.Submit(ctx.Param("id"), claims.RespondentID, req.Answers)
	if err != nil {
		responseError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// Completion godoc
// @Summary Completion score of one response
// @Tags responses
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "response id"
// @Success 200 {object} util.Response{data=engine.Completion} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/responses/{id}/completion [get]
func (c *ResponseController) Completion(ctx *gin.Context) {
	completion, err := c.ResponseService.Completion(ctx.Param("id"))
	if err != nil {
		responseError(ctx, err)
		return
	}
	util.Success(ctx, completion)
}
