package controller

import (
	"errors"
	"strconv"

	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/service"
	"tracer_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService     *service.SurveyService
	ResponseService   *service.ResponseService
	GenerationService *service.GenerationService
}

func NewSurveyController(surveyService *service.SurveyService, responseService *service.ResponseService,
	generationService *service.GenerationService) *SurveyController {
	return &SurveyController{
		SurveyService:     surveyService,
		ResponseService:   responseService,
		GenerationService: generationService,
	}
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return page, limit
}

// Create godoc
// @Summary Create a survey
// @Tags surveys
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SurveyRequest true "survey fields"
// @Success 201 {object} util.Response{data=model.Survey} "created"
// @Failure 400 {object} util.Response "invalid payload"
// @Router /api/admin/surveys [post]
func (c *SurveyController) Create(ctx *gin.Context) {
	var req service.SurveyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	survey, err := c.SurveyService.Create(req, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSurveyRoleMismatch) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, survey)
}

// List godoc
// @Summary List surveys
// @Tags surveys
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Param   status query string false "filter by status"
// @Param   role query string false "filter by target role"
// @Success 200 {object} util.Response{data=util.PageResponse} "ok"
// @Router /api/admin/surveys [get]
func (c *SurveyController) List(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	status := model.SurveyStatus(ctx.Query("status"))
	role := model.UserRole(ctx.Query("role"))

	surveys, total, err := c.SurveyService.List(page, limit, status, role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: surveys, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Survey details
// @Tags surveys
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=model.Survey} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id} [get]
func (c *SurveyController) Get(ctx *gin.Context) {
	survey, err := c.SurveyService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, survey)
}

// Update godoc
// @Summary Update survey metadata
// @Tags surveys
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   body body service.SurveyRequest true "survey fields"
// @Success 200 {object} util.Response{data=model.Survey} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id} [put]
func (c *SurveyController) Update(ctx *gin.Context) {
	var req service.SurveyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.Update(ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, survey)
}

// Delete godoc
// @Summary Delete a survey
// @Tags surveys
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id} [delete]
func (c *SurveyController) Delete(ctx *gin.Context) {
	if err := c.SurveyService.Delete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type transitionRequest struct {
	Status model.SurveyStatus `json:"status" binding:"required"`
}

// Transition godoc
// @Summary Change survey status
// @Description DRAFT publishes, PUBLISHED closes, anything archives
// @Tags surveys
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   body body transitionRequest true "target status"
// @Success 200 {object} util.Response{data=model.Survey} "ok"
// @Failure 404 {object} util.Response "not found"
// @Failure 409 {object} util.Response "invalid transition"
// @Router /api/admin/surveys/{id}/status [put]
func (c *SurveyController) Transition(ctx *gin.Context) {
	var req transitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.Transition(ctx.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSurveyNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidTransition):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, survey)
}

// Stats godoc
// @Summary Response counts for a survey
// @Tags surveys
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=service.SurveyStats} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id}/stats [get]
func (c *SurveyController) Stats(ctx *gin.Context) {
	stats, err := c.SurveyService.Stats(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, stats)
}

// ListResponses godoc
// @Summary List a survey's responses with completion
// @Tags surveys
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id}/responses [get]
func (c *SurveyController) ListResponses(ctx *gin.Context) {
	page, limit := pageParams(ctx)

	rows, total, err := c.ResponseService.ListResponses(ctx.Param("id"), page, limit)
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, util.PageResponse{List: rows, Total: total, Page: page, Limit: limit})
}

// GetEligibility godoc
// @Summary Eligibility rules of a survey
// @Tags surveys
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=[]model.SurveyEligibility} "ok"
// @Router /api/admin/surveys/{id}/eligibility [get]
func (c *SurveyController) GetEligibility(ctx *gin.Context) {
	rules, err := c.SurveyService.GetEligibility(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rules)
}

// SetEligibility godoc
// @Summary Replace the eligibility rules of a survey
// @Tags surveys
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   body body []service.EligibilityRuleRequest true "rule set"
// @Success 200 {object} util.Response{data=[]model.SurveyEligibility} "ok"
// @Router /api/admin/surveys/{id}/eligibility [put]
func (c *SurveyController) SetEligibility(ctx *gin.Context) {
	var reqs []service.EligibilityRuleRequest
	if err := ctx.ShouldBindJSON(&reqs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rules, err := c.SurveyService.SetEligibility(ctx.Param("id"), reqs)
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rules)
}

// GetGenerationRules godoc
// @Summary Manager generation rules of a survey
// @Tags generation
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=[]model.GenerationRule} "ok"
// @Router /api/admin/surveys/{id}/generation-rules [get]
func (c *SurveyController) GetGenerationRules(ctx *gin.Context) {
	rules, err := c.GenerationService.GetRules(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rules)
}

// SetGenerationRules godoc
// @Summary Replace the generation rules of a survey
// @Tags generation
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Param   body body []service.GenerationRuleRequest true "rule set"
// @Success 200 {object} util.Response{data=[]model.GenerationRule} "ok"
// @Failure 404 {object} util.Response "survey or question not found"
// @Router /api/admin/surveys/{id}/generation-rules [put]
func (c *SurveyController) SetGenerationRules(ctx *gin.Context) {
	var reqs []service.GenerationRuleRequest
	if err := ctx.ShouldBindJSON(&reqs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rules, err := c.GenerationService.SetRules(ctx.Param("id"), reqs)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSurveyNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rules)
}

// GenerateManagers godoc
// @Summary Mint manager accounts from completed responses
// @Tags generation
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=service.GenerationResult} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id}/generate-managers [post]
func (c *SurveyController) GenerateManagers(ctx *gin.Context) {
	result, err := c.GenerationService.Generate(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}
