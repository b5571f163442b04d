package controller

import (
	"errors"

	"tracer_study_backend/internal/service"
	"tracer_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BuilderController struct {
	BuilderService *service.BuilderService
}

func NewBuilderController(builderService *service.BuilderService) *BuilderController {
	return &BuilderController{BuilderService: builderService}
}

// builderError maps authoring failures onto the envelope. Locked surveys and
// structural violations are conflicts, missing rows are 404s.
func builderError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSurveyNotFound),
		errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrSurveyLocked),
		errors.Is(err, util.ErrQuestionDepth),
		errors.Is(err, util.ErrParentNotMatrix),
		errors.Is(err, util.ErrParentOtherBucket),
		errors.Is(err, util.ErrOptionNotOnQuestion):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// GetGraph godoc
// @Summary Full survey definition for the builder
// @Tags builder
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id}/builder [get]
func (c *BuilderController) GetGraph(ctx *gin.Context) {
	g, err := c.BuilderService.GetGraph(ctx.Param("id"))
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, g)
}

// CreateCodeQuestion godoc
// @Summary Create a code-question section
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CodeQuestionRequest true "section fields"
// @Success 201 {object} util.Response{data=model.CodeQuestion} "created"
// @Failure 409 {object} util.Response "survey locked or duplicate code"
// @Router /api/admin/code-questions [post]
func (c *BuilderController) CreateCodeQuestion(ctx *gin.Context) {
	var req service.CodeQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	code, err := c.BuilderService.CreateCodeQuestion(req)
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Created(ctx, code)
}

// DeleteCodeQuestion godoc
// @Summary Delete a section and everything under it
// @Tags builder
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "code question id"
// @Success 200 {object} util.Response "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/code-questions/{id} [delete]
func (c *BuilderController) DeleteCodeQuestion(ctx *gin.Context) {
	if err := c.BuilderService.DeleteCodeQuestion(ctx.Param("id")); err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateQuestion godoc
// @Summary Create a question
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuestionRequest true "question fields"
// @Success 201 {object} util.Response{data=model.Question} "created"
// @Failure 409 {object} util.Response "survey locked or invalid parent"
// @Router /api/admin/questions [post]
func (c *BuilderController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.BuilderService.CreateQuestion(req)
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "question id"
// @Param   body body service.QuestionRequest true "question fields"
// @Success 200 {object} util.Response{data=model.Question} "ok"
// @Failure 404 {object} util.Response "not found"
// @Failure 409 {object} util.Response "survey locked or invalid parent"
// @Router /api/admin/questions/{id} [put]
func (c *BuilderController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.BuilderService.UpdateQuestion(ctx.Param("id"), req)
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question, cascading children, rules, options and answers
// @Tags builder
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "question id"
// @Success 200 {object} util.Response "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/questions/{id} [delete]
func (c *BuilderController) DeleteQuestion(ctx *gin.Context) {
	if err := c.BuilderService.DeleteQuestion(ctx.Param("id")); err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type reorderRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required"`
}

// ReorderQuestions godoc
// @Summary Reorder the questions of a section
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "code question id"
// @Param   body body reorderRequest true "question ids in new order"
// @Success 200 {object} util.Response "ok"
// @Failure 409 {object} util.Response "survey locked"
// @Router /api/admin/code-questions/{id}/reorder [put]
func (c *BuilderController) ReorderQuestions(ctx *gin.Context) {
	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.BuilderService.ReorderQuestions(ctx.Param("id"), req.OrderedIDs); err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateOption godoc
// @Summary Add an answer option
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.OptionRequest true "option fields"
// @Success 201 {object} util.Response{data=model.AnswerOption} "created"
// @Failure 409 {object} util.Response "survey locked"
// @Router /api/admin/options [post]
func (c *BuilderController) CreateOption(ctx *gin.Context) {
	var req service.OptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	o, err := c.BuilderService.CreateOption(req)
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Created(ctx, o)
}

// UpdateOption godoc
// @Summary Update an answer option
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "option id"
// @Param   body body service.OptionRequest true "option fields"
// @Success 200 {object} util.Response{data=model.AnswerOption} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/options/{id} [put]
func (c *BuilderController) UpdateOption(ctx *gin.Context) {
	var req service.OptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	o, err := c.BuilderService.UpdateOption(ctx.Param("id"), req)
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, o)
}

// DeleteOption godoc
// @Summary Delete an option and the branch rules it triggers
// @Tags builder
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "option id"
// @Success 200 {object} util.Response "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/options/{id} [delete]
func (c *BuilderController) DeleteOption(ctx *gin.Context) {
	if err := c.BuilderService.DeleteOption(ctx.Param("id")); err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateBranchRule godoc
// @Summary Create a branching rule
// @Tags builder
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.BranchRuleRequest true "rule fields"
// @Success 201 {object} util.Response{data=model.BranchRule} "created"
// @Failure 409 {object} util.Response "option not on trigger question"
// @Router /api/admin/branch-rules [post]
func (c *BuilderController) CreateBranchRule(ctx *gin.Context) {
	var req service.BranchRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rule, err := c.BuilderService.CreateBranchRule(req)
	if err != nil {
		builderError(ctx, err)
		return
	}
	util.Created(ctx, rule)
}

// DeleteBranchRule godoc
// @Summary Delete a branching rule
// @Tags builder
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "rule id"
// @Success 200 {object} util.Response "ok"
// @Router /api/admin/branch-rules/{id} [delete]
func (c *BuilderController) DeleteBranchRule(ctx *gin.Context) {
	if err := c.BuilderService.DeleteBranchRule(ctx.Param("id")); err != nil {
		builderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
