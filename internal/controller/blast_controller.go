package controller

import (
	"errors"

	"tracer_study_backend/internal/service"
	"tracer_study_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BlastController struct {
	BlastService *service.BlastService
}

func NewBlastController(blastService *service.BlastService) *BlastController {
	return &BlastController{BlastService: blastService}
}

// Schedule godoc
// @Summary Schedule an email blast
// @Tags blasts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.BlastRequest true "blast fields"
// @Success 201 {object} util.Response{data=model.EmailBlast} "created"
// @Failure 404 {object} util.Response "survey not found"
// @Router /api/admin/blasts [post]
func (c *BlastController) Schedule(ctx *gin.Context) {
	var req service.BlastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	blast, err := c.BlastService.Schedule(req)
	if err != nil {
		if errors.Is(err, util.ErrSurveyNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, blast)
}

// List godoc
// @Summary List email blasts
// @Tags blasts
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Param   surveyId query string false "filter by survey"
// @Success 200 {object} util.Response{data=util.PageResponse} "ok"
// @Router /api/admin/blasts [get]
func (c *BlastController) List(ctx *gin.Context) {
	page, limit := pageParams(ctx)

	blasts, total, err := c.BlastService.List(page, limit, ctx.Query("surveyId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: blasts, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Blast details
// @Tags blasts
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "blast id"
// @Success 200 {object} util.Response{data=model.EmailBlast} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/blasts/{id} [get]
func (c *BlastController) Get(ctx *gin.Context) {
	blast, err := c.BlastService.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, blast)
}

// Cancel godoc
// @Summary Cancel a pending blast
// @Tags blasts
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "blast id"
// @Success 200 {object} util.Response "ok"
// @Failure 404 {object} util.Response "not found"
// @Failure 409 {object} util.Response "blast no longer pending"
// @Router /api/admin/blasts/{id}/cancel [put]
func (c *BlastController) Cancel(ctx *gin.Context) {
	if err := c.BlastService.Cancel(ctx.Param("id")); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidTransition):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
