package controller

import (
	"errors"

	"tracer_study_backend/internal/service"
	"tracer_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
}

func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

// ExportSurvey godoc
// @Summary Export submitted responses as an xlsx workbook
// @Description One row per submitted response, one column per answerable question
// @Tags exports
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "survey id"
// @Success 200 {object} util.Response{data=service.ExportResult} "ok"
// @Failure 404 {object} util.Response "not found"
// @Router /api/admin/surveys/{id}/export [post]
func (c *ExportController) ExportSurvey(ctx *gin.Context) {
	result, err := c.ExportService.ExportSurvey(ctx.Request.Context(), ctx.Param("id"))
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
