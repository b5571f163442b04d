package controller

import (
	"errors"

	"tracer_study_backend/internal/model"
	"tracer_study_backend/internal/service"
	"tracer_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary Register a new account
// @Description Creates a user with its respondent identity and returns a JWT
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "registration payload"
// @Success 201 {object} util.Response{data=service.AuthResult} "created"
// @Failure 400 {object} util.Response "invalid payload"
// @Failure 409 {object} util.Response "email already registered"
// @Failure 500 {object} util.Response "internal error"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Register(req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "email already registered")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, result)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "credentials"
// @Success 200 {object} util.Response{data=service.AuthResult} "ok"
// @Failure 400 {object} util.Response "invalid payload"
// @Failure 401 {object} util.Response "invalid credentials"
// @Failure 403 {object} util.Response "account disabled"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCredentials):
			util.Error(ctx, 401, "invalid email or password")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// GetProfile godoc
// @Summary Current respondent profile
// @Tags profile
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Profile} "ok"
// @Failure 404 {object} util.Response "respondent not found"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.RespondentID == "" {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.AuthService.GetProfile(claims.RespondentID)
	if err != nil {
		if errors.Is(err, util.ErrRespondentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, profile)
}

// SaveAlumniProfile godoc
// @Summary Create or update the alumni profile
// @Tags profile
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.AlumniProfileRequest true "profile fields"
// @Success 200 {object} util.Response{data=model.AlumniProfile} "ok"
// @Failure 409 {object} util.Response "respondent already has a manager profile"
// @Router /api/profile/alumni [put]
func (c *AuthController) SaveAlumniProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.RespondentID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req service.AlumniProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.AuthService.SaveAlumniProfile(claims.RespondentID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRespondentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrProfileConflict):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, profile)
}

// SaveManagerProfile godoc
// @Summary Create or update the manager profile
// @Tags profile
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ManagerProfileRequest true "profile fields"
// @Success 200 {object} util.Response{data=model.ManagerProfile} "ok"
// @Failure 409 {object} util.Response "respondent already has an alumni profile"
// @Router /api/profile/manager [put]
func (c *AuthController) SaveManagerProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.RespondentID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req service.ManagerProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.AuthService.SaveManagerProfile(claims.RespondentID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRespondentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrProfileConflict):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, profile)
}

// ListRespondents godoc
// @Summary Respondent directory
// @Tags respondents
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page"
// @Param   limit query int false "page size"
// @Param   role query string false "filter by role"
// @Param   search query string false "name or email search"
// @Success 200 {object} util.Response{data=util.PageResponse} "ok"
// @Router /api/admin/respondents [get]
func (c *AuthController) ListRespondents(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	role := model.UserRole(ctx.Query("role"))
	search := ctx.Query("search")

	respondents, total, err := c.AuthService.ListRespondents(role, search, page, limit)
	if err != nil {
		if errors.Is(err, util.ErrInvalidRole) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, util.PageResponse{List: respondents, Total: total, Page: page, Limit: limit})
}
