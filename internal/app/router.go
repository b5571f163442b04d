package app

import (
	"tracer_study_backend/docs"
	"tracer_study_backend/internal/config"
	"tracer_study_backend/internal/middleware"
	"tracer_study_backend/internal/model"
	"tracer_study_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerRespondentRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

// Respondent-facing routes: profile management and survey answering.
func (a *App) registerRespondentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/profile/alumni", c.auth.SaveAlumniProfile)
	rg.PUT("/profile/manager", c.auth.SaveManagerProfile)

	rg.GET("/surveys", c.response.AvailableSurveys)
	rg.GET("/surveys/:id/form", c.response.GetForm)
	rg.PUT("/surveys/:id/draft", c.response.SaveDraft)
	rg.POST("/surveys/:id/submit", c.response.Submit)
	rg.GET("/responses/:id/completion", c.response.Completion)
}

// Admin routes: survey lifecycle, authoring, blasts and exports.
func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		surveys := admin.Group("/surveys")
		{
			surveys.POST("", c.survey.Create)
			surveys.GET("", c.survey.List)
			surveys.GET("/:id", c.survey.Get)
			surveys.PUT("/:id", c.survey.Update)
			surveys.DELETE("/:id", c.survey.Delete)
			surveys.PUT("/:id/status", c.survey.Transition)
			surveys.GET("/:id/stats", c.survey.Stats)
			surveys.GET("/:id/responses", c.survey.ListResponses)

			surveys.GET("/:id/eligibility", c.survey.GetEligibility)
			surveys.PUT("/:id/eligibility", c.survey.SetEligibility)
			surveys.GET("/:id/generation-rules", c.survey.GetGenerationRules)
			surveys.PUT("/:id/generation-rules", c.survey.SetGenerationRules)
			surveys.POST("/:id/generate-managers", c.survey.GenerateManagers)

			surveys.GET("/:id/builder", c.builder.GetGraph)
			surveys.POST("/:id/export", c.export.ExportSurvey)
		}

		codeQuestions := admin.Group("/code-questions")
		{
			codeQuestions.POST("", c.builder.CreateCodeQuestion)
			codeQuestions.DELETE("/:id", c.builder.DeleteCodeQuestion)
			codeQuestions.PUT("/:id/reorder", c.builder.ReorderQuestions)
		}

		questions := admin.Group("/questions")
		{
			questions.POST("", c.builder.CreateQuestion)
			questions.PUT("/:id", c.builder.UpdateQuestion)
			questions.DELETE("/:id", c.builder.DeleteQuestion)
		}

		options := admin.Group("/options")
		{
			options.POST("", c.builder.CreateOption)
			options.PUT("/:id", c.builder.UpdateOption)
			options.DELETE("/:id", c.builder.DeleteOption)
		}

		branchRules := admin.Group("/branch-rules")
		{
			branchRules.POST("", c.builder.CreateBranchRule)
			branchRules.DELETE("/:id", c.builder.DeleteBranchRule)
		}

		admin.GET("/respondents", c.auth.ListRespondents)

		blasts := admin.Group("/blasts")
		{
			blasts.POST("", c.blast.Schedule)
			blasts.GET("", c.blast.List)
			blasts.GET("/:id", c.blast.Get)
			blasts.PUT("/:id/cancel", c.blast.Cancel)
		}
	}
}
