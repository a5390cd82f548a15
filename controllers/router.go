package controllers

import (
	"github.com/gin-gonic/gin"
)

type Router struct {
	HealthController    *HealthController
	QuestionsController *QuestionsController
	CompaniesController *CompaniesController
	LogsController      *LogsController
}

func (r Router) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", r.HealthController.Status)

	router.POST("/questions", r.QuestionsController.Ask)
	router.GET("/companies", r.CompaniesController.GetCompanies)

	router.GET("/logs", r.LogsController.GetLogs)
	router.GET("/logs/:id", r.LogsController.GetLog)
	router.POST("/logs/:id/feedback", r.LogsController.PostFeedback)
	router.POST("/logs/:id/ground-truth", r.LogsController.PostGroundTruth)
	router.GET("/ground-truth", r.LogsController.GetGroundTruth)
}
