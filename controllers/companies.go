package controllers

import (
	"github.com/gin-gonic/gin"

	"secwatch/api"
	"secwatch/internal/entities"
)

type CompaniesController struct{}

// GetCompanies lists the companies the agent can answer questions about.
func (cc CompaniesController) GetCompanies(c *gin.Context) {
	api.ResultData(c, entities.Companies())
}
