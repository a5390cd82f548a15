package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"secwatch/controllers"
	"secwatch/core"
	"secwatch/internal"
	"secwatch/internal/retrieval"
	"secwatch/models"
)

func main() {
	godotenv.Load()

	logger, err := internal.NewLogger()
	if err != nil {
		panic(err)
	}

	// connect to the database
	db, err := core.InitDB()
	if err != nil {
		panic(err)
	}

	// auto migrate the database
	err = db.AutoMigrate(
		&models.LLMLog{},
		&models.Check{},
		&models.Feedback{},
		&models.GroundTruthEntry{},
	)
	if err != nil {
		panic(err)
	}

	// set up http server
	r := gin.Default()
	err = r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	generator, err := retrieval.NewGenerator()
	if err != nil {
		panic(err)
	}

	searcher := retrieval.NewSearcher(logger)

	router := controllers.Router{
		HealthController: &controllers.HealthController{},
		QuestionsController: &controllers.QuestionsController{
			Generator: generator,
			Searcher:  searcher,
			Logger:    logger,
		},
		CompaniesController: &controllers.CompaniesController{},
		LogsController:      &controllers.LogsController{Logger: logger},
	}

	router.RegisterRoutes(r)

	err = r.Run()
	if err != nil {
		return
	}
}
