package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"secwatch/core"
	"secwatch/internal"
	"secwatch/models"
	"secwatch/monitoring"
)

func main() {
	godotenv.Load()

	var watch bool
	var judge bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Ingest agent log files and run quality checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				os.Setenv("ENVIRONMENT", "development")
			}

			logger, err := internal.NewLogger()
			if err != nil {
				return err
			}

			db, err := core.InitDB()
			if err != nil {
				return err
			}

			err = db.AutoMigrate(
				&models.LLMLog{},
				&models.Check{},
				&models.Feedback{},
				&models.GroundTruthEntry{},
			)
			if err != nil {
				return err
			}

			runner := monitoring.NewRunner(db, logger)

			if judge {
				judgeEvaluator, err := monitoring.NewJudgeEvaluator()
				if err != nil {
					return err
				}
				runner.EnableJudge(judgeEvaluator)
			}

			if !watch {
				_, err := runner.RunOnce(cmd.Context())
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runner.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep watching the logs directory for new files")
	cmd.Flags().BoolVar(&judge, "judge", false, "also grade answers with the LLM judge")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
