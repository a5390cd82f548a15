package monitoring

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"secwatch/models"
)

const processedDirName = "_processed"

// Runner ingests agent log files from a directory into the database. Files
// are evaluated, recorded, and moved to a _processed subdirectory.
type Runner struct {
	db        *gorm.DB
	logger    *zap.SugaredLogger
	evaluator *RuleBasedEvaluator
	judge     *JudgeEvaluator
	logsDir   string
	pollEvery time.Duration
}

// NewRunner builds a Runner reading from LOGS_DIR (default "logs"), rescanning
// every POLL_SECONDS in watch mode.
func NewRunner(db *gorm.DB, logger *zap.SugaredLogger) *Runner {
	logsDir := os.Getenv("LOGS_DIR")
	if logsDir == "" {
		logsDir = "logs"
	}

	pollSeconds := 2
	if v := os.Getenv("POLL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pollSeconds = parsed
		}
	}

	return &Runner{
		db:        db,
		logger:    logger,
		evaluator: &RuleBasedEvaluator{},
		logsDir:   logsDir,
		pollEvery: time.Duration(pollSeconds) * time.Second,
	}
}

// EnableJudge adds an LLM judge pass on top of the rule-based checks. Judge
// failures do not fail ingestion; the rule-based checks are still recorded.
func (r *Runner) EnableJudge(judge *JudgeEvaluator) {
	r.judge = judge
}

// RunOnce processes every pending log file in the logs directory. Files that
// fail to parse or insert are logged and left in place for inspection.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(r.logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warnw("logs directory does not exist", "dir", r.logsDir)
			return 0, nil
		}

		return 0, err
	}

	processed := 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return processed, ctx.Err()
		default:
		}

		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(r.logsDir, name)
		if err := r.processFile(ctx, path); err != nil {
			r.logger.Errorw("failed to process log file", "path", path, "error", err)
			continue
		}
		processed++
	}

	if processed > 0 {
		r.logger.Infow("processed log files", "count", processed)
	}

	return processed, nil
}

func (r *Runner) processFile(ctx context.Context, path string) error {
	log, err := ParseLogFile(path)
	if err != nil {
		return err
	}

	if existing, err := models.GetLLMLogByFilepath(r.db, path); err != nil {
		return err
	} else if existing != nil {
		r.logger.Debugw("log file already ingested", "path", path)
		return r.markProcessed(path)
	}

	if input, output, total, ok := EstimateCosts(log.Provider, log.Model, log.TotalInputTokens, log.TotalOutputTokens); ok {
		log.InputCost = input
		log.OutputCost = output
		log.TotalCost = total
	}

	if _, err := models.CreateLLMLog(r.db, log); err != nil {
		return fmt.Errorf("inserting log: %w", err)
	}

	checks := r.evaluator.Evaluate(log.ID, log)
	if err := models.CreateChecks(r.db, checks); err != nil {
		return fmt.Errorf("inserting checks: %w", err)
	}

	if r.judge != nil {
		if feedback, err := r.judge.Evaluate(ctx, log); err != nil {
			r.logger.Errorw("judge evaluation failed", "path", path, "log_id", log.ID, "error", err)
		} else if err := models.CreateChecks(r.db, feedback.Checks(log.ID)); err != nil {
			return fmt.Errorf("inserting judge checks: %w", err)
		}
	}

	r.logger.Debugw("ingested log file",
		"path", path,
		"log_id", log.ID,
		"agent", log.AgentName,
		"model", log.Model,
		"checks", len(checks),
	)

	return r.markProcessed(path)
}

func (r *Runner) markProcessed(path string) error {
	processedDir := filepath.Join(r.logsDir, processedDirName)
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}

	return os.Rename(path, filepath.Join(processedDir, filepath.Base(path)))
}

// Watch processes pending files, then keeps processing as new files arrive.
// A periodic rescan backstops missed filesystem events. Watch returns when
// the context is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	if _, err := r.RunOnce(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(r.logsDir); err != nil {
		return err
	}

	r.logger.Infow("watching logs directory", "dir", r.logsDir, "rescan", r.pollEvery)

	ticker := time.NewTicker(r.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, err := r.RunOnce(ctx); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Errorw("watch error", "error", err)
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}
