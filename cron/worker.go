// Package cron runs the periodic maintenance jobs: warning expiry, counter
// reconciliation, retention cleanup and overdue-assessment reminders.
package cron

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"trustwork/config"
	"trustwork/services/lifecycle"
	"trustwork/services/notification"
	"trustwork/services/report"
	"trustwork/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeWarningExpire     = "warning:expire"
	TypeWarningSyncCounts = "warning:sync-counts"
	TypeWarningCleanup    = "warning:cleanup"
	TypeAssessmentRemind  = "assessment:remind"
)

// InitMaintenanceWorker starts the asynq worker and its schedule in the
// background. All jobs are idempotent, so overlapping or repeated runs after
// a crash are safe.
func InitMaintenanceWorker(engine lifecycle.Orchestrator, reports *report.Reporter, mailer notification.EmailService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeWarningExpire, handleWarningExpire(engine))
	mux.HandleFunc(TypeWarningSyncCounts, handleWarningSyncCounts(engine))
	mux.HandleFunc(TypeWarningCleanup, handleWarningCleanup(engine))
	mux.HandleFunc(TypeAssessmentRemind, handleAssessmentRemind(reports, mailer))

	go func() {
		log.Println("[MaintenanceWorker] starting async worker...")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[MaintenanceWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)
				if attempts == maxAttempts {
					log.Fatal("[MaintenanceWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runScheduler(redisOpts)
}

func runScheduler(redisOpts asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})

	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{"@every 1h", asynq.NewTask(TypeWarningExpire, nil)},
		{"@every 6h", asynq.NewTask(TypeWarningSyncCounts, nil)},
		{"0 3 * * *", asynq.NewTask(TypeWarningCleanup, nil)},
		{"0 8 * * *", asynq.NewTask(TypeAssessmentRemind, nil)},
	}
	for _, e := range entries {
		if _, err := scheduler.Register(e.spec, e.task); err != nil {
			log.Fatalf("[MaintenanceWorker] failed to register %s: %v", e.task.Type(), err)
		}
	}

	if err := scheduler.Run(); err != nil {
		log.Fatalf("[MaintenanceWorker] scheduler stopped: %v", err)
	}
}

func handleWarningExpire(engine lifecycle.Orchestrator) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := engine.ExpireOldWarnings(ctx)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("expired due warnings", zap.Int64("count", n))
		return nil
	}
}

func handleWarningSyncCounts(engine lifecycle.Orchestrator) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := engine.SyncWarningCounts(ctx)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("reconciled warning counters", zap.Int("profilesUpdated", n))
		return nil
	}
}

func handleWarningCleanup(engine lifecycle.Orchestrator) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		days := config.AppConfig.WarningRetentionDays
		if days <= 0 {
			days = 730
		}
		n, err := engine.CleanupExpiredWarnings(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("purged long-expired warnings", zap.Int64("count", n))
		return nil
	}
}

func handleAssessmentRemind(reports *report.Reporter, mailer notification.EmailService) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		logger := utils.GetLogger()
		providers, err := reports.OverdueAssessments(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if len(providers) == 0 {
			return nil
		}
		logger.Info("providers with overdue risk assessments", zap.Int("count", len(providers)))

		to := config.AppConfig.AdminEmail
		if to == "" {
			logger.Warn("ADMIN_EMAIL not configured, skipping reminder email")
			return nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d provider(s) have overdue risk assessments:\n\n", len(providers))
		for _, p := range providers {
			due := "unscheduled"
			if p.NextAssessmentDate != nil {
				due = p.NextAssessmentDate.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "- %s (level %s, due %s)\n", p.ID, p.RiskLevel, due)
		}
		subject := fmt.Sprintf("Trustwork: %d overdue risk assessments", len(providers))
		return mailer.SendEmail(ctx, to, subject, b.String())
	}
}
