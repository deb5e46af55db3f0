package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"student-fees-api/database"
	"student-fees-api/model"
)

// CronManager manages all scheduled background jobs
type CronManager struct {
	cron  *cron.Cron
	store database.Storage
}

// NewCronManager creates a new cron manager
func NewCronManager(store database.Storage) *CronManager {
	return &CronManager{
		cron:  cron.New(cron.WithSeconds()),
		store: store,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Hourly: purge expired token blacklist entries
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("purge_expired_blacklist")
		m.PurgeExpiredBlacklistTokens()
	})
	if err != nil {
		return err
	}

	// Daily at 00:05: record a payments summary snapshot in the job log
	_, err = m.cron.AddFunc("0 5 0 * * *", func() {
		m.logJobStart("daily_payments_summary")
		m.RecordDailyPaymentsSummary()
	})
	return err
}

func (m *CronManager) logJobStart(jobName string) {
	log.Printf("[CRON] Starting job: %s", jobName)
}

func (m *CronManager) logJobComplete(jobName, message string, started time.Time) {
	completed := time.Now()
	entry := &model.CronJobLog{
		JobName:     jobName,
		Status:      "completed",
		StartedAt:   started,
		CompletedAt: &completed,
		Duration:    int(completed.Sub(started).Milliseconds()),
		Message:     message,
	}
	if err := m.store.CreateCronJobLog(entry); err != nil {
		log.Printf("[CRON] Failed to log job completion for %s: %v", jobName, err)
	}
	log.Printf("[CRON] Completed job: %s (%s)", jobName, message)
}

func (m *CronManager) logJobError(jobName string, started time.Time, jobErr error) {
	completed := time.Now()
	entry := &model.CronJobLog{
		JobName:     jobName,
		Status:      "failed",
		StartedAt:   started,
		CompletedAt: &completed,
		Duration:    int(completed.Sub(started).Milliseconds()),
		ErrorMsg:    jobErr.Error(),
	}
	if err := m.store.CreateCronJobLog(entry); err != nil {
		log.Printf("[CRON] Failed to log job failure for %s: %v", jobName, err)
	}
	log.Printf("[CRON] Job %s failed: %v", jobName, jobErr)
}
