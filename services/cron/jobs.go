package cron

import (
	"encoding/json"
	"fmt"
	"time"
)

// PurgeExpiredBlacklistTokens removes blacklist entries whose tokens have
// expired anyway. Runs hourly.
func (m *CronManager) PurgeExpiredBlacklistTokens() {
	started := time.Now()
	jobName := "purge_expired_blacklist"

	purged, err := m.store.PurgeExpiredBlacklistEntries(started)
	if err != nil {
		m.logJobError(jobName, started, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("purged %d expired entries", purged), started)
}

// RecordDailyPaymentsSummary snapshots the per-status payment totals into the
// job log. Runs nightly; gives admins a cheap history without a reporting
// warehouse.
func (m *CronManager) RecordDailyPaymentsSummary() {
	started := time.Now()
	jobName := "daily_payments_summary"

	summary, err := m.store.PaymentStatusSummary()
	if err != nil {
		m.logJobError(jobName, started, err)
		return
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		m.logJobError(jobName, started, err)
		return
	}

	m.logJobComplete(jobName, string(payload), started)
}
