package jobs

import (
	"context"
	"time"

	"safesite-backend/internal/domain"
	"safesite-backend/internal/logger"
)

// SendPendingReminders emails every administrator a digest of registration
// requests that have been waiting longer than the configured age.
func (jr *JobRunner) SendPendingReminders() {
	jr.runWithRecovery("SendPendingReminders", func() {
		ctx := context.Background()

		pending, err := jr.store.ListPending(ctx)
		if err != nil {
			logger.Error("Failed to list pending requests", "error", err)
			return
		}

		cutoff := time.Now().UTC().Add(-time.Duration(jr.config.Scheduler.ReminderAgeHours) * time.Hour)
		var stale []domain.RegistrationRequest
		for _, r := range pending {
			if r.RequestedOn.Before(cutoff) {
				stale = append(stale, r)
			}
		}
		if len(stale) == 0 {
			logger.Debug("No aging pending requests, skipping reminder")
			return
		}

		for _, adminEmail := range jr.config.Approval.AdminEmails {
			if err := jr.emailSvc.SendPendingReminder(ctx, adminEmail, stale); err != nil {
				logger.Error("Failed to send pending reminder", "admin", adminEmail, "error", err)
			}
		}
		logger.Info("Pending reminders sent", "requests", len(stale), "admins", len(jr.config.Approval.AdminEmails))
	})
}
