package jobs

import (
	"context"
	"testing"
	"time"

	"safesite-backend/internal/config"
	"safesite-backend/internal/domain"
	"safesite-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendDecisionNotification(ctx context.Context, email, name, decision, note string) error {
	args := m.Called(ctx, email, name, decision, note)
	return args.Error(0)
}

func (m *MockEmailService) SendPendingReminder(ctx context.Context, adminEmail string, requests []domain.RegistrationRequest) error {
	args := m.Called(ctx, adminEmail, requests)
	return args.Error(0)
}

func reminderConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Approval.AdminEmails = []string{"admin@site.com", "superadmin@safesite.com"}
	cfg.Scheduler.ReminderAgeHours = 24
	return cfg
}

func TestSendPendingReminders(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	// One request old enough to nag about, one fresh.
	assert.NoError(t, store.AddPending(ctx, &domain.RegistrationRequest{
		ID: "r-1", FullName: "Jordan Reyes", Email: "stale@site.com",
		RequestedOn: time.Now().UTC().Add(-48 * time.Hour),
	}))
	assert.NoError(t, store.AddPending(ctx, &domain.RegistrationRequest{
		ID: "r-2", FullName: "Casey Moore", Email: "fresh@site.com",
		RequestedOn: time.Now().UTC().Add(-1 * time.Hour),
	}))

	emailSvc := new(MockEmailService)
	emailSvc.On("SendPendingReminder", mock.Anything, mock.Anything, mock.MatchedBy(func(reqs []domain.RegistrationRequest) bool {
		return len(reqs) == 1 && reqs[0].Email == "stale@site.com"
	})).Return(nil)

	runner := NewJobRunner(store, emailSvc, reminderConfig())
	runner.SendPendingReminders()

	// One digest per configured administrator.
	emailSvc.AssertNumberOfCalls(t, "SendPendingReminder", 2)
	emailSvc.AssertCalled(t, "SendPendingReminder", mock.Anything, "admin@site.com", mock.Anything)
	emailSvc.AssertCalled(t, "SendPendingReminder", mock.Anything, "superadmin@safesite.com", mock.Anything)
}

func TestSendPendingReminders_NothingStale(t *testing.T) {
	store := memory.NewStore()
	assert.NoError(t, store.AddPending(context.Background(), &domain.RegistrationRequest{
		ID: "r-1", Email: "fresh@site.com",
		RequestedOn: time.Now().UTC(),
	}))

	emailSvc := new(MockEmailService)
	runner := NewJobRunner(store, emailSvc, reminderConfig())
	runner.SendPendingReminders()

	emailSvc.AssertNotCalled(t, "SendPendingReminder", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPendingReminders_EmptyQueue(t *testing.T) {
	emailSvc := new(MockEmailService)
	runner := NewJobRunner(memory.NewStore(), emailSvc, reminderConfig())

	runner.SendPendingReminders()

	emailSvc.AssertNotCalled(t, "SendPendingReminder", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPendingReminders_DeliveryFailureDoesNotStopOthers(t *testing.T) {
	store := memory.NewStore()
	assert.NoError(t, store.AddPending(context.Background(), &domain.RegistrationRequest{
		ID: "r-1", Email: "stale@site.com",
		RequestedOn: time.Now().UTC().Add(-48 * time.Hour),
	}))

	emailSvc := new(MockEmailService)
	emailSvc.On("SendPendingReminder", mock.Anything, "admin@site.com", mock.Anything).
		Return(assert.AnError)
	emailSvc.On("SendPendingReminder", mock.Anything, "superadmin@safesite.com", mock.Anything).
		Return(nil)

	runner := NewJobRunner(store, emailSvc, reminderConfig())
	runner.SendPendingReminders()

	emailSvc.AssertNumberOfCalls(t, "SendPendingReminder", 2)
}
