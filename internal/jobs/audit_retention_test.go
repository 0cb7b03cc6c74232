package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend_resources/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockAuditPruner struct {
	mock.Mock
}

func (m *MockAuditPruner) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestAuditRetentionJob_RunOnceUsesRetentionWindow(t *testing.T) {
	pruner := new(MockAuditPruner)
	job := NewAuditRetentionJob(pruner, zap.NewNop(), &config.Config{AuditRetentionDays: 90, AuditRetentionJobSchedule: "@daily"})
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	pruner.On("DeleteOlderThan", mock.Anything, fixed.Add(-90*24*time.Hour)).Return(int64(7), nil).Once()

	n, err := job.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	pruner.AssertExpectations(t)
}

func TestAuditRetentionJob_RunJobLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	pruner := new(MockAuditPruner)
	job := NewAuditRetentionJob(pruner, zap.New(core), &config.Config{AuditRetentionDays: 1, AuditRetentionJobSchedule: "@daily"})
	pruner.On("DeleteOlderThan", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()

	job.runJob()

	assert.Equal(t, 1, logs.FilterMessage("Audit retention job run failed").Len())
}

func TestAuditRetentionJob_SetupAndStart(t *testing.T) {
	t.Run("disabled without schedule", func(t *testing.T) {
		job := NewAuditRetentionJob(new(MockAuditPruner), zap.NewNop(), &config.Config{AuditRetentionDays: 90})
		require.NoError(t, job.SetupAndStart())
		assert.Empty(t, job.cronScheduler.Entries())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		job := NewAuditRetentionJob(new(MockAuditPruner), zap.NewNop(), &config.Config{AuditRetentionDays: 90, AuditRetentionJobSchedule: "every tuesday"})
		assert.Error(t, job.SetupAndStart())
	})

	t.Run("scheduled", func(t *testing.T) {
		job := NewAuditRetentionJob(new(MockAuditPruner), zap.NewNop(), &config.Config{AuditRetentionDays: 90, AuditRetentionJobSchedule: "@daily"})
		require.NoError(t, job.SetupAndStart())
		defer job.Stop()
		assert.Len(t, job.cronScheduler.Entries(), 1)
	})
}
