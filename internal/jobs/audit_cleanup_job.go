package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditCleanupJobName is the scheduler name of the audit retention job
const AuditCleanupJobName = "audit_cleanup"

// AuditPruner deletes audit entries older than the retention window
type AuditPruner interface {
	CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error)
}

type AuditCleanupJob struct {
	pruner        AuditPruner
	retentionDays int
	logger        *zap.Logger
	timeout       time.Duration
}

func NewAuditCleanupJob(pruner AuditPruner, retentionDays int, logger *zap.Logger, timeout time.Duration) *AuditCleanupJob {
	return &AuditCleanupJob{
		pruner:        pruner,
		retentionDays: retentionDays,
		logger:        logger.With(zap.String("job_name", AuditCleanupJobName)),
		timeout:       timeout,
	}
}

// Run is called by the scheduler. A non-positive retention keeps everything.
func (j *AuditCleanupJob) Run() {
	if j.retentionDays <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.pruner.CleanupOldLogs(ctx, j.retentionDays)
	if err != nil {
		j.logger.Error("audit cleanup failed", zap.Error(err))
		return
	}
	j.logger.Info("audit cleanup completed", zap.Int64("deleted", deleted))
}
