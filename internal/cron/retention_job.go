package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

type activityLogTrimmer interface {
	DeleteActivityLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type contactMessageTrimmer interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJobParams configure the audit retention sweep.
type RetentionJobParams struct {
	Logger       *logger.Logger
	ActivityLogs activityLogTrimmer
	Contact      contactMessageTrimmer
	Retention    time.Duration
}

// NewRetentionJob builds the job that trims old activity logs and settled
// contact messages past the retention window.
func NewRetentionJob(params RetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.ActivityLogs == nil {
		return nil, fmt.Errorf("activity log repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &retentionJob{
		logg:      params.Logger,
		activity:  params.ActivityLogs,
		contact:   params.Contact,
		retention: retention,
		now:       time.Now,
	}, nil
}

type retentionJob struct {
	logg      *logger.Logger
	activity  activityLogTrimmer
	contact   contactMessageTrimmer
	retention time.Duration
	now       func() time.Time
}

func (j *retentionJob) Name() string { return "retention" }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)

	var errs []error
	trimmedLogs, err := j.activity.DeleteActivityLogsBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("trim activity logs: %w", err))
	}

	var trimmedMessages int64
	if j.contact != nil {
		trimmedMessages, err = j.contact.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("trim contact messages: %w", err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"activity_logs":    trimmedLogs,
		"contact_messages": trimmedMessages,
	})
	j.logg.Info(logCtx, "retention sweep complete")
	return multierr.Combine(errs...)
}
