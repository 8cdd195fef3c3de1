package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

type fakeActivityTrimmer struct {
	trimmed    int64
	err        error
	lastCutoff time.Time
}

func (f *fakeActivityTrimmer) DeleteActivityLogsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	return f.trimmed, f.err
}

type fakeContactTrimmer struct {
	trimmed    int64
	err        error
	lastCutoff time.Time
}

func (f *fakeContactTrimmer) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	return f.trimmed, f.err
}

func TestRetentionJobTrimsBothStores(t *testing.T) {
	activity := &fakeActivityTrimmer{trimmed: 12}
	contact := &fakeContactTrimmer{trimmed: 3}
	job, err := NewRetentionJob(RetentionJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		ActivityLogs: activity,
		Contact:      contact,
		Retention:    48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job.(*retentionJob).now = func() time.Time { return frozen }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	want := frozen.Add(-48 * time.Hour)
	if !activity.lastCutoff.Equal(want) {
		t.Fatalf("activity cutoff = %s, want %s", activity.lastCutoff, want)
	}
	if !contact.lastCutoff.Equal(want) {
		t.Fatalf("contact cutoff = %s, want %s", contact.lastCutoff, want)
	}
}

func TestRetentionJobContactStoreOptional(t *testing.T) {
	job, err := NewRetentionJob(RetentionJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		ActivityLogs: &fakeActivityTrimmer{},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job without contact store: %v", err)
	}
}

func TestRetentionJobCombinesFailures(t *testing.T) {
	activity := &fakeActivityTrimmer{err: errors.New("activity down")}
	contact := &fakeContactTrimmer{err: errors.New("contact down")}
	job, err := NewRetentionJob(RetentionJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		ActivityLogs: activity,
		Contact:      contact,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected combined error")
	}
	if !errors.Is(runErr, activity.err) || !errors.Is(runErr, contact.err) {
		t.Fatalf("combined error missing a cause: %v", runErr)
	}
}

func TestRetentionJobRequiresActivityStore(t *testing.T) {
	if _, err := NewRetentionJob(RetentionJobParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatal("expected error for missing activity store")
	}
}
