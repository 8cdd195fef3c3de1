package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

type fakeTransactionReader struct {
	stale      []models.PaymentTransaction
	listErr    error
	updateErr  map[uuid.UUID]error
	updates    map[uuid.UUID]map[string]any
	lastCutoff time.Time
}

func (f *fakeTransactionReader) ListStaleOpenBefore(_ context.Context, cutoff time.Time) ([]models.PaymentTransaction, error) {
	f.lastCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stale, nil
}

func (f *fakeTransactionReader) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	if err, ok := f.updateErr[id]; ok {
		return err
	}
	if f.updates == nil {
		f.updates = make(map[uuid.UUID]map[string]any)
	}
	f.updates[id] = updates
	return nil
}

func TestTransactionTTLJobCancelsStaleAttempts(t *testing.T) {
	first := models.PaymentTransaction{ID: uuid.New()}
	second := models.PaymentTransaction{ID: uuid.New()}
	reader := &fakeTransactionReader{stale: []models.PaymentTransaction{first, second}}

	job, err := NewTransactionTTLJob(TransactionTTLJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		Transactions: reader,
		TTL:          24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(reader.updates) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(reader.updates))
	}
	for id, updates := range reader.updates {
		if updates["status"] != enums.TransactionStatusCancelled {
			t.Fatalf("transaction %s updated to %v, want CANCELLED", id, updates["status"])
		}
	}
}

func TestTransactionTTLJobUsesConfiguredCutoff(t *testing.T) {
	reader := &fakeTransactionReader{}
	job, err := NewTransactionTTLJob(TransactionTTLJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		Transactions: reader,
		TTL:          6 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	frozen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	job.(*transactionTTLJob).now = func() time.Time { return frozen }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	want := frozen.Add(-6 * time.Hour)
	if !reader.lastCutoff.Equal(want) {
		t.Fatalf("cutoff = %s, want %s", reader.lastCutoff, want)
	}
}

func TestTransactionTTLJobKeepsGoingPastUpdateFailures(t *testing.T) {
	broken := models.PaymentTransaction{ID: uuid.New()}
	healthy := models.PaymentTransaction{ID: uuid.New()}
	reader := &fakeTransactionReader{
		stale:     []models.PaymentTransaction{broken, healthy},
		updateErr: map[uuid.UUID]error{broken.ID: errors.New("deadlock")},
	}

	job, err := NewTransactionTTLJob(TransactionTTLJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		Transactions: reader,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected combined error from failed cancellation")
	}
	if _, ok := reader.updates[healthy.ID]; !ok {
		t.Fatal("healthy transaction should still have been cancelled")
	}
}

func TestTransactionTTLJobRequiresDeps(t *testing.T) {
	if _, err := NewTransactionTTLJob(TransactionTTLJobParams{Transactions: &fakeTransactionReader{}}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewTransactionTTLJob(TransactionTTLJobParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatal("expected error for missing repository")
	}
}
