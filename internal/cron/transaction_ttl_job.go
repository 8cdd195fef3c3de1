package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mokolo-market/mokolo-backend/pkg/db/models"
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
)

type staleTransactionReader interface {
	ListStaleOpenBefore(ctx context.Context, cutoff time.Time) ([]models.PaymentTransaction, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// TransactionTTLJobParams configure the stale payment cleanup.
type TransactionTTLJobParams struct {
	Logger       *logger.Logger
	Transactions staleTransactionReader
	TTL          time.Duration
}

// NewTransactionTTLJob builds the job that cancels payment attempts the
// provider never answered. A cancelled attempt is terminal; the customer
// simply initiates a fresh one.
func NewTransactionTTLJob(params TransactionTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &transactionTTLJob{
		logg:         params.Logger,
		transactions: params.Transactions,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

type transactionTTLJob struct {
	logg         *logger.Logger
	transactions staleTransactionReader
	ttl          time.Duration
	now          func() time.Time
}

func (j *transactionTTLJob) Name() string { return "transaction-ttl" }

func (j *transactionTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.transactions.ListStaleOpenBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale transactions: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, tx := range stale {
		err := j.transactions.Update(ctx, tx.ID, map[string]any{
			"status": enums.TransactionStatusCancelled,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("cancel transaction %s: %w", tx.ID, err))
			continue
		}
		cancelled++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"cancelled": cancelled, "stale": len(stale)})
	j.logg.Info(logCtx, "transaction ttl sweep complete")
	return multierr.Combine(errs...)
}
