package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/metrics"
)

const sweepBatchSize = 100

type pendingTipSource interface {
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Tip, error)
}

type tipSettler interface {
	Confirm(ctx context.Context, tipID uuid.UUID, txHash string) error
	Fail(ctx context.Context, tipID uuid.UUID) error
}

type txStatusReader interface {
	GetTransactionStatus(ctx context.Context, txID string) (*blockchain.TxStatus, error)
}

// PendingTipSweeper settles tips left PENDING by an interrupted send
type PendingTipSweeper struct {
	tips       pendingTipSource
	settler    tipSettler
	chain      txStatusReader
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
	stop       chan struct{}
}

func NewPendingTipSweeper(tips pendingTipSource, settler tipSettler, chain txStatusReader, interval, staleAfter time.Duration) *PendingTipSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &PendingTipSweeper{
		tips:       tips,
		settler:    settler,
		chain:      chain,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
}

func (j *PendingTipSweeper) Start(ctx context.Context) {
	logger.Info(ctx, "Starting pending tip sweeper",
		zap.Duration("interval", j.interval),
		zap.Duration("stale_after", j.staleAfter),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Pending tip sweeper stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Pending tip sweeper stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *PendingTipSweeper) Stop() {
	close(j.stop)
}

func (j *PendingTipSweeper) sweep(ctx context.Context) {
	stale, err := j.tips.ListStalePending(ctx, j.now().Add(-j.staleAfter), sweepBatchSize)
	if err != nil {
		logger.Error(ctx, "Failed to list stale pending tips", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.Info(ctx, "Reconciling stale pending tips", zap.Int("count", len(stale)))
	for _, tip := range stale {
		tipCtx := logger.WithTipID(ctx, tip.ID.String())
		outcome, err := j.settle(tipCtx, tip)
		switch {
		case errors.Is(err, domainerrors.ErrTipSettled):
			outcome = "already_settled"
		case err != nil:
			logger.Error(tipCtx, "Failed to reconcile tip", zap.Error(err))
			continue
		}
		metrics.ReconciledTipsTotal.WithLabelValues(outcome).Inc()
	}
}

// settle decides a stale tip's final status from the chain
func (j *PendingTipSweeper) settle(ctx context.Context, tip *entities.Tip) (string, error) {
	if !tip.TxHash.Valid || tip.TxHash.String == "" {
		return "failed", j.settler.Fail(ctx, tip.ID)
	}

	status, err := j.chain.GetTransactionStatus(ctx, tip.TxHash.String)
	if err != nil {
		return "", err
	}

	switch status.State {
	case blockchain.TxStateConfirmed, blockchain.TxStatePending:
		return "confirmed", j.settler.Confirm(ctx, tip.ID, tip.TxHash.String)
	default:
		return "failed", j.settler.Fail(ctx, tip.ID)
	}
}
