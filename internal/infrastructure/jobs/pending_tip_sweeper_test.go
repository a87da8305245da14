package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/infrastructure/blockchain"
)

type staleTipSourceStub struct {
	tips      []*entities.Tip
	err       error
	olderThan time.Time
}

func (s *staleTipSourceStub) ListStalePending(_ context.Context, olderThan time.Time, _ int) ([]*entities.Tip, error) {
	s.olderThan = olderThan
	return s.tips, s.err
}

type tipSettlerStub struct {
	confirmed  map[uuid.UUID]string
	failed     []uuid.UUID
	confirmErr error
}

func (s *tipSettlerStub) Confirm(_ context.Context, id uuid.UUID, txHash string) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	if s.confirmed == nil {
		s.confirmed = map[uuid.UUID]string{}
	}
	s.confirmed[id] = txHash
	return nil
}

func (s *tipSettlerStub) Fail(_ context.Context, id uuid.UUID) error {
	s.failed = append(s.failed, id)
	return nil
}

type txStatusStub struct {
	states map[string]string
	err    error
}

func (s *txStatusStub) GetTransactionStatus(_ context.Context, txID string) (*blockchain.TxStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &blockchain.TxStatus{TxID: txID, State: s.states[txID]}, nil
}

func newSweeperForTest(src *staleTipSourceStub, settler *tipSettlerStub, chain *txStatusStub) *PendingTipSweeper {
	j := NewPendingTipSweeper(src, settler, chain, time.Millisecond, 10*time.Minute)
	j.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return j
}

func TestSweep_NoItems(t *testing.T) {
	src := &staleTipSourceStub{}
	settler := &tipSettlerStub{}
	job := newSweeperForTest(src, settler, &txStatusStub{})

	job.sweep(context.Background())
	require.Empty(t, settler.failed)
	require.Empty(t, settler.confirmed)
	require.Equal(t, time.Date(2026, 1, 1, 11, 50, 0, 0, time.UTC), src.olderThan)
}

func TestSweep_SettlesByChainState(t *testing.T) {
	noHash := &entities.Tip{ID: uuid.New()}
	success := &entities.Tip{ID: uuid.New(), TxHash: null.StringFrom("0x01")}
	pending := &entities.Tip{ID: uuid.New(), TxHash: null.StringFrom("0x02")}
	aborted := &entities.Tip{ID: uuid.New(), TxHash: null.StringFrom("0x03")}
	unknown := &entities.Tip{ID: uuid.New(), TxHash: null.StringFrom("0x04")}

	src := &staleTipSourceStub{tips: []*entities.Tip{noHash, success, pending, aborted, unknown}}
	settler := &tipSettlerStub{}
	chain := &txStatusStub{states: map[string]string{
		"0x01": blockchain.TxStateConfirmed,
		"0x02": blockchain.TxStatePending,
		"0x03": blockchain.TxStateFailed,
		"0x04": blockchain.TxStateNotFound,
	}}

	newSweeperForTest(src, settler, chain).sweep(context.Background())

	require.Equal(t, map[uuid.UUID]string{success.ID: "0x01", pending.ID: "0x02"}, settler.confirmed)
	require.ElementsMatch(t, []uuid.UUID{noHash.ID, aborted.ID, unknown.ID}, settler.failed)
}

func TestSweep_ListError(t *testing.T) {
	settler := &tipSettlerStub{}
	newSweeperForTest(&staleTipSourceStub{err: errors.New("db down")}, settler, &txStatusStub{}).sweep(context.Background())
	require.Empty(t, settler.failed)
}

func TestSweep_ChainErrorLeavesTipPending(t *testing.T) {
	tip := &entities.Tip{ID: uuid.New(), TxHash: null.StringFrom("0x05")}
	settler := &tipSettlerStub{}
	newSweeperForTest(&staleTipSourceStub{tips: []*entities.Tip{tip}}, settler, &txStatusStub{err: errors.New("node down")}).sweep(context.Background())

	require.Empty(t, settler.failed)
	require.Empty(t, settler.confirmed)
}

func TestSweep_AlreadySettledIsNotAnError(t *testing.T) {
	tip := &entities.Tip{ID: uuid.New(), TxHash: null.StringFrom("0x06")}
	settler := &tipSettlerStub{confirmErr: domainerrors.ErrTipSettled}
	chain := &txStatusStub{states: map[string]string{"0x06": blockchain.TxStateConfirmed}}

	newSweeperForTest(&staleTipSourceStub{tips: []*entities.Tip{tip}}, settler, chain).sweep(context.Background())
	require.Empty(t, settler.failed)
}

func TestPendingTipSweeper_StartStop(t *testing.T) {
	job := newSweeperForTest(&staleTipSourceStub{}, &tipSettlerStub{}, &txStatusStub{})

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	job.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestPendingTipSweeper_StopsOnContextCancel(t *testing.T) {
	job := newSweeperForTest(&staleTipSourceStub{}, &tipSettlerStub{}, &txStatusStub{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
