package usecases

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/domain/repositories"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/internal/infrastructure/custody"
	"tipsats.backend/internal/infrastructure/pricing"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/metrics"
)

// TipUsecase sends tips and keeps the ledger and creator totals in step
type TipUsecase struct {
	creatorRepo repositories.CreatorRepository
	walletRepo  repositories.WalletRepository
	tipRepo     repositories.TipRepository
	uow         repositories.UnitOfWork
	custodian   custody.Custodian
	node        StacksNode
	oracle      pricing.Oracle
	network     blockchain.Network
}

// NewTipUsecase creates a new tip usecase
func NewTipUsecase(
	creatorRepo repositories.CreatorRepository,
	walletRepo repositories.WalletRepository,
	tipRepo repositories.TipRepository,
	uow repositories.UnitOfWork,
	custodian custody.Custodian,
	node StacksNode,
	oracle pricing.Oracle,
	network blockchain.Network,
) *TipUsecase {
	return &TipUsecase{
		creatorRepo: creatorRepo,
		walletRepo:  walletRepo,
		tipRepo:     tipRepo,
		uow:         uow,
		custodian:   custodian,
		node:        node,
		oracle:      oracle,
		network:     network,
	}
}

// SendTip transfers STX worth AmountUSD from the tipper's wallet to the
// creator and records the outcome. Any failure after the tip row exists
// leaves it FAILED.
func (u *TipUsecase) SendTip(ctx context.Context, input *entities.SendTipInput) (*entities.SendTipResult, error) {
	if !input.AmountUSD.IsPositive() {
		return nil, domainerrors.BadRequest("amountUSD must be positive")
	}
	// stored as numeric(20,2); the converted amount must match what is recorded
	if !input.AmountUSD.Equal(input.AmountUSD.Round(2)) {
		return nil, domainerrors.BadRequest("amountUSD supports at most 2 decimal places")
	}
	if input.CreatorUsername == "" || input.RecipientAddress == "" {
		return nil, domainerrors.BadRequest("Missing required fields")
	}
	if err := blockchain.ValidateAddress(input.RecipientAddress, u.network); err != nil {
		return nil, domainerrors.BadRequest("Invalid recipient address for " + u.network.Name)
	}

	creator, err := u.creatorRepo.GetByUsername(ctx, input.CreatorUsername)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Creator not found")
		}
		return nil, err
	}
	if input.RecipientAddress != creator.StacksAddress {
		return nil, domainerrors.BadRequest("Recipient address does not match the creator's payout address")
	}

	tipperEmail := normalizeEmail(input.TipperEmail)
	if tipperEmail == "" {
		tipperEmail = entities.AnonymousTipper
	}
	wallet, err := u.walletRepo.GetByEmail(ctx, tipperEmail)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.BadRequest("Tipper wallet not found. Create a wallet first")
		}
		return nil, err
	}

	rate, err := u.oracle.USDPerSTX(ctx)
	if err != nil {
		return nil, err
	}
	amountMicro, err := pricing.USDToMicroSTX(input.AmountUSD, rate)
	if err != nil {
		return nil, err
	}
	if amountMicro <= 0 {
		return nil, domainerrors.BadRequest("Amount is below the smallest transferable unit")
	}

	tip := &entities.Tip{
		CreatorID:      creator.ID,
		TipperEmail:    tipperEmail,
		AmountMicroSTX: amountMicro,
		AmountUSD:      input.AmountUSD,
		Status:         entities.TipStatusPending,
	}
	if msg := strings.TrimSpace(input.Message); msg != "" {
		tip.Message = null.StringFrom(msg)
	}
	if err := u.tipRepo.Create(ctx, tip); err != nil {
		return nil, err
	}
	ctx = logger.WithTipID(ctx, tip.ID.String())

	txID, err := u.transfer(ctx, tip, wallet, creator)
	if err != nil {
		if failErr := u.Fail(detached(ctx), tip.ID); failErr != nil {
			logger.Error(ctx, "Failed to mark tip as failed", zap.Error(failErr))
		}
		return nil, sendTipError(err)
	}

	if err := u.Confirm(ctx, tip.ID, txID); err != nil {
		// the transfer is on its way; the sweeper settles the row later
		logger.Error(ctx, "Failed to confirm broadcast tip", zap.String("tx_id", txID), zap.Error(err))
		return nil, err
	}

	logger.Info(ctx, "Tip sent",
		zap.String("tx_id", txID),
		zap.String("creator", creator.Username),
		zap.Int64("amount_micro_stx", amountMicro),
	)
	return &entities.SendTipResult{
		TxID:        txID,
		TipID:       tip.ID,
		ExplorerURL: u.network.ExplorerTxURL(txID),
	}, nil
}

// transfer builds, signs and broadcasts the STX transfer for a pending tip
func (u *TipUsecase) transfer(ctx context.Context, tip *entities.Tip, wallet *entities.Wallet, creator *entities.Creator) (string, error) {
	account, err := u.node.GetAccount(ctx, wallet.Address)
	if err != nil {
		return "", fmt.Errorf("failed to read tipper account: %w", err)
	}

	pub, err := hex.DecodeString(wallet.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: wallet public key is not hex", domainerrors.ErrSigningFailed)
	}

	memo := fmt.Sprintf(TipMemoFormat, creator.Username)
	tx, err := blockchain.BuildTransfer(u.network, pub, creator.StacksAddress, uint64(tip.AmountMicroSTX), memo, account.Nonce, blockchain.MinTransferFee)
	if err != nil {
		return "", err
	}

	fee, err := u.node.EstimateTransferFee(ctx, tx.EstimatedLength())
	if err != nil {
		return "", fmt.Errorf("failed to estimate fee: %w", err)
	}
	tx.Fee = fee

	if account.Balance != nil && account.Balance.Cmp(new(big.Int).SetUint64(tx.Amount+tx.Fee)) < 0 {
		return "", domainerrors.ErrInsufficientFunds
	}

	vrs, err := u.custodian.Sign(ctx, wallet, tx.PresignSighash())
	if err != nil {
		return "", err
	}
	if err := tx.ApplySignature(vrs); err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrSigningFailed, err)
	}

	txID := blockchain.NormalizeTxID(tx.TxID())
	if err := u.tipRepo.AttachTransaction(ctx, tip.ID, txID, wallet.Address); err != nil {
		return "", err
	}

	broadcastID, err := u.node.Broadcast(ctx, tx.Serialize())
	if err != nil {
		metrics.BroadcastTotal.WithLabelValues("rejected").Inc()
		return "", err
	}
	metrics.BroadcastTotal.WithLabelValues("accepted").Inc()
	if broadcastID != txID {
		logger.Warn(ctx, "Node reported a different transaction id",
			zap.String("local_tx_id", txID),
			zap.String("node_tx_id", broadcastID),
		)
	}
	return txID, nil
}

// sendTipError maps transfer failures onto API errors
func sendTipError(err error) error {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var broadcastErr *domainerrors.BroadcastError
	var remoteErr *domainerrors.RemoteActivityError
	switch {
	case errors.As(err, &broadcastErr):
		return domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeBroadcastFailed, broadcastErr.Error(), err)
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput, "Insufficient balance for this tip", err)
	case errors.As(err, &remoteErr),
		errors.Is(err, domainerrors.ErrSigningFailed),
		errors.Is(err, domainerrors.ErrActivityTimeout):
		return domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeSigningFailed, "Failed to sign transaction", err)
	default:
		return domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeInternalError, "Failed to send tip", err)
	}
}

// Confirm marks a pending tip CONFIRMED and adds it to the creator totals
// in one transaction
func (u *TipUsecase) Confirm(ctx context.Context, tipID uuid.UUID, txHash string) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		tip, err := u.tipRepo.GetByID(txCtx, tipID)
		if err != nil {
			return err
		}
		if err := u.tipRepo.MarkConfirmed(txCtx, tipID, txHash); err != nil {
			return err
		}
		return u.creatorRepo.IncrementTotals(txCtx, tip.CreatorID, tip.AmountMicroSTX, tip.AmountUSD)
	})
	if err != nil {
		return err
	}
	metrics.TipsTotal.WithLabelValues(string(entities.TipStatusConfirmed)).Inc()
	return nil
}

// Fail marks a pending tip FAILED
func (u *TipUsecase) Fail(ctx context.Context, tipID uuid.UUID) error {
	if err := u.tipRepo.MarkFailed(ctx, tipID); err != nil {
		return err
	}
	metrics.TipsTotal.WithLabelValues(string(entities.TipStatusFailed)).Inc()
	return nil
}

// GetTxStatus reports the chain state of a transaction
func (u *TipUsecase) GetTxStatus(ctx context.Context, txID string) (*entities.TxStatus, error) {
	if !validTxID(txID) {
		return nil, domainerrors.BadRequest("Invalid transaction id")
	}

	status, err := u.node.GetTransactionStatus(ctx, txID)
	if err != nil {
		return nil, err
	}
	return &entities.TxStatus{
		TxID:        status.TxID,
		Status:      status.State,
		BlockHeight: status.BlockHeight,
		Fee:         status.Fee,
		ExplorerURL: u.network.ExplorerTxURL(status.TxID),
	}, nil
}
