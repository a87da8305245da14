package usecases

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/domain/repositories"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/internal/infrastructure/custody"
	"tipsats.backend/pkg/logger"
)

// WalletUsecase provisions custodial wallets and reads their balances
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	custodian  custody.Custodian
	node       StacksNode
	network    blockchain.Network
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(walletRepo repositories.WalletRepository, custodian custody.Custodian, node StacksNode, network blockchain.Network) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		custodian:  custodian,
		node:       node,
		network:    network,
	}
}

// CreateWallet returns the wallet bound to the email, provisioning it on
// first call. created is false when the wallet already existed.
func (u *WalletUsecase) CreateWallet(ctx context.Context, input *entities.CreateWalletInput) (wallet *entities.Wallet, created bool, err error) {
	email := normalizeEmail(input.Email)
	if !validEmail(email) {
		return nil, false, domainerrors.BadRequest("Invalid email address")
	}
	if input.UserID == "" {
		return nil, false, domainerrors.BadRequest("userId is required")
	}

	existing, err := u.walletRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, err
	}

	wallet, err = u.custodian.Provision(ctx, input.UserID, email)
	if err != nil {
		logger.Error(ctx, "Wallet provisioning failed", zap.Error(err))
		return nil, false, domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeCustodyFailed, "Failed to create wallet", err)
	}

	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// a concurrent request for the same email won
			existing, getErr := u.walletRepo.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	logger.Info(ctx, "Wallet created",
		zap.String("address", wallet.Address),
		zap.Bool("remote_custody", wallet.IsRemote()),
	)
	return wallet, true, nil
}

// GetBalance reads the STX balance and next nonce of an address
func (u *WalletUsecase) GetBalance(ctx context.Context, address string) (*entities.WalletBalance, error) {
	if err := blockchain.ValidateAddress(address, u.network); err != nil {
		return nil, domainerrors.BadRequest("Invalid Stacks address for " + u.network.Name)
	}

	account, err := u.node.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	return &entities.WalletBalance{
		Address:         address,
		BalanceMicroSTX: account.Balance.String(),
		BalanceSTX:      decimal.NewFromBigInt(account.Balance, -6).String(),
		Nonce:           account.Nonce,
	}, nil
}
