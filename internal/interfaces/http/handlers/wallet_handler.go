package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/interfaces/http/response"
	"tipsats.backend/internal/usecases"
)

type walletService interface {
	CreateWallet(ctx context.Context, input *entities.CreateWalletInput) (*entities.Wallet, bool, error)
	GetBalance(ctx context.Context, address string) (*entities.WalletBalance, error)
}

// WalletHandler handles custodial wallet endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	h := &WalletHandler{}
	if walletUsecase != nil {
		h.walletUsecase = walletUsecase
	}
	return h
}

// CreateWallet returns the wallet of an email, creating it on first call
// POST /api/v1/wallet/create
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var input entities.CreateWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}

	wallet, created, err := h.walletUsecase.CreateWallet(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, gin.H{
		"address":  wallet.Address,
		"walletId": wallet.ID,
		"created":  created,
	})
}

// GetBalance returns the STX balance of an address
// GET /api/v1/wallet/:address/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	balance, err := h.walletUsecase.GetBalance(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"address":         balance.Address,
		"balanceMicroStx": balance.BalanceMicroSTX,
		"balanceStx":      balance.BalanceSTX,
		"nonce":           balance.Nonce,
	})
}
