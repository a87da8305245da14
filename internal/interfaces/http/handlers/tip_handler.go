package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/interfaces/http/middleware"
	"tipsats.backend/internal/interfaces/http/response"
	"tipsats.backend/internal/usecases"
)

type tipService interface {
	SendTip(ctx context.Context, input *entities.SendTipInput) (*entities.SendTipResult, error)
	GetTxStatus(ctx context.Context, txID string) (*entities.TxStatus, error)
}

// TipHandler handles tip submission and transaction lookups
type TipHandler struct {
	tipUsecase tipService
}

// NewTipHandler creates a new tip handler
func NewTipHandler(tipUsecase *usecases.TipUsecase) *TipHandler {
	h := &TipHandler{}
	if tipUsecase != nil {
		h.tipUsecase = tipUsecase
	}
	return h
}

// SendTip transfers STX to a creator
// POST /api/v1/tip/send
func (h *TipHandler) SendTip(c *gin.Context) {
	var input entities.SendTipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Missing required fields"))
		return
	}

	// a signed-in tipper always pays from their own wallet
	if email, ok := middleware.GetUserEmail(c); ok && email != "" {
		input.TipperEmail = email
	}

	result, err := h.tipUsecase.SendTip(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"txId":        result.TxID,
		"tipId":       result.TipID,
		"explorerUrl": result.ExplorerURL,
	})
}

// GetTxStatus reports the chain state of a transaction
// GET /api/v1/tx/:txId/status
func (h *TipHandler) GetTxStatus(c *gin.Context) {
	status, err := h.tipUsecase.GetTxStatus(c.Request.Context(), c.Param("txId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"txId":        status.TxID,
		"status":      status.Status,
		"blockHeight": status.BlockHeight,
		"fee":         status.Fee,
		"explorerUrl": status.ExplorerURL,
	})
}
