package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/interfaces/http/middleware"
	"tipsats.backend/internal/interfaces/http/response"
	"tipsats.backend/internal/usecases"
)

type creatorService interface {
	Register(ctx context.Context, userID uuid.UUID, input *entities.RegisterCreatorInput) (*entities.CreatorRegistration, error)
	GetProfile(ctx context.Context, username string) (*entities.CreatorProfile, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*entities.Dashboard, error)
}

// CreatorHandler handles creator profile endpoints
type CreatorHandler struct {
	creatorUsecase creatorService
}

// NewCreatorHandler creates a new creator handler
func NewCreatorHandler(creatorUsecase *usecases.CreatorUsecase) *CreatorHandler {
	h := &CreatorHandler{}
	if creatorUsecase != nil {
		h.creatorUsecase = creatorUsecase
	}
	return h
}

// Register creates the caller's creator profile
// POST /api/v1/creator/register
func (h *CreatorHandler) Register(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	var input entities.RegisterCreatorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Username and stacksAddress are required"))
		return
	}

	reg, err := h.creatorUsecase.Register(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"creatorId": reg.CreatorID,
		"username":  reg.Username,
		"tipLink":   reg.TipLink,
	})
}

// GetProfile returns a public creator profile with recent tips
// GET /api/v1/creator/:username
func (h *CreatorHandler) GetProfile(c *gin.Context) {
	profile, err := h.creatorUsecase.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"creator": publicProfile(profile)})
}

// publicProfile hides tipper identities from the public page
func publicProfile(p *entities.CreatorProfile) gin.H {
	tips := make([]gin.H, 0, len(p.RecentTips))
	for _, tip := range p.RecentTips {
		tips = append(tips, gin.H{
			"id":        tip.ID,
			"amount":    tip.AmountUSD,
			"message":   tip.Message,
			"timestamp": tip.CreatedAt,
			"status":    tip.Status,
		})
	}
	return gin.H{
		"username":          p.Username,
		"displayName":       p.DisplayName,
		"bio":               p.Bio,
		"avatarUrl":         p.AvatarURL,
		"stacksAddress":     p.StacksAddress,
		"totalTipsReceived": p.TotalTipsMicroSTX,
		"totalTipsUSD":      p.TotalTipsUSD,
		"tipCount":          p.TipCount,
		"recentTips":        tips,
	}
}

// GetDashboard returns the caller's creator overview
// GET /api/v1/dashboard
func (h *CreatorHandler) GetDashboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	dash, err := h.creatorUsecase.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !dash.HasCreatorProfile {
		response.Success(c, http.StatusOK, gin.H{"hasCreatorProfile": false})
		return
	}
	tips := dash.RecentTips
	if tips == nil {
		tips = []*entities.Tip{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"hasCreatorProfile": true,
		"creator":           dash.Creator,
		"recentTips":        tips,
	})
}
