package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/domain/repositories"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/pkg/logger"
)

// CreatorUsecase handles creator profiles
type CreatorUsecase struct {
	creatorRepo    repositories.CreatorRepository
	tipRepo        repositories.TipRepository
	network        blockchain.Network
	tipLinkBaseURL string
}

// NewCreatorUsecase creates a new creator usecase
func NewCreatorUsecase(
	creatorRepo repositories.CreatorRepository,
	tipRepo repositories.TipRepository,
	network blockchain.Network,
	tipLinkBaseURL string,
) *CreatorUsecase {
	return &CreatorUsecase{
		creatorRepo:    creatorRepo,
		tipRepo:        tipRepo,
		network:        network,
		tipLinkBaseURL: strings.TrimRight(tipLinkBaseURL, "/"),
	}
}

// TipLink is the public page where fans tip username
func (u *CreatorUsecase) TipLink(username string) string {
	return u.tipLinkBaseURL + "/" + username
}

// Register creates the caller's creator profile
func (u *CreatorUsecase) Register(ctx context.Context, userID uuid.UUID, input *entities.RegisterCreatorInput) (*entities.CreatorRegistration, error) {
	username := strings.TrimSpace(input.Username)
	if !ValidUsername(username) {
		return nil, domainerrors.BadRequest("Username must be 3-50 characters: letters, numbers, underscore or dash")
	}
	address := strings.TrimSpace(input.StacksAddress)
	if err := blockchain.ValidateAddress(address, u.network); err != nil {
		return nil, domainerrors.BadRequest("Invalid Stacks address for " + u.network.Name)
	}

	if _, err := u.creatorRepo.GetByUserID(ctx, userID); err == nil {
		return nil, domainerrors.BadRequest("You already have a creator profile")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	if _, err := u.creatorRepo.GetByUsername(ctx, username); err == nil {
		return nil, domainerrors.BadRequest("Username already taken")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}
	creator := &entities.Creator{
		UserID:        userID,
		Username:      username,
		DisplayName:   displayName,
		StacksAddress: address,
	}
	if bio := strings.TrimSpace(input.Bio); bio != "" {
		creator.Bio = null.StringFrom(bio)
	}

	if err := u.creatorRepo.Create(ctx, creator); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.BadRequest("Username already taken")
		}
		return nil, err
	}

	logger.Info(ctx, "Creator registered",
		zap.String("creator_id", creator.ID.String()),
		zap.String("username", creator.Username),
	)
	return &entities.CreatorRegistration{
		CreatorID: creator.ID,
		Username:  creator.Username,
		TipLink:   u.TipLink(creator.Username),
	}, nil
}

// GetProfile returns a creator with the latest tips
func (u *CreatorUsecase) GetProfile(ctx context.Context, username string) (*entities.CreatorProfile, error) {
	creator, err := u.creatorRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Creator not found")
		}
		return nil, err
	}

	tips, err := u.tipRepo.ListByCreator(ctx, creator.ID, ProfileRecentTipsLimit)
	if err != nil {
		return nil, err
	}
	return &entities.CreatorProfile{Creator: creator, RecentTips: tips}, nil
}

// GetDashboard returns the caller's creator profile, if any, and its latest tips
func (u *CreatorUsecase) GetDashboard(ctx context.Context, userID uuid.UUID) (*entities.Dashboard, error) {
	creator, err := u.creatorRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return &entities.Dashboard{HasCreatorProfile: false}, nil
		}
		return nil, err
	}

	tips, err := u.tipRepo.ListByCreator(ctx, creator.ID, DashboardRecentTipsLimit)
	if err != nil {
		return nil, err
	}
	return &entities.Dashboard{
		HasCreatorProfile: true,
		Creator:           creator,
		RecentTips:        tips,
	}, nil
}
