package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"tipsats.backend/internal/domain/entities"
	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/internal/infrastructure/turnkey"
	"tipsats.backend/pkg/redis"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByEmail(ctx context.Context, email string) (*entities.Wallet, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByAddress(ctx context.Context, address string) (*entities.Wallet, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

// Mock CreatorRepository
type MockCreatorRepository struct {
	mock.Mock
}

func (m *MockCreatorRepository) Create(ctx context.Context, creator *entities.Creator) error {
	args := m.Called(ctx, creator)
	return args.Error(0)
}

func (m *MockCreatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Creator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Creator), args.Error(1)
}

func (m *MockCreatorRepository) GetByUsername(ctx context.Context, username string) (*entities.Creator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Creator), args.Error(1)
}

func (m *MockCreatorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Creator, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Creator), args.Error(1)
}

func (m *MockCreatorRepository) IncrementTotals(ctx context.Context, id uuid.UUID, amountMicroSTX int64, amountUSD decimal.Decimal) error {
	args := m.Called(ctx, id, amountMicroSTX, amountUSD)
	return args.Error(0)
}

// Mock TipRepository
type MockTipRepository struct {
	mock.Mock
}

func (m *MockTipRepository) Create(ctx context.Context, tip *entities.Tip) error {
	args := m.Called(ctx, tip)
	return args.Error(0)
}

func (m *MockTipRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tip), args.Error(1)
}

func (m *MockTipRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]*entities.Tip, error) {
	args := m.Called(ctx, creatorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tip), args.Error(1)
}

func (m *MockTipRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Tip, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tip), args.Error(1)
}

func (m *MockTipRepository) AttachTransaction(ctx context.Context, id uuid.UUID, txHash, tipperAddress string) error {
	args := m.Called(ctx, id, txHash, tipperAddress)
	return args.Error(0)
}

func (m *MockTipRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error {
	args := m.Called(ctx, id, txHash)
	return args.Error(0)
}

func (m *MockTipRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock Custodian
type MockCustodian struct {
	mock.Mock
}

func (m *MockCustodian) Provision(ctx context.Context, userID, email string) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockCustodian) Sign(ctx context.Context, wallet *entities.Wallet, digest [32]byte) ([]byte, error) {
	args := m.Called(ctx, wallet, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Mock StacksNode
type MockStacksNode struct {
	mock.Mock
}

func (m *MockStacksNode) GetAccount(ctx context.Context, address string) (*blockchain.AccountInfo, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blockchain.AccountInfo), args.Error(1)
}

func (m *MockStacksNode) EstimateTransferFee(ctx context.Context, txLen int) (uint64, error) {
	args := m.Called(ctx, txLen)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockStacksNode) Broadcast(ctx context.Context, raw []byte) (string, error) {
	args := m.Called(ctx, raw)
	return args.String(0), args.Error(1)
}

func (m *MockStacksNode) GetTransactionStatus(ctx context.Context, txID string) (*blockchain.TxStatus, error) {
	args := m.Called(ctx, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blockchain.TxStatus), args.Error(1)
}

// Mock OTPProvider
type MockOTPProvider struct {
	mock.Mock
}

func (m *MockOTPProvider) InitOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockOTPProvider) VerifyOTP(ctx context.Context, otpID, code string) (*turnkey.OTPSession, error) {
	args := m.Called(ctx, otpID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*turnkey.OTPSession), args.Error(1)
}

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	args := m.Called(ctx, sessionID, data, expiration)
	return args.Error(0)
}

// Mock OTPChallengeStore
type MockOTPChallengeStore struct {
	mock.Mock
}

func (m *MockOTPChallengeStore) SaveChallenge(ctx context.Context, otpID, email string) error {
	args := m.Called(ctx, otpID, email)
	return args.Error(0)
}

func (m *MockOTPChallengeStore) LookupChallenge(ctx context.Context, otpID string) (string, error) {
	args := m.Called(ctx, otpID)
	return args.String(0), args.Error(1)
}

func (m *MockOTPChallengeStore) ConsumeChallenge(ctx context.Context, otpID string) (string, error) {
	args := m.Called(ctx, otpID)
	return args.String(0), args.Error(1)
}
