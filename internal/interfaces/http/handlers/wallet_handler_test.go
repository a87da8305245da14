package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
)

type walletServiceStub struct {
	wallets map[string]*entities.Wallet
}

func (s *walletServiceStub) CreateWallet(_ context.Context, in *entities.CreateWalletInput) (*entities.Wallet, bool, error) {
	if in.UserID == "" {
		return nil, false, domainerrors.BadRequest("userId is required")
	}
	if w, ok := s.wallets[in.Email]; ok {
		return w, false, nil
	}
	w := &entities.Wallet{ID: uuid.New(), Email: in.Email, Address: "ST" + in.UserID}
	s.wallets[in.Email] = w
	return w, true, nil
}

func (s *walletServiceStub) GetBalance(_ context.Context, address string) (*entities.WalletBalance, error) {
	if address == "bad" {
		return nil, domainerrors.BadRequest("Invalid Stacks address for testnet")
	}
	return &entities.WalletBalance{Address: address, BalanceMicroSTX: "1500000", BalanceSTX: "1.5", Nonce: 2}, nil
}

func TestWalletHandler_CreateWallet(t *testing.T) {
	h := &WalletHandler{walletUsecase: &walletServiceStub{wallets: map[string]*entities.Wallet{}}}
	r := newTestRouter()
	r.POST("/wallet/create", h.CreateWallet)

	first := doJSON(r, http.MethodPost, "/wallet/create", `{"email":"fan@mail.com","userId":"U1"}`)
	assert.Equal(t, http.StatusCreated, first.Code)
	body := decodeBody(t, first)
	assert.Equal(t, "STU1", body["address"])
	assert.Equal(t, true, body["created"])

	second := doJSON(r, http.MethodPost, "/wallet/create", `{"email":"fan@mail.com","userId":"U1"}`)
	assert.Equal(t, http.StatusOK, second.Code)
	again := decodeBody(t, second)
	assert.Equal(t, body["address"], again["address"])
	assert.Equal(t, body["walletId"], again["walletId"])
	assert.Equal(t, false, again["created"])

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/wallet/create", `{"email":"fan@mail.com"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/wallet/create", `{`).Code)
}

func TestWalletHandler_GetBalance(t *testing.T) {
	h := &WalletHandler{walletUsecase: &walletServiceStub{}}
	r := newTestRouter()
	r.GET("/wallet/:address/balance", h.GetBalance)

	w := doJSON(r, http.MethodGet, "/wallet/ST123/balance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "1500000", body["balanceMicroStx"])
	assert.Equal(t, "1.5", body["balanceStx"])
	assert.Equal(t, float64(2), body["nonce"])

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/wallet/bad/balance", "").Code)
}
