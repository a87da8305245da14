package blockchain

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "tipsats.backend/internal/domain/errors"
)

func newTestStacksClient(t *testing.T, handler http.HandlerFunc) *StacksClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	network := Testnet
	network.CoreAPIURL = srv.URL
	return NewStacksClient(network, srv.Client())
}

func TestStacksClient_GetAccount(t *testing.T) {
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/"+testnetRecipient, r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("proof"))
		_, _ = io.WriteString(w, `{"balance":"0x00000000000000000000000001312d00","locked":"0x0","nonce":7}`)
	})

	info, err := client.GetAccount(context.Background(), testnetRecipient)
	require.NoError(t, err)
	assert.Equal(t, int64(20_000_000), info.Balance.Int64())
	assert.Equal(t, uint64(7), info.Nonce)
}

func TestStacksClient_GetAccount_RejectsForeignAddress(t *testing.T) {
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("node must not be called")
	})

	_, err := client.GetAccount(context.Background(), "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestStacksClient_EstimateTransferFee(t *testing.T) {
	rate := "1"
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/fees/transfer", r.URL.Path)
		_, _ = io.WriteString(w, rate)
	})

	fee, err := client.EstimateTransferFee(context.Background(), 180)
	require.NoError(t, err)
	assert.Equal(t, MinTransferFee, fee)

	rate = "3"
	fee, err = client.EstimateTransferFee(context.Background(), 180)
	require.NoError(t, err)
	assert.Equal(t, uint64(540), fee)

	rate = "nope"
	_, err = client.EstimateTransferFee(context.Background(), 180)
	assert.Error(t, err)
}

func TestStacksClient_Broadcast(t *testing.T) {
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{0x80, 0x01}, body)
		_, _ = io.WriteString(w, `"ABCDEF"`)
	})

	txID, err := client.Broadcast(context.Background(), []byte{0x80, 0x01})
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", txID)
}

func TestStacksClient_Broadcast_Rejected(t *testing.T) {
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"transaction rejected","reason":"NotEnoughFunds","txid":"beef"}`)
	})

	_, err := client.Broadcast(context.Background(), []byte{0x01})
	var bErr *domainerrors.BroadcastError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, "NotEnoughFunds", bErr.Reason)
	assert.Equal(t, "transaction rejected", bErr.Message)
	assert.Equal(t, "0xbeef", bErr.TxID)
}

func TestStacksClient_Broadcast_ServerError(t *testing.T) {
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	})

	_, err := client.Broadcast(context.Background(), []byte{0x01})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestStacksClient_GetTransactionStatus(t *testing.T) {
	cases := map[string]string{
		"success":                 TxStateConfirmed,
		"pending":                 TxStatePending,
		"abort_by_response":       TxStateFailed,
		"abort_by_post_condition": TxStateFailed,
		"dropped_replace_by_fee":  TxStateFailed,
		"something_new_from_node": TxStateNotFound,
	}
	for raw, want := range cases {
		raw, want := raw, want
		t.Run(raw, func(t *testing.T) {
			client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/extended/v1/tx/0xabc", r.URL.Path)
				_, _ = io.WriteString(w, `{"tx_status":"`+raw+`","block_height":42,"fee_rate":"180"}`)
			})

			status, err := client.GetTransactionStatus(context.Background(), "ABC")
			require.NoError(t, err)
			assert.Equal(t, want, status.State)
			assert.Equal(t, raw, status.RawStatus)
			assert.Equal(t, int64(42), status.BlockHeight)
			assert.Equal(t, "180", status.Fee)
			assert.Equal(t, "0xabc", status.TxID)
		})
	}
}

func TestStacksClient_GetTransactionStatus_NotFound(t *testing.T) {
	client := newTestStacksClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	status, err := client.GetTransactionStatus(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.Equal(t, TxStateNotFound, status.State)
}
