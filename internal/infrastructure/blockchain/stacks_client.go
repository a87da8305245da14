package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainerrors "tipsats.backend/internal/domain/errors"
)

// Normalized transaction states reported by StacksClient
const (
	TxStateConfirmed = "confirmed"
	TxStatePending   = "pending"
	TxStateFailed    = "failed"
	TxStateNotFound  = "not_found"
)

var ErrTxNotFound = errors.New("transaction not found")

// AccountInfo is the spendable balance and next nonce of an address
type AccountInfo struct {
	Address string
	Balance *big.Int
	Nonce   uint64
}

// TxStatus is the chain view of a broadcast transaction
type TxStatus struct {
	TxID        string
	State       string
	RawStatus   string
	BlockHeight int64
	Fee         string
}

// APIError is a non-2xx answer from the node API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stacks api error: %s (status: %d)", e.Body, e.StatusCode)
}

// StacksClient talks to a Stacks node through the Hiro REST API
type StacksClient struct {
	network    Network
	baseURL    string
	httpClient *http.Client
}

// NewStacksClient creates a client for the network's core API
func NewStacksClient(network Network, httpClient *http.Client) *StacksClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &StacksClient{
		network:    network,
		baseURL:    strings.TrimRight(network.CoreAPIURL, "/"),
		httpClient: httpClient,
	}
}

// Network returns the network this client was created for
func (c *StacksClient) Network() Network {
	return c.network
}

func (c *StacksClient) doRequest(ctx context.Context, method, endpoint, contentType string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return respBody, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, nil
}

// GetAccount returns the balance and next nonce of an address
func (c *StacksClient) GetAccount(ctx context.Context, address string) (*AccountInfo, error) {
	if err := ValidateAddress(address, c.network); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/v2/accounts/"+address+"?proof=0", "", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Balance string `json:"balance"`
		Nonce   uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	balance, err := parseHexAmount(payload.Balance)
	if err != nil {
		return nil, err
	}
	return &AccountInfo{Address: address, Balance: balance, Nonce: payload.Nonce}, nil
}

func parseHexAmount(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex amount %q", s)
	}
	return n, nil
}

// EstimateTransferFee prices a transfer of txLen bytes at the node's
// current fee rate, never below MinTransferFee
func (c *StacksClient) EstimateTransferFee(ctx context.Context, txLen int) (uint64, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v2/fees/transfer", "", nil)
	if err != nil {
		return 0, err
	}
	rate, err := strconv.ParseUint(strings.Trim(strings.TrimSpace(string(resp)), `"`), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fee rate %q: %w", string(resp), err)
	}
	fee := rate * uint64(txLen)
	if fee < MinTransferFee {
		fee = MinTransferFee
	}
	return fee, nil
}

// Broadcast submits a signed transaction and returns its 0x-prefixed id
func (c *StacksClient) Broadcast(ctx context.Context, raw []byte) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v2/transactions", "application/octet-stream", raw)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			return "", parseBroadcastRejection(resp)
		}
		return "", err
	}

	var txID string
	if err := json.Unmarshal(resp, &txID); err != nil {
		txID = strings.Trim(strings.TrimSpace(string(resp)), `"`)
	}
	if txID == "" {
		return "", errors.New("node returned an empty transaction id")
	}
	return NormalizeTxID(txID), nil
}

func parseBroadcastRejection(body []byte) error {
	var payload struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
		TxID   string `json:"txid"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return &domainerrors.BroadcastError{Message: strings.TrimSpace(string(body))}
	}
	bErr := &domainerrors.BroadcastError{Message: payload.Error, Reason: payload.Reason}
	if payload.TxID != "" {
		bErr.TxID = NormalizeTxID(payload.TxID)
	}
	return bErr
}

// GetTransactionStatus returns the chain state of a transaction. An id the
// node has never seen is reported with State TxStateNotFound.
func (c *StacksClient) GetTransactionStatus(ctx context.Context, txID string) (*TxStatus, error) {
	id := NormalizeTxID(txID)
	resp, err := c.doRequest(ctx, http.MethodGet, "/extended/v1/tx/"+id, "", nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return &TxStatus{TxID: id, State: TxStateNotFound}, nil
		}
		return nil, err
	}

	var payload struct {
		TxStatus    string `json:"tx_status"`
		BlockHeight int64  `json:"block_height"`
		FeeRate     string `json:"fee_rate"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	return &TxStatus{
		TxID:        id,
		State:       txStateFromNode(payload.TxStatus),
		RawStatus:   payload.TxStatus,
		BlockHeight: payload.BlockHeight,
		Fee:         payload.FeeRate,
	}, nil
}

func txStateFromNode(status string) string {
	switch {
	case status == "success":
		return TxStateConfirmed
	case status == "pending":
		return TxStatePending
	case strings.HasPrefix(status, "abort"), strings.HasPrefix(status, "dropped"):
		return TxStateFailed
	default:
		return TxStateNotFound
	}
}
