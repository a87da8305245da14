package turnkey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/pkg/logger"
)

// Activity statuses
const (
	StatusCreated         = "ACTIVITY_STATUS_CREATED"
	StatusPending         = "ACTIVITY_STATUS_PENDING"
	StatusCompleted       = "ACTIVITY_STATUS_COMPLETED"
	StatusFailed          = "ACTIVITY_STATUS_FAILED"
	StatusRejected        = "ACTIVITY_STATUS_REJECTED"
	StatusConsensusNeeded = "ACTIVITY_STATUS_CONSENSUS_NEEDED"
)

var errActivityInFlight = errors.New("activity still in flight")

// Options configures a Client
type Options struct {
	BaseURL        string
	OrganizationID string
	PollInterval   time.Duration
	PollMaxWait    time.Duration
	HTTPClient     *http.Client
}

// Client submits activities to the custody provider and waits for them
// to reach a terminal status
type Client struct {
	baseURL        string
	organizationID string
	stamper        *Stamper
	httpClient     *http.Client
	pollInterval   time.Duration
	pollMaxWait    time.Duration
	now            func() time.Time
}

// NewClient creates a new provider client
func NewClient(opts Options, stamper *Stamper) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.PollMaxWait <= 0 {
		opts.PollMaxWait = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		organizationID: opts.OrganizationID,
		stamper:        stamper,
		httpClient:     opts.HTTPClient,
		pollInterval:   opts.PollInterval,
		pollMaxWait:    opts.PollMaxWait,
		now:            time.Now,
	}
}

type activityRequest struct {
	Type           string      `json:"type"`
	TimestampMs    string      `json:"timestampMs"`
	OrganizationID string      `json:"organizationId"`
	Parameters     interface{} `json:"parameters"`
}

type activity struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	Status         string          `json:"status"`
	Type           string          `json:"type"`
	Result         json.RawMessage `json:"result"`
}

type activityResponse struct {
	Activity activity `json:"activity"`
}

func (c *Client) doRequest(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	stamp, err := c.stamper.Stamp(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Stamp", stamp)

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
		return nil, fmt.Errorf("turnkey api error: %s (status: %d)", strings.TrimSpace(string(respBody)), resp.StatusCode)
	}
	return respBody, nil
}

// submit posts an activity and blocks until it completes, fails or the
// poll budget runs out
func (c *Client) submit(ctx context.Context, endpoint, activityType string, params interface{}) (*activity, error) {
	resp, err := c.doRequest(ctx, endpoint, activityRequest{
		Type:           activityType,
		TimestampMs:    strconv.FormatInt(c.now().UnixMilli(), 10),
		OrganizationID: c.organizationID,
		Parameters:     params,
	})
	if err != nil {
		return nil, err
	}

	var out activityResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}
	return c.waitForActivity(ctx, &out.Activity)
}

func (c *Client) waitForActivity(ctx context.Context, act *activity) (*activity, error) {
	if done, err := settled(act); done {
		return act, err
	}

	logger.Debug(ctx, "Waiting for custody activity",
		zap.String("activity_id", act.ID),
		zap.String("status", act.Status),
	)

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.pollInterval),
		backoff.WithMaxInterval(4*c.pollInterval),
		backoff.WithMaxElapsedTime(c.pollMaxWait),
	)

	activityID := act.ID
	result, err := backoff.RetryWithData(func() (*activity, error) {
		polled, err := c.getActivity(ctx, activityID)
		if err != nil {
			return nil, err
		}
		if done, err := settled(polled); done {
			if err != nil {
				return polled, backoff.Permanent(err)
			}
			return polled, nil
		}
		return nil, errActivityInFlight
	}, backoff.WithContext(b, ctx))
	if err != nil {
		var remote *domainerrors.RemoteActivityError
		if errors.As(err, &remote) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: activity %s: %v", domainerrors.ErrActivityTimeout, activityID, err)
	}
	return result, nil
}

// settled reports whether an activity reached a terminal status
func settled(act *activity) (bool, error) {
	switch act.Status {
	case StatusCompleted:
		return true, nil
	case StatusFailed, StatusRejected, StatusConsensusNeeded:
		return true, &domainerrors.RemoteActivityError{ActivityID: act.ID, Status: act.Status}
	default:
		return false, nil
	}
}

func (c *Client) getActivity(ctx context.Context, activityID string) (*activity, error) {
	resp, err := c.doRequest(ctx, "/public/v1/query/get_activity", map[string]string{
		"organizationId": c.organizationID,
		"activityId":     activityID,
	})
	if err != nil {
		return nil, err
	}

	var out activityResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}
	return &out.Activity, nil
}
