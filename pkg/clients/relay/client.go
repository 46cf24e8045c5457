package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"balance-funnel/pkg/models"
	"balance-funnel/pkg/utils"
)

// SubmissionPath is the only relay route this client ever targets
const SubmissionPath = "/webhook/lead-submission"

// errorLimit bounds relay/CRM error text surfaced to the user
const errorLimit = 512

// Client defines the interface for submitting leads to the intake relay
type Client interface {
	SubmitLead(ctx context.Context, payload models.LeadPayload) (*Response, error)
}

// Response is the relay's success envelope
type Response struct {
	OK       bool            `json:"ok"`
	Upstream json.RawMessage `json:"upstream"`
}

type clientImpl struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new relay client. Passing a nil httpClient uses
// a default with a conservative timeout; tests inject their own.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &clientImpl{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With().Str("client", "relay").Logger(),
	}
}

// SubmitLead posts one lead payload to the relay. Failures carry the
// relay's own diagnostic text, bounded, for verbatim display.
func (c *clientImpl) SubmitLead(ctx context.Context, payload models.LeadPayload) (*Response, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding lead payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SubmissionPath, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("error creating relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling relay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading relay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, utils.Truncate(string(body), errorLimit))
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error parsing relay response: %w", err)
	}

	c.logger.Info().Str("request_id", payload.RequestID).Msg("Lead submitted to relay")
	return &response, nil
}
