package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// applicationsPath is the CRM's lead-intake endpoint
const applicationsPath = "/api/applications"

// credentialHeader authenticates the relay with the CRM
const credentialHeader = "X-Api-Key"

// Client defines the interface for interacting with the upstream CRM
type Client interface {
	SubmitApplication(ctx context.Context, payload []byte) (*Result, error)
	ApplicationsURL() string
}

// Result carries the upstream outcome back to the caller. Body is
// always valid JSON: the upstream's own body when it sent JSON, or a
// {"raw": ...} wrapper when it sent plain text.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Accepted reports whether the upstream acknowledged the application
func (r *Result) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type clientImpl struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new CRM client
func NewClient(baseURL, apiKey string, logger zerolog.Logger) Client {
	return &clientImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("client", "crm").Logger(),
	}
}

// ApplicationsURL returns the resolved upstream endpoint
func (c *clientImpl) ApplicationsURL() string {
	return c.baseURL + applicationsPath
}

// SubmitApplication forwards one lead payload to the CRM. The error
// return covers transport failures only; upstream rejections come back
// as a Result so the caller can surface the original diagnostic.
func (c *clientImpl) SubmitApplication(ctx context.Context, payload []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ApplicationsURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating CRM request: %w", err)
	}

	// Set, not Add: the CRM's header-merging behavior for duplicate
	// credential headers is undefined and has rejected auth before.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(credentialHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling CRM: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading CRM response: %w", err)
	}

	c.logger.Info().
		Int("status", resp.StatusCode).
		Int("response_bytes", len(body)).
		Msg("CRM application call completed")

	return &Result{
		StatusCode: resp.StatusCode,
		Body:       normalizeBody(resp.Header.Get("Content-Type"), body),
	}, nil
}

// normalizeBody keeps the upstream body recoverable whatever its shape
func normalizeBody(contentType string, body []byte) json.RawMessage {
	if strings.Contains(contentType, "application/json") && json.Valid(body) && len(body) > 0 {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
	return json.RawMessage(wrapped)
}
