package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"balance-funnel/pkg/clients/crm"
	"balance-funnel/pkg/config"
	"balance-funnel/pkg/utils"
)

// previewLimit bounds how much of a bad request body is echoed back
const previewLimit = 256

// ErrMissingApplicant indicates the body lacked an applicant record
var ErrMissingApplicant = errors.New("body must contain an \"applicant\" object")

// ConfigError reports which required configuration values are unset
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("relay misconfigured, missing: %s", strings.Join(e.Missing, ", "))
}

// InvalidJSONError reports a body that could not be parsed, with a
// bounded preview of the offending input for diagnosis
type InvalidJSONError struct {
	Err     error
	Preview string
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid JSON body: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// LeadRelayService defines the interface for forwarding lead submissions
type LeadRelayService interface {
	ProcessLeadSubmission(ctx context.Context, body []byte) (*crm.Result, error)
}

type leadRelayServiceImpl struct {
	crmClient crm.Client
	config    *config.Config
	logger    zerolog.Logger
}

// NewLeadRelayService creates a new relay service
func NewLeadRelayService(crmClient crm.Client, cfg *config.Config, logger zerolog.Logger) LeadRelayService {
	return &leadRelayServiceImpl{
		crmClient: crmClient,
		config:    cfg,
		logger:    logger.With().Str("service", "lead-relay").Logger(),
	}
}

// ProcessLeadSubmission validates one inbound lead body and forwards it
// upstream. Upstream rejections are returned as a Result, not an error,
// so the original diagnostic stays recoverable by the caller.
func (s *leadRelayServiceImpl) ProcessLeadSubmission(ctx context.Context, body []byte) (*crm.Result, error) {
	if missing := s.config.Missing(); len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &InvalidJSONError{
			Err:     err,
			Preview: utils.Truncate(string(body), previewLimit),
		}
	}

	if s.config.StrictValidation {
		applicant, ok := parsed["applicant"]
		if !ok || !isJSONObject(applicant) {
			return nil, ErrMissingApplicant
		}
	}

	result, err := s.crmClient.SubmitApplication(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("error forwarding to CRM: %w", err)
	}

	if !result.Accepted() {
		s.logger.Warn().
			Int("upstream_status", result.StatusCode).
			Msg("Upstream CRM rejected submission")
	}
	return result, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}
