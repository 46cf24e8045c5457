package services_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance-funnel/pkg/clients/crm"
	"balance-funnel/pkg/config"
	"balance-funnel/pkg/services"
)

// fakeCRM stands in for the upstream client
type fakeCRM struct {
	mu     sync.Mutex
	calls  [][]byte
	result *crm.Result
	err    error
}

func (f *fakeCRM) SubmitApplication(_ context.Context, payload []byte) (*crm.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, payload)
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeCRM) ApplicationsURL() string {
	return "https://crm.example.com/api/applications"
}

func validConfig() *config.Config {
	return &config.Config{
		CRMBaseURL:       "https://crm.example.com",
		CRMAPIKey:        "sk-test-key",
		StrictValidation: true,
	}
}

func TestProcessLeadSubmission_ForwardsBodyUnchanged(t *testing.T) {
	fake := &fakeCRM{result: &crm.Result{StatusCode: http.StatusCreated, Body: []byte(`{"id":"lead_1"}`)}}
	svc := services.NewLeadRelayService(fake, validConfig(), zerolog.Nop())

	body := []byte(`{"applicant":{"firstName":"Ann"},"tracking":{"event":"x"}}`)
	result, err := svc.ProcessLeadSubmission(context.Background(), body)

	require.NoError(t, err)
	assert.True(t, result.Accepted())
	require.Len(t, fake.calls, 1)
	assert.Equal(t, body, fake.calls[0])
}

func TestProcessLeadSubmission_MissingConfig(t *testing.T) {
	fake := &fakeCRM{}
	svc := services.NewLeadRelayService(fake, &config.Config{StrictValidation: true}, zerolog.Nop())

	_, err := svc.ProcessLeadSubmission(context.Background(), []byte(`{"applicant":{}}`))

	var configErr *services.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.ElementsMatch(t, []string{"CRM_BASE_URL", "CRM_API_KEY"}, configErr.Missing)
	assert.NotContains(t, err.Error(), "sk-", "the credential value never appears in errors")
	assert.Empty(t, fake.calls)
}

func TestProcessLeadSubmission_InvalidJSONPreviewIsBounded(t *testing.T) {
	fake := &fakeCRM{}
	svc := services.NewLeadRelayService(fake, validConfig(), zerolog.Nop())

	garbage := "not json " + strings.Repeat("x", 1000)
	_, err := svc.ProcessLeadSubmission(context.Background(), []byte(garbage))

	var jsonErr *services.InvalidJSONError
	require.ErrorAs(t, err, &jsonErr)
	assert.LessOrEqual(t, len(jsonErr.Preview), 256+len("..."))
	assert.True(t, strings.HasPrefix(jsonErr.Preview, "not json "))
	assert.Empty(t, fake.calls)
}

func TestProcessLeadSubmission_ApplicantMustBeObject(t *testing.T) {
	fake := &fakeCRM{}
	svc := services.NewLeadRelayService(fake, validConfig(), zerolog.Nop())

	for _, body := range []string{
		`{}`,
		`{"applicant":"Ann"}`,
		`{"applicant":[1,2]}`,
		`{"applicant":null}`,
	} {
		_, err := svc.ProcessLeadSubmission(context.Background(), []byte(body))
		assert.ErrorIs(t, err, services.ErrMissingApplicant, body)
	}
	assert.Empty(t, fake.calls)
}

func TestProcessLeadSubmission_PermissiveForwardsAnything(t *testing.T) {
	fake := &fakeCRM{result: &crm.Result{StatusCode: http.StatusCreated, Body: []byte(`{}`)}}
	cfg := validConfig()
	cfg.StrictValidation = false
	svc := services.NewLeadRelayService(fake, cfg, zerolog.Nop())

	_, err := svc.ProcessLeadSubmission(context.Background(), []byte(`{"unexpected":true}`))

	require.NoError(t, err)
	assert.Len(t, fake.calls, 1)
}

func TestProcessLeadSubmission_TransportErrorWrapped(t *testing.T) {
	fake := &fakeCRM{err: errors.New("connection refused")}
	svc := services.NewLeadRelayService(fake, validConfig(), zerolog.Nop())

	_, err := svc.ProcessLeadSubmission(context.Background(), []byte(`{"applicant":{}}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestProcessLeadSubmission_RejectionIsResultNotError(t *testing.T) {
	fake := &fakeCRM{result: &crm.Result{StatusCode: http.StatusForbidden, Body: []byte(`{"error":"bad key"}`)}}
	svc := services.NewLeadRelayService(fake, validConfig(), zerolog.Nop())

	result, err := svc.ProcessLeadSubmission(context.Background(), []byte(`{"applicant":{}}`))

	require.NoError(t, err)
	assert.False(t, result.Accepted())
	assert.Equal(t, http.StatusForbidden, result.StatusCode)
	assert.JSONEq(t, `{"error":"bad key"}`, string(result.Body))
}
