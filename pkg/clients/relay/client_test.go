package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance-funnel/pkg/clients/relay"
	"balance-funnel/pkg/models"
)

func TestSubmitLead_OnlyTargetsSubmissionPath(t *testing.T) {
	ctx := context.Background()

	var gotPaths []string
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload models.LeadPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, models.Source, payload.Source)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"upstream":{"id":"lead_1"}}`))
	}))
	defer mockServer.Close()

	client := relay.NewClient(mockServer.URL, nil, zerolog.Nop())
	payload := models.NewLeadPayload("Ann", "Lee", "ann@example.com", models.Tracking{})

	resp, err := client.SubmitLead(ctx, payload)

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.JSONEq(t, `{"id":"lead_1"}`, string(resp.Upstream))
	assert.Equal(t, []string{relay.SubmissionPath}, gotPaths)
}

func TestSubmitLead_SurfacesRelayDiagnostic(t *testing.T) {
	ctx := context.Background()

	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"ok":false,"error":"upstream CRM rejected submission","upstreamStatus":403}`))
	}))
	defer mockServer.Close()

	client := relay.NewClient(mockServer.URL, nil, zerolog.Nop())
	payload := models.NewLeadPayload("Ann", "Lee", "ann@example.com", models.Tracking{})

	_, err := client.SubmitLead(ctx, payload)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay returned 502")
	assert.Contains(t, err.Error(), "upstream CRM rejected submission")
}

func TestSubmitLead_TransportError(t *testing.T) {
	ctx := context.Background()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	client := relay.NewClient(dead.URL, nil, zerolog.Nop())
	payload := models.NewLeadPayload("Ann", "Lee", "ann@example.com", models.Tracking{})

	_, err := client.SubmitLead(ctx, payload)
	require.Error(t, err)
}
