package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"balance-funnel/pkg/config"
	"balance-funnel/pkg/services"
	"balance-funnel/pkg/utils"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	relayService services.LeadRelayService
	config       *config.Config
	upstreamURL  string
	logger       zerolog.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(relayService services.LeadRelayService, cfg *config.Config, upstreamURL string, logger zerolog.Logger) *Handlers {
	return &Handlers{
		relayService: relayService,
		config:       cfg,
		upstreamURL:  upstreamURL,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// MethodNotAllowed answers any verb not registered on a route
func (h *Handlers) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{
		"ok":    false,
		"error": "method not allowed, use POST",
	})
}

// HandleLeadSubmission relays one lead payload to the upstream CRM
func (h *Handlers) HandleLeadSubmission(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error reading request body")
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "error reading request"})
		return
	}

	h.logger.Info().
		Int("bytes", len(body)).
		Str("preview", utils.Truncate(string(body), 256)).
		Msg("Received lead submission")

	result, err := h.relayService.ProcessLeadSubmission(c.Request.Context(), body)
	if err != nil {
		h.respondError(c, body, err)
		return
	}

	if !result.Accepted() {
		status := http.StatusBadGateway
		if h.config.StatusPassthrough {
			status = result.StatusCode
		}
		c.JSON(status, h.withDebug(body, gin.H{
			"ok":             false,
			"error":          "upstream CRM rejected submission",
			"upstreamStatus": result.StatusCode,
			"upstream":       result.Body,
		}))
		return
	}

	c.JSON(http.StatusOK, h.withDebug(body, gin.H{
		"ok":       true,
		"upstream": result.Body,
	}))
}

// respondError maps the service's error taxonomy onto HTTP statuses
func (h *Handlers) respondError(c *gin.Context, body []byte, err error) {
	var configErr *services.ConfigError
	var jsonErr *services.InvalidJSONError

	switch {
	case errors.As(err, &configErr):
		h.logger.Error().Strs("missing", configErr.Missing).Msg("Relay misconfigured")
		c.JSON(http.StatusInternalServerError, h.withDebug(body, gin.H{
			"ok":      false,
			"error":   "relay misconfigured",
			"missing": configErr.Missing,
		}))
	case errors.As(err, &jsonErr):
		c.JSON(http.StatusBadRequest, h.withDebug(body, gin.H{
			"ok":          false,
			"error":       jsonErr.Error(),
			"bodyPreview": jsonErr.Preview,
		}))
	case errors.Is(err, services.ErrMissingApplicant):
		c.JSON(http.StatusBadRequest, h.withDebug(body, gin.H{
			"ok":    false,
			"error": services.ErrMissingApplicant.Error(),
		}))
	default:
		h.logger.Error().Err(err).Msg("Error relaying submission")
		c.JSON(http.StatusInternalServerError, h.withDebug(body, gin.H{
			"ok":    false,
			"error": "failed to reach upstream CRM: " + err.Error(),
		}))
	}
}

// withDebug attaches diagnostic fields when debug mode is on. Only
// derived facts about the credential ever appear, never its value.
func (h *Handlers) withDebug(body []byte, resp gin.H) gin.H {
	if !h.config.Debug {
		return resp
	}
	resp["debug"] = gin.H{
		"upstreamUrl":       h.upstreamURL,
		"sentPayload":       string(body),
		"credentialPresent": h.config.CRMAPIKey != "",
		"credentialPreview": utils.Truncate(h.config.CRMAPIKey, 4),
	}
	return resp
}
