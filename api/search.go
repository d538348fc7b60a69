package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Domenick1991/farefinder/internal/amadeus"
	"github.com/Domenick1991/farefinder/internal/service/search"
	"github.com/gin-gonic/gin"
)

// Credentials records which provider credentials were configured at startup.
type Credentials struct {
	HasAPIKey    bool `json:"hasApiKey"`
	HasAPISecret bool `json:"hasApiSecret"`
}

func (c Credentials) complete() bool {
	return c.HasAPIKey && c.HasAPISecret
}

type SearchHandler struct {
	service search.SearchUseCase
	creds   Credentials
	logger  *slog.Logger
}

func NewSearchHandler(service search.SearchUseCase, creds Credentials, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: service, creds: creds, logger: logger}
}

func (h *SearchHandler) Register(router *gin.RouterGroup) {
	router.GET("/cheapest-dates", h.cheapestDates)
	router.GET("/flight-destinations", h.flightDestinations)

	// Legacy paths still used by existing browser clients.
	router.GET("/api/flights", h.cheapestDates)
	router.GET("/api/shopping/flight-dates", h.flightDestinations)
}

func (h *SearchHandler) cheapestDates(c *gin.Context) {
	if !h.creds.complete() {
		h.credentialsMissing(c)
		return
	}

	query, err := ParseCheapestDates(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	data, err := h.service.CheapestDates(c.Request.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, amadeus.ErrCredentialsMissing):
			h.credentialsMissing(c)
		case amadeus.StatusOf(err) == http.StatusBadRequest:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Service unavailable"})
		}
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

func (h *SearchHandler) flightDestinations(c *gin.Context) {
	if !h.creds.complete() {
		h.credentialsMissing(c)
		return
	}

	query, err := ParseFlightDestinations(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Origin is required"})
		return
	}

	data, err := h.service.FlightDestinations(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, amadeus.ErrCredentialsMissing) {
			h.credentialsMissing(c)
			return
		}
		status := http.StatusBadGateway
		body := gin.H{"error": "Service unavailable"}
		if amadeus.StatusOf(err) == http.StatusBadRequest {
			status = http.StatusBadRequest
			body["error"] = "Invalid request"
		}
		if details, ok := upstreamDetails(err); ok {
			body["details"] = details
		}
		c.JSON(status, body)
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

func (h *SearchHandler) credentialsMissing(c *gin.Context) {
	h.logger.Warn("amadeus credentials missing", "path", c.FullPath(),
		"has_api_key", h.creds.HasAPIKey, "has_api_secret", h.creds.HasAPISecret)
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "Service unavailable",
		"debug": h.creds,
	})
}

// upstreamDetails returns the provider's error body, decoded as JSON when
// possible.
func upstreamDetails(err error) (any, bool) {
	var upErr *amadeus.UpstreamError
	if !errors.As(err, &upErr) || len(upErr.Body) == 0 {
		return nil, false
	}
	if json.Valid(upErr.Body) {
		return json.RawMessage(upErr.Body), true
	}
	return string(upErr.Body), true
}
