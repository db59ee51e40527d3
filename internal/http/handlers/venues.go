package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/twotable/twotable-backend/internal/http/response"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/services"
)

type VenueHandler struct {
	availability services.AvailabilityService
	scenario     services.ScenarioService
	embeddings   services.VenueEmbeddingService
}

func NewVenueHandler(
	availability services.AvailabilityService,
	scenario services.ScenarioService,
	embeddings services.VenueEmbeddingService,
) *VenueHandler {
	return &VenueHandler{
		availability: availability,
		scenario:     scenario,
		embeddings:   embeddings,
	}
}

type availableVenuesResponse struct {
	Count  int                       `json:"count"`
	Venues []services.AvailableVenue `json:"venues"`
}

// Available handles GET /venues/available.
func (h *VenueHandler) Available(c *gin.Context) {
	q := services.AvailableVenuesQuery{
		City:       c.Query("city"),
		Date:       c.Query("date"),
		Time:       c.Query("time"),
		TravelMode: c.DefaultQuery("mode", "drive"),
	}
	if q.City == "" || q.Date == "" || q.Time == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_params", errors.New("city, date and time are required"))
		return
	}

	if raw := c.Query("max_travel_minutes"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 5 || v > 45 {
			response.RespondError(c, http.StatusBadRequest, "invalid_params", errors.New("max_travel_minutes must be between 5 and 45"))
			return
		}
		q.MaxTravelMinutes = v
	}

	latRaw, lngRaw := c.Query("origin_lat"), c.Query("origin_lng")
	if latRaw != "" && lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_params", errors.New("origin_lat and origin_lng must be numbers"))
			return
		}
		q.OriginLat = &lat
		q.OriginLng = &lng
	}

	venues, err := h.availability.AvailableVenues(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "availability_failed", err)
		return
	}
	if venues == nil {
		venues = []services.AvailableVenue{}
	}
	response.RespondOK(c, availableVenuesResponse{Count: len(venues), Venues: venues})
}

// ScenarioTest handles POST /venues/scenario-test.
func (h *VenueHandler) ScenarioTest(c *gin.Context) {
	var in services.ScenarioInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.scenario.Evaluate(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		response.RespondError(c, http.StatusBadGateway, "scenario_failed", err)
		return
	}
	response.RespondOK(c, result)
}

// EmbedAll handles POST /admin/venues/embed-all.
func (h *VenueHandler) EmbedAll(c *gin.Context) {
	result, err := h.embeddings.EmbedAll(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "embed_all_failed", err)
		return
	}
	response.RespondOK(c, result)
}
