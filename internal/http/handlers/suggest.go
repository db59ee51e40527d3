package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twotable/twotable-backend/internal/http/response"
	apperrors "github.com/twotable/twotable-backend/internal/pkg/errors"
	"github.com/twotable/twotable-backend/internal/services"
)

type SuggestHandler struct {
	matcher services.MatcherService
}

func NewSuggestHandler(matcher services.MatcherService) *SuggestHandler {
	return &SuggestHandler{matcher: matcher}
}

type suggestResponse struct {
	Count       int                        `json:"count"`
	IntentText  string                     `json:"intent_text"`
	Suggestions []services.VenueSuggestion `json:"suggestions"`
}

func (h *SuggestHandler) Suggest(c *gin.Context) {
	var req services.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	result, err := h.matcher.Suggest(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "suggest_failed", err)
		return
	}

	response.RespondOK(c, suggestResponse{
		Count:       len(result.Suggestions),
		IntentText:  result.IntentText,
		Suggestions: result.Suggestions,
	})
}
