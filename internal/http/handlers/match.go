package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/http/response"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type MatchHandler struct {
	matches services.MatchService
}

func NewMatchHandler(matches services.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// POST /api/matches
func (h *MatchHandler) Direct(c *gin.Context) {
	var req struct {
		Have     string     `json:"have"`
		Location *geo.Point `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	matches, err := h.matches.FindDirect(c.Request.Context(), kindOf(req.Have), req.Location)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"matches": matches, "max_distance_m": h.matches.MaxDistance()})
}

// POST /api/matches/derived
//
// The location override may be sent either as a location object or as flat
// latitude/longitude fields.
func (h *MatchHandler) Derived(c *gin.Context) {
	var req struct {
		Email     string     `json:"email"`
		Location  *geo.Point `json:"location"`
		Latitude  *float64   `json:"latitude"`
		Longitude *float64   `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	override := req.Location
	if override == nil && (req.Latitude != nil || req.Longitude != nil) {
		if req.Latitude == nil || req.Longitude == nil {
			response.RespondError(c, http.StatusBadRequest, "validation_error", errPartialCoordinates)
			return
		}
		p := geo.NewPoint(*req.Longitude, *req.Latitude)
		override = &p
	}
	matches, err := h.matches.FindDerived(c.Request.Context(), req.Email, override)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"matches": matches, "max_distance_m": h.matches.MaxDistance()})
}
