package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/http/response"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type RequestHandler struct {
	requests services.RequestService
}

func NewRequestHandler(requests services.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// POST /api/requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req struct {
		Name     string     `json:"name"`
		Email    string     `json:"email"`
		Have     string     `json:"have"`
		Want     string     `json:"want"`
		Amount   float64    `json:"amount"`
		Location *geo.Point `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation_error", err)
		return
	}
	created, err := h.requests.Post(c.Request.Context(), domain.NewRequest{
		PosterName:  req.Name,
		PosterEmail: req.Email,
		Have:        kindOf(req.Have),
		Want:        kindOf(req.Want),
		Amount:      req.Amount,
		Location:    req.Location,
	})
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": "Request posted successfully", "request": created})
}

// GET /api/requests?limit=
func (h *RequestHandler) List(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "validation_error", errInvalidLimit)
			return
		}
		limit = n
	}
	out, err := h.requests.List(c.Request.Context(), limit)
	if err != nil {
		response.RespondFailure(c, err)
		return
	}
	response.RespondOK(c, gin.H{"requests": out})
}

// kindOf leaves validation to the service so unknown kinds surface as
// validation errors with a consistent message.
func kindOf(raw string) domain.MoneyKind {
	return domain.MoneyKind(strings.ToLower(strings.TrimSpace(raw)))
}
