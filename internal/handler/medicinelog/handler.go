package medicinelog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dispenser-api/internal/service/medicinelog"
	"github.com/jwalitptl/dispenser-api/pkg/httputil"
)

type Handler struct {
	service *medicinelog.Service
}

func NewHandler(service *medicinelog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/medicine-logs")
	{
		logs.GET("", h.ListAll)
		logs.GET("/:date", h.ListByDay)
	}
}

func (h *Handler) ListAll(c *gin.Context) {
	entries, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, entries)
}

func (h *Handler) ListByDay(c *gin.Context) {
	entries, err := h.service.ListByDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, entries)
}
