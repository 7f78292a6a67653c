package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/service/webhook"
	apperrors "github.com/jwalitptl/dispenser-api/pkg/errors"
	"github.com/jwalitptl/dispenser-api/pkg/httputil"
)

type Handler struct {
	service *webhook.Service
}

func NewHandler(service *webhook.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/sensor", h.ReceiveSensorData)
	}
}

// ReceiveSensorData ingests an Adafruit IO batch. Bad entries inside the
// batch are absorbed by the reconciler; only an unreadable body is rejected.
func (h *Handler) ReceiveSensorData(c *gin.Context) {
	var events []model.SensorEvent
	if err := c.ShouldBindJSON(&events); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), events)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}
