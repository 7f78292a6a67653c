package compartment

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/service/compartment"
	apperrors "github.com/jwalitptl/dispenser-api/pkg/errors"
	"github.com/jwalitptl/dispenser-api/pkg/httputil"
)

type Handler struct {
	service *compartment.Service
}

func NewHandler(service *compartment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	compartments := r.Group("/compartments")
	{
		compartments.POST("", h.Create)
		compartments.POST("/bulk", h.BulkCreate)
		compartments.GET("", h.List)
		compartments.GET("/:number", h.GetByNumber)
		compartments.GET("/:number/taken", h.ListTaken)
		compartments.GET("/:number/pending", h.ListPending)
		compartments.PATCH("/:id", h.Update)
		compartments.PUT("/:number/mark-taken", h.MarkTaken)
		compartments.PUT("/:number/unmark-taken", h.UnmarkTaken)
		compartments.DELETE("/:number/:medicine", h.DeleteByMedicine)
		compartments.DELETE("", h.DeleteAll)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCompartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) BulkCreate(c *gin.Context) {
	var reqs []*model.CreateCompartmentRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	created, err := h.service.BulkCreate(c.Request.Context(), reqs)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	compartments, err := h.service.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, compartments)
}

func (h *Handler) GetByNumber(c *gin.Context) {
	number, err := h.compartmentNumber(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	compartments, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, compartments)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid compartment ID", err))
		return
	}

	var req model.UpdateCompartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) MarkTaken(c *gin.Context) {
	number, err := h.compartmentNumber(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.MarkTaken(c.Request.Context(), number)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) UnmarkTaken(c *gin.Context) {
	number, err := h.compartmentNumber(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.UnmarkTaken(c.Request.Context(), number)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) ListTaken(c *gin.Context) {
	h.listByState(c, h.service.ListTaken)
}

func (h *Handler) ListPending(c *gin.Context) {
	h.listByState(c, h.service.ListPending)
}

func (h *Handler) DeleteByMedicine(c *gin.Context) {
	number, err := h.compartmentNumber(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	summary, err := h.service.DeleteByMedicine(c.Request.Context(), number, c.Param("medicine"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}

func (h *Handler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context()); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "all compartments have been deleted")
}

func (h *Handler) listByState(c *gin.Context, list func(ctx context.Context, number int) ([]*model.Compartment, error)) {
	number, err := h.compartmentNumber(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	compartments, err := list(c.Request.Context(), number)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, compartments)
}

func (h *Handler) compartmentNumber(c *gin.Context) (int, error) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return 0, apperrors.BadRequest("compartment_number must be 1, 2, or 3", err)
	}
	return number, nil
}
