package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/repository"
	webhooksvc "github.com/jwalitptl/dispenser-api/internal/service/webhook"
	"github.com/jwalitptl/dispenser-api/pkg/logger"
)

// fakeRepo overrides only the methods the reconciler reaches; the embedded
// interface panics on anything else.
type fakeRepo struct {
	repository.CompartmentRepository
	compartment *model.Compartment
	applied     bool
}

func (r *fakeRepo) FirstByNumber(_ context.Context, number int) (*model.Compartment, error) {
	copied := *r.compartment
	return &copied, nil
}

func (r *fakeRepo) ApplyDispense(_ context.Context, c *model.Compartment, _ *model.MedicineLog, _ *model.OutboxEvent) error {
	r.compartment = c
	r.applied = true
	return nil
}

func setupRouter(repo repository.CompartmentRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	svc := webhooksvc.NewService(repo, nil, l)
	h := NewHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	return r
}

func postSensor(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/sensor", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceiveSensorData(t *testing.T) {
	repo := &fakeRepo{compartment: &model.Compartment{
		CompartmentNumber: 1,
		MedicineName:      "Paracetamol",
		NumberOfMedicines: 5,
	}}
	r := setupRouter(repo)

	w := postSensor(t, r, `[{"value":"1","feed_name":"comp1-taken","created_at":"2026-03-01T09:00:00Z"}]`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                 `json:"status"`
		Data   *model.ReconcileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Data)
	assert.True(t, resp.Data.Processed)
	assert.Equal(t, 4, resp.Data.RemainingPills)
	assert.True(t, repo.applied)
}

func TestReceiveSensorDataNoMatch(t *testing.T) {
	repo := &fakeRepo{compartment: &model.Compartment{CompartmentNumber: 1, NumberOfMedicines: 5}}
	r := setupRouter(repo)

	w := postSensor(t, r, `[{"value":"27.5","feed_name":"temperature","created_at":"2026-03-01T09:00:00Z"}]`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data *model.ReconcileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.False(t, resp.Data.Processed)
	assert.False(t, repo.applied)
}

func TestReceiveSensorDataBadBody(t *testing.T) {
	r := setupRouter(&fakeRepo{compartment: &model.Compartment{}})

	w := postSensor(t, r, `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
