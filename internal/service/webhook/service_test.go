package webhook

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/pkg/logger"
)

// fakeCompartmentRepo implements only what Reconcile touches; the remaining
// CompartmentRepository methods are unreachable from this service.
type fakeCompartmentRepo struct {
	compartments []*model.Compartment
	logs         []*model.MedicineLog
	events       []*model.OutboxEvent
}

func (r *fakeCompartmentRepo) Create(_ context.Context, c *model.Compartment) error {
	c.ID = uuid.New()
	stored := *c
	r.compartments = append(r.compartments, &stored)
	return nil
}

func (r *fakeCompartmentRepo) CreateBatch(ctx context.Context, compartments []*model.Compartment) error {
	for _, c := range compartments {
		if err := r.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCompartmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Compartment, error) {
	for _, c := range r.compartments {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeCompartmentRepo) List(_ context.Context, _, _ int) ([]*model.Compartment, error) {
	return r.compartments, nil
}

func (r *fakeCompartmentRepo) ListByNumber(_ context.Context, number int) ([]*model.Compartment, error) {
	var out []*model.Compartment
	for _, c := range r.compartments {
		if c.CompartmentNumber == number {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCompartmentRepo) FirstByNumber(_ context.Context, number int) (*model.Compartment, error) {
	for _, c := range r.compartments {
		if c.CompartmentNumber == number {
			copied := *c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("failed to get first compartment: %w", sql.ErrNoRows)
}

func (r *fakeCompartmentRepo) ListByTaken(_ context.Context, _ int, _ bool) ([]*model.Compartment, error) {
	return nil, nil
}

func (r *fakeCompartmentRepo) Update(_ context.Context, updated *model.Compartment) error {
	for i, c := range r.compartments {
		if c.ID == updated.ID {
			copied := *updated
			r.compartments[i] = &copied
			return nil
		}
	}
	return fmt.Errorf("compartment not found")
}

func (r *fakeCompartmentRepo) DeleteByMedicine(_ context.Context, _ int, _ string) (int64, error) {
	return 0, nil
}

func (r *fakeCompartmentRepo) DeleteAll(_ context.Context) error {
	r.compartments = nil
	return nil
}

func (r *fakeCompartmentRepo) ApplyDispense(ctx context.Context, c *model.Compartment, entry *model.MedicineLog, event *model.OutboxEvent) error {
	if err := r.Update(ctx, c); err != nil {
		return err
	}
	r.logs = append(r.logs, entry)
	r.events = append(r.events, event)
	return nil
}

// fakeNotifier records low-stock notifications.
type fakeNotifier struct {
	notified []*model.Compartment
}

func (n *fakeNotifier) NotifyLowStock(_ context.Context, c *model.Compartment) {
	n.notified = append(n.notified, c)
}

func newTestService(repo *fakeCompartmentRepo, notifier LowStockNotifier) *Service {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	return NewService(repo, notifier, l)
}

func seedCompartment(repo *fakeCompartmentRepo, number, count int, name string) *model.Compartment {
	c := &model.Compartment{
		CompartmentNumber: number,
		MedicineName:      name,
		NumberOfMedicines: count,
		ToBeRepeated:      true,
	}
	c.RefreshLowStock()
	_ = repo.Create(context.Background(), c)
	return c
}

func takenEvent(feed, value, createdAt string) model.SensorEvent {
	return model.SensorEvent{
		Value:     value,
		FeedName:  feed,
		FeedKey:   feed,
		CreatedAt: createdAt,
	}
}

func TestReconcileDispense(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 2, 5, "Ibuprofen")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp2-taken", "1", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.Equal(t, 2, result.CompartmentNumber)
	assert.Equal(t, "Ibuprofen", result.MedicineName)
	assert.Equal(t, 4, result.RemainingPills)
	assert.False(t, result.LowStock)
	require.NotNil(t, result.TakenAt)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), result.TakenAt.UTC())

	stored := repo.compartments[0]
	assert.Equal(t, 4, stored.NumberOfMedicines)
	assert.True(t, stored.Taken)
	require.NotNil(t, stored.TakenAt)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, 2, repo.logs[0].CompartmentNumber)
	assert.Equal(t, "Ibuprofen", repo.logs[0].MedicineName)
	assert.Equal(t, model.LogActionTaken, repo.logs[0].Action)

	require.Len(t, repo.events, 1)
	assert.Equal(t, EventTypeMedicineTaken, repo.events[0].EventType)
	assert.Contains(t, string(repo.events[0].Payload), `"compartment_number":2`)
}

func TestReconcileClampsEmptyCompartment(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 0, "Paracetamol")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "1", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)

	assert.True(t, result.Processed)
	assert.Equal(t, 0, result.RemainingPills)
	assert.True(t, result.LowStock)
	assert.Equal(t, 0, repo.compartments[0].NumberOfMedicines)
	// The log still records the dose even though the counter was already empty.
	assert.Len(t, repo.logs, 1)
}

func TestReconcileStopsAfterFirstDispense(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 5, "Paracetamol")
	seedCompartment(repo, 2, 5, "Ibuprofen")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "1", "2026-03-01T09:00:00Z"),
		takenEvent("comp2-taken", "1", "2026-03-01T09:00:01Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.CompartmentNumber)
	assert.Equal(t, 4, repo.compartments[0].NumberOfMedicines)
	assert.Equal(t, 5, repo.compartments[1].NumberOfMedicines)
	assert.Len(t, repo.logs, 1)
}

func TestReconcileSkipsUnmappedFeeds(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 3, 5, "Antibiotic")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("temperature", "27.5", "2026-03-01T09:00:00Z"),
		takenEvent("comp4-taken", "1", "2026-03-01T09:00:00Z"),
		takenEvent("COMP3-TAKEN", "1", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)

	// Feed names match case-insensitively; the first two are not dispense feeds.
	assert.True(t, result.Processed)
	assert.Equal(t, 3, result.CompartmentNumber)
}

func TestReconcileSkipsNonDispenseValues(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 5, "Paracetamol")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "0", "2026-03-01T09:00:00Z"),
		takenEvent("comp1-taken", "released", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)

	assert.False(t, result.Processed)
	assert.Equal(t, "no valid compartment found in the received data", result.Message)
	assert.Equal(t, 5, repo.compartments[0].NumberOfMedicines)
	assert.Empty(t, repo.logs)
}

func TestReconcileSkipsEmptyCompartments(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 2, 5, "Ibuprofen")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "1", "2026-03-01T09:00:00Z"),
		takenEvent("comp2-taken", "1", "2026-03-01T09:00:01Z"),
	})
	require.NoError(t, err)

	// Compartment 1 has no records, so the scan moves on to compartment 2.
	assert.True(t, result.Processed)
	assert.Equal(t, 2, result.CompartmentNumber)
}

func TestReconcileEmptyBatch(t *testing.T) {
	svc := newTestService(&fakeCompartmentRepo{}, nil)

	result, err := svc.Reconcile(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, result.Processed)
}

func TestReconcileBadTimestampFallsBackToNow(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 5, "Paracetamol")
	svc := newTestService(repo, nil)

	before := time.Now().UTC()
	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "1", "not-a-timestamp"),
	})
	require.NoError(t, err)

	require.NotNil(t, result.TakenAt)
	assert.False(t, result.TakenAt.Before(before))
	assert.False(t, result.TakenAt.After(time.Now().UTC()))
}

func TestReconcileValueWhitespace(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 5, "Paracetamol")
	svc := newTestService(repo, nil)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", " 1 ", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)
	assert.True(t, result.Processed)
}

func TestReconcileNotifiesOnLowStock(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 4, "Paracetamol")
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	result, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "1", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)

	assert.True(t, result.LowStock)
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "Paracetamol", notifier.notified[0].MedicineName)
}

func TestReconcileNoNotificationAboveThreshold(t *testing.T) {
	repo := &fakeCompartmentRepo{}
	seedCompartment(repo, 1, 10, "Paracetamol")
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	_, err := svc.Reconcile(context.Background(), []model.SensorEvent{
		takenEvent("comp1-taken", "1", "2026-03-01T09:00:00Z"),
	})
	require.NoError(t, err)
	assert.Empty(t, notifier.notified)
}

func TestParseEventTimeLayouts(t *testing.T) {
	svc := newTestService(&fakeCompartmentRepo{}, nil)

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2026-03-01T09:00:00Z", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"2026-03-01T09:00:00.250Z", time.Date(2026, 3, 1, 9, 0, 0, 250000000, time.UTC)},
		{"2026-03-01T09:00:00", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"2026-03-01 09:00:00", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := svc.parseEventTime(tt.raw)
		assert.True(t, tt.want.Equal(got), "raw %q: got %v", tt.raw, got)
	}
}
