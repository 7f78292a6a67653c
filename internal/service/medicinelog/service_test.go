package medicinelog

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dispenser-api/internal/model"
	apperrors "github.com/jwalitptl/dispenser-api/pkg/errors"
)

type fakeMedicineLogRepo struct {
	entries []*model.MedicineLog
}

func (r *fakeMedicineLogRepo) Create(_ context.Context, entry *model.MedicineLog) error {
	entry.ID = uuid.New()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeMedicineLogRepo) List(_ context.Context) ([]*model.MedicineLog, error) {
	out := make([]*model.MedicineLog, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}

func (r *fakeMedicineLogRepo) ListByRange(_ context.Context, from, to time.Time) ([]*model.MedicineLog, error) {
	var out []*model.MedicineLog
	for _, e := range r.entries {
		if !e.TakenAt.Before(from) && e.TakenAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.Before(out[j].TakenAt) })
	return out, nil
}

func seedEntry(repo *fakeMedicineLogRepo, name string, takenAt time.Time) {
	_ = repo.Create(context.Background(), &model.MedicineLog{
		CompartmentNumber: 1,
		MedicineName:      name,
		TakenAt:           takenAt,
		Action:            model.LogActionTaken,
	})
}

func TestListAllNewestFirst(t *testing.T) {
	repo := &fakeMedicineLogRepo{}
	seedEntry(repo, "Paracetamol", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	seedEntry(repo, "Ibuprofen", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	svc := NewService(repo)

	entries, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ibuprofen", entries[0].MedicineName)
	assert.Equal(t, "Paracetamol", entries[1].MedicineName)
}

func TestListByDayWindow(t *testing.T) {
	repo := &fakeMedicineLogRepo{}
	// Midnight at the start of the day is included.
	seedEntry(repo, "Midnight", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	seedEntry(repo, "Evening", time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC))
	// Midnight of the next day is not.
	seedEntry(repo, "NextDay", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	seedEntry(repo, "DayBefore", time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC))
	svc := NewService(repo)

	entries, err := svc.ListByDay(context.Background(), "2026-03-01")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Midnight", entries[0].MedicineName)
	assert.Equal(t, "Evening", entries[1].MedicineName)
}

func TestListByDayEmpty(t *testing.T) {
	svc := NewService(&fakeMedicineLogRepo{})

	entries, err := svc.ListByDay(context.Background(), "2026-03-01")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListByDayBadDate(t *testing.T) {
	svc := NewService(&fakeMedicineLogRepo{})

	for _, raw := range []string{"01-03-2026", "2026/03/01", "yesterday", ""} {
		_, err := svc.ListByDay(context.Background(), raw)
		assert.True(t, apperrors.IsBadRequest(err), "date %q", raw)
	}
}
