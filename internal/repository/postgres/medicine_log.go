package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/repository"
)

type medicineLogRepository struct {
	BaseRepository
}

func NewMedicineLogRepository(db *sqlx.DB) repository.MedicineLogRepository {
	return &medicineLogRepository{NewBaseRepository(db)}
}

func (r *medicineLogRepository) Create(ctx context.Context, entry *model.MedicineLog) error {
	query := `
		INSERT INTO medicine_logs (
			id, compartment_number, medicine_name, taken_at, action, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.CompartmentNumber,
		entry.MedicineName,
		entry.TakenAt,
		entry.Action,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medicine log: %w", err)
	}
	return nil
}

func (r *medicineLogRepository) List(ctx context.Context) ([]*model.MedicineLog, error) {
	query := `
		SELECT id, compartment_number, medicine_name, taken_at, action, created_at
		FROM medicine_logs
		ORDER BY taken_at DESC
	`
	var entries []*model.MedicineLog
	err := r.db.SelectContext(ctx, &entries, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicine logs: %w", err)
	}
	return entries, nil
}

// ListByRange returns entries with taken_at in [from, to), oldest first.
func (r *medicineLogRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*model.MedicineLog, error) {
	query := `
		SELECT id, compartment_number, medicine_name, taken_at, action, created_at
		FROM medicine_logs
		WHERE taken_at >= $1 AND taken_at < $2
		ORDER BY taken_at ASC
	`
	var entries []*model.MedicineLog
	err := r.db.SelectContext(ctx, &entries, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicine logs by range: %w", err)
	}
	return entries, nil
}
