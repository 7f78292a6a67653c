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

const compartmentColumns = `
	id, compartment_number, medicine_name, number_of_medicines,
	to_be_repeated, morning_time, afternoon_time, evening_time,
	time_if_not_repeated, taken, taken_at, low_stock,
	created_at, updated_at
`

type compartmentRepository struct {
	BaseRepository
}

func NewCompartmentRepository(db *sqlx.DB) repository.CompartmentRepository {
	return &compartmentRepository{NewBaseRepository(db)}
}

func (r *compartmentRepository) Create(ctx context.Context, compartment *model.Compartment) error {
	compartment.ID = uuid.New()
	compartment.CreatedAt = time.Now()
	compartment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, insertCompartmentQuery, insertCompartmentArgs(compartment)...)
	if err != nil {
		return fmt.Errorf("failed to create compartment: %w", err)
	}
	return nil
}

func (r *compartmentRepository) CreateBatch(ctx context.Context, compartments []*model.Compartment) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, compartment := range compartments {
			compartment.ID = uuid.New()
			compartment.CreatedAt = time.Now()
			compartment.UpdatedAt = time.Now()

			if _, err := tx.ExecContext(ctx, insertCompartmentQuery, insertCompartmentArgs(compartment)...); err != nil {
				return fmt.Errorf("failed to create compartment: %w", err)
			}
		}
		return nil
	})
}

const insertCompartmentQuery = `
	INSERT INTO compartments (
		id, compartment_number, medicine_name, number_of_medicines,
		to_be_repeated, morning_time, afternoon_time, evening_time,
		time_if_not_repeated, taken, taken_at, low_stock,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

func insertCompartmentArgs(c *model.Compartment) []interface{} {
	return []interface{}{
		c.ID,
		c.CompartmentNumber,
		c.MedicineName,
		c.NumberOfMedicines,
		c.ToBeRepeated,
		c.MorningTime,
		c.AfternoonTime,
		c.EveningTime,
		c.TimeIfNotRepeated,
		c.Taken,
		c.TakenAt,
		c.LowStock,
		c.CreatedAt,
		c.UpdatedAt,
	}
}

func (r *compartmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Compartment, error) {
	query := `SELECT ` + compartmentColumns + ` FROM compartments WHERE id = $1`

	var compartment model.Compartment
	err := r.db.GetContext(ctx, &compartment, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get compartment: %w", err)
	}
	return &compartment, nil
}

func (r *compartmentRepository) List(ctx context.Context, offset, limit int) ([]*model.Compartment, error) {
	query := `
		SELECT ` + compartmentColumns + `
		FROM compartments
		ORDER BY created_at ASC, id ASC
		OFFSET $1 LIMIT $2
	`
	var compartments []*model.Compartment
	err := r.db.SelectContext(ctx, &compartments, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list compartments: %w", err)
	}
	return compartments, nil
}

func (r *compartmentRepository) ListByNumber(ctx context.Context, number int) ([]*model.Compartment, error) {
	query := `
		SELECT ` + compartmentColumns + `
		FROM compartments
		WHERE compartment_number = $1
		ORDER BY created_at ASC, id ASC
	`
	var compartments []*model.Compartment
	err := r.db.SelectContext(ctx, &compartments, query, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list compartments by number: %w", err)
	}
	return compartments, nil
}

// FirstByNumber returns the oldest record for a compartment number. Multiple
// records may share a number, so the ordering here is what makes mark-taken
// and webhook reconciliation deterministic.
func (r *compartmentRepository) FirstByNumber(ctx context.Context, number int) (*model.Compartment, error) {
	query := `
		SELECT ` + compartmentColumns + `
		FROM compartments
		WHERE compartment_number = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	var compartment model.Compartment
	err := r.db.GetContext(ctx, &compartment, query, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get first compartment: %w", err)
	}
	return &compartment, nil
}

func (r *compartmentRepository) ListByTaken(ctx context.Context, number int, taken bool) ([]*model.Compartment, error) {
	query := `
		SELECT ` + compartmentColumns + `
		FROM compartments
		WHERE compartment_number = $1 AND taken = $2
		ORDER BY created_at ASC, id ASC
	`
	var compartments []*model.Compartment
	err := r.db.SelectContext(ctx, &compartments, query, number, taken)
	if err != nil {
		return nil, fmt.Errorf("failed to list compartments by taken state: %w", err)
	}
	return compartments, nil
}

func (r *compartmentRepository) Update(ctx context.Context, compartment *model.Compartment) error {
	compartment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, updateCompartmentQuery, updateCompartmentArgs(compartment)...)
	if err != nil {
		return fmt.Errorf("failed to update compartment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("compartment not found")
	}

	return nil
}

const updateCompartmentQuery = `
	UPDATE compartments
	SET compartment_number = $1, medicine_name = $2, number_of_medicines = $3,
		to_be_repeated = $4, morning_time = $5, afternoon_time = $6,
		evening_time = $7, time_if_not_repeated = $8, taken = $9,
		taken_at = $10, low_stock = $11, updated_at = $12
	WHERE id = $13
`

func updateCompartmentArgs(c *model.Compartment) []interface{} {
	return []interface{}{
		c.CompartmentNumber,
		c.MedicineName,
		c.NumberOfMedicines,
		c.ToBeRepeated,
		c.MorningTime,
		c.AfternoonTime,
		c.EveningTime,
		c.TimeIfNotRepeated,
		c.Taken,
		c.TakenAt,
		c.LowStock,
		c.UpdatedAt,
		c.ID,
	}
}

func (r *compartmentRepository) DeleteByMedicine(ctx context.Context, number int, medicineName string) (int64, error) {
	query := `
		DELETE FROM compartments
		WHERE compartment_number = $1 AND medicine_name = $2
	`
	result, err := r.db.ExecContext(ctx, query, number, medicineName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete compartments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *compartmentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM compartments`); err != nil {
		return fmt.Errorf("failed to delete all compartments: %w", err)
	}
	return nil
}

func (r *compartmentRepository) ApplyDispense(ctx context.Context, compartment *model.Compartment, entry *model.MedicineLog, event *model.OutboxEvent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		compartment.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx, updateCompartmentQuery, updateCompartmentArgs(compartment)...); err != nil {
			return fmt.Errorf("failed to update compartment: %w", err)
		}

		entry.ID = uuid.New()
		entry.CreatedAt = time.Now()
		logQuery := `
			INSERT INTO medicine_logs (
				id, compartment_number, medicine_name, taken_at, action, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, logQuery,
			entry.ID,
			entry.CompartmentNumber,
			entry.MedicineName,
			entry.TakenAt,
			entry.Action,
			entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to append medicine log: %w", err)
		}

		event.ID = uuid.New()
		event.Status = model.OutboxStatusPending
		event.CreatedAt = time.Now()
		event.UpdatedAt = time.Now()
		eventQuery := `
			INSERT INTO outbox_events (
				id, event_type, payload, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, eventQuery,
			event.ID,
			event.EventType,
			event.Payload,
			event.Status,
			event.CreatedAt,
			event.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}

		return nil
	})
}
