package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dispenser-api/internal/model"
)

// All repository interfaces in one file
type (
	// CompartmentRepository handles compartment record storage. "First" means
	// first in storage order: oldest created_at, lowest id as tie-break.
	CompartmentRepository interface {
		Create(ctx context.Context, compartment *model.Compartment) error
		CreateBatch(ctx context.Context, compartments []*model.Compartment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Compartment, error)
		List(ctx context.Context, offset, limit int) ([]*model.Compartment, error)
		ListByNumber(ctx context.Context, number int) ([]*model.Compartment, error)
		FirstByNumber(ctx context.Context, number int) (*model.Compartment, error)
		ListByTaken(ctx context.Context, number int, taken bool) ([]*model.Compartment, error)
		Update(ctx context.Context, compartment *model.Compartment) error
		DeleteByMedicine(ctx context.Context, number int, medicineName string) (int64, error)
		DeleteAll(ctx context.Context) error
		// ApplyDispense persists the compartment mutation, the log entry and
		// the outbox event in one transaction.
		ApplyDispense(ctx context.Context, compartment *model.Compartment, entry *model.MedicineLog, event *model.OutboxEvent) error
	}

	// MedicineLogRepository handles the append-only dispensing log.
	MedicineLogRepository interface {
		Create(ctx context.Context, entry *model.MedicineLog) error
		List(ctx context.Context) ([]*model.MedicineLog, error)
		ListByRange(ctx context.Context, from, to time.Time) ([]*model.MedicineLog, error)
	}

	// OutboxRepository handles pending event storage for the worker.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	}
)
