package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/repository"
	"github.com/jwalitptl/dispenser-api/pkg/logger"
)

// EventTypeMedicineTaken is published to the broker when a dispense is recorded.
const EventTypeMedicineTaken = "medicine.taken"

// feedCompartments maps sensor feed identifiers to physical compartments.
// Feeds outside this mapping are ignored.
var feedCompartments = map[string]int{
	"comp1-taken": 1,
	"comp2-taken": 2,
	"comp3-taken": 3,
}

// LowStockNotifier is told about compartments that dropped below the
// stock threshold after a dispense.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, compartment *model.Compartment)
}

type Service struct {
	compartments repository.CompartmentRepository
	notifier     LowStockNotifier
	logger       *logger.Logger
}

func NewService(compartments repository.CompartmentRepository, notifier LowStockNotifier, logger *logger.Logger) *Service {
	return &Service{
		compartments: compartments,
		notifier:     notifier,
		logger:       logger,
	}
}

// Reconcile scans a sensor batch in order and applies the first event that
// maps to a known compartment and carries value "1": the pill count drops by
// one (clamped at zero), the dose is marked taken, and a log entry plus an
// outbox event are written in the same transaction. The rest of the batch is
// never examined once an event has been applied; the hardware emits one
// dispense per batch and later entries are sensor echo.
//
// The feed is an untrusted external signal, so unmapped feeds, empty
// compartments and unparseable timestamps are absorbed rather than surfaced.
func (s *Service) Reconcile(ctx context.Context, events []model.SensorEvent) (*model.ReconcileResult, error) {
	for _, event := range events {
		number, ok := feedCompartments[strings.ToLower(event.FeedName)]
		if !ok {
			continue
		}

		compartment, err := s.compartments.FirstByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Debug("sensor event for empty compartment skipped",
					"compartment_number", number, "feed_name", event.FeedName)
				continue
			}
			return nil, fmt.Errorf("failed to load compartment %d: %w", number, err)
		}

		if strings.TrimSpace(event.Value) != "1" {
			continue
		}

		takenAt := s.parseEventTime(event.CreatedAt)

		if compartment.NumberOfMedicines > 0 {
			compartment.NumberOfMedicines--
		}
		compartment.Taken = true
		compartment.TakenAt = &takenAt
		compartment.RefreshLowStock()

		entry := &model.MedicineLog{
			CompartmentNumber: compartment.CompartmentNumber,
			MedicineName:      compartment.MedicineName,
			TakenAt:           takenAt,
			Action:            model.LogActionTaken,
		}

		payload, err := json.Marshal(map[string]interface{}{
			"compartment_number": compartment.CompartmentNumber,
			"medicine_name":      compartment.MedicineName,
			"remaining_pills":    compartment.NumberOfMedicines,
			"low_stock":          compartment.LowStock,
			"taken_at":           takenAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		outboxEvent := &model.OutboxEvent{
			EventType: EventTypeMedicineTaken,
			Payload:   payload,
		}

		if err := s.compartments.ApplyDispense(ctx, compartment, entry, outboxEvent); err != nil {
			return nil, fmt.Errorf("failed to apply dispense: %w", err)
		}

		s.logger.Info("dispense recorded",
			"compartment_number", compartment.CompartmentNumber,
			"medicine_name", compartment.MedicineName,
			"remaining_pills", compartment.NumberOfMedicines)

		if compartment.LowStock && s.notifier != nil {
			s.notifier.NotifyLowStock(ctx, compartment)
		}

		return &model.ReconcileResult{
			Processed:         true,
			CompartmentNumber: compartment.CompartmentNumber,
			MedicineName:      compartment.MedicineName,
			RemainingPills:    compartment.NumberOfMedicines,
			LowStock:          compartment.LowStock,
			TakenAt:           &takenAt,
			Message:           fmt.Sprintf("medicine in compartment %d marked as taken", compartment.CompartmentNumber),
		}, nil
	}

	return &model.ReconcileResult{
		Processed: false,
		Message:   "no valid compartment found in the received data",
	}, nil
}

// parseEventTime parses the sensor's ISO-8601 timestamp, falling back to now
// when the sensor sends garbage.
func (s *Service) parseEventTime(raw string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	s.logger.Warn("unparseable sensor timestamp, using current time", "created_at", raw)
	return time.Now().UTC()
}
