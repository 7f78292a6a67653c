package compartment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/repository"
	apperrors "github.com/jwalitptl/dispenser-api/pkg/errors"
	"github.com/jwalitptl/dispenser-api/pkg/logger"
)

// MaxListLimit caps page sizes regardless of what the caller requests.
const MaxListLimit = 100

type Service struct {
	repo   repository.CompartmentRepository
	logger *logger.Logger
}

func NewService(repo repository.CompartmentRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// validateNumber enforces the physical compartment range.
func validateNumber(number int) error {
	if !model.ValidNumber(number) {
		return apperrors.BadRequest("compartment_number must be 1, 2, or 3", nil)
	}
	return nil
}

// validateSchedule enforces the repeat-schedule invariant: a one-time dose
// requires time_if_not_repeated, a repeated dose must not carry it.
func validateSchedule(toBeRepeated bool, timeIfNotRepeated *model.TimeOfDay) error {
	if !toBeRepeated && timeIfNotRepeated == nil {
		return apperrors.BadRequest("time_if_not_repeated is required if the medicine is not repeated", nil)
	}
	if toBeRepeated && timeIfNotRepeated != nil {
		return apperrors.BadRequest("time_if_not_repeated must be null if the medicine is repeated", nil)
	}
	return nil
}

func (s *Service) buildCompartment(req *model.CreateCompartmentRequest) (*model.Compartment, error) {
	if err := validateNumber(req.CompartmentNumber); err != nil {
		return nil, err
	}
	if err := validateSchedule(req.ToBeRepeated, req.TimeIfNotRepeated); err != nil {
		return nil, err
	}

	count := req.NumberOfMedicines
	if count < 0 {
		count = 0
	}

	compartment := &model.Compartment{
		CompartmentNumber: req.CompartmentNumber,
		MedicineName:      req.MedicineName,
		NumberOfMedicines: count,
		ToBeRepeated:      req.ToBeRepeated,
		MorningTime:       req.MorningTime,
		AfternoonTime:     req.AfternoonTime,
		EveningTime:       req.EveningTime,
		TimeIfNotRepeated: req.TimeIfNotRepeated,
		Taken:             req.Taken,
		TakenAt:           req.TakenAt,
	}
	compartment.RefreshLowStock()
	return compartment, nil
}

// Create appends a new record; an existing record with the same compartment
// number is never overwritten.
func (s *Service) Create(ctx context.Context, req *model.CreateCompartmentRequest) (*model.Compartment, error) {
	compartment, err := s.buildCompartment(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, compartment); err != nil {
		return nil, fmt.Errorf("failed to create compartment: %w", err)
	}

	s.logger.Info("compartment created",
		"compartment_number", compartment.CompartmentNumber,
		"medicine_name", compartment.MedicineName)
	return compartment, nil
}

// BulkCreate validates every payload up front and inserts all records in one
// transaction, so a single bad payload rejects the whole batch.
func (s *Service) BulkCreate(ctx context.Context, reqs []*model.CreateCompartmentRequest) ([]*model.Compartment, error) {
	if len(reqs) == 0 {
		return nil, apperrors.BadRequest("at least one compartment is required", nil)
	}

	compartments := make([]*model.Compartment, 0, len(reqs))
	for _, req := range reqs {
		compartment, err := s.buildCompartment(req)
		if err != nil {
			return nil, err
		}
		compartments = append(compartments, compartment)
	}

	if err := s.repo.CreateBatch(ctx, compartments); err != nil {
		return nil, fmt.Errorf("failed to bulk create compartments: %w", err)
	}
	return compartments, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*model.Compartment, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	compartments, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list compartments: %w", err)
	}
	return compartments, nil
}

func (s *Service) GetByNumber(ctx context.Context, number int) ([]*model.Compartment, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	compartments, err := s.repo.ListByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get compartments: %w", err)
	}
	return compartments, nil
}

// Update applies only the fields present in the request. When the repeat
// schedule or compartment number changes, the resulting record must still
// satisfy the invariants.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCompartmentRequest) (*model.Compartment, error) {
	compartment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("compartment", err)
		}
		return nil, fmt.Errorf("failed to get compartment: %w", err)
	}

	if req.CompartmentNumber != nil {
		if err := validateNumber(*req.CompartmentNumber); err != nil {
			return nil, err
		}
		compartment.CompartmentNumber = *req.CompartmentNumber
	}
	if req.MedicineName != nil {
		compartment.MedicineName = *req.MedicineName
	}
	if req.NumberOfMedicines != nil {
		count := *req.NumberOfMedicines
		if count < 0 {
			count = 0
		}
		compartment.NumberOfMedicines = count
	}
	if req.ToBeRepeated != nil {
		compartment.ToBeRepeated = *req.ToBeRepeated
	}
	if req.MorningTime.Set {
		compartment.MorningTime = req.MorningTime.Value
	}
	if req.AfternoonTime.Set {
		compartment.AfternoonTime = req.AfternoonTime.Value
	}
	if req.EveningTime.Set {
		compartment.EveningTime = req.EveningTime.Value
	}
	if req.TimeIfNotRepeated.Set {
		compartment.TimeIfNotRepeated = req.TimeIfNotRepeated.Value
	}
	if req.Taken != nil {
		compartment.Taken = *req.Taken
	}

	if req.ToBeRepeated != nil || req.TimeIfNotRepeated.Set {
		if err := validateSchedule(compartment.ToBeRepeated, compartment.TimeIfNotRepeated); err != nil {
			return nil, err
		}
	}

	compartment.RefreshLowStock()

	if err := s.repo.Update(ctx, compartment); err != nil {
		return nil, fmt.Errorf("failed to update compartment: %w", err)
	}
	return compartment, nil
}

func (s *Service) DeleteByMedicine(ctx context.Context, number int, medicineName string) (*model.DeleteSummary, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteByMedicine(ctx, number, medicineName)
	if err != nil {
		return nil, fmt.Errorf("failed to delete compartments: %w", err)
	}
	if deleted == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("medicine %q in compartment %d", medicineName, number), nil)
	}

	return &model.DeleteSummary{
		Deleted: deleted,
		Message: fmt.Sprintf("all entries of %q have been removed from compartment %d", medicineName, number),
	}, nil
}

func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete all compartments: %w", err)
	}
	s.logger.Warn("all compartments deleted")
	return nil
}

// MarkTaken flags the first record in a compartment as taken. taken_at is
// left untouched here; the sensor webhook is the authoritative source for
// the dispense timestamp.
func (s *Service) MarkTaken(ctx context.Context, number int) (*model.Compartment, error) {
	compartment, err := s.firstByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	compartment.Taken = true
	if err := s.repo.Update(ctx, compartment); err != nil {
		return nil, fmt.Errorf("failed to mark compartment taken: %w", err)
	}
	return compartment, nil
}

// UnmarkTaken clears the taken state and timestamp. Idempotent.
func (s *Service) UnmarkTaken(ctx context.Context, number int) (*model.Compartment, error) {
	compartment, err := s.firstByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	compartment.Taken = false
	compartment.TakenAt = nil
	if err := s.repo.Update(ctx, compartment); err != nil {
		return nil, fmt.Errorf("failed to unmark compartment taken: %w", err)
	}
	return compartment, nil
}

func (s *Service) ListTaken(ctx context.Context, number int) ([]*model.Compartment, error) {
	return s.listByTaken(ctx, number, true)
}

func (s *Service) ListPending(ctx context.Context, number int) ([]*model.Compartment, error) {
	return s.listByTaken(ctx, number, false)
}

func (s *Service) listByTaken(ctx context.Context, number int, taken bool) ([]*model.Compartment, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	compartments, err := s.repo.ListByTaken(ctx, number, taken)
	if err != nil {
		return nil, fmt.Errorf("failed to list compartments: %w", err)
	}
	return compartments, nil
}

func (s *Service) firstByNumber(ctx context.Context, number int) (*model.Compartment, error) {
	if err := validateNumber(number); err != nil {
		return nil, err
	}

	compartment, err := s.repo.FirstByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("medicine in compartment %d", number), err)
		}
		return nil, fmt.Errorf("failed to get compartment: %w", err)
	}
	return compartment, nil
}
