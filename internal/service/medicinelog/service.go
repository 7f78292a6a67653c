package medicinelog

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/internal/repository"
	apperrors "github.com/jwalitptl/dispenser-api/pkg/errors"
)

const dayLayout = "2006-01-02"

type Service struct {
	repo repository.MedicineLogRepository
}

func NewService(repo repository.MedicineLogRepository) *Service {
	return &Service{repo: repo}
}

// ListAll returns the full dispensing history, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*model.MedicineLog, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicine logs: %w", err)
	}
	return entries, nil
}

// ListByDay returns entries whose taken_at falls within the calendar day,
// interpreted as the half-open interval [day, day+24h), oldest first.
func (s *Service) ListByDay(ctx context.Context, day string) ([]*model.MedicineLog, error) {
	dayStart, err := time.Parse(dayLayout, day)
	if err != nil {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", day), err)
	}

	entries, err := s.repo.ListByRange(ctx, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list medicine logs by day: %w", err)
	}
	return entries, nil
}
