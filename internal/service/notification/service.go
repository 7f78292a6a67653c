package notification

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/dispenser-api/internal/model"
	"github.com/jwalitptl/dispenser-api/pkg/logger"
)

// Alerts for the same compartment are suppressed for this long.
const dedupeWindow = 24 * time.Hour

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Service sends low-stock alert emails to the configured caregiver address.
// Delivery is best effort: failures are logged, never propagated.
type Service struct {
	cfg    Config
	dialer *gomail.Dialer
	recent *gocache.Cache
	logger *logger.Logger
}

func NewService(cfg Config, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		recent: gocache.New(dedupeWindow, time.Hour),
		logger: logger,
	}
}

func (s *Service) NotifyLowStock(ctx context.Context, compartment *model.Compartment) {
	if !s.cfg.Enabled {
		return
	}

	key := fmt.Sprintf("low-stock:%d:%s", compartment.CompartmentNumber, compartment.MedicineName)
	if _, alerted := s.recent.Get(key); alerted {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("Low stock: %s (compartment %d)", compartment.MedicineName, compartment.CompartmentNumber))
	m.SetBody("text/plain", fmt.Sprintf(
		"Compartment %d is running low on %s: %d pill(s) remaining.\nPlease refill the dispenser.",
		compartment.CompartmentNumber, compartment.MedicineName, compartment.NumberOfMedicines,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error(err, "failed to send low stock alert",
			"compartment_number", compartment.CompartmentNumber,
			"medicine_name", compartment.MedicineName)
		return
	}

	s.recent.SetDefault(key, time.Now())
	s.logger.Info("low stock alert sent",
		"compartment_number", compartment.CompartmentNumber,
		"medicine_name", compartment.MedicineName)
}
