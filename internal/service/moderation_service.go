package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"veganbite/internal/domain"
	"veganbite/internal/events"
	"veganbite/internal/repository"

	"go.uber.org/zap"
)

const (
	msgReasonRequired  = "A reason is required"
	msgInvalidDuration = "Duration must be one of 1, 3, 7, 14 or 30 days"
)

// ModerationService defines the admin operations on customer accounts.
// Input is validated before the customer is read, so a rejected request
// never changes state.
type ModerationService interface {
	ListCustomers(ctx context.Context) ([]*domain.ManagedCustomer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.ManagedCustomer, error)
	Ban(ctx context.Context, admin *domain.Admin, customerID int64, reason string) (*domain.ManagedCustomer, error)
	Suspend(ctx context.Context, admin *domain.Admin, customerID int64, days int, reason string) (*domain.ManagedCustomer, error)
	Unban(ctx context.Context, admin *domain.Admin, customerID int64) (*domain.ManagedCustomer, error)
}

type moderationService struct {
	customerRepo repository.CustomerRepository
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewModerationService creates a new instance of ModerationService
func NewModerationService(customerRepo repository.CustomerRepository, publisher events.Publisher, logger *zap.Logger) ModerationService {
	return &moderationService{
		customerRepo: customerRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

type statusChangedData struct {
	CustomerID     int64                 `json:"customerId"`
	AdminID        int64                 `json:"adminId"`
	Status         domain.CustomerStatus `json:"status"`
	Reason         *string               `json:"reason,omitempty"`
	SuspendedUntil *time.Time            `json:"suspendedUntil,omitempty"`
}

func (s *moderationService) ListCustomers(ctx context.Context) ([]*domain.ManagedCustomer, error) {
	return s.customerRepo.ListManaged(ctx)
}

func (s *moderationService) GetCustomer(ctx context.Context, id int64) (*domain.ManagedCustomer, error) {
	return s.customerRepo.FindManagedByID(ctx, id)
}

func (s *moderationService) Ban(ctx context.Context, admin *domain.Admin, customerID int64, reason string) (*domain.ManagedCustomer, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fieldError("reason", msgReasonRequired)
	}

	return s.moderate(ctx, "ban", admin, customerID, func(c *domain.Customer) error {
		return c.Ban(reason, s.now())
	})
}

func (s *moderationService) Suspend(ctx context.Context, admin *domain.Admin, customerID int64, days int, reason string) (*domain.ManagedCustomer, error) {
	fields := domain.FieldErrors{}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		fields.Add("reason", msgReasonRequired)
	}
	if !domain.IsValidSuspensionDuration(days) {
		fields.Add("duration", msgInvalidDuration)
	}
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	return s.moderate(ctx, "suspend", admin, customerID, func(c *domain.Customer) error {
		return c.Suspend(days, reason, s.now())
	})
}

func (s *moderationService) Unban(ctx context.Context, admin *domain.Admin, customerID int64) (*domain.ManagedCustomer, error) {
	return s.moderate(ctx, "unban", admin, customerID, func(c *domain.Customer) error {
		c.Unban()
		return nil
	})
}

func (s *moderationService) moderate(
	ctx context.Context,
	action string,
	admin *domain.Admin,
	customerID int64,
	change func(*domain.Customer) error,
) (managed *domain.ManagedCustomer, err error) {
	defer func() { moderationActionsTotal.WithLabelValues(action, outcome(err)).Inc() }()

	if admin == nil || !admin.CanModerate() {
		return nil, ErrForbidden
	}

	managed, err = s.customerRepo.Moderate(ctx, customerID, change)
	if err != nil {
		return nil, fmt.Errorf("failed to %s customer: %w", action, err)
	}

	s.logger.Info("Customer status changed",
		zap.String("action", action),
		zap.Int64("customer_id", customerID),
		zap.Int64("admin_id", admin.ID),
		zap.String("status", string(managed.Status)),
	)
	events.Emit(ctx, s.publisher, s.logger, events.CustomerStatusChanged, "customer", customerID, statusChangedData{
		CustomerID:     customerID,
		AdminID:        admin.ID,
		Status:         managed.Status,
		Reason:         managed.StatusReason,
		SuspendedUntil: managed.SuspendedUntil,
	})
	return managed, nil
}
