package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/domain"
	"github.com/Domenick1991/skyfare/internal/keygen"
	"github.com/Domenick1991/skyfare/internal/store"
)

// SessionValidity is the fixed window between session creation and expiry.
// Accessing a session does not extend it.
const SessionValidity = 24 * time.Hour

type CustomerUseCase interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	GetCustomerByUsername(ctx context.Context, username string) (*domain.Customer, error)
	ValidateCustomer(ctx context.Context, username, password string) (bool, error)
	CreateSession(ctx context.Context, customerID string) (*domain.CustomerSession, error)
	ValidateSession(ctx context.Context, sessionID string) (*domain.CustomerSession, error)
	InvalidateSession(ctx context.Context, sessionID string) error
	CountCustomers(ctx context.Context) (int64, error)
	CountSessions(ctx context.Context) (int64, error)
}

type CreateCustomerInput struct {
	Username        string                  `json:"username"`
	Password        string                  `json:"password"`
	Status          domain.MemberShipStatus `json:"status"`
	TotalMiles      int                     `json:"total_miles"`
	MilesYTD        int                     `json:"miles_ytd"`
	PhoneNumber     string                  `json:"phone_number"`
	PhoneNumberType domain.PhoneType        `json:"phone_number_type"`
	Address         domain.CustomerAddress  `json:"address"`
}

type CustomerService struct {
	store store.CustomerStore
	keys  *keygen.Generator
	log   *zap.SugaredLogger
}

func NewCustomerService(st store.CustomerStore, keys *keygen.Generator, log *zap.SugaredLogger) *CustomerService {
	return &CustomerService{store: st, keys: keys, log: log}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		Username:        input.Username,
		Password:        input.Password,
		Status:          input.Status,
		TotalMiles:      input.TotalMiles,
		MilesYTD:        input.MilesYTD,
		Address:         input.Address,
		PhoneNumber:     input.PhoneNumber,
		PhoneNumberType: input.PhoneNumberType,
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// GetCustomerByUsername returns the customer with the password cleared. Only
// the internal validation path sees the stored password.
func (s *CustomerService) GetCustomerByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	customer, err := s.getCustomer(ctx, username)
	if err != nil {
		return nil, err
	}
	customer.Password = ""
	return customer, nil
}

// ValidateCustomer is a server-side equality check of the stored password. An
// unknown username validates to false, not an error.
func (s *CustomerService) ValidateCustomer(ctx context.Context, username, password string) (bool, error) {
	customer, err := s.getCustomer(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return customer.Password == password, nil
}

func (s *CustomerService) getCustomer(ctx context.Context, username string) (*domain.Customer, error) {
	customer, err := s.store.GetCustomer(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get customer %s: %w", username, err)
	}
	return customer, nil
}

func (s *CustomerService) CreateSession(ctx context.Context, customerID string) (*domain.CustomerSession, error) {
	now := time.Now()
	session := &domain.CustomerSession{
		ID:           s.keys.Generate(),
		CustomerID:   customerID,
		LastAccessed: now,
		Expiration:   now.Add(SessionValidity),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// ValidateSession resolves a session id. The first lookup past expiry deletes
// the session, so a later lookup of the same id stays absent.
func (s *CustomerService) ValidateSession(ctx context.Context, sessionID string) (*domain.CustomerSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Expired(time.Now()) {
		if err := s.store.DeleteSession(ctx, sessionID); err != nil {
			s.log.Warnw("remove expired session", "session", sessionID, "error", err)
		}
		return nil, store.ErrNotFound
	}
	return session, nil
}

// InvalidateSession deletes unconditionally; logout of an unknown id is a no-op.
func (s *CustomerService) InvalidateSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *CustomerService) CountCustomers(ctx context.Context) (int64, error) {
	return s.store.CountCustomers(ctx)
}

func (s *CustomerService) CountSessions(ctx context.Context) (int64, error) {
	return s.store.CountSessions(ctx)
}

var _ CustomerUseCase = (*CustomerService)(nil)
