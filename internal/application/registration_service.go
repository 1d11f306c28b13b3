package application

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/events"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/validation"
)

// RegistrationState is where a registration attempt ended.
type RegistrationState string

const (
	StateValidating            RegistrationState = "Validating"
	StateAccountCreated        RegistrationState = "AccountCreated"
	StateBreederLinked         RegistrationState = "BreederLinked"
	StateRejectedInput         RegistrationState = "RejectedInput"
	StateAccountCreationFailed RegistrationState = "AccountCreationFailed"
	// StateLinkFailedCompensated means the breeder insert failed and the
	// new account was deleted again.
	StateLinkFailedCompensated RegistrationState = "LinkFailedCompensated"
	// StateLinkFailedOrphan means the account could not be deleted either;
	// it has been queued for asynchronous cleanup.
	StateLinkFailedOrphan RegistrationState = "LinkFailedOrphan"
)

// RegisterRequest is the registration form. The breeder email is never read
// from the form; it always comes from the created account.
type RegisterRequest struct {
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
	Name            string `json:"name" form:"name" validate:"required,max=100"`
	RememberMe      bool   `json:"remember_me" form:"remember_me"`
}

// Redacted returns the request without secrets, for redisplay.
func (r RegisterRequest) Redacted() RegisterRequest {
	r.Password = ""
	r.ConfirmPassword = ""
	return r
}

// RegistrationResult describes the attempt. It is returned on failure too,
// so callers can tell a compensated failure from an orphaned account.
type RegistrationResult struct {
	State                RegistrationState `json:"state"`
	AccountID            uuid.UUID         `json:"account_id,omitempty"`
	Breeder              *BreederDTO       `json:"breeder,omitempty"`
	ConfirmationRequired bool              `json:"confirmation_required"`
	Session              *account.Session  `json:"session,omitempty"`
	Orphaned             bool              `json:"orphaned,omitempty"`
	Warnings             []string          `json:"warnings,omitempty"`
}

// RegistrationOptions configures the post-registration steps.
type RegistrationOptions struct {
	RequireConfirmedAccount bool
	// PublicBaseURL prefixes the confirmation link in the email.
	PublicBaseURL string
}

// RegistrationService provisions an account and its linked breeder as one
// logical unit, compensating when the second step fails.
type RegistrationService struct {
	accounts  account.Directory
	gw        gateway.Gateway
	lookup    *LookupService
	notifier  Notifier
	publisher EventPublisher
	metrics   *metrics.Metrics
	opts      RegistrationOptions
	logger    *zap.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	accounts account.Directory,
	gw gateway.Gateway,
	lookup *LookupService,
	notifier Notifier,
	publisher EventPublisher,
	m *metrics.Metrics,
	opts RegistrationOptions,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		accounts:  accounts,
		gw:        gw,
		lookup:    lookup,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		logger:    logger,
	}
}

// Register runs Validating -> AccountCreated -> BreederLinked. Nothing is
// retried; the caller decides whether to resubmit.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*RegistrationResult, error) {
	result := &RegistrationResult{State: StateValidating}
	defer func() { s.metrics.ObserveRegistration(string(result.State)) }()

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if fields := validation.Struct(req); len(fields) > 0 {
		result.State = StateRejectedInput
		return result, domain.NewValidationError("registration input is invalid", fields...)
	}

	acct, err := s.accounts.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		result.State = StateAccountCreationFailed
		var createErr *account.CreateError
		if errors.As(err, &createErr) {
			fields := make([]domain.FieldError, len(createErr.Errors))
			for i, e := range createErr.Errors {
				fields[i] = domain.FieldError{Message: e.Description}
			}
			appErr := domain.NewValidationError("account could not be created", fields...)
			appErr.Err = err
			return result, appErr
		}
		s.logger.Error("account subsystem failed", zap.Error(err))
		return result, err
	}
	result.State = StateAccountCreated
	result.AccountID = acct.ID

	b, err := s.linkBreeder(ctx, req.Name, acct)
	if err != nil {
		return result, s.compensate(ctx, result, acct, err)
	}
	result.State = StateBreederLinked
	result.Breeder = toBreederDTO(b)
	s.lookup.Invalidate()

	s.logger.Info("breeder registered",
		zap.Uint("breeder_id", b.ID()),
		zap.String("account_id", acct.ID.String()),
	)
	emitEvent(ctx, s.publisher, s.logger, events.TopicKennelEvents, events.BreederRegistered, acct.ID.String(),
		events.BreederRegisteredEvent{BreederID: b.ID(), UserID: acct.ID, Email: acct.Email})

	s.sendConfirmation(ctx, result, acct)

	if s.opts.RequireConfirmedAccount {
		result.ConfirmationRequired = true
		return result, nil
	}
	session, err := s.accounts.SignIn(ctx, acct.ID, req.RememberMe)
	if err != nil {
		s.logger.Warn("sign-in after registration failed", zap.String("account_id", acct.ID.String()), zap.Error(err))
		result.Warnings = append(result.Warnings, "registration succeeded but sign-in failed; please log in")
		return result, nil
	}
	result.Session = session
	return result, nil
}

func (s *RegistrationService) linkBreeder(ctx context.Context, name string, acct *account.Account) (*breeder.Breeder, error) {
	b, err := breeder.NewLinkedBreeder(name, acct.ID, acct.Email)
	if err != nil {
		return nil, err
	}
	err = s.gw.RunInTx(ctx, func(st gateway.Stores) error {
		return st.Breeders.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// compensate deletes the account whose breeder could not be linked. If that
// fails too, the account is queued for cleanup and both errors are returned.
func (s *RegistrationService) compensate(ctx context.Context, result *RegistrationResult, acct *account.Account, linkErr error) error {
	s.logger.Error("failed to link breeder, deleting account",
		zap.String("account_id", acct.ID.String()),
		zap.Error(linkErr),
	)

	delErr := s.accounts.DeleteAccount(ctx, acct.ID)
	if delErr == nil || domain.IsNotFound(delErr) {
		result.State = StateLinkFailedCompensated
		if domain.IsValidation(linkErr) {
			return linkErr
		}
		return domain.NewPartialFailureError("breeder profile could not be created; the account was removed", linkErr)
	}

	result.State = StateLinkFailedOrphan
	result.Orphaned = true
	s.logger.Error("compensation failed, account orphaned",
		zap.String("account_id", acct.ID.String()),
		zap.NamedError("link_error", linkErr),
		zap.Error(delErr),
	)
	if err := publishEvent(ctx, s.publisher, s.logger, events.TopicCleanup, events.AccountOrphaned, acct.ID.String(),
		events.AccountOrphanedEvent{AccountID: acct.ID, Email: acct.Email, Reason: linkErr.Error()}); err != nil {
		delErr = errors.Join(delErr, fmt.Errorf("queue cleanup: %w", err))
	}
	return domain.NewPartialFailureError("breeder profile could not be created and the account could not be removed",
		errors.Join(linkErr, delErr))
}

func (s *RegistrationService) sendConfirmation(ctx context.Context, result *RegistrationResult, acct *account.Account) {
	token, err := s.accounts.GenerateConfirmationToken(ctx, acct.ID)
	if err != nil {
		s.logger.Warn("failed to generate confirmation token", zap.String("account_id", acct.ID.String()), zap.Error(err))
		result.Warnings = append(result.Warnings, "confirmation email could not be sent")
		return
	}
	link := confirmationLink(s.opts.PublicBaseURL, acct.ID, token)
	body := fmt.Sprintf(`<p>Please confirm your account by <a href="%s">clicking here</a>.</p>`, html.EscapeString(link))
	if err := s.notifier.Send(ctx, acct.Email, "Confirm your email", body); err != nil {
		s.logger.Warn("failed to send confirmation email", zap.String("account_id", acct.ID.String()), zap.Error(err))
		result.Warnings = append(result.Warnings, "confirmation email could not be sent")
	}
}

// ConfirmEmail verifies a confirmation token for an account.
func (s *RegistrationService) ConfirmEmail(ctx context.Context, accountID uuid.UUID, token string) error {
	if err := s.accounts.ConfirmEmail(ctx, accountID, token); err != nil {
		return err
	}
	s.logger.Info("email confirmed", zap.String("account_id", accountID.String()))
	return nil
}

func confirmationLink(baseURL string, accountID uuid.UUID, token string) string {
	q := url.Values{}
	q.Set("user_id", accountID.String())
	q.Set("code", token)
	return strings.TrimRight(baseURL, "/") + "/api/v1/account/confirm?" + q.Encode()
}
