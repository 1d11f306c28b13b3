// Package identity is the local account subsystem: it stores credentials,
// confirms email addresses and issues session tokens.
package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/validation"
)

const (
	minPasswordLength = 6
	tokenBytes        = 32
)

// ErrInvalidToken is returned by ConfirmEmail for an unknown or reused token.
var ErrInvalidToken = errors.New("invalid confirmation token")

// Options tunes the directory. Zero values select the defaults.
type Options struct {
	BcryptCost int
}

var _ account.Directory = (*Directory)(nil)

// Directory implements account.Directory on top of the accounts table.
type Directory struct {
	db         *gorm.DB
	jwtManager *auth.JWTManager
	cost       int
	logger     *zap.Logger
}

func NewDirectory(db *gorm.DB, jwtManager *auth.JWTManager, opts Options, logger *zap.Logger) *Directory {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Directory{db: db, jwtManager: jwtManager, cost: cost, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkPassword applies the password policy and returns every violation.
func checkPassword(password string) []account.Error {
	var errs []account.Error
	if len(password) < minPasswordLength {
		errs = append(errs, account.Error{
			Code:        account.CodePasswordPolicy,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", minPasswordLength),
		})
	}
	var digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}
	if !digit {
		errs = append(errs, account.Error{Code: account.CodePasswordPolicy, Description: "Passwords must have at least one digit ('0'-'9')."})
	}
	if !symbol {
		errs = append(errs, account.Error{Code: account.CodePasswordPolicy, Description: "Passwords must have at least one non alphanumeric character."})
	}
	return errs
}

// CreateAccount stores a new unconfirmed account.
func (d *Directory) CreateAccount(ctx context.Context, email, password string) (*account.Account, error) {
	email = strings.TrimSpace(email)
	var problems []account.Error
	if !validation.Email(email) {
		problems = append(problems, account.Error{Code: account.CodeInvalidEmail, Description: fmt.Sprintf("Email '%s' is invalid.", email)})
	}
	problems = append(problems, checkPassword(password)...)
	if len(problems) > 0 {
		return nil, &account.CreateError{Errors: problems}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &account.CreateError{Errors: []account.Error{{
			Code:        account.CodePasswordPolicy,
			Description: "Passwords must be at most 72 bytes.",
		}}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	model := &AccountModel{
		ID:              uuid.New(),
		Email:           email,
		NormalizedEmail: normalizeEmail(email),
		PasswordHash:    string(hash),
	}
	if err := d.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &account.CreateError{Errors: []account.Error{{
				Code:        account.CodeDuplicateEmail,
				Description: fmt.Sprintf("Email '%s' is already taken.", email),
			}}}
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	d.logger.Info("account created", zap.String("account_id", model.ID.String()))
	return toAccount(model), nil
}

// DeleteAccount removes an account. Deleting a missing account is NotFound.
func (d *Directory) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&AccountModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Account", id.String())
	}
	d.logger.Info("account deleted", zap.String("account_id", id.String()))
	return nil
}

// GenerateConfirmationToken issues a fresh token, replacing any earlier one.
// Only its hash is stored.
func (d *Directory) GenerateConfirmationToken(ctx context.Context, id uuid.UUID) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	result := d.db.WithContext(ctx).Model(&AccountModel{}).
		Where("id = ?", id).
		Update("confirmation_token_hash", hashToken(token))
	if result.Error != nil {
		return "", fmt.Errorf("failed to store token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", domain.NewNotFoundError("Account", id.String())
	}
	return token, nil
}

// ConfirmEmail marks the account confirmed when token matches the last
// issued one. The token is single use.
func (d *Directory) ConfirmEmail(ctx context.Context, id uuid.UUID, token string) error {
	model, err := d.find(ctx, id)
	if err != nil {
		return err
	}
	if model.EmailConfirmed && model.ConfirmationTokenHash == "" {
		return nil
	}
	if token == "" || model.ConfirmationTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(model.ConfirmationTokenHash), []byte(hashToken(token))) != 1 {
		return domain.NewValidationError(ErrInvalidToken.Error(), domain.FieldError{Field: "code", Message: "is invalid or expired"})
	}

	if err := d.db.WithContext(ctx).Model(&AccountModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"email_confirmed": true, "confirmation_token_hash": ""}).Error; err != nil {
		return fmt.Errorf("failed to confirm account: %w", err)
	}
	d.logger.Info("email confirmed", zap.String("account_id", id.String()))
	return nil
}

// SignIn issues a breeder session for the account.
func (d *Directory) SignIn(ctx context.Context, id uuid.UUID, persistent bool) (*account.Session, error) {
	model, err := d.find(ctx, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := d.jwtManager.Generate(model.ID, model.Email, auth.RoleBreeder, persistent)
	if err != nil {
		return nil, err
	}
	return &account.Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (d *Directory) find(ctx context.Context, id uuid.UUID) (*AccountModel, error) {
	var model AccountModel
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Account", id.String())
		}
		return nil, err
	}
	return &model, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func toAccount(m *AccountModel) *account.Account {
	return &account.Account{
		ID:             m.ID,
		Email:          m.Email,
		EmailConfirmed: m.EmailConfirmed,
		CreatedAt:      m.CreatedAt,
	}
}
