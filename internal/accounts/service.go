package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/defterapp/defter-core/pkg/db/models"
	"github.com/defterapp/defter-core/pkg/enums"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"gorm.io/gorm"
)

// Service defines the account store operations. Debt and balance are
// read-only through this surface.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context, accountType string) ([]models.Account, error)
	ListSummaries(ctx context.Context, accountType string) ([]Summary, error)
	UpdateContact(ctx context.Context, input UpdateContactInput) error
	UpdateLastAction(ctx context.Context, id int64, action string) error
}

// CreateAccountInput captures the caller-supplied fields for a new account.
// Aggregates always start at zero.
type CreateAccountInput struct {
	Name        string
	Email       *string
	Phone       *string
	Address     *string
	AccountType string
}

// UpdateContactInput carries the contact-detail update; aggregates and
// account type stay untouched.
type UpdateContactInput struct {
	ID      int64
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

type service struct {
	repo Repository
}

// NewService wires an account service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account name is required")
	}

	accountType := enums.AccountTypeCustomer
	if input.AccountType != "" {
		parsed, err := enums.ParseAccountType(input.AccountType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type")
		}
		accountType = parsed
	}

	account := &models.Account{
		Name:        name,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		AccountType: accountType,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating account")
	}
	return account, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Account, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("account %d not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	return account, nil
}

func (s *service) List(ctx context.Context, accountType string) ([]models.Account, error) {
	parsed, err := parseOptionalAccountType(accountType)
	if err != nil {
		return nil, err
	}
	accounts, err := s.repo.List(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing accounts")
	}
	return accounts, nil
}

func (s *service) ListSummaries(ctx context.Context, accountType string) ([]Summary, error) {
	parsed, err := parseOptionalAccountType(accountType)
	if err != nil {
		return nil, err
	}
	summaries, err := s.repo.ListSummaries(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing account summaries")
	}
	return summaries, nil
}

func (s *service) UpdateContact(ctx context.Context, input UpdateContactInput) error {
	if input.ID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "account name is required")
	}

	affected, err := s.repo.UpdateContact(ctx, input.ID, name, input.Email, input.Phone, input.Address)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating account contact")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("account %d not found", input.ID))
	}
	return nil
}

func (s *service) UpdateLastAction(ctx context.Context, id int64, action string) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	if strings.TrimSpace(action) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "action is required")
	}

	affected, err := s.repo.UpdateLastAction(ctx, id, action)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating last action")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("account %d not found", id))
	}
	return nil
}

func parseOptionalAccountType(value string) (enums.AccountType, error) {
	if value == "" {
		return "", nil
	}
	parsed, err := enums.ParseAccountType(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account type filter")
	}
	return parsed, nil
}
