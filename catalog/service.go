package catalog

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	auth "github.com/goliatone/go-loan-auth"
)

const (
	TextCodeNoLoans        = "NO_LOANS"
	TextCodeNoCategories   = "NO_LOAN_CATEGORIES"
	TextCodeLoanNotFound   = "LOAN_NOT_FOUND"
	TextCodeCatalogFailure = "CATALOG_FAILURE"
)

// ErrNoLoans is returned when the catalog has no loans.
var ErrNoLoans = goerrors.New("No loans found.", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNoLoans).
	WithCode(goerrors.CodeNotFound)

// ErrNoCategories is returned when a category lookup matches nothing.
var ErrNoCategories = goerrors.New("No loan categories found.", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNoCategories).
	WithCode(goerrors.CodeNotFound)

// ErrLoanNotFound is returned when a category references an unknown loan.
var ErrLoanNotFound = goerrors.New("Loan not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeLoanNotFound).
	WithCode(goerrors.CodeNotFound)

// AddLoanMessage is the payload for creating a loan.
type AddLoanMessage struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	MaxLoan     *float64 `json:"maxloan"`
	LoanPeriod  string   `json:"loanperiod"`
}

func (m AddLoanMessage) Type() string { return "catalog.loan.add" }

func (m AddLoanMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.MaxLoan, validation.NotNil, validation.Min(0.0)),
		validation.Field(&m.LoanPeriod, validation.Required),
	)
}

// AddCategoryMessage is the payload for creating a loan category.
type AddCategoryMessage struct {
	Title  string `json:"title"`
	LoanID string `json:"loanId"`
}

func (m AddCategoryMessage) Type() string { return "catalog.category.add" }

func (m AddCategoryMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.LoanID, validation.Required),
	)
}

// Service implements the loan catalog operations.
type Service struct {
	store  Store
	logger auth.Logger
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l auth.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: auth.NewSlogLogger(nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) AddLoan(ctx context.Context, msg AddLoanMessage) (*Loan, error) {
	msg.Title = strings.TrimSpace(msg.Title)
	if err := msg.Validate(); err != nil {
		return nil, auth.NewValidationError(err)
	}

	now := s.now()
	loan, err := s.store.CreateLoan(ctx, &Loan{
		ID:          uuid.NewString(),
		Title:       msg.Title,
		Description: msg.Description,
		MaxLoan:     *msg.MaxLoan,
		LoanPeriod:  msg.LoanPeriod,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error("add loan failed", "error", err)
		return nil, failure(err, "Failed to add loan")
	}
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context) ([]*Loan, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		s.logger.Error("list loans failed", "error", err)
		return nil, failure(err, "Internal Server Error")
	}
	if len(loans) == 0 {
		return nil, ErrNoLoans
	}
	return loans, nil
}

func (s *Service) AddCategory(ctx context.Context, msg AddCategoryMessage) (*Category, error) {
	msg.Title = strings.TrimSpace(msg.Title)
	msg.LoanID = strings.TrimSpace(msg.LoanID)
	if err := msg.Validate(); err != nil {
		return nil, auth.NewValidationError(err)
	}

	if _, err := s.store.GetLoan(ctx, msg.LoanID); err != nil {
		if auth.IsRecordNotFound(err) {
			return nil, ErrLoanNotFound
		}
		s.logger.Error("add category loan lookup failed", "loan_id", msg.LoanID, "error", err)
		return nil, failure(err, "Failed to add loan category")
	}

	now := s.now()
	category, err := s.store.CreateCategory(ctx, &Category{
		ID:        uuid.NewString(),
		Title:     msg.Title,
		LoanID:    msg.LoanID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error("add category failed", "loan_id", msg.LoanID, "error", err)
		return nil, failure(err, "Failed to add loan category")
	}
	return category, nil
}

func (s *Service) ListCategories(ctx context.Context, loanID string) ([]*Category, error) {
	categories, err := s.store.ListCategories(ctx, strings.TrimSpace(loanID))
	if err != nil {
		s.logger.Error("list categories failed", "loan_id", loanID, "error", err)
		return nil, failure(err, "Internal Server Error")
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return categories, nil
}

func failure(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(TextCodeCatalogFailure).
		WithCode(goerrors.CodeInternal)
}
