package catalog

import "context"

// Store is the record store for loans and categories.
type Store interface {
	CreateLoan(ctx context.Context, loan *Loan) (*Loan, error)
	GetLoan(ctx context.Context, id string) (*Loan, error)
	ListLoans(ctx context.Context) ([]*Loan, error)
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	// ListCategories joins each category with its loan. An empty loanID
	// lists every category. Categories whose loan is missing are skipped.
	ListCategories(ctx context.Context, loanID string) ([]*Category, error)
}
