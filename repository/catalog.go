package repository

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-loan-auth/catalog"
)

// Catalog is the bun backed catalog.Store.
type Catalog struct {
	db bun.IDB
}

var _ catalog.Store = (*Catalog)(nil)

// NewCatalog returns a loan catalog store on db.
func NewCatalog(db bun.IDB) *Catalog {
	return &Catalog{db: db}
}

func (r *Catalog) CreateLoan(ctx context.Context, loan *catalog.Loan) (*catalog.Loan, error) {
	if _, err := r.db.NewInsert().Model(loan).Exec(ctx); err != nil {
		return nil, mapError(err)
	}
	return loan, nil
}

func (r *Catalog) GetLoan(ctx context.Context, id string) (*catalog.Loan, error) {
	loan := &catalog.Loan{}
	err := r.db.NewSelect().
		Model(loan).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return loan, nil
}

func (r *Catalog) ListLoans(ctx context.Context) ([]*catalog.Loan, error) {
	loans := []*catalog.Loan{}
	if err := r.db.NewSelect().Model(&loans).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, mapError(err)
	}
	return loans, nil
}

func (r *Catalog) CreateCategory(ctx context.Context, category *catalog.Category) (*catalog.Category, error) {
	if _, err := r.db.NewInsert().Model(category).Exec(ctx); err != nil {
		return nil, mapError(err)
	}
	return category, nil
}

func (r *Catalog) ListCategories(ctx context.Context, loanID string) ([]*catalog.Category, error) {
	categories := []*catalog.Category{}
	q := r.db.NewSelect().
		Model(&categories).
		Relation("Loan").
		OrderExpr("cat.created_at ASC")
	if loanID = strings.TrimSpace(loanID); loanID != "" {
		q = q.Where("cat.loan_id = ?", loanID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, mapError(err)
	}

	out := categories[:0]
	for _, category := range categories {
		if category.Loan == nil || category.Loan.ID == "" {
			continue
		}
		out = append(out, category)
	}
	return out, nil
}
