package catalog_test

import (
	"context"
	"errors"
	"sync"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/goliatone/go-loan-auth/catalog"
)

type memoryStore struct {
	mu         sync.Mutex
	loans      []*catalog.Loan
	categories []*catalog.Category
	err        error
}

func (m *memoryStore) CreateLoan(_ context.Context, loan *catalog.Loan) (*catalog.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.loans = append(m.loans, loan)
	return loan, nil
}

func (m *memoryStore) GetLoan(_ context.Context, id string) (*catalog.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, loan := range m.loans {
		if loan.ID == id {
			return loan, nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

func (m *memoryStore) ListLoans(context.Context) ([]*catalog.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]*catalog.Loan(nil), m.loans...), nil
}

func (m *memoryStore) CreateCategory(_ context.Context, category *catalog.Category) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.categories = append(m.categories, category)
	return category, nil
}

func (m *memoryStore) ListCategories(_ context.Context, loanID string) ([]*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*catalog.Category{}
	for _, category := range m.categories {
		if loanID != "" && category.LoanID != loanID {
			continue
		}
		for _, loan := range m.loans {
			if loan.ID == category.LoanID {
				joined := *category
				joined.Loan = loan
				out = append(out, &joined)
			}
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store down")
