package catalog

import (
	"time"

	"github.com/uptrace/bun"
)

// Loan is a loan product offered by the catalog.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:loan" bson:"-" json:"-"`
	ID            string    `bun:"id,pk" bson:"_id" json:"_id"`
	Title         string    `bun:"title,notnull" bson:"title" json:"title"`
	Description   string    `bun:"description" bson:"description,omitempty" json:"description,omitempty"`
	MaxLoan       float64   `bun:"max_loan" bson:"maxLoan" json:"maxLoan"`
	LoanPeriod    string    `bun:"loan_period" bson:"loanPeriod" json:"loanPeriod"`
	CreatedAt     time.Time `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// Category groups loans, e.g. wedding or business loans.
type Category struct {
	bun.BaseModel `bun:"table:loan_categories,alias:cat" bson:"-" json:"-"`
	ID            string    `bun:"id,pk" bson:"_id" json:"_id"`
	Title         string    `bun:"title,notnull" bson:"title" json:"title"`
	LoanID        string    `bun:"loan_id,notnull" bson:"loanId" json:"loanId"`
	Loan          *Loan     `bun:"rel:belongs-to,join:loan_id=id" bson:"loanDetails,omitempty" json:"loanDetails,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}
