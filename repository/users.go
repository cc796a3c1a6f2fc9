package repository

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-loan-auth"
)

// Users is the bun backed auth.UserStore.
type Users struct {
	db bun.IDB
}

var _ auth.UserStore = (*Users)(nil)

// NewUsers returns a user store on db. db may be a transaction.
func NewUsers(db bun.IDB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getBy(ctx, "email", strings.TrimSpace(email))
}

func (r *Users) GetByID(ctx context.Context, id string) (*auth.User, error) {
	return r.getBy(ctx, "id", strings.TrimSpace(id))
}

func (r *Users) getBy(ctx context.Context, column, value string) (*auth.User, error) {
	record := &auth.User{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (r *Users) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	res, err := r.db.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, auth.ErrRecordNotFound
	}
	return user, nil
}

func (r *Users) List(ctx context.Context) ([]*auth.User, error) {
	records := []*auth.User{}
	if err := r.db.NewSelect().Model(&records).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}
