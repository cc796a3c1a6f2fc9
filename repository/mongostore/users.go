package mongostore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auth "github.com/goliatone/go-loan-auth"
)

// Users is the MongoDB backed auth.UserStore.
type Users struct {
	col *mongo.Collection
}

var _ auth.UserStore = (*Users)(nil)

func (u *Users) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	if _, err := u.col.InsertOne(ctx, user); err != nil {
		return nil, wrapError(err)
	}
	return user, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return findOne[auth.User](ctx, u.col, bson.D{{Key: "email", Value: strings.TrimSpace(email)}})
}

func (u *Users) GetByID(ctx context.Context, id string) (*auth.User, error) {
	return findOne[auth.User](ctx, u.col, bson.D{{Key: "_id", Value: strings.TrimSpace(id)}})
}

func (u *Users) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	res, err := u.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: user.ID}}, user)
	if err != nil {
		return nil, wrapError(err)
	}
	if res.MatchedCount == 0 {
		return nil, auth.ErrRecordNotFound
	}
	return user, nil
}

func (u *Users) List(ctx context.Context) ([]*auth.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return findMany[auth.User](ctx, u.col, bson.D{}, opts)
}
