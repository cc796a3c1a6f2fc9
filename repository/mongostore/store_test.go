package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/goliatone/go-loan-auth/catalog"
	"github.com/goliatone/go-loan-auth/repository/mongostore"
)

func setupStore(t *testing.T) *mongostore.Store {
	t.Helper()

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx := context.Background()
	store, err := mongostore.Connect(ctx, uri, "loan_auth_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Drop(context.Background())
		_ = store.Close()
	})
	return store
}

func TestConnectFailsWhenUniqueIndexCannotBuild(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("loan_auth_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	_, err = db.Collection(mongostore.ColUsers).InsertMany(ctx, []any{
		bson.D{{Key: "_id", Value: "u-1"}, {Key: "email", Value: "ana@x.io"}, {Key: "cnic", Value: "1234512345671"}},
		bson.D{{Key: "_id", Value: "u-2"}, {Key: "email", Value: "ana@x.io"}, {Key: "cnic", Value: "1234512345672"}},
	})
	require.NoError(t, err)

	store, err := mongostore.Connect(ctx, uri, db.Name())
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "ensure indexes")
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	users := setupStore(t).Users()
	now := time.Now().UTC().Truncate(time.Millisecond)

	user := &auth.User{ID: "u-1", Name: "Ana Lee", Email: "ana@x.io", CNIC: "1234512345671", CreatedAt: now, UpdatedAt: now}
	user.EnsureDefaults()
	_, err := users.Create(ctx, user)
	require.NoError(t, err)

	dup := *user
	dup.ID = "u-2"
	_, err = users.Create(ctx, &dup)
	assert.True(t, auth.IsRecordExists(err))

	got, err := users.GetByEmail(ctx, "ana@x.io")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Empty(t, got.PasswordHash)

	got.PasswordHash = "hash"
	got.Status = auth.UserStatusUpdated
	_, err = users.Update(ctx, got)
	require.NoError(t, err)

	again, err := users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", again.PasswordHash)

	_, err = users.GetByID(ctx, "missing")
	assert.True(t, auth.IsRecordNotFound(err))
}

func TestCatalogLookup(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t).Catalog()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := store.CreateLoan(ctx, &catalog.Loan{ID: "l-1", Title: "Wedding", MaxLoan: 500000, LoanPeriod: "3 years", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, &catalog.Category{ID: "c-1", Title: "Valima", LoanID: "l-1", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, &catalog.Category{ID: "c-2", Title: "Orphan", LoanID: "gone", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	categories, err := store.ListCategories(ctx, "")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.NotNil(t, categories[0].Loan)
	assert.Equal(t, "Wedding", categories[0].Loan.Title)

	filtered, err := store.ListCategories(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, filtered)
}
