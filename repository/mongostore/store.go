// Package mongostore implements the user and catalog stores on MongoDB
// using mongo-driver v2. Documents are encoded through the bson tags on
// the auth and catalog models.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auth "github.com/goliatone/go-loan-auth"
)

const (
	ColUsers      = "users"
	ColLoans      = "loans"
	ColCategories = "loanCategory"
)

// Store holds the client and database handle shared by the stores.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger auth.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l auth.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Connect dials uri, pings the server and ensures indexes on dbName.
func Connect(ctx context.Context, uri, dbName string, opts ...Option) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		logger: auth.NewSlogLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := s.ensureIndexes(ctx); err != nil {
		s.logger.Error("mongostore: ensure indexes failed", "error", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ensure indexes: %w", err)
	}

	return s, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// Users returns the user store.
func (s *Store) Users() *Users {
	return &Users{col: s.col(ColUsers)}
}

// Catalog returns the loan catalog store.
func (s *Store) Catalog() *Catalog {
	return &Catalog{loans: s.col(ColLoans), categories: s.col(ColCategories)}
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColUsers, bson.D{{Key: "cnic", Value: 1}}, true},
		{ColCategories, bson.D{{Key: "loanId", Value: 1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}

	return nil
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.ErrRecordNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrRecordExists
	}
	return err
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []*T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	return results, cursor.Err()
}
