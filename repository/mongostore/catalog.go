package mongostore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/goliatone/go-loan-auth/catalog"
)

// Catalog is the MongoDB backed catalog.Store.
type Catalog struct {
	loans      *mongo.Collection
	categories *mongo.Collection
}

var _ catalog.Store = (*Catalog)(nil)

func (c *Catalog) CreateLoan(ctx context.Context, loan *catalog.Loan) (*catalog.Loan, error) {
	if _, err := c.loans.InsertOne(ctx, loan); err != nil {
		return nil, wrapError(err)
	}
	return loan, nil
}

func (c *Catalog) GetLoan(ctx context.Context, id string) (*catalog.Loan, error) {
	return findOne[catalog.Loan](ctx, c.loans, bson.D{{Key: "_id", Value: strings.TrimSpace(id)}})
}

func (c *Catalog) ListLoans(ctx context.Context) ([]*catalog.Loan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return findMany[catalog.Loan](ctx, c.loans, bson.D{}, opts)
}

func (c *Catalog) CreateCategory(ctx context.Context, category *catalog.Category) (*catalog.Category, error) {
	doc := *category
	doc.Loan = nil
	if _, err := c.categories.InsertOne(ctx, &doc); err != nil {
		return nil, wrapError(err)
	}
	return category, nil
}

// ListCategories joins loanDetails with $lookup. $unwind drops categories
// whose loan no longer exists.
func (c *Catalog) ListCategories(ctx context.Context, loanID string) ([]*catalog.Category, error) {
	pipeline := mongo.Pipeline{}
	if loanID = strings.TrimSpace(loanID); loanID != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "loanId", Value: loanID}}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColLoans},
			{Key: "localField", Value: "loanId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "loanDetails"},
		}}},
		bson.D{{Key: "$unwind", Value: "$loanDetails"}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
	)

	cursor, err := c.categories.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	categories := []*catalog.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
