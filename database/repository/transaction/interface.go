package transactionRepo

import (
	"context"

	"carenest/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionRepository reads the append-only earnings log. Earnings are
// written by the booking repository inside its completion transaction.
type TransactionRepository interface {
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Transaction, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoTransactionRepo struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepo returns a TransactionRepository backed by MongoDB.
func NewMongoTransactionRepo(db *mongo.Database) TransactionRepository {
	return &mongoTransactionRepo{
		coll: db.Collection(CollectionName),
	}
}

// CollectionName is shared with the booking repository, which writes earnings
// inside its completion transaction.
const CollectionName = "transactions"
