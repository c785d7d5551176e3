package transactionRepo

import (
	"context"
	"fmt"
	"time"

	"carenest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListByUser returns one page of a user's transactions, newest first, with the total count.
func (r *mongoTransactionRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Transaction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	txns := []models.Transaction{}
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txns, total, nil
}
