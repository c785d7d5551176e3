package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the booking indexes. The QR token index only covers
// documents that currently hold a token.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bookingRef", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "nannyId", Value: 1}, {Key: "date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "parentId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "completion.qrToken", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"completion.qrToken": bson.M{"$type": "string"}}),
		},
	}

	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}

	lockIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "nannyId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.lockColl.Indexes().CreateOne(ctx, lockIndex); err != nil {
		return fmt.Errorf("failed to create booking lock index: %w", err)
	}
	return nil
}
