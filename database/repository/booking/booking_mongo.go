package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"carenest/database"
	transactionRepo "carenest/database/repository/transaction"
	"carenest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl     *mongo.Collection
	lockColl        *mongo.Collection
	userColl        *mongo.Collection
	transactionColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl:     db.Collection("bookings"),
		lockColl:        db.Collection("booking_locks"),
		userColl:        db.Collection("users"),
		transactionColl: db.Collection(transactionRepo.CollectionName),
	}
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, database.Translate(err))
	}
	return &booking, nil
}

// GetByQRToken retrieves the booking currently holding token.
func (repo *MongoBookingRepo) GetByQRToken(ctx context.Context, token string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.bookingColl.FindOne(ctx, bson.M{"completion.qrToken": token}).Decode(&booking); err != nil {
		return nil, fmt.Errorf("error fetching booking by qr token: %w", database.Translate(err))
	}
	return &booking, nil
}

// List returns one page of bookings matching filter, newest first, with the total count.
func (repo *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter, page, limit int) ([]models.Booking, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.ParentID != "" {
		query["parentId"] = filter.ParentID
	}
	if filter.NannyID != "" {
		query["nannyId"] = filter.NannyID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := repo.bookingColl.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := repo.bookingColl.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, total, nil
}

// FindBlocking returns the provider's pending and confirmed bookings on date.
func (repo *MongoBookingRepo) FindBlocking(ctx context.Context, nannyID, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return repo.findBlocking(ctx, nannyID, date)
}

func (repo *MongoBookingRepo) findBlocking(ctx context.Context, nannyID, date string) ([]models.Booking, error) {
	filter := bson.M{
		"nannyId": nannyID,
		"date":    date,
		"status":  bson.M{"$in": models.BlockingStatuses},
	}
	cursor, err := repo.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding blocking bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding blocking bookings: %w", err)
	}
	return bookings, nil
}

// Update replaces the booking document if it is still at b.Version.
func (repo *MongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	next := *b
	next.Version = b.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := repo.bookingColl.ReplaceOne(ctx, bson.M{"id": b.ID, "version": b.Version}, &next)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", b.ID, database.Translate(err))
	}
	if res.MatchedCount == 0 {
		return repo.missOrConflict(ctx, b.ID)
	}
	*b = next
	return nil
}

// missOrConflict explains why a versioned write matched nothing.
func (repo *MongoBookingRepo) missOrConflict(ctx context.Context, id string) error {
	n, err := repo.bookingColl.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error checking booking %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", id, database.ErrNotFound)
	}
	return fmt.Errorf("booking %s: %w", id, database.ErrStateChanged)
}

// ClearExpiredQRTokens unsets QR tokens whose expiry has passed.
func (repo *MongoBookingRepo) ClearExpiredQRTokens(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"completion.qrToken":    bson.M{"$type": "string"},
		"completion.qrExpiresAt": bson.M{"$lt": now},
	}
	update := bson.M{
		"$unset": bson.M{"completion.qrToken": "", "completion.qrExpiresAt": ""},
		"$inc":   bson.M{"version": 1},
		"$set":   bson.M{"updatedAt": now},
	}
	res, err := repo.bookingColl.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("error clearing expired qr tokens: %w", err)
	}
	return res.ModifiedCount, nil
}
