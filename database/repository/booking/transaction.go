package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carenest/database"
	"carenest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// runInTransaction executes fn inside a session transaction. The driver retries
// fn as a whole on transient transaction errors, so fn must be free of side
// effects outside the session.
func (repo *MongoBookingRepo) runInTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateExclusive inserts b once check accepts the provider's blocking bookings.
// Every create for the same provider and date bumps one lock document first,
// which turns two concurrent creates into a write conflict instead of a double
// booking.
func (repo *MongoBookingRepo) CreateExclusive(ctx context.Context, b *models.Booking, check OverlapCheck) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	txnFn := func(sc mongo.SessionContext) error {
		lockFilter := bson.M{"nannyId": b.NannyID, "date": b.Date}
		lockUpdate := bson.M{
			"$inc": bson.M{"seq": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		}
		if _, err := repo.lockColl.UpdateOne(sc, lockFilter, lockUpdate, options.Update().SetUpsert(true)); err != nil {
			return fmt.Errorf("acquire booking lock failed: %w", err)
		}

		existing, err := repo.findBlocking(sc, b.NannyID, b.Date)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		if _, err := repo.bookingColl.InsertOne(sc, b); err != nil {
			return fmt.Errorf("insert booking failed: %w", database.Translate(err))
		}
		return nil
	}

	if err := repo.runInTransaction(ctx, txnFn); err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

// Complete persists a completed booking, credits the provider and appends the
// earning in one transaction. A version mismatch aborts everything, so a
// booking is credited at most once no matter how many completion attempts race.
func (repo *MongoBookingRepo) Complete(ctx context.Context, b *models.Booking, earning *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	next := *b
	next.Version = b.Version + 1
	next.UpdatedAt = time.Now().UTC()

	txnFn := func(sc mongo.SessionContext) error {
		res, err := repo.bookingColl.ReplaceOne(sc, bson.M{"id": b.ID, "version": b.Version}, &next)
		if err != nil {
			return fmt.Errorf("complete booking failed: %w", database.Translate(err))
		}
		if res.MatchedCount == 0 {
			return database.ErrStateChanged
		}

		credit := bson.M{
			"$inc": bson.M{
				"financials.totalEarnings":      earning.Amount,
				"financials.availableBalance":   earning.Amount,
				"financials.totalJobsCompleted": 1,
			},
			"$set": bson.M{"updatedAt": next.UpdatedAt},
		}
		userRes, err := repo.userColl.UpdateOne(sc, bson.M{"id": earning.UserID}, credit)
		if err != nil {
			return fmt.Errorf("credit provider failed: %w", err)
		}
		if userRes.MatchedCount == 0 {
			return fmt.Errorf("credit provider %s: %w", earning.UserID, database.ErrNotFound)
		}

		if _, err := repo.transactionColl.InsertOne(sc, earning); err != nil {
			return fmt.Errorf("insert earning failed: %w", database.Translate(err))
		}
		return nil
	}

	if err := repo.runInTransaction(ctx, txnFn); err != nil {
		if errors.Is(err, database.ErrStateChanged) {
			return repo.missOrConflict(ctx, b.ID)
		}
		return fmt.Errorf("completion transaction failed: %w", err)
	}
	*b = next
	return nil
}
