package bookingRepo

import (
	"context"
	"testing"

	"carenest/database"
	"carenest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func bookingDoc(id string, status models.BookingStatus, version int) bson.D {
	return bson.D{
		{Key: "id", Value: id},
		{Key: "bookingRef", Value: "BK0000000001"},
		{Key: "parentId", Value: "parent-1"},
		{Key: "nannyId", Value: "nanny-1"},
		{Key: "date", Value: "2026-10-20"},
		{Key: "startTime", Value: "09:00"},
		{Key: "endTime", Value: "17:00"},
		{Key: "totalAmount", Value: 120.0},
		{Key: "status", Value: string(status)},
		{Key: "version", Value: version},
	}
}

func TestMongoBookingRepo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bookingDoc("b-1", models.StatusConfirmed, 3)))

		b, err := repo.GetByID(context.Background(), "b-1")
		require.NoError(mt, err)
		assert.Equal(mt, "b-1", b.ID)
		assert.Equal(mt, models.StatusConfirmed, b.Status)
		assert.Equal(mt, 3, b.Version)
		assert.Equal(mt, 120.0, b.TotalAmount)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, database.ErrNotFound)
	})
}

func TestMongoBookingRepo_UpdateVersionGuard(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("applies and bumps version", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		b := &models.Booking{ID: "b-1", Status: models.StatusConfirmed, Version: 2}
		require.NoError(mt, repo.Update(context.Background(), b))
		assert.Equal(mt, 3, b.Version)
		assert.False(mt, b.UpdatedAt.IsZero())
	})

	mt.Run("stale version is a conflict", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		b := &models.Booking{ID: "b-1", Status: models.StatusConfirmed, Version: 2}
		err := repo.Update(context.Background(), b)
		assert.ErrorIs(mt, err, database.ErrStateChanged)
		assert.Equal(mt, 2, b.Version)
	})

	mt.Run("missing booking is not found", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := repo.Update(context.Background(), &models.Booking{ID: "gone"})
		assert.ErrorIs(mt, err, database.ErrNotFound)
	})
}

func TestMongoBookingRepo_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns page and total", func(mt *mtest.T) {
		repo := NewMongoBookingRepo(mt.DB)
		ns := mt.DB.Name() + ".bookings"
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 12}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bookingDoc("b-1", models.StatusPending, 0),
				bookingDoc("b-2", models.StatusPending, 0),
			),
		)

		bookings, total, err := repo.List(context.Background(), models.BookingFilter{ParentID: "parent-1", Status: models.StatusPending}, 2, 2)
		require.NoError(mt, err)
		assert.Equal(mt, int64(12), total)
		require.Len(mt, bookings, 2)
		assert.Equal(mt, "b-2", bookings[1].ID)
	})
}
