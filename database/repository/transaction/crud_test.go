package transactionRepo

import (
	"context"
	"testing"

	"carenest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoTransactionRepo_ListByUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("page with total", func(mt *mtest.T) {
		repo := NewMongoTransactionRepo(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "id", Value: "t-1"},
				{Key: "userId", Value: "nanny-1"},
				{Key: "kind", Value: "earning"},
				{Key: "amount", Value: 120.0},
				{Key: "bookingId", Value: "b-1"},
			}),
		)

		txns, total, err := repo.ListByUser(context.Background(), "nanny-1", 1, 1)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), total)
		require.Len(mt, txns, 1)
		assert.Equal(mt, models.TransactionEarning, txns[0].Kind)
		assert.Equal(mt, 120.0, txns[0].Amount)
	})

	mt.Run("empty log is an empty slice", func(mt *mtest.T) {
		repo := NewMongoTransactionRepo(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 0}}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		txns, total, err := repo.ListByUser(context.Background(), "nanny-2", 1, 20)
		require.NoError(mt, err)
		assert.Zero(mt, total)
		assert.NotNil(mt, txns)
		assert.Empty(mt, txns)
	})
}
