package userRepo

import (
	"context"
	"fmt"
	"time"

	"carenest/database"
	"carenest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository on db.
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{coll: db.Collection("users")}
}

// newContext derives a context bounded by timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, database.Translate(err)
	}
	return &user, nil
}

// GetByID retrieves a user by its unique ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return user, nil
}

// GetByPhone retrieves a user by phone number.
func (r *MongoUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"phone": phone})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with phone %s: %w", phone, err)
	}
	return user, nil
}

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", database.Translate(err))
	}
	return nil
}

// UpdateProfile applies the non-nil fields of req and returns the updated user.
func (r *MongoUserRepo) UpdateProfile(ctx context.Context, id string, req models.UserUpdateRequest) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Provider != nil {
		set["provider"] = req.Provider
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user with id %s: %w", id, database.Translate(err))
	}
	return &user, nil
}

// UpdateFCMToken stores the device push token of a user.
func (r *MongoUserRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"fcmToken": token, "updatedAt": time.Now().UTC()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update fcm token for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}
