package mongodb

import (
	"context"
	"errors"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure AppliedCouponRepository implements the interface
var _ repositories.AppliedCouponRepository = (*AppliedCouponRepository)(nil)

// AppliedCouponRepository handles MongoDB operations for the per-user
// checkout slot. One document per user, upserted on apply.
type AppliedCouponRepository struct {
	collection *mongo.Collection
}

// NewAppliedCouponRepository creates a new AppliedCouponRepository
func NewAppliedCouponRepository(db *mongo.Database) *AppliedCouponRepository {
	return &AppliedCouponRepository{
		collection: db.Collection("applied_coupons"),
	}
}

// Get returns the slot contents for one user
func (r *AppliedCouponRepository) Get(ctx context.Context, userID string) (*models.AppliedCoupon, error) {
	var applied models.AppliedCoupon
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&applied)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &applied, nil
}

// Set replaces the slot contents, creating the document when absent
func (r *AppliedCouponRepository) Set(ctx context.Context, applied *models.AppliedCoupon) error {
	filter := bson.M{"userId": applied.UserID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, applied, opts)
	return err
}

// Clear empties the slot; deleting a missing document is fine
func (r *AppliedCouponRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
