package mongodb

import (
	"context"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure CouponUsageRepository implements the interface
var _ repositories.CouponUsageRepository = (*CouponUsageRepository)(nil)

// CouponUsageRepository handles MongoDB operations for redemption records
type CouponUsageRepository struct {
	collection *mongo.Collection
}

// NewCouponUsageRepository creates a new CouponUsageRepository
func NewCouponUsageRepository(db *mongo.Database) *CouponUsageRepository {
	return &CouponUsageRepository{
		collection: db.Collection("coupon_usages"),
	}
}

// Create inserts a new usage record
func (r *CouponUsageRepository) Create(ctx context.Context, usage *models.CouponUsage) error {
	usage.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, usage)
	return err
}

// CountByUserAndCoupon counts how many times one user has redeemed one coupon
func (r *CouponUsageRepository) CountByUserAndCoupon(ctx context.Context, userID string, couponID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "couponId": couponID})
}

// FindByUserID finds all redemptions by one user, newest first
func (r *CouponUsageRepository) FindByUserID(ctx context.Context, userID string) ([]*models.CouponUsage, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// FindByCouponID finds all redemptions of one coupon, newest first
func (r *CouponUsageRepository) FindByCouponID(ctx context.Context, couponID primitive.ObjectID) ([]*models.CouponUsage, error) {
	return r.find(ctx, bson.M{"couponId": couponID})
}

func (r *CouponUsageRepository) find(ctx context.Context, filter bson.M) ([]*models.CouponUsage, error) {
	var usages []*models.CouponUsage
	findOptions := options.Find().SetSort(bson.D{{Key: "usedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &usages); err != nil {
		return nil, err
	}

	if usages == nil {
		usages = []*models.CouponUsage{}
	}
	return usages, nil
}
