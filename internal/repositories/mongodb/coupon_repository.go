package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure CouponRepository implements the interface
var _ repositories.CouponRepository = (*CouponRepository)(nil)

// CouponRepository handles MongoDB operations for the coupon catalog
type CouponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository creates a new CouponRepository
func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{
		collection: db.Collection("coupons"),
	}
}

// Create inserts a new coupon with a normalized code
func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	coupon.ID = primitive.NewObjectID()
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	_, err := r.collection.InsertOne(ctx, coupon)
	return err
}

// CreateMany inserts a batch of coupons, used for catalog seeding
func (r *CouponRepository) CreateMany(ctx context.Context, coupons []*models.Coupon) error {
	docs := make([]interface{}, 0, len(coupons))
	for _, c := range coupons {
		c.ID = primitive.NewObjectID()
		c.Code = models.NormalizeCouponCode(c.Code)
		docs = append(docs, c)
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// Update replaces a coupon document by ID
func (r *CouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = models.NormalizeCouponCode(coupon.Code)
	coupon.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": coupon.ID}, coupon)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindByID finds a coupon by its ID
func (r *CouponRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// FindActiveByCode finds an active coupon by its normalized code
func (r *CouponRepository) FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	filter := bson.M{"code": models.NormalizeCouponCode(code), "isActive": true}
	err := r.collection.FindOne(ctx, filter).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// FindActive returns all active coupons, newest first
func (r *CouponRepository) FindActive(ctx context.Context) ([]*models.Coupon, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

// FindAll returns the full catalog, newest first
func (r *CouponRepository) FindAll(ctx context.Context) ([]*models.Coupon, error) {
	return r.find(ctx, bson.M{})
}

func (r *CouponRepository) find(ctx context.Context, filter bson.M) ([]*models.Coupon, error) {
	var coupons []*models.Coupon
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}

	if coupons == nil {
		coupons = []*models.Coupon{}
	}
	return coupons, nil
}

// Count returns the catalog size
func (r *CouponRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// IncrementUsage bumps usageCount with the limit check inside the filter, so
// the cap holds even when two checkouts register the same coupon at once.
func (r *CouponRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"usageLimit": bson.M{"$exists": false}},
			bson.M{"usageLimit": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usageCount", "$usageLimit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usageCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
