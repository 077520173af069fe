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

// Compile-time check to ensure LoyaltyAccountRepository implements the interface
var _ repositories.LoyaltyAccountRepository = (*LoyaltyAccountRepository)(nil)

// LoyaltyAccountRepository handles MongoDB operations for LoyaltyAccount
type LoyaltyAccountRepository struct {
	collection *mongo.Collection
}

// NewLoyaltyAccountRepository creates a new LoyaltyAccountRepository
func NewLoyaltyAccountRepository(db *mongo.Database) *LoyaltyAccountRepository {
	return &LoyaltyAccountRepository{
		collection: db.Collection("loyalty_accounts"),
	}
}

// FindByUserID loads the whole aggregate for one user
func (r *LoyaltyAccountRepository) FindByUserID(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Save upserts the whole aggregate in one write, so the balance, ledger and
// unlock set can never be persisted out of step with each other.
func (r *LoyaltyAccountRepository) Save(ctx context.Context, account *models.LoyaltyAccount) error {
	filter := bson.M{"userId": account.UserID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, account, opts)
	return err
}
