package mongodb

import (
	"context"
	"errors"

	"github.com/printcraft/loyalty-backend/internal/models"
	"github.com/printcraft/loyalty-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure AdminUserRepository implements the interface
var _ repositories.AdminUserRepository = (*AdminUserRepository)(nil)

// AdminUserRepository handles MongoDB operations for dashboard accounts
type AdminUserRepository struct {
	collection *mongo.Collection
}

// NewAdminUserRepository creates a new AdminUserRepository
func NewAdminUserRepository(db *mongo.Database) *AdminUserRepository {
	return &AdminUserRepository{
		collection: db.Collection("admin_users"),
	}
}

// Create inserts a new admin account
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	user.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

// FindByEmail finds an admin account by email
func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
