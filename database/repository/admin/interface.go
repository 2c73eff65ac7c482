package adminRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminRepository stores dashboard accounts.
type AdminRepository interface {
	// GetByEmail returns nil, nil when no admin matches.
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	Count(ctx context.Context) (int64, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID) error
}

type mongoAdminRepo struct {
	coll *mongo.Collection
}

func NewMongoAdminRepo(db *mongo.Database) AdminRepository {
	repo := &mongoAdminRepo{coll: db.Collection("admins")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("adminRepo: failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *mongoAdminRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin indexes: %w", err)
	}
	return nil
}

func (r *mongoAdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var admin models.Admin
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch admin %s: %w", email, err)
	}
	return &admin, nil
}

func (r *mongoAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *mongoAdminRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

func (r *mongoAdminRepo) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLoginAt": time.Now()}}); err != nil {
		return fmt.Errorf("failed to update admin last login: %w", err)
	}
	return nil
}
