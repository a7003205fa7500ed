package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository stores identities with their role names embedded.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Email           string             `bson:"email"`
	NormalizedEmail string             `bson:"normalized_email"`
	PasswordHash    string             `bson:"password_hash"`
	EmailConfirmed  bool               `bson:"email_confirmed"`
	Roles           []string           `bson:"roles"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
	LastSignInAt    *time.Time         `bson:"last_sign_in_at,omitempty"`
}

func (mu *mongoUser) toDomain() *domain.User {
	roles := mu.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.User{
		ID:             mu.ID.Hex(),
		Email:          mu.Email,
		PasswordHash:   mu.PasswordHash,
		EmailConfirmed: mu.EmailConfirmed,
		Roles:          roles,
		CreatedAt:      mu.CreatedAt.UTC(),
		UpdatedAt:      mu.UpdatedAt.UTC(),
		LastSignInAt:   mu.LastSignInAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	doc := mongoUser{
		Email:           user.Email,
		NormalizedEmail: domain.NormalizeEmail(user.Email),
		PasswordHash:    user.PasswordHash,
		EmailConfirmed:  user.EmailConfirmed,
		Roles:           roles,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	err := r.coll.FindOne(ctx, bson.M{"normalized_email": domain.NormalizeEmail(email)}).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) RolesFor(ctx context.Context, userID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	opts := options.FindOne().SetProjection(bson.M{"roles": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find roles: %w", err)
	}
	if mu.Roles == nil {
		return []string{}, nil
	}
	return mu.Roles, nil
}

// AddToRole is idempotent: adding a role the user already holds is a no-op.
func (r *UserRepository) AddToRole(ctx context.Context, userID, role string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) RecordSignIn(ctx context.Context, userID string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"last_sign_in_at": at}})
	if err != nil {
		return fmt.Errorf("record sign-in: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique lookup index on the normalized email.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_normalized_email"),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
