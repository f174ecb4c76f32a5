package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

const collectionUsers = "users"

// UserDirectory resolves login names against the users collection.
type UserDirectory struct {
	coll *mongo.Collection
}

func NewUserDirectory(db *mongo.Database) *UserDirectory {
	return &UserDirectory{coll: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"password_hash"`
	Role             string             `bson:"role"`
	Permissions      []string           `bson:"permissions"`
	SecurityScore    int                `bson:"security_score"`
	TwoFactorEnabled bool               `bson:"two_factor_enabled"`
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*ports.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := d.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &ports.UserRecord{
		ID:               doc.ID.Hex(),
		Username:         doc.Username,
		Email:            doc.Email,
		PasswordHash:     doc.PasswordHash,
		Role:             doc.Role,
		Permissions:      doc.Permissions,
		SecurityScore:    doc.SecurityScore,
		TwoFactorEnabled: doc.TwoFactorEnabled,
	}, nil
}

// EnsureIndexes creates the unique username index.
func (d *UserDirectory) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
