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

	"github.com/podfetch/authgate/internal/core/domain"
)

const identityCollection = "users"

// IdentityRepository implements ports.IdentityRepository using MongoDB.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Username        string             `bson:"username"`
	Role            string             `bson:"role"`
	Password        *string            `bson:"password,omitempty"`
	ExplicitConsent bool               `bson:"explicit_consent"`
	CreatedAt       int64              `bson:"created_at"`
}

func toMongoIdentity(i *domain.Identity) mongoIdentity {
	return mongoIdentity{
		Username:        i.Username,
		Role:            i.Role.String(),
		Password:        i.PasswordDigest,
		ExplicitConsent: i.ExplicitConsent,
		CreatedAt:       i.CreatedAt.Unix(),
	}
}

func (m mongoIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:              m.ID.Hex(),
		Username:        m.Username,
		Role:            domain.Role(m.Role),
		PasswordDigest:  m.Password,
		ExplicitConsent: m.ExplicitConsent,
		CreatedAt:       unixToTime(m.CreatedAt),
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoIdentity(identity))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrIdentityExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	created := *identity
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&mi); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

// Update replaces role, digest and consent of the identity with the same
// username.
func (r *IdentityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"role":             identity.Role.String(),
		"explicit_consent": identity.ExplicitConsent,
	}
	update := bson.M{"$set": set}
	if identity.PasswordDigest != nil {
		set["password"] = *identity.PasswordDigest
	} else {
		update["$unset"] = bson.M{"password": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"username": identity.Username}, update)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) UpdateRole(ctx context.Context, username string, role domain.Role) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mi mongoIdentity
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"role": role.String()}},
		opts,
	).Decode(&mi)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("update identity role: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *IdentityRepository) DeleteByUsername(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *IdentityRepository) List(ctx context.Context) ([]*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoIdentity
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	out := make([]*domain.Identity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// EnsureIndexes creates the unique username index.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
