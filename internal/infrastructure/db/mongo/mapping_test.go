package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/podfetch/authgate/internal/core/domain"
)

func TestIdentityMapping_RoundTrip(t *testing.T) {
	digest := "d1"
	in := &domain.Identity{
		Username:        "alice",
		Role:            domain.RoleUploader,
		PasswordDigest:  &digest,
		ExplicitConsent: true,
		CreatedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	doc := toMongoIdentity(in)
	if doc.Role != "uploader" || doc.CreatedAt != in.CreatedAt.Unix() {
		t.Fatalf("unexpected doc: %+v", doc)
	}

	doc.ID = primitive.NewObjectID()
	out := doc.toDomain()
	if out.ID != doc.ID.Hex() || out.Username != "alice" || out.Role != domain.RoleUploader {
		t.Fatalf("unexpected identity: %+v", out)
	}
	if out.PasswordDigest == nil || *out.PasswordDigest != "d1" || !out.ExplicitConsent {
		t.Fatalf("digest/consent lost: %+v", out)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", out.CreatedAt, in.CreatedAt)
	}
}

func TestUnixToTime_Zero(t *testing.T) {
	if !unixToTime(0).IsZero() {
		t.Fatalf("expected zero time")
	}
}
