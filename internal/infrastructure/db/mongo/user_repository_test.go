package mongo

import (
	"testing"
	"time"

	"github.com/kisaanconnect/marketplace/internal/core/domain"
)

func TestToDomainUser(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	u := toDomainUser(mongoUser{
		ID:           9,
		Username:     "ravi",
		PasswordHash: "hash",
		Role:         "farmer",
		Name:         "Ravi",
		CreatedAt:    created.Unix(),
	})

	if u.ID != 9 || u.Username != "ravi" || u.Role != domain.RoleFarmer || u.Name != "Ravi" {
		t.Fatalf("unexpected user %+v", u)
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("created_at: got %v want %v", u.CreatedAt, created)
	}
	if !u.UpdatedAt.IsZero() {
		t.Fatalf("missing timestamp must map to zero time, got %v", u.UpdatedAt)
	}
}
