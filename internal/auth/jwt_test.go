package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/packzen/internal/model"
)

var testUser = &model.User{ID: "user-abc", Username: "admin", Role: model.RoleAdmin}

func TestIssueAndValidate(t *testing.T) {
	iss := NewIssuer("test-secret-key", time.Hour)

	token, issued, err := iss.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := uuid.Parse(issued.ID); err != nil {
		t.Errorf("expected uuid JTI, got %q", issued.ID)
	}

	claims, err := iss.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user-abc" {
		t.Errorf("expected user_id 'user-abc', got %q", claims.UserID)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.ID != issued.ID {
		t.Errorf("expected JTI %q, got %q", issued.ID, claims.ID)
	}
}

func TestUniqueJTI(t *testing.T) {
	iss := NewIssuer("s", time.Hour)
	_, a, _ := iss.Issue(testUser)
	_, b, _ := iss.Issue(testUser)
	if a.ID == b.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, _, _ := NewIssuer("secret1", time.Hour).Issue(testUser)

	if _, err := NewIssuer("secret2", time.Hour).Validate(token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateInvalid(t *testing.T) {
	if _, err := NewIssuer("secret", time.Hour).Validate("not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestExpiredToken(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	start := time.Now()
	iss.now = func() time.Time { return start }

	token, _, _ := iss.Issue(testUser)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, err := iss.Validate(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestDefaultTTL(t *testing.T) {
	iss := NewIssuer("secret", 0)
	_, claims, _ := iss.Issue(testUser)

	diff := time.Until(claims.ExpiresAt.Time) - DefaultTTL
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
