package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/model"
)

// newTestDB returns a *DB backed by an in-memory SQLite database.
// Each call gets a fresh database; it disappears when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, u *UserDB, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		Role:         role,
	}
	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	u := newTestDB(t).Users()

	user := &model.User{
		Email:        "staff@clinic.test",
		PasswordHash: "some-opaque-hash",
		Role:         model.RoleNurse,
	}

	if err := u.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmailIsConflict(t *testing.T) {
	u := newTestDB(t).Users()

	createTestUser(t, u, "taken@clinic.test", model.RoleAssistant)

	duplicate := &model.User{
		Email:        "taken@clinic.test",
		PasswordHash: "another-hash",
		Role:         model.RoleDoctor,
	}
	err := u.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have failed for a duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "byid@clinic.test", model.RoleDoctor)

	found, err := u.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Email != "byid@clinic.test" {
		t.Errorf("Email = %q, want %q", found.Email, "byid@clinic.test")
	}
	if found.Role != model.RoleDoctor {
		t.Errorf("Role = %q, want %q", found.Role, model.RoleDoctor)
	}
	if found.PasswordHash != created.PasswordHash {
		t.Error("GetByID() should return the stored password hash for verification")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	u := newTestDB(t).Users()

	_, err := u.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	u := newTestDB(t).Users()
	created := createTestUser(t, u, "byemail@clinic.test", model.RoleAdmin)

	found, err := u.GetByEmail(context.Background(), "byemail@clinic.test")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestUserGetByEmail_CaseSensitive(t *testing.T) {
	u := newTestDB(t).Users()
	createTestUser(t, u, "Case@clinic.test", model.RoleAdmin)

	// Emails are stored and matched case-sensitively.
	_, err := u.GetByEmail(context.Background(), "case@clinic.test")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() with different case: error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	u := newTestDB(t).Users()

	_, err := u.GetByEmail(context.Background(), "nobody@clinic.test")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}
