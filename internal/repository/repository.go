// Package repository defines the storage interfaces the rest of the
// application programs against. The concrete SQLite implementation lives in
// the sqlite subpackage; services and the auth layer only ever see these
// interfaces, which keeps them swappable and trivially fakeable in tests.
package repository

import (
	"context"
	"time"

	"github.com/tahmid-dev/clinic-records/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository persists sessions keyed by their opaque token.
//
// GetByToken returns (nil, nil) when no session has that token: absence is a
// normal outcome on the request hot path, not an error.
//
// Delete is idempotent: deleting an absent token is not an error. The
// expiry-extension write (UpdateExpiry) is a plain single-row UPDATE — two
// concurrent extensions for the same token converge to the same value, so no
// transaction is needed.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	UpdateExpiry(ctx context.Context, token string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// PatientRepository persists patient records.
type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	GetByID(ctx context.Context, id string) (*model.Patient, error)
	List(ctx context.Context, opts ListOptions) ([]model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id string) error
}

// NoteRepository persists clinical notes attached to patients.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.ClinicalNote) error
	ListNotesByPatient(ctx context.Context, patientID string) ([]model.ClinicalNote, error)
}

// StatsRepository serves the aggregate queries behind GET /api/stats.
type StatsRepository interface {
	CollectStats(ctx context.Context) (*model.Stats, error)
}
