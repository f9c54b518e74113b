package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakePatientRepo implements both repository.PatientRepository and
// repository.NoteRepository, mirroring the concrete store.
type fakePatientRepo struct {
	patients map[string]*model.Patient
	notes    []model.ClinicalNote
	nextID   int
	// captured List options, for asserting the clamping logic
	lastOpts repository.ListOptions
	// set to a non-nil error to simulate a database failure
	listErr error
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[string]*model.Patient), nextID: 1}
}

func (f *fakePatientRepo) Create(ctx context.Context, patient *model.Patient) error {
	patient.ID = "patient-fake-id-" + string(rune('0'+f.nextID))
	f.nextID++
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()
	copied := *patient
	f.patients[patient.ID] = &copied
	return nil
}

func (f *fakePatientRepo) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperror.NotFound("patient", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakePatientRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Patient, error) {
	f.lastOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Patient{}
	for _, p := range f.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePatientRepo) Update(ctx context.Context, patient *model.Patient) error {
	if _, ok := f.patients[patient.ID]; !ok {
		return apperror.NotFound("patient", patient.ID)
	}
	copied := *patient
	f.patients[patient.ID] = &copied
	return nil
}

func (f *fakePatientRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.patients[id]; !ok {
		return apperror.NotFound("patient", id)
	}
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) CreateNote(ctx context.Context, note *model.ClinicalNote) error {
	note.ID = "note-fake-id-" + string(rune('0'+len(f.notes)+1))
	note.CreatedAt = time.Now()
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakePatientRepo) ListNotesByPatient(ctx context.Context, patientID string) ([]model.ClinicalNote, error) {
	out := []model.ClinicalNote{}
	for _, n := range f.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func newTestPatientService(t *testing.T) (*PatientService, *fakePatientRepo) {
	t.Helper()
	repo := newFakePatientRepo()
	return NewPatientService(repo, repo, discardLogger()), repo
}

func validPatient() *model.Patient {
	return &model.Patient{
		FirstName:   "Amina",
		LastName:    "Rahman",
		DateOfBirth: "1985-03-14",
		Gender:      "female",
		BloodType:   "O+",
	}
}

// =========================================================================
// CREATE AND VALIDATION TESTS
// =========================================================================

func TestPatientCreate(t *testing.T) {
	svc, _ := newTestPatientService(t)

	created, err := svc.Create(context.Background(), validPatient())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("Create() should assign an ID")
	}
}

func TestPatientCreate_TrimsNames(t *testing.T) {
	svc, _ := newTestPatientService(t)

	p := validPatient()
	p.FirstName = "  Amina  "
	p.LastName = "\tRahman "
	created, err := svc.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.FirstName != "Amina" || created.LastName != "Rahman" {
		t.Errorf("names not trimmed: %q %q", created.FirstName, created.LastName)
	}
}

func TestPatientCreate_Validation(t *testing.T) {
	svc, _ := newTestPatientService(t)

	tests := []struct {
		name   string
		mutate func(*model.Patient)
	}{
		{"missing first name", func(p *model.Patient) { p.FirstName = "" }},
		{"missing last name", func(p *model.Patient) { p.LastName = "" }},
		{"first name too long", func(p *model.Patient) { p.FirstName = strings.Repeat("a", MaxNameLength+1) }},
		{"bad date of birth", func(p *model.Patient) { p.DateOfBirth = "14-03-1985" }},
		{"unknown gender", func(p *model.Patient) { p.Gender = "unknown" }},
		{"unknown blood type", func(p *model.Patient) { p.BloodType = "Z+" }},
		{"address too long", func(p *model.Patient) { p.Address = strings.Repeat("x", MaxAddressLength+1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatient()
			tt.mutate(p)
			_, err := svc.Create(context.Background(), p)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestPatientCreate_OptionalFieldsMayBeEmpty(t *testing.T) {
	svc, _ := newTestPatientService(t)

	p := &model.Patient{FirstName: "Only", LastName: "Names"}
	if _, err := svc.Create(context.Background(), p); err != nil {
		t.Errorf("Create() with only names error = %v, want nil", err)
	}
}

// =========================================================================
// READ, UPDATE, DELETE TESTS
// =========================================================================

func TestPatientGetByID(t *testing.T) {
	svc, _ := newTestPatientService(t)
	created, _ := svc.Create(context.Background(), validPatient())

	found, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.FirstName != "Amina" {
		t.Errorf("FirstName = %q, want Amina", found.FirstName)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing patient error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetByID(context.Background(), "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank ID error = %v, want ErrValidation", err)
	}
}

func TestPatientList_ClampsPagination(t *testing.T) {
	svc, repo := newTestPatientService(t)

	tests := []struct {
		name               string
		limit, offset      int
		wantLimit, wantOff int
	}{
		{"defaults applied", 0, 0, DefaultListLimit, 0},
		{"negative values", -5, -10, DefaultListLimit, 0},
		{"over the cap", 10_000, 3, MaxListLimit, 3},
		{"in range untouched", 25, 50, 25, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.List(context.Background(), tt.limit, tt.offset); err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if repo.lastOpts.Limit != tt.wantLimit || repo.lastOpts.Offset != tt.wantOff {
				t.Errorf("store saw limit=%d offset=%d, want %d/%d",
					repo.lastOpts.Limit, repo.lastOpts.Offset, tt.wantLimit, tt.wantOff)
			}
		})
	}
}

func TestPatientUpdate(t *testing.T) {
	svc, _ := newTestPatientService(t)
	created, _ := svc.Create(context.Background(), validPatient())

	changes := validPatient()
	changes.FirstName = "Nusrat"
	changes.Phone = "+880-1700-000000"
	updated, err := svc.Update(context.Background(), created.ID, changes)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("Update() changed the ID: %s → %s", created.ID, updated.ID)
	}
	if updated.FirstName != "Nusrat" || updated.Phone != "+880-1700-000000" {
		t.Errorf("changes not applied: %+v", updated)
	}
}

func TestPatientUpdate_NotFoundAndInvalid(t *testing.T) {
	svc, _ := newTestPatientService(t)
	created, _ := svc.Create(context.Background(), validPatient())

	if _, err := svc.Update(context.Background(), "missing", validPatient()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing patient error = %v, want ErrNotFound", err)
	}

	bad := validPatient()
	bad.Gender = "unknown"
	if _, err := svc.Update(context.Background(), created.ID, bad); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("invalid update error = %v, want ErrValidation", err)
	}
}

func TestPatientDelete(t *testing.T) {
	svc, _ := newTestPatientService(t)
	created, _ := svc.Create(context.Background(), validPatient())

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("repeated Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// CLINICAL NOTE TESTS
// =========================================================================

func TestAddNote(t *testing.T) {
	svc, _ := newTestPatientService(t)
	patient, _ := svc.Create(context.Background(), validPatient())

	note, err := svc.AddNote(context.Background(), patient.ID, "author-1", "  Advised rest and fluids.  ")
	if err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	if note.Content != "Advised rest and fluids." {
		t.Errorf("content not trimmed: %q", note.Content)
	}
	if note.AuthorID != "author-1" {
		t.Errorf("AuthorID = %q, want author-1", note.AuthorID)
	}
}

func TestAddNote_Validation(t *testing.T) {
	svc, _ := newTestPatientService(t)
	patient, _ := svc.Create(context.Background(), validPatient())

	if _, err := svc.AddNote(context.Background(), patient.ID, "a", "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank content error = %v, want ErrValidation", err)
	}
	long := strings.Repeat("x", MaxNoteLength+1)
	if _, err := svc.AddNote(context.Background(), patient.ID, "a", long); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("oversized content error = %v, want ErrValidation", err)
	}
}

func TestAddNote_UnknownPatient(t *testing.T) {
	svc, repo := newTestPatientService(t)

	_, err := svc.AddNote(context.Background(), "missing", "a", "some content")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddNote() error = %v, want ErrNotFound", err)
	}
	if len(repo.notes) != 0 {
		t.Error("no note should be written for an unknown patient")
	}
}

func TestListNotes(t *testing.T) {
	svc, _ := newTestPatientService(t)
	patient, _ := svc.Create(context.Background(), validPatient())
	other, _ := svc.Create(context.Background(), validPatient())

	if _, err := svc.AddNote(context.Background(), patient.ID, "a", "first"); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	if _, err := svc.AddNote(context.Background(), other.ID, "a", "someone else's"); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}

	notes, err := svc.ListNotes(context.Background(), patient.ID)
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("len(notes) = %d, want 1 (scoped to the patient)", len(notes))
	}

	if _, err := svc.ListNotes(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ListNotes() for missing patient error = %v, want ErrNotFound", err)
	}
}
