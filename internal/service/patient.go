package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

// Validation constants.
const (
	MaxNameLength    = 100
	MaxContactLength = 200
	MaxAddressLength = 500
	MaxNoteLength    = 10000
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// validGenders and validBloodTypes are the accepted values for the two
// enumerated patient fields. Empty means "not recorded" and is always valid.
var (
	validGenders = map[string]bool{
		"male": true, "female": true, "other": true,
	}
	validBloodTypes = map[string]bool{
		"A+": true, "A-": true, "B+": true, "B-": true,
		"AB+": true, "AB-": true, "O+": true, "O-": true,
	}
)

// PatientService handles business logic for patient records and their
// clinical notes.
type PatientService struct {
	patients repository.PatientRepository
	notes    repository.NoteRepository
	logger   *slog.Logger
}

// NewPatientService creates a PatientService.
func NewPatientService(
	patients repository.PatientRepository,
	notes repository.NoteRepository,
	logger *slog.Logger,
) *PatientService {
	return &PatientService{
		patients: patients,
		notes:    notes,
		logger:   logger,
	}
}

// validatePatient enforces the field rules shared by Create and Update.
func validatePatient(p *model.Patient) error {
	if p.FirstName == "" {
		return apperror.ValidationFailed("firstName", "first name is required")
	}
	if len(p.FirstName) > MaxNameLength {
		return apperror.ValidationFailed("firstName",
			fmt.Sprintf("first name must be %d characters or less", MaxNameLength))
	}
	if p.LastName == "" {
		return apperror.ValidationFailed("lastName", "last name is required")
	}
	if len(p.LastName) > MaxNameLength {
		return apperror.ValidationFailed("lastName",
			fmt.Sprintf("last name must be %d characters or less", MaxNameLength))
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			return apperror.ValidationFailed("dateOfBirth", "date of birth must be YYYY-MM-DD")
		}
	}
	if p.Gender != "" && !validGenders[p.Gender] {
		return apperror.ValidationFailed("gender", "gender must be male, female, or other")
	}
	if p.BloodType != "" && !validBloodTypes[p.BloodType] {
		return apperror.ValidationFailed("bloodType", fmt.Sprintf("unknown blood type %q", p.BloodType))
	}
	if len(p.Phone) > MaxContactLength {
		return apperror.ValidationFailed("phone",
			fmt.Sprintf("phone must be %d characters or less", MaxContactLength))
	}
	if len(p.Email) > MaxContactLength {
		return apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", MaxContactLength))
	}
	if len(p.Address) > MaxAddressLength {
		return apperror.ValidationFailed("address",
			fmt.Sprintf("address must be %d characters or less", MaxAddressLength))
	}
	return nil
}

// Create validates and saves a new patient record.
func (s *PatientService) Create(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	patient.FirstName = strings.TrimSpace(patient.FirstName)
	patient.LastName = strings.TrimSpace(patient.LastName)

	if err := validatePatient(patient); err != nil {
		return nil, err
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		s.logger.Error("failed to create patient", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.logger.Info("patient created", slog.String("id", patient.ID))
	return patient, nil
}

// GetByID retrieves a patient record.
// Returns apperror.ErrNotFound if the patient doesn't exist.
func (s *PatientService) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "patient ID is required")
	}
	return s.patients.GetByID(ctx, id)
}

// List retrieves patients with pagination. The limit is clamped to a sane
// range so callers can't request the whole table in one page.
func (s *PatientService) List(ctx context.Context, limit, offset int) ([]model.Patient, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	patients, err := s.patients.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list patients", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	return patients, nil
}

// Update replaces an existing patient's fields.
//
// Fetch-then-update: confirm the record exists, apply the changes to the
// fetched copy, save. The caller gets the full updated record back.
func (s *PatientService) Update(ctx context.Context, id string, updated *model.Patient) (*model.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "patient ID is required")
	}

	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient.FirstName = strings.TrimSpace(updated.FirstName)
	patient.LastName = strings.TrimSpace(updated.LastName)
	patient.DateOfBirth = updated.DateOfBirth
	patient.Gender = updated.Gender
	patient.Phone = updated.Phone
	patient.Email = updated.Email
	patient.Address = updated.Address
	patient.BloodType = updated.BloodType

	if err := validatePatient(patient); err != nil {
		return nil, err
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		s.logger.Error("failed to update patient",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating patient: %w", err)
	}

	s.logger.Info("patient updated", slog.String("id", patient.ID))
	return patient, nil
}

// Delete removes a patient record and, through the schema's cascade, the
// patient's clinical notes.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "patient ID is required")
	}

	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("patient deleted", slog.String("id", id))
	return nil
}

// AddNote attaches a clinical note to a patient, authored by the current
// user. The patient must exist.
func (s *PatientService) AddNote(ctx context.Context, patientID, authorID, content string) (*model.ClinicalNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "note content is required")
	}
	if len(content) > MaxNoteLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("note content must be %d characters or less", MaxNoteLength))
	}

	// Confirm the patient exists first so the caller gets a clean 404
	// instead of a foreign key violation.
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	note := &model.ClinicalNote{
		PatientID: patientID,
		AuthorID:  authorID,
		Content:   content,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			slog.String("patientID", patientID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note added",
		slog.String("id", note.ID),
		slog.String("patientID", patientID),
	)
	return note, nil
}

// ListNotes returns a patient's clinical notes, newest first.
// The patient must exist.
func (s *PatientService) ListNotes(ctx context.Context, patientID string) ([]model.ClinicalNote, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	notes, err := s.notes.ListNotesByPatient(ctx, patientID)
	if err != nil {
		s.logger.Error("failed to list notes",
			slog.String("patientID", patientID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	return notes, nil
}
