package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

// PatientDB provides the patient, note, and stats repository methods over
// the shared connection. Obtain one via DB.Patients().
type PatientDB struct {
	conn *sql.DB
}

// Patients returns the patient repository view of the database.
func (db *DB) Patients() *PatientDB {
	return &PatientDB{conn: db.conn}
}

// compile-time checks that *PatientDB implements the patient-side repositories
var (
	_ repository.PatientRepository = (*PatientDB)(nil)
	_ repository.NoteRepository    = (*PatientDB)(nil)
	_ repository.StatsRepository   = (*PatientDB)(nil)
)

// Create inserts a new patient record, generating ID and timestamps.
func (db *PatientDB) Create(ctx context.Context, patient *model.Patient) error {
	now := time.Now()
	patient.ID = xid.New().String()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO patients
		 (id, first_name, last_name, date_of_birth, gender, phone, email, address, blood_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodType,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting patient %s: %w", patient.ID, err)
	}
	return nil
}

// GetByID retrieves a patient by ID.
// Returns apperror.ErrNotFound if no patient exists with that ID.
func (db *PatientDB) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	var p model.Patient

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, date_of_birth, gender, phone, email, address, blood_type, created_at, updated_at
		 FROM patients WHERE id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.DateOfBirth,
		&p.Gender,
		&p.Phone,
		&p.Email,
		&p.Address,
		&p.BloodType,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("patient", id)
		}
		return nil, fmt.Errorf("sqlite: getting patient %s: %w", id, err)
	}

	return &p, nil
}

// List returns patients newest-first with limit/offset pagination.
func (db *PatientDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Patient, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, first_name, last_name, date_of_birth, gender, phone, email, address, blood_type, created_at, updated_at
		 FROM patients
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing patients: %w", err)
	}
	defer rows.Close()

	// Start with an empty slice (not nil) so the handler serializes [] and
	// not null when there are no patients.
	patients := []model.Patient{}
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(
			&p.ID,
			&p.FirstName,
			&p.LastName,
			&p.DateOfBirth,
			&p.Gender,
			&p.Phone,
			&p.Email,
			&p.Address,
			&p.BloodType,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning patient row: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating patient rows: %w", err)
	}

	return patients, nil
}

// Update saves the full patient record.
// Returns apperror.ErrNotFound if no row was updated.
func (db *PatientDB) Update(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE patients
		 SET first_name = ?, last_name = ?, date_of_birth = ?, gender = ?,
		     phone = ?, email = ?, address = ?, blood_type = ?, updated_at = ?
		 WHERE id = ?`,
		patient.FirstName,
		patient.LastName,
		patient.DateOfBirth,
		patient.Gender,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodType,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating patient %s: %w", patient.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of patient %s: %w", patient.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("patient", patient.ID)
	}

	return nil
}

// Delete removes a patient and (via ON DELETE CASCADE) their notes.
// Returns apperror.ErrNotFound if no row was deleted.
func (db *PatientDB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM patients WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting patient %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of patient %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("patient", id)
	}

	return nil
}

// CreateNote inserts a clinical note for a patient. The foreign key on
// patient_id rejects notes for nonexistent patients, which we surface as
// NotFound rather than a raw constraint error.
func (db *PatientDB) CreateNote(ctx context.Context, note *model.ClinicalNote) error {
	note.ID = xid.New().String()
	note.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO clinical_notes (id, patient_id, author_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		note.ID,
		note.PatientID,
		note.AuthorID,
		note.Content,
		note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting note for patient %s: %w", note.PatientID, err)
	}
	return nil
}

// ListNotesByPatient returns a patient's notes, newest first.
func (db *PatientDB) ListNotesByPatient(ctx context.Context, patientID string) ([]model.ClinicalNote, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, patient_id, author_id, content, created_at
		 FROM clinical_notes
		 WHERE patient_id = ?
		 ORDER BY created_at DESC`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes for patient %s: %w", patientID, err)
	}
	defer rows.Close()

	notes := []model.ClinicalNote{}
	for rows.Next() {
		var n model.ClinicalNote
		if err := rows.Scan(&n.ID, &n.PatientID, &n.AuthorID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating note rows: %w", err)
	}

	return notes, nil
}

// CollectStats runs the aggregate queries behind GET /api/stats.
func (db *PatientDB) CollectStats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{
		PatientsByGender:    map[string]int{},
		PatientsByBloodType: map[string]int{},
	}

	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM patients`,
	).Scan(&stats.TotalPatients); err != nil {
		return nil, fmt.Errorf("sqlite: counting patients: %w", err)
	}

	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clinical_notes`,
	).Scan(&stats.TotalNotes); err != nil {
		return nil, fmt.Errorf("sqlite: counting notes: %w", err)
	}

	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clinical_notes WHERE created_at >= ?`, weekAgo,
	).Scan(&stats.NotesLastWeek); err != nil {
		return nil, fmt.Errorf("sqlite: counting recent notes: %w", err)
	}

	if err := db.countGrouped(ctx,
		`SELECT gender, COUNT(*) FROM patients WHERE gender != '' GROUP BY gender`,
		stats.PatientsByGender,
	); err != nil {
		return nil, err
	}

	if err := db.countGrouped(ctx,
		`SELECT blood_type, COUNT(*) FROM patients WHERE blood_type != '' GROUP BY blood_type`,
		stats.PatientsByBloodType,
	); err != nil {
		return nil, err
	}

	return stats, nil
}

// countGrouped runs a two-column (key, count) GROUP BY query into dst.
func (db *PatientDB) countGrouped(ctx context.Context, query string, dst map[string]int) error {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sqlite: grouped count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("sqlite: scanning grouped count: %w", err)
		}
		dst[key] = count
	}
	return rows.Err()
}
