package model

import "time"

// Patient represents one patient record in the clinic.
//
// DateOfBirth is stored as a plain "YYYY-MM-DD" string rather than time.Time:
// a birth date has no time zone or clock component, and storing it as a date
// string avoids the midnight-shift bugs that come from round-tripping a
// date through time.Time in different locations.
type Patient struct {
	ID          string    `json:"id"          db:"id"`
	FirstName   string    `json:"firstName"   db:"first_name"`
	LastName    string    `json:"lastName"    db:"last_name"`
	DateOfBirth string    `json:"dateOfBirth" db:"date_of_birth"` // YYYY-MM-DD
	Gender      string    `json:"gender"      db:"gender"`        // male | female | other
	Phone       string    `json:"phone"       db:"phone"`
	Email       string    `json:"email"       db:"email"`
	Address     string    `json:"address"     db:"address"`
	BloodType   string    `json:"bloodType"   db:"blood_type"` // e.g. "A+", may be empty if unknown
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// ClinicalNote is a dated clinical observation attached to a patient record.
// AuthorID references the staff user who wrote it.
type ClinicalNote struct {
	ID        string    `json:"id"        db:"id"`
	PatientID string    `json:"patientId" db:"patient_id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Stats is the aggregate view served by GET /api/stats.
type Stats struct {
	TotalPatients       int            `json:"totalPatients"`
	TotalNotes          int            `json:"totalNotes"`
	PatientsByGender    map[string]int `json:"patientsByGender"`
	PatientsByBloodType map[string]int `json:"patientsByBloodType"`
	NotesLastWeek       int            `json:"notesLastWeek"`
}
