package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/auth"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/service"
)

// PatientHandler manages CRUD operations for patient records and their
// clinical notes. Role enforcement happens in the route middleware
// (auth.RequireRole) — by the time a request reaches these methods it is
// already authenticated and authorized.
type PatientHandler struct {
	patients *service.PatientService
	logger   *slog.Logger
}

// NewPatientHandler creates a PatientHandler.
func NewPatientHandler(patients *service.PatientService, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, logger: logger}
}

// patientRequest is the expected body for creating or updating a patient.
type patientRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	BloodType   string `json:"bloodType,omitempty"`
}

func (req *patientRequest) toModel() *model.Patient {
	return &model.Patient{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		BloodType:   req.BloodType,
	}
}

// noteRequest is the expected body for POST /api/patients/{id}/notes.
type noteRequest struct {
	Content string `json:"content"`
}

// HandleList returns patients with pagination.
//
// HTTP: GET /api/patients?limit=20&offset=0
func (h *PatientHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	// Unparseable values fall through as zero; the service applies defaults.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	patients, err := h.patients.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patients)
}

// HandleGetByID returns a single patient record.
//
// HTTP: GET /api/patients/{id}
func (h *PatientHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patients.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patient)
}

// HandleCreate registers a new patient.
//
// HTTP: POST /api/patients
func (h *PatientHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	patient, err := h.patients.Create(r.Context(), req.toModel())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, patient)
}

// HandleUpdate replaces a patient's fields.
//
// HTTP: PUT /api/patients/{id}
func (h *PatientHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	patient, err := h.patients.Update(r.Context(), r.PathValue("id"), req.toModel())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patient)
}

// HandleDelete removes a patient record.
//
// HTTP: DELETE /api/patients/{id}
func (h *PatientHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.patients.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListNotes returns a patient's clinical notes.
//
// HTTP: GET /api/patients/{id}/notes
func (h *PatientHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.patients.ListNotes(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

// HandleAddNote attaches a clinical note to a patient, authored by the
// current user.
//
// HTTP: POST /api/patients/{id}/notes
func (h *PatientHandler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// RequireRole guards this route, so this is unreachable in
		// practice — but don't write a note with an empty author.
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.patients.AddNote(r.Context(), r.PathValue("id"), user.ID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}
