package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sleepypillowz/thesis/internal/models"
	"github.com/sleepypillowz/thesis/internal/snapshot"
	"github.com/sleepypillowz/thesis/internal/store"

	"github.com/google/uuid"
)

// Notifier is told which date changed after a mutation commits; the
// broadcast side rebuilds and pushes the snapshot from there.
type Notifier interface {
	Trigger(queueDate string)
}

type Handler struct {
	store    store.QueueStore
	builder  *snapshot.Builder
	notifier Notifier
	now      func() time.Time
}

func NewHandler(queueStore store.QueueStore, builder *snapshot.Builder, notifier Notifier) *Handler {
	return &Handler{
		store:    queueStore,
		builder:  builder,
		notifier: notifier,
		now:      time.Now,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/queue/walk-ins", h.handleWalkIn)
	mux.HandleFunc("/api/queue/appointments/checkin", h.handleAppointmentCheckin)
	mux.HandleFunc("/api/queue/snapshot", h.handleSnapshot)
	mux.HandleFunc("/api/queue/entries/", h.handleEntries)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type walkInRequest struct {
	PatientID     string `json:"patient_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PhoneNumber   string `json:"phone_number"`
	DateOfBirth   string `json:"date_of_birth"`
	PriorityLevel string `json:"priority_level"`
	Complaint     string `json:"complaint"`
	QueueDate     string `json:"queue_date"`
}

func (h *Handler) handleWalkIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req walkInRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.PatientID = strings.TrimSpace(req.PatientID)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.DateOfBirth = strings.TrimSpace(req.DateOfBirth)
	req.PriorityLevel = strings.TrimSpace(req.PriorityLevel)
	req.QueueDate = strings.TrimSpace(req.QueueDate)

	if req.PatientID != "" && !isValidUUID(req.PatientID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id must be a UUID")
		return
	}
	if req.PatientID == "" && (req.FirstName == "" || req.LastName == "") {
		writeError(w, http.StatusBadRequest, "invalid_request", "first_name and last_name are required for unregistered patients")
		return
	}
	if req.PriorityLevel != "" && !models.IsValidPriority(req.PriorityLevel) {
		writeError(w, http.StatusBadRequest, "invalid_request", "priority_level must be Regular or Priority")
		return
	}
	if req.PhoneNumber != "" && !isValidPhone(req.PhoneNumber) {
		writeError(w, http.StatusBadRequest, "invalid_request", "phone_number must be 8-16 digits")
		return
	}
	if req.DateOfBirth != "" && !isValidDate(req.DateOfBirth) {
		writeError(w, http.StatusBadRequest, "invalid_request", "date_of_birth must be YYYY-MM-DD")
		return
	}
	queueDate, ok := h.resolveQueueDate(req.QueueDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "queue_date must be YYYY-MM-DD")
		return
	}

	input := store.RegisterWalkInInput{
		PatientID:     req.PatientID,
		PriorityLevel: req.PriorityLevel,
		Complaint:     req.Complaint,
		QueueDate:     queueDate,
		CreatedAt:     h.now().UTC(),
	}
	if req.PatientID == "" {
		input.Provisional = &models.ProvisionalIdentity{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
			DateOfBirth: req.DateOfBirth,
		}
	}

	entry, err := h.store.RegisterWalkIn(r.Context(), input)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	h.notifier.Trigger(entry.QueueDate)
	writeJSON(w, http.StatusCreated, entry)
}

type checkinRequest struct {
	AppointmentID string `json:"appointment_id"`
	PriorityLevel string `json:"priority_level"`
	Complaint     string `json:"complaint"`
	QueueDate     string `json:"queue_date"`
}

func (h *Handler) handleAppointmentCheckin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req checkinRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.PriorityLevel = strings.TrimSpace(req.PriorityLevel)
	req.QueueDate = strings.TrimSpace(req.QueueDate)

	if req.AppointmentID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "appointment_id is required")
		return
	}
	if !isValidUUID(req.AppointmentID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "appointment_id must be a UUID")
		return
	}
	if req.PriorityLevel != "" && !models.IsValidPriority(req.PriorityLevel) {
		writeError(w, http.StatusBadRequest, "invalid_request", "priority_level must be Regular or Priority")
		return
	}
	queueDate, ok := h.resolveQueueDate(req.QueueDate)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "queue_date must be YYYY-MM-DD")
		return
	}

	entry, err := h.store.AcceptFromAppointment(r.Context(), store.AcceptAppointmentInput{
		AppointmentID: req.AppointmentID,
		PriorityLevel: req.PriorityLevel,
		Complaint:     req.Complaint,
		QueueDate:     queueDate,
		CreatedAt:     h.now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	h.notifier.Trigger(entry.QueueDate)
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	queueDate, ok := h.resolveQueueDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}

	snap, err := h.builder.Build(r.Context(), queueDate)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleEntries(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/queue/entries/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetEntry(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleEntryAction(w, r, parts[0], parts[2])
	case len(parts) == 1 || (len(parts) == 3 && parts[1] == "actions"):
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetEntry(w http.ResponseWriter, r *http.Request, entryID string) {
	if !isValidUUID(entryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "entry id must be a UUID")
		return
	}
	entry, err := h.store.GetEntry(r.Context(), entryID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type advanceRequest struct {
	TargetStage string `json:"target_stage"`
}

func (h *Handler) handleEntryAction(w http.ResponseWriter, r *http.Request, entryID, action string) {
	if !isValidUUID(entryID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "entry id must be a UUID")
		return
	}

	var entry models.QueueEntry
	var err error
	switch action {
	case "advance":
		var req advanceRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.TargetStage = strings.TrimSpace(req.TargetStage)
		if req.TargetStage == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "target_stage is required")
			return
		}
		entry, err = h.store.Advance(r.Context(), store.AdvanceInput{
			EntryID:     entryID,
			TargetStage: req.TargetStage,
		})
	case "complete":
		entry, err = h.store.Complete(r.Context(), store.EntryActionInput{
			EntryID:    entryID,
			OccurredAt: h.now().UTC(),
		})
	case "cancel":
		entry, err = h.store.Cancel(r.Context(), store.EntryActionInput{
			EntryID:    entryID,
			OccurredAt: h.now().UTC(),
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	h.notifier.Trigger(entry.QueueDate)
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) resolveQueueDate(raw string) (string, bool) {
	if raw == "" {
		return h.now().UTC().Format(models.DateLayout), true
	}
	if !isValidDate(raw) {
		return "", false
	}
	return raw, true
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func isValidPhone(value string) bool {
	if len(value) < 8 || len(value) > 16 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isValidDate(value string) bool {
	_, err := time.Parse(models.DateLayout, value)
	return err == nil
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrEntryNotFound):
		return http.StatusNotFound, "entry_not_found", "queue entry not found"
	case errors.Is(err, store.ErrPatientNotFound):
		return http.StatusNotFound, "patient_not_found", "patient not found"
	case errors.Is(err, store.ErrAppointmentNotFound):
		return http.StatusNotFound, "appointment_not_found", "appointment not found or not scheduled"
	case errors.Is(err, store.ErrDuplicateActiveAdmission):
		return http.StatusConflict, "duplicate_active_admission", "patient already in queue for this date"
	case errors.Is(err, store.ErrIllegalTransition):
		return http.StatusConflict, "illegal_transition", "entry status does not allow this action"
	case errors.Is(err, store.ErrSequenceConflict):
		return http.StatusConflict, "sequence_conflict", "concurrent queue update detected, retry the request"
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "queue store unavailable"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
