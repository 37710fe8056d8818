package models

import "time"

// DateLayout is the calendar-date format used for queue_date scoping.
const DateLayout = "2006-01-02"

const (
	PriorityRegular = "Regular"
	PriorityLane    = "Priority"
)

// PriorityLaneLabel is the display name shown next to the Priority lane.
const PriorityLaneLabel = "Priority Lane (PWD/Pregnant)"

const (
	StatusWaiting              = "Waiting"
	StatusQueuedForAssessment  = "Queued for Assessment"
	StatusQueuedForTreatment   = "Queued for Treatment"
	StatusOngoingForLaboratory = "Ongoing for Laboratory"
	StatusOngoingForTreatment  = "Ongoing for Treatment"
	StatusCompleted            = "Completed"
	StatusCancelled            = "Cancelled"
)

// IsTerminal reports whether a status removes the entry from active
// scheduling. Terminal rows are kept for history but excluded from
// position numbering.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

func IsValidPriority(level string) bool {
	return level == PriorityRegular || level == PriorityLane
}

// ProvisionalIdentity holds the patient details captured at admission
// before a permanent patient record exists.
type ProvisionalIdentity struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// PatientRef is either a reconciled reference to a permanent patient
// record or a provisional identity bundle, never both. Reconciliation
// happens exactly once, when the entry leaves Waiting.
type PatientRef struct {
	PatientID   string               `json:"patient_id,omitempty"`
	Provisional *ProvisionalIdentity `json:"provisional,omitempty"`
}

func (r PatientRef) Reconciled() bool {
	return r.PatientID != ""
}

// QueueEntry is one admission attempt for a calendar day. QueueNumber is
// the ticket shown to the patient; Position is the serving order among
// still-active entries for the day.
type QueueEntry struct {
	EntryID       string     `json:"id"`
	PriorityLevel string     `json:"priority_level"`
	Complaint     string     `json:"complaint,omitempty"`
	Status        string     `json:"status"`
	QueueNumber   int        `json:"queue_number"`
	QueueDate     string     `json:"queue_date"`
	Position      int        `json:"position"`
	PatientRef    PatientRef `json:"patient_ref"`
	AppointmentID string     `json:"appointment_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	// Patient is filled on reads when the ref is reconciled.
	Patient *Patient `json:"patient,omitempty"`
}

func (e QueueEntry) Active() bool {
	return !IsTerminal(e.Status)
}
