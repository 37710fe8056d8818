package store

import (
	"context"
	"time"

	"github.com/sleepypillowz/thesis/internal/models"
)

type RegisterWalkInInput struct {
	// PatientID references an existing patient record. When empty,
	// Provisional must carry the identity captured at the desk.
	PatientID     string
	Provisional   *models.ProvisionalIdentity
	PriorityLevel string
	Complaint     string
	QueueDate     string
	CreatedAt     time.Time
}

type AcceptAppointmentInput struct {
	AppointmentID string
	PriorityLevel string
	Complaint     string
	QueueDate     string
	CreatedAt     time.Time
}

type AdvanceInput struct {
	EntryID     string
	TargetStage string
}

type EntryActionInput struct {
	EntryID    string
	OccurredAt time.Time
}

// QueueStore is the single writer over queue state. Every mutating call
// runs as one transaction holding the date-scoped lock while sequence
// and position math happens; failures roll back entirely.
type QueueStore interface {
	RegisterWalkIn(ctx context.Context, input RegisterWalkInInput) (models.QueueEntry, error)
	AcceptFromAppointment(ctx context.Context, input AcceptAppointmentInput) (models.QueueEntry, error)
	Advance(ctx context.Context, input AdvanceInput) (models.QueueEntry, error)
	Complete(ctx context.Context, input EntryActionInput) (models.QueueEntry, error)
	Cancel(ctx context.Context, input EntryActionInput) (models.QueueEntry, error)
	GetEntry(ctx context.Context, entryID string) (models.QueueEntry, error)
	ListActive(ctx context.Context, queueDate string) ([]models.QueueEntry, error)
	HealPositions(ctx context.Context, queueDate string) (int, error)
}
