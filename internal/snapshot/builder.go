package snapshot

import (
	"context"
	"time"

	"github.com/sleepypillowz/thesis/internal/models"
)

// Reader is the slice of the store the builder needs.
type Reader interface {
	ListActive(ctx context.Context, queueDate string) ([]models.QueueEntry, error)
}

// Item is one display-ready queue slot.
type Item struct {
	EntryID       string `json:"id"`
	PatientID     string `json:"patient_id,omitempty"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	Age           *int   `json:"age,omitempty"`
	PriorityLevel string `json:"priority_level"`
	Complaint     string `json:"complaint,omitempty"`
	Status        string `json:"status"`
	QueueNumber   int    `json:"queue_number"`
	Position      int    `json:"position"`
	IsNewPatient  bool   `json:"is_new_patient"`
}

type Lane struct {
	Current *Item `json:"current"`
	Next1   *Item `json:"next1"`
	Next2   *Item `json:"next2"`
}

type Snapshot struct {
	QueueDate   string    `json:"queue_date"`
	Priority    Lane      `json:"priority_lane"`
	Regular     Lane      `json:"regular_lane"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Builder struct {
	reader Reader
	now    func() time.Time
}

func NewBuilder(reader Reader) *Builder {
	return &Builder{reader: reader, now: time.Now}
}

// Build computes the "now serving / next two" view per lane. It reads
// committed state only and takes no locks; a write racing the read is
// superseded by the next publish.
func (b *Builder) Build(ctx context.Context, queueDate string) (Snapshot, error) {
	entries, err := b.reader.ListActive(ctx, queueDate)
	if err != nil {
		return Snapshot{}, err
	}
	return b.assemble(queueDate, entries), nil
}

func (b *Builder) assemble(queueDate string, entries []models.QueueEntry) Snapshot {
	now := b.now().UTC()
	var priority, regular []models.QueueEntry
	for _, entry := range entries {
		if entry.PriorityLevel == models.PriorityLane {
			priority = append(priority, entry)
		} else {
			regular = append(regular, entry)
		}
	}
	return Snapshot{
		QueueDate:   queueDate,
		Priority:    lane(priority, now),
		Regular:     lane(regular, now),
		GeneratedAt: now,
	}
}

// lane assumes entries arrive ordered by (position, queue_number), the
// order ListActive guarantees.
func lane(entries []models.QueueEntry, now time.Time) Lane {
	items := make([]*Item, 3)
	for i := 0; i < 3 && i < len(entries); i++ {
		items[i] = displayItem(entries[i], now)
	}
	return Lane{Current: items[0], Next1: items[1], Next2: items[2]}
}

func displayItem(entry models.QueueEntry, now time.Time) *Item {
	item := &Item{
		EntryID:       entry.EntryID,
		PriorityLevel: entry.PriorityLevel,
		Complaint:     entry.Complaint,
		Status:        entry.Status,
		QueueNumber:   entry.QueueNumber,
		Position:      entry.Position,
	}
	if entry.PatientRef.Reconciled() {
		item.PatientID = entry.PatientRef.PatientID
		if entry.Patient != nil {
			item.FirstName = entry.Patient.FirstName
			item.LastName = entry.Patient.LastName
			item.PhoneNumber = entry.Patient.PhoneNumber
			item.DateOfBirth = entry.Patient.DateOfBirth
		}
	} else {
		item.IsNewPatient = true
		if provisional := entry.PatientRef.Provisional; provisional != nil {
			item.FirstName = provisional.FirstName
			item.LastName = provisional.LastName
			item.PhoneNumber = provisional.PhoneNumber
			item.DateOfBirth = provisional.DateOfBirth
		}
	}
	if age, ok := models.AgeOn(item.DateOfBirth, now); ok {
		item.Age = &age
	}
	return item
}
