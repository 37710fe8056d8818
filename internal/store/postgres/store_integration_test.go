package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sleepypillowz/thesis/internal/models"
	"github.com/sleepypillowz/thesis/internal/snapshot"
	"github.com/sleepypillowz/thesis/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const testDate = "2026-03-09"

func TestRegisterWalkInConcurrency(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan walkInResult, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
				Provisional: &models.ProvisionalIdentity{
					FirstName:   fmt.Sprintf("Walkin%d", i),
					LastName:    "Patient",
					PhoneNumber: fmt.Sprintf("0917000%04d", i),
				},
				QueueDate: testDate,
				CreatedAt: time.Now().UTC(),
			})
			results <- walkInResult{entry: entry, err: err}
		}(i)
	}
	wg.Wait()
	close(results)

	positions := make(map[int]bool)
	numbers := make(map[int]bool)
	for result := range results {
		if result.err != nil {
			t.Fatalf("register walk-in: %v", result.err)
		}
		if positions[result.entry.Position] {
			t.Fatalf("duplicate position %d", result.entry.Position)
		}
		positions[result.entry.Position] = true
		if numbers[result.entry.QueueNumber] {
			t.Fatalf("duplicate queue number %d", result.entry.QueueNumber)
		}
		numbers[result.entry.QueueNumber] = true
	}
	for i := 1; i <= writers; i++ {
		if !positions[i] {
			t.Fatalf("missing position %d, got %v", i, positions)
		}
	}

	active, err := st.ListActive(ctx, testDate)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != writers {
		t.Fatalf("active=%d, want %d", len(active), writers)
	}
}

type walkInResult struct {
	entry models.QueueEntry
	err   error
}

func TestDuplicateActiveAdmission(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, pool, "Maria", "Santos")

	first, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID: patientID,
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("first admission: %v", err)
	}

	_, err = st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID: patientID,
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrDuplicateActiveAdmission) {
		t.Fatalf("err=%v, want ErrDuplicateActiveAdmission", err)
	}

	// Next day is a fresh numberspace.
	next, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID: patientID,
		QueueDate: "2026-03-10",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("next day admission: %v", err)
	}
	if next.QueueNumber != 1 || next.Position != 1 {
		t.Fatalf("next day entry number=%d position=%d, want 1/1", next.QueueNumber, next.Position)
	}

	// Once the first run ends the block lifts for the same day too.
	if _, err := advanceThrough(ctx, st, first.EntryID); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := st.Complete(ctx, store.EntryActionInput{EntryID: first.EntryID, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID: patientID,
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("re-admission after completion: %v", err)
	}
}

func TestDuplicateProvisionalByPhone(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	input := store.RegisterWalkInInput{
		Provisional: &models.ProvisionalIdentity{
			FirstName:   "Ana",
			LastName:    "Cruz",
			PhoneNumber: "09171234567",
		},
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := st.RegisterWalkIn(ctx, input); err != nil {
		t.Fatalf("first admission: %v", err)
	}
	if _, err := st.RegisterWalkIn(ctx, input); !errors.Is(err, store.ErrDuplicateActiveAdmission) {
		t.Fatalf("err=%v, want ErrDuplicateActiveAdmission", err)
	}
}

func TestAppointmentCheckinInsertsBehindCurrent(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	for i := 0; i < 3; i++ {
		if _, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
			Provisional: &models.ProvisionalIdentity{
				FirstName:   fmt.Sprintf("Walkin%d", i),
				LastName:    "Patient",
				PhoneNumber: fmt.Sprintf("0917111%04d", i),
			},
			QueueDate: testDate,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("seed walk-in %d: %v", i, err)
		}
	}

	patientID := seedPatient(t, ctx, pool, "Jose", "Reyes")
	appointmentID := seedAppointment(t, ctx, pool, patientID)

	entry, err := st.AcceptFromAppointment(ctx, store.AcceptAppointmentInput{
		AppointmentID: appointmentID,
		QueueDate:     testDate,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("accept appointment: %v", err)
	}
	if entry.Position != 2 {
		t.Fatalf("position=%d, want 2 (directly behind current)", entry.Position)
	}
	if entry.AppointmentID != appointmentID {
		t.Fatalf("appointment id=%q", entry.AppointmentID)
	}

	active, err := st.ListActive(ctx, testDate)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 4 {
		t.Fatalf("active=%d, want 4", len(active))
	}
	for i, got := range active {
		if got.Position != i+1 {
			t.Fatalf("positions not contiguous: %+v", activePositions(active))
		}
	}
	if active[1].EntryID != entry.EntryID {
		t.Fatalf("second slot holds %s, want the check-in", active[1].EntryID)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status FROM appointments WHERE appointment_id = $1`, appointmentID).Scan(&status); err != nil {
		t.Fatalf("read appointment: %v", err)
	}
	if status != models.AppointmentCheckedIn {
		t.Fatalf("appointment status=%q", status)
	}

	// A consumed appointment cannot be checked in again.
	_, err = st.AcceptFromAppointment(ctx, store.AcceptAppointmentInput{
		AppointmentID: appointmentID,
		QueueDate:     testDate,
		CreatedAt:     time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrAppointmentNotFound) {
		t.Fatalf("err=%v, want ErrAppointmentNotFound", err)
	}
}

func TestAdvanceReconcilesProvisional(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		Provisional: &models.ProvisionalIdentity{
			FirstName:   "Maria",
			LastName:    "Santos",
			PhoneNumber: "09171234567",
			DateOfBirth: "1990-06-15",
		},
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if entry.PatientRef.Reconciled() {
		t.Fatalf("fresh walk-in should be provisional")
	}

	advanced, err := st.Advance(ctx, store.AdvanceInput{EntryID: entry.EntryID, TargetStage: models.StatusQueuedForAssessment})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !advanced.PatientRef.Reconciled() {
		t.Fatalf("advance out of Waiting must reconcile the patient")
	}
	if advanced.Patient == nil || advanced.Patient.FirstName != "Maria" {
		t.Fatalf("patient=%+v", advanced.Patient)
	}

	var tempFirst *string
	if err := pool.QueryRow(ctx, `SELECT temp_first_name FROM queue_entries WHERE entry_id = $1`, entry.EntryID).Scan(&tempFirst); err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if tempFirst != nil {
		t.Fatalf("temp fields must be cleared after reconciliation")
	}

	reread, err := st.GetEntry(ctx, entry.EntryID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if !reread.PatientRef.Reconciled() || reread.Patient == nil {
		t.Fatalf("reread=%+v", reread)
	}
	if reread.Patient.DateOfBirth != "1990-06-15" {
		t.Fatalf("date of birth=%q", reread.Patient.DateOfBirth)
	}

	// Repeating the same advance is an illegal transition.
	_, err = st.Advance(ctx, store.AdvanceInput{EntryID: entry.EntryID, TargetStage: models.StatusQueuedForAssessment})
	if !errors.Is(err, store.ErrIllegalTransition) {
		t.Fatalf("err=%v, want ErrIllegalTransition", err)
	}
}

func TestCompleteRequiresOngoingStage(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		Provisional: &models.ProvisionalIdentity{FirstName: "Ana", LastName: "Cruz"},
		QueueDate:   testDate,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = st.Complete(ctx, store.EntryActionInput{EntryID: entry.EntryID, OccurredAt: time.Now().UTC()})
	if !errors.Is(err, store.ErrIllegalTransition) {
		t.Fatalf("complete from Waiting: err=%v, want ErrIllegalTransition", err)
	}

	if _, err := advanceThrough(ctx, st, entry.EntryID); err != nil {
		t.Fatalf("advance: %v", err)
	}
	done, err := st.Complete(ctx, store.EntryActionInput{EntryID: entry.EntryID, OccurredAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Fatalf("status=%q", done.Status)
	}

	// Terminal entries reject every further action.
	_, err = st.Cancel(ctx, store.EntryActionInput{EntryID: entry.EntryID, OccurredAt: time.Now().UTC()})
	if !errors.Is(err, store.ErrIllegalTransition) {
		t.Fatalf("cancel after complete: err=%v, want ErrIllegalTransition", err)
	}
}

func TestHealPositionsCompactsGaps(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	var entries []models.QueueEntry
	for i := 0; i < 4; i++ {
		entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
			Provisional: &models.ProvisionalIdentity{
				FirstName:   fmt.Sprintf("Walkin%d", i),
				LastName:    "Patient",
				PhoneNumber: fmt.Sprintf("0917222%04d", i),
			},
			QueueDate: testDate,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		entries = append(entries, entry)
	}

	// Cancelling the second entry leaves a gap at position 2; active
	// rows keep their positions until the next heal.
	if _, err := st.Cancel(ctx, store.EntryActionInput{EntryID: entries[1].EntryID, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	active, err := st.ListActive(ctx, testDate)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if got := activePositions(active); !equalInts(got, []int{1, 3, 4}) {
		t.Fatalf("positions=%v, want [1 3 4]", got)
	}

	moved, err := st.HealPositions(ctx, testDate)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}
	if moved != 2 {
		t.Fatalf("moved=%d, want 2", moved)
	}
	active, err = st.ListActive(ctx, testDate)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if got := activePositions(active); !equalInts(got, []int{1, 2, 3}) {
		t.Fatalf("positions=%v, want [1 2 3]", got)
	}
	if active[0].EntryID != entries[0].EntryID || active[1].EntryID != entries[2].EntryID {
		t.Fatalf("heal must preserve relative order")
	}

	// A contiguous day heals to a no-op.
	moved, err = st.HealPositions(ctx, testDate)
	if err != nil {
		t.Fatalf("second heal: %v", err)
	}
	if moved != 0 {
		t.Fatalf("moved=%d, want 0", moved)
	}
}

func TestQueueNumberCeilingWraps(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{QueueNumberCeiling: 3})
	t.Cleanup(cleanup)

	var numbers []int
	for i := 0; i < 4; i++ {
		entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
			Provisional: &models.ProvisionalIdentity{
				FirstName:   fmt.Sprintf("Walkin%d", i),
				LastName:    "Patient",
				PhoneNumber: fmt.Sprintf("0917333%04d", i),
			},
			QueueDate: testDate,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		numbers = append(numbers, entry.QueueNumber)
	}
	if !equalInts(numbers, []int{1, 2, 3, 1}) {
		t.Fatalf("queue numbers=%v, want wrap after the ceiling", numbers)
	}
}

func TestEarliestPriorityReused(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, pool, "Elena", "Garcia")

	first, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID:     patientID,
		PriorityLevel: models.PriorityLane,
		QueueDate:     testDate,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("first admission: %v", err)
	}
	if _, err := st.Cancel(ctx, store.EntryActionInput{EntryID: first.EntryID, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// No lane given on return: the patient stays in their original lane.
	second, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID: patientID,
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("second admission: %v", err)
	}
	if second.PriorityLevel != models.PriorityLane {
		t.Fatalf("priority=%q, want %q", second.PriorityLevel, models.PriorityLane)
	}
}

func TestRegisterUnknownPatient(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	_, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		PatientID: uuid.NewString(),
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, store.ErrPatientNotFound) {
		t.Fatalf("err=%v, want ErrPatientNotFound", err)
	}
}

func TestRegisterWalkInHealsBrokenDay(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)

	// Two rows sharing a position, as an out-of-band import could leave
	// behind. Registration must repair the day, not fail on it.
	first := seedRawEntry(t, ctx, pool, "Imported1", 1, 2)
	second := seedRawEntry(t, ctx, pool, "Imported2", 2, 2)

	entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		Provisional: &models.ProvisionalIdentity{
			FirstName:   "Fresh",
			LastName:    "Patient",
			PhoneNumber: "09174440000",
		},
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("register on broken day: %v", err)
	}
	if entry.Position != 3 {
		t.Fatalf("position=%d, want 3 after repair", entry.Position)
	}

	active, err := st.ListActive(ctx, testDate)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if got := activePositions(active); !equalInts(got, []int{1, 2, 3}) {
		t.Fatalf("positions=%v, want [1 2 3]", got)
	}
	// Broken numbering is rebuilt in ticket order.
	if active[0].EntryID != first || active[1].EntryID != second || active[2].EntryID != entry.EntryID {
		t.Fatalf("order=%v", []string{active[0].EntryID, active[1].EntryID, active[2].EntryID})
	}

	// A retry of the same shape keeps working.
	if _, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
		Provisional: &models.ProvisionalIdentity{
			FirstName:   "Second",
			LastName:    "Patient",
			PhoneNumber: "09174440001",
		},
		QueueDate: testDate,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("follow-up register: %v", err)
	}
}

func TestSnapshotTracksAdmissionAndCompletion(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx, Options{})
	t.Cleanup(cleanup)
	builder := snapshot.NewBuilder(st)

	var regulars []models.QueueEntry
	for i := 0; i < 2; i++ {
		entry, err := st.RegisterWalkIn(ctx, store.RegisterWalkInInput{
			Provisional: &models.ProvisionalIdentity{
				FirstName:   fmt.Sprintf("Regular%d", i),
				LastName:    "Patient",
				PhoneNumber: fmt.Sprintf("0917555%04d", i),
			},
			QueueDate: testDate,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("register walk-in %d: %v", i, err)
		}
		regulars = append(regulars, entry)
	}

	patientID := seedPatient(t, ctx, pool, "Rosa", "Dela Cruz")
	appointmentID := seedAppointment(t, ctx, pool, patientID)
	accepted, err := st.AcceptFromAppointment(ctx, store.AcceptAppointmentInput{
		AppointmentID: appointmentID,
		PriorityLevel: models.PriorityLane,
		QueueDate:     testDate,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("accept appointment: %v", err)
	}

	snap, err := builder.Build(ctx, testDate)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	if snap.Regular.Current == nil || snap.Regular.Current.EntryID != regulars[0].EntryID {
		t.Fatalf("regular current=%+v, want first walk-in", snap.Regular.Current)
	}
	if snap.Regular.Next1 == nil || snap.Regular.Next1.EntryID != regulars[1].EntryID {
		t.Fatalf("regular next1=%+v, want second walk-in", snap.Regular.Next1)
	}
	if snap.Priority.Current == nil || snap.Priority.Current.EntryID != accepted.EntryID {
		t.Fatalf("priority current=%+v, want the check-in", snap.Priority.Current)
	}

	// Completing the first Regular hands that lane to the second entry.
	if _, err := advanceThrough(ctx, st, regulars[0].EntryID); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := st.Complete(ctx, store.EntryActionInput{EntryID: regulars[0].EntryID, OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	snap, err = builder.Build(ctx, testDate)
	if err != nil {
		t.Fatalf("rebuild snapshot: %v", err)
	}
	if snap.Regular.Current == nil || snap.Regular.Current.EntryID != regulars[1].EntryID {
		t.Fatalf("regular current=%+v, want second walk-in after completion", snap.Regular.Current)
	}
	if snap.Regular.Next1 != nil {
		t.Fatalf("regular next1=%+v, want empty", snap.Regular.Next1)
	}
	if snap.Priority.Current == nil || snap.Priority.Current.EntryID != accepted.EntryID {
		t.Fatalf("priority current=%+v, want the check-in unchanged", snap.Priority.Current)
	}
}

// advanceThrough walks an entry from Waiting to Ongoing for Treatment.
func advanceThrough(ctx context.Context, st *Store, entryID string) (models.QueueEntry, error) {
	if _, err := st.Advance(ctx, store.AdvanceInput{EntryID: entryID, TargetStage: models.StatusQueuedForAssessment}); err != nil {
		return models.QueueEntry{}, err
	}
	return st.Advance(ctx, store.AdvanceInput{EntryID: entryID, TargetStage: models.StatusOngoingForTreatment})
}

func activePositions(entries []models.QueueEntry) []int {
	positions := make([]int, 0, len(entries))
	for _, entry := range entries {
		positions = append(positions, entry.Position)
	}
	return positions
}

func equalInts(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func setupTestStore(t *testing.T, ctx context.Context, options Options) (*Store, *pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := createSchema(ctx, dsn, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := newPoolWithSchema(ctx, dsn, schema)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	st := NewStore(pool, options)
	cleanup := func() {
		pool.Close()
		_ = dropSchema(context.Background(), dsn, schema)
	}
	return st, pool, cleanup
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	return err
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
	return err
}

func newPoolWithSchema(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	return pgxpool.NewWithConfig(ctx, cfg)
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	dir := filepath.Join("..", "..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return err
		}
	}
	return nil
}

func seedPatient(t *testing.T, ctx context.Context, pool *pgxpool.Pool, firstName, lastName string) string {
	t.Helper()
	patientID := uuid.NewString()
	if _, err := pool.Exec(ctx, `
		INSERT INTO patients (patient_id, first_name, last_name, created_at)
		VALUES ($1, $2, $3, NOW())
	`, patientID, firstName, lastName); err != nil {
		t.Fatalf("insert patient: %v", err)
	}
	return patientID
}

func seedRawEntry(t *testing.T, ctx context.Context, pool *pgxpool.Pool, firstName string, queueNumber, position int) string {
	t.Helper()
	entryID := uuid.NewString()
	if _, err := pool.Exec(ctx, `
		INSERT INTO queue_entries (
			entry_id, temp_first_name, temp_last_name, priority_level,
			status, queue_number, queue_date, position, created_at
		) VALUES ($1, $2, 'Patient', $3, $4, $5, $6, $7, NOW())
	`, entryID, firstName, models.PriorityRegular, models.StatusWaiting, queueNumber, testDate, position); err != nil {
		t.Fatalf("insert raw entry: %v", err)
	}
	return entryID
}

func seedAppointment(t *testing.T, ctx context.Context, pool *pgxpool.Pool, patientID string) string {
	t.Helper()
	appointmentID := uuid.NewString()
	if _, err := pool.Exec(ctx, `
		INSERT INTO appointments (appointment_id, patient_id, doctor_name, scheduled_at, status)
		VALUES ($1, $2, 'Dr. Lim', NOW(), $3)
	`, appointmentID, patientID, models.AppointmentScheduled); err != nil {
		t.Fatalf("insert appointment: %v", err)
	}
	return appointmentID
}
