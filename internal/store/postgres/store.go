package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"time"

	"github.com/sleepypillowz/thesis/internal/models"
	"github.com/sleepypillowz/thesis/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueueNumberCeiling = 999

type Store struct {
	pool               *pgxpool.Pool
	queueNumberCeiling int
}

type Options struct {
	QueueNumberCeiling int
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	ceiling := options.QueueNumberCeiling
	if ceiling <= 0 {
		ceiling = defaultQueueNumberCeiling
	}
	return &Store{
		pool:               pool,
		queueNumberCeiling: ceiling,
	}
}

const entryColumns = `
	e.entry_id, e.patient_id, e.temp_first_name, e.temp_last_name,
	e.temp_phone_number, e.temp_date_of_birth, e.priority_level,
	e.complaint, e.status, e.queue_number, e.queue_date, e.position,
	e.appointment_id, e.created_at,
	p.first_name, p.last_name, p.phone_number, p.date_of_birth, p.created_at`

const entryFrom = `
	FROM queue_entries e
	LEFT JOIN patients p ON p.patient_id = e.patient_id`

func (s *Store) RegisterWalkIn(ctx context.Context, input store.RegisterWalkInInput) (models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockQueueDay(ctx, tx, input.QueueDate); err != nil {
		return models.QueueEntry{}, classify(err)
	}

	priority := input.PriorityLevel
	if input.PatientID != "" {
		if err = ensurePatientExists(ctx, tx, input.PatientID); err != nil {
			return models.QueueEntry{}, err
		}
		var dup bool
		dup, err = hasActiveEntryForPatient(ctx, tx, input.PatientID, input.QueueDate)
		if err != nil {
			return models.QueueEntry{}, classify(err)
		}
		if dup {
			return models.QueueEntry{}, store.ErrDuplicateActiveAdmission
		}
		if priority == "" {
			priority, err = earliestPriorityForPatient(ctx, tx, input.PatientID)
			if err != nil {
				return models.QueueEntry{}, classify(err)
			}
		}
	} else {
		if input.Provisional != nil && input.Provisional.PhoneNumber != "" {
			var dup bool
			dup, err = hasActiveEntryForPhone(ctx, tx, input.Provisional.PhoneNumber, input.QueueDate)
			if err != nil {
				return models.QueueEntry{}, classify(err)
			}
			if dup {
				return models.QueueEntry{}, store.ErrDuplicateActiveAdmission
			}
		}
	}
	if priority == "" {
		priority = models.PriorityRegular
	}

	active, err := loadActiveForUpdate(ctx, tx, input.QueueDate)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	active, err = applyRenumber(ctx, tx, input.QueueDate, active)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}

	queueNumber, err := s.nextQueueNumber(ctx, tx, input.QueueDate)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	position := store.BackPosition(active)

	entry, err := insertEntry(ctx, tx, insertEntryParams{
		patientID:     input.PatientID,
		provisional:   input.Provisional,
		priorityLevel: priority,
		complaint:     input.Complaint,
		queueNumber:   queueNumber,
		queueDate:     input.QueueDate,
		position:      position,
		createdAt:     input.CreatedAt,
	})
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}

	if err = verifyActivePositions(ctx, tx, input.QueueDate); err != nil {
		return models.QueueEntry{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, classify(err)
	}
	return entry, nil
}

func (s *Store) AcceptFromAppointment(ctx context.Context, input store.AcceptAppointmentInput) (models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockQueueDay(ctx, tx, input.QueueDate); err != nil {
		return models.QueueEntry{}, classify(err)
	}

	var patientID string
	row := tx.QueryRow(ctx, `
		SELECT patient_id
		FROM appointments
		WHERE appointment_id = $1 AND status = $2
		FOR UPDATE
	`, input.AppointmentID, models.AppointmentScheduled)
	if err = row.Scan(&patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrAppointmentNotFound
			return models.QueueEntry{}, err
		}
		return models.QueueEntry{}, classify(err)
	}

	dup, err := hasActiveEntryForPatient(ctx, tx, patientID, input.QueueDate)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	if dup {
		return models.QueueEntry{}, store.ErrDuplicateActiveAdmission
	}

	active, err := loadActiveForUpdate(ctx, tx, input.QueueDate)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	active, err = applyRenumber(ctx, tx, input.QueueDate, active)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}

	queueNumber, err := s.nextQueueNumber(ctx, tx, input.QueueDate)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}

	plan := store.PlanFrontInsert(active)
	if len(plan.Shifts) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE queue_entries
			SET position = position + 1
			WHERE queue_date = $1 AND position >= $2
				AND status NOT IN ($3, $4)
		`, input.QueueDate, plan.Position, models.StatusCompleted, models.StatusCancelled)
		if err != nil {
			return models.QueueEntry{}, classify(err)
		}
	}

	priority := input.PriorityLevel
	if priority == "" {
		priority = models.PriorityRegular
	}
	entry, err := insertEntry(ctx, tx, insertEntryParams{
		patientID:     patientID,
		priorityLevel: priority,
		complaint:     input.Complaint,
		queueNumber:   queueNumber,
		queueDate:     input.QueueDate,
		position:      plan.Position,
		appointmentID: input.AppointmentID,
		createdAt:     input.CreatedAt,
	})
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET status = $1
		WHERE appointment_id = $2
	`, models.AppointmentCheckedIn, input.AppointmentID)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}

	if err = verifyActivePositions(ctx, tx, input.QueueDate); err != nil {
		return models.QueueEntry{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, classify(err)
	}
	return entry, nil
}

func (s *Store) Advance(ctx context.Context, input store.AdvanceInput) (models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	entry, err := getEntryForUpdate(ctx, tx, input.EntryID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if !store.CanAdvance(entry.Status, input.TargetStage) {
		err = store.ErrIllegalTransition
		return models.QueueEntry{}, err
	}

	if entry.Status == models.StatusWaiting && !entry.PatientRef.Reconciled() {
		var patient models.Patient
		patient, err = reconcileProvisional(ctx, tx, entry)
		if err != nil {
			return models.QueueEntry{}, classify(err)
		}
		entry.PatientRef = models.PatientRef{PatientID: patient.PatientID}
		entry.Patient = &patient
	}

	_, err = tx.Exec(ctx, `
		UPDATE queue_entries
		SET status = $1
		WHERE entry_id = $2
	`, input.TargetStage, input.EntryID)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	entry.Status = input.TargetStage

	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, classify(err)
	}
	return entry, nil
}

func (s *Store) Complete(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	return s.finish(ctx, input.EntryID, models.StatusCompleted, store.CanComplete)
}

func (s *Store) Cancel(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	return s.finish(ctx, input.EntryID, models.StatusCancelled, store.CanCancel)
}

// finish retires an entry without renumbering the rest of the day; the
// gap it leaves is skipped by readers and compacted by the next heal.
func (s *Store) finish(ctx context.Context, entryID, terminal string, allowed func(string) bool) (models.QueueEntry, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	entry, err := getEntryForUpdate(ctx, tx, entryID)
	if err != nil {
		return models.QueueEntry{}, err
	}
	if !allowed(entry.Status) {
		err = store.ErrIllegalTransition
		return models.QueueEntry{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE queue_entries
		SET status = $1
		WHERE entry_id = $2
	`, terminal, entryID)
	if err != nil {
		return models.QueueEntry{}, classify(err)
	}
	entry.Status = terminal

	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, classify(err)
	}
	return entry, nil
}

func (s *Store) GetEntry(ctx context.Context, entryID string) (models.QueueEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryColumns+entryFrom+`
		WHERE e.entry_id = $1
	`, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, store.ErrEntryNotFound
		}
		return models.QueueEntry{}, classify(err)
	}
	return entry, nil
}

func (s *Store) ListActive(ctx context.Context, queueDate string) ([]models.QueueEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+entryFrom+`
		WHERE e.queue_date = $1 AND e.status NOT IN ($2, $3)
		ORDER BY e.position ASC, e.queue_number ASC
	`, queueDate, models.StatusCompleted, models.StatusCancelled)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, classify(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

// HealPositions rebuilds the day's position sequence to a contiguous
// 1..N and reports how many rows moved.
func (s *Store) HealPositions(ctx context.Context, queueDate string) (int, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockQueueDay(ctx, tx, queueDate); err != nil {
		return 0, classify(err)
	}
	active, err := loadActiveForUpdate(ctx, tx, queueDate)
	if err != nil {
		return 0, classify(err)
	}
	assignments := store.PlanRenumber(active)
	for entryID, position := range assignments {
		_, err = tx.Exec(ctx, `
			UPDATE queue_entries
			SET position = $1
			WHERE entry_id = $2
		`, position, entryID)
		if err != nil {
			return 0, classify(err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, classify(err)
	}
	return len(assignments), nil
}

// lockQueueDay serializes writers touching one calendar date. The row
// in queue_days exists only to be locked; requests for different dates
// never contend.
func lockQueueDay(ctx context.Context, tx pgx.Tx, queueDate string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO queue_days (queue_date)
		VALUES ($1)
		ON CONFLICT (queue_date) DO NOTHING
	`, queueDate)
	if err != nil {
		return err
	}
	var locked string
	row := tx.QueryRow(ctx, `
		SELECT queue_date::text
		FROM queue_days
		WHERE queue_date = $1
		FOR UPDATE
	`, queueDate)
	return row.Scan(&locked)
}

func (s *Store) nextQueueNumber(ctx context.Context, tx pgx.Tx, queueDate string) (int, error) {
	var maxUsed int
	row := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(queue_number), 0)
		FROM queue_entries
		WHERE queue_date = $1
	`, queueDate)
	if err := row.Scan(&maxUsed); err != nil {
		return 0, err
	}
	return store.NextQueueNumber(maxUsed, s.queueNumberCeiling), nil
}

func loadActiveForUpdate(ctx context.Context, tx pgx.Tx, queueDate string) ([]models.QueueEntry, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+entryColumns+entryFrom+`
		WHERE e.queue_date = $1 AND e.status NOT IN ($2, $3)
		ORDER BY e.position ASC, e.queue_number ASC
		FOR UPDATE OF e
	`, queueDate, models.StatusCompleted, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func applyRenumber(ctx context.Context, tx pgx.Tx, queueDate string, active []models.QueueEntry) ([]models.QueueEntry, error) {
	assignments := store.PlanRenumber(active)
	if len(assignments) == 0 {
		return active, nil
	}
	for entryID, position := range assignments {
		_, err := tx.Exec(ctx, `
			UPDATE queue_entries
			SET position = $1
			WHERE entry_id = $2
		`, position, entryID)
		if err != nil {
			return nil, err
		}
	}
	healed := make([]models.QueueEntry, len(active))
	copy(healed, active)
	for i := range healed {
		if position, ok := assignments[healed[i].EntryID]; ok {
			healed[i].Position = position
		}
	}
	return healed, nil
}

// verifyActivePositions is the allocator's last line of defense: a
// duplicate active position at commit time means a concurrent writer
// slipped past the date lock.
func verifyActivePositions(ctx context.Context, tx pgx.Tx, queueDate string) error {
	var duplicates int
	row := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM (
			SELECT position
			FROM queue_entries
			WHERE queue_date = $1 AND status NOT IN ($2, $3)
			GROUP BY position
			HAVING COUNT(*) > 1
		) d
	`, queueDate, models.StatusCompleted, models.StatusCancelled)
	if err := row.Scan(&duplicates); err != nil {
		return classify(err)
	}
	if duplicates > 0 {
		return store.ErrSequenceConflict
	}
	return nil
}

func ensurePatientExists(ctx context.Context, tx pgx.Tx, patientID string) error {
	var id string
	row := tx.QueryRow(ctx, `
		SELECT patient_id
		FROM patients
		WHERE patient_id = $1
	`, patientID)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrPatientNotFound
		}
		return classify(err)
	}
	return nil
}

func hasActiveEntryForPatient(ctx context.Context, tx pgx.Tx, patientID, queueDate string) (bool, error) {
	var exists bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM queue_entries
			WHERE patient_id = $1 AND queue_date = $2
				AND status NOT IN ($3, $4)
		)
	`, patientID, queueDate, models.StatusCompleted, models.StatusCancelled)
	err := row.Scan(&exists)
	return exists, err
}

func hasActiveEntryForPhone(ctx context.Context, tx pgx.Tx, phone, queueDate string) (bool, error) {
	var exists bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM queue_entries
			WHERE temp_phone_number = $1 AND queue_date = $2
				AND status NOT IN ($3, $4)
		)
	`, phone, queueDate, models.StatusCompleted, models.StatusCancelled)
	err := row.Scan(&exists)
	return exists, err
}

// earliestPriorityForPatient keeps a returning patient in the lane of
// their first admission when no lane is supplied.
func earliestPriorityForPatient(ctx context.Context, tx pgx.Tx, patientID string) (string, error) {
	var priority string
	row := tx.QueryRow(ctx, `
		SELECT priority_level
		FROM queue_entries
		WHERE patient_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, patientID)
	if err := row.Scan(&priority); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return priority, nil
}

type insertEntryParams struct {
	patientID     string
	provisional   *models.ProvisionalIdentity
	priorityLevel string
	complaint     string
	queueNumber   int
	queueDate     string
	position      int
	appointmentID string
	createdAt     time.Time
}

func insertEntry(ctx context.Context, tx pgx.Tx, params insertEntryParams) (models.QueueEntry, error) {
	entryID := uuid.NewString()
	createdAt := params.createdAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var tempFirst, tempLast, tempPhone, tempDOB any
	if params.provisional != nil {
		tempFirst = params.provisional.FirstName
		tempLast = params.provisional.LastName
		tempPhone = nullIfEmpty(params.provisional.PhoneNumber)
		tempDOB = nullIfEmpty(params.provisional.DateOfBirth)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO queue_entries (
			entry_id, patient_id, temp_first_name, temp_last_name,
			temp_phone_number, temp_date_of_birth, priority_level,
			complaint, status, queue_number, queue_date, position,
			appointment_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at
	`, entryID, nullIfEmpty(params.patientID), tempFirst, tempLast,
		tempPhone, tempDOB, params.priorityLevel,
		params.complaint, models.StatusWaiting, params.queueNumber, params.queueDate,
		params.position, nullIfEmpty(params.appointmentID), createdAt)
	if err := row.Scan(&createdAt); err != nil {
		return models.QueueEntry{}, err
	}

	entry := models.QueueEntry{
		EntryID:       entryID,
		PriorityLevel: params.priorityLevel,
		Complaint:     params.complaint,
		Status:        models.StatusWaiting,
		QueueNumber:   params.queueNumber,
		QueueDate:     params.queueDate,
		Position:      params.position,
		AppointmentID: params.appointmentID,
		CreatedAt:     createdAt,
	}
	if params.patientID != "" {
		entry.PatientRef = models.PatientRef{PatientID: params.patientID}
	} else {
		entry.PatientRef = models.PatientRef{Provisional: params.provisional}
	}
	return entry, nil
}

func getEntryForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (models.QueueEntry, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+entryColumns+entryFrom+`
		WHERE e.entry_id = $1
		FOR UPDATE OF e
	`, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, store.ErrEntryNotFound
		}
		return models.QueueEntry{}, classify(err)
	}
	return entry, nil
}

// reconcileProvisional promotes the entry's provisional identity into a
// permanent patient record and clears the temp fields so stale
// provisional data can never be read afterwards.
func reconcileProvisional(ctx context.Context, tx pgx.Tx, entry models.QueueEntry) (models.Patient, error) {
	provisional := entry.PatientRef.Provisional
	if provisional == nil {
		provisional = &models.ProvisionalIdentity{}
	}
	patient := models.Patient{
		PatientID:   uuid.NewString(),
		FirstName:   provisional.FirstName,
		LastName:    provisional.LastName,
		PhoneNumber: provisional.PhoneNumber,
		DateOfBirth: provisional.DateOfBirth,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO patients (patient_id, first_name, last_name, phone_number, date_of_birth, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, patient.PatientID, patient.FirstName, patient.LastName,
		nullIfEmpty(patient.PhoneNumber), nullIfEmpty(patient.DateOfBirth), patient.CreatedAt)
	if err != nil {
		return models.Patient{}, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE queue_entries
		SET patient_id = $1,
			temp_first_name = NULL,
			temp_last_name = NULL,
			temp_phone_number = NULL,
			temp_date_of_birth = NULL
		WHERE entry_id = $2
	`, patient.PatientID, entry.EntryID)
	if err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func scanEntry(row pgx.Row) (models.QueueEntry, error) {
	var entry models.QueueEntry
	var patientIDNull sql.NullString
	var tempFirstNull sql.NullString
	var tempLastNull sql.NullString
	var tempPhoneNull sql.NullString
	var tempDOBNull sql.NullTime
	var complaintNull sql.NullString
	var queueDate time.Time
	var appointmentIDNull sql.NullString
	var patientFirstNull sql.NullString
	var patientLastNull sql.NullString
	var patientPhoneNull sql.NullString
	var patientDOBNull sql.NullTime
	var patientCreatedNull sql.NullTime

	if err := row.Scan(
		&entry.EntryID, &patientIDNull, &tempFirstNull, &tempLastNull,
		&tempPhoneNull, &tempDOBNull, &entry.PriorityLevel,
		&complaintNull, &entry.Status, &entry.QueueNumber, &queueDate, &entry.Position,
		&appointmentIDNull, &entry.CreatedAt,
		&patientFirstNull, &patientLastNull, &patientPhoneNull, &patientDOBNull, &patientCreatedNull,
	); err != nil {
		return models.QueueEntry{}, err
	}

	entry.QueueDate = queueDate.Format(models.DateLayout)
	if complaintNull.Valid {
		entry.Complaint = complaintNull.String
	}
	if appointmentIDNull.Valid {
		entry.AppointmentID = appointmentIDNull.String
	}
	if patientIDNull.Valid {
		entry.PatientRef = models.PatientRef{PatientID: patientIDNull.String}
		patient := models.Patient{PatientID: patientIDNull.String}
		if patientFirstNull.Valid {
			patient.FirstName = patientFirstNull.String
		}
		if patientLastNull.Valid {
			patient.LastName = patientLastNull.String
		}
		if patientPhoneNull.Valid {
			patient.PhoneNumber = patientPhoneNull.String
		}
		if patientDOBNull.Valid {
			patient.DateOfBirth = patientDOBNull.Time.Format(models.DateLayout)
		}
		if patientCreatedNull.Valid {
			patient.CreatedAt = patientCreatedNull.Time
		}
		entry.Patient = &patient
	} else {
		provisional := &models.ProvisionalIdentity{}
		if tempFirstNull.Valid {
			provisional.FirstName = tempFirstNull.String
		}
		if tempLastNull.Valid {
			provisional.LastName = tempLastNull.String
		}
		if tempPhoneNull.Valid {
			provisional.PhoneNumber = tempPhoneNull.String
		}
		if tempDOBNull.Valid {
			provisional.DateOfBirth = tempDOBNull.Time.Format(models.DateLayout)
		}
		entry.PatientRef = models.PatientRef{Provisional: provisional}
	}
	return entry, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrSequenceConflict
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return store.ErrUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return store.ErrUnavailable
	}
	// Errors raised before the request reached the server, e.g. a
	// failed connect from the pool.
	if pgconn.SafeToRetry(err) {
		return store.ErrUnavailable
	}
	return err
}
