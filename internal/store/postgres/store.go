package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dinequeue/internal/models"
	"dinequeue/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, restaurant_id, queue_code, customer_name, phone, party_size, notes,
	status, position, estimated_wait_minutes, request_id, joined_at, called_at, seated_at, cancelled_at`

type Store struct {
	pool            *pgxpool.Pool
	defaultTimezone string
}

type Options struct {
	DefaultTimezone string
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	tz := options.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}
	return &Store{pool: pool, defaultTimezone: tz}
}

func (s *Store) GetRestaurant(ctx context.Context, restaurantID string) (models.Restaurant, bool, error) {
	var restaurant models.Restaurant
	var tzNull sql.NullString
	row := s.pool.QueryRow(ctx, `
		SELECT restaurant_id, name, timezone
		FROM restaurants
		WHERE restaurant_id = $1
	`, restaurantID)
	if err := row.Scan(&restaurant.RestaurantID, &restaurant.Name, &tzNull); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Restaurant{}, false, nil
		}
		return models.Restaurant{}, false, err
	}
	restaurant.Timezone = tzNull.String
	if restaurant.Timezone == "" {
		restaurant.Timezone = s.defaultTimezone
	}
	return restaurant, true, nil
}

func (s *Store) JoinQueue(ctx context.Context, input store.JoinQueueInput) (models.QueueEntry, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, found, err := findEntryByRequestID(ctx, tx, input.RequestID)
	if err != nil {
		return models.QueueEntry{}, false, err
	}
	if found {
		if err = tx.Commit(ctx); err != nil {
			return models.QueueEntry{}, false, err
		}
		return existing, false, nil
	}

	location, err := s.restaurantLocation(ctx, tx, input.RestaurantID)
	if err != nil {
		return models.QueueEntry{}, false, err
	}

	joinedAt := input.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	dayStart := localMidnight(joinedAt, location)
	serviceDate := dayStart.Format("2006-01-02")

	seq, err := nextQueueNumber(ctx, tx, input.RestaurantID, serviceDate)
	if err != nil {
		return models.QueueEntry{}, false, err
	}
	code, err := store.CodeForSequence(seq)
	if err != nil {
		return models.QueueEntry{}, false, err
	}

	var waiting int
	row := tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM queue_entries
		WHERE restaurant_id = $1 AND status = 'waiting'
	`, input.RestaurantID)
	if err = row.Scan(&waiting); err != nil {
		return models.QueueEntry{}, false, err
	}
	position := waiting + 1

	durations, err := seatedDurations(ctx, tx, input.RestaurantID, store.SeatedSampleLimit)
	if err != nil {
		return models.QueueEntry{}, false, err
	}
	estimate := store.EstimateWait(durations, position)

	var entry models.QueueEntry
	row = tx.QueryRow(ctx, `
		INSERT INTO queue_entries (
			entry_id, request_id, restaurant_id, queue_code, customer_name, phone, party_size,
			notes, status, position, estimated_wait_minutes, service_date, joined_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+entryColumns+`
	`, uuid.NewString(), input.RequestID, input.RestaurantID, code, input.CustomerName,
		nullIfEmpty(input.Phone), input.PartySize, nullIfEmpty(input.Notes),
		models.StatusWaiting, position, estimate, serviceDate, joinedAt)
	entry, err = scanEntry(row)
	if err != nil {
		return models.QueueEntry{}, false, err
	}

	if err = insertEntryEvent(ctx, tx, "queue.joined", entry); err != nil {
		return models.QueueEntry{}, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, false, err
	}
	return entry, true, nil
}

func (s *Store) GetEntry(ctx context.Context, restaurantID, entryID string) (models.QueueEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM queue_entries
		WHERE entry_id = $1 AND restaurant_id = $2
	`, entryID, restaurantID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, store.ErrEntryNotFound
		}
		return models.QueueEntry{}, err
	}
	return entry, nil
}

func (s *Store) ListActiveQueue(ctx context.Context, restaurantID string) ([]models.QueueEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM queue_entries
		WHERE restaurant_id = $1 AND status IN ('waiting', 'called')
		ORDER BY joined_at ASC
	`, restaurantID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LivePosition recomputes the entry's rank among waiting entries. It is never
// cached; the stored position column is only the join-time snapshot.
func (s *Store) LivePosition(ctx context.Context, restaurantID, entryID string) (int, bool, error) {
	var status string
	var joinedAt time.Time
	row := s.pool.QueryRow(ctx, `
		SELECT status, joined_at
		FROM queue_entries
		WHERE entry_id = $1 AND restaurant_id = $2
	`, entryID, restaurantID)
	if err := row.Scan(&status, &joinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, store.ErrEntryNotFound
		}
		return 0, false, err
	}
	if status != models.StatusWaiting {
		return 0, false, nil
	}

	var ahead int
	row = s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM queue_entries
		WHERE restaurant_id = $1 AND status = 'waiting' AND joined_at < $2
	`, restaurantID, joinedAt)
	if err := row.Scan(&ahead); err != nil {
		return 0, false, err
	}
	return ahead + 1, true, nil
}

func (s *Store) SeatedDurations(ctx context.Context, restaurantID string, limit int) ([]time.Duration, error) {
	return seatedDurations(ctx, s.pool, restaurantID, limit)
}

func (s *Store) CallEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	return s.applyEntryAction(ctx, input, "call", models.StatusCalled, "called_at", "queue.called")
}

func (s *Store) SeatEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	return s.applyEntryAction(ctx, input, "seat", models.StatusSeated, "seated_at", "queue.seated")
}

func (s *Store) CancelEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	return s.applyEntryAction(ctx, input, "cancel", models.StatusCancelled, "cancelled_at", "queue.cancelled")
}

func (s *Store) NoShowEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	// no_show reuses cancelled_at; status records why the entry terminated.
	return s.applyEntryAction(ctx, input, "no_show", models.StatusNoShow, "cancelled_at", "queue.no_show")
}

var timestampColumns = map[string]bool{
	"called_at":    true,
	"seated_at":    true,
	"cancelled_at": true,
}

func (s *Store) applyEntryAction(ctx context.Context, input store.EntryActionInput, action, newStatus, timestampColumn, eventType string) (models.QueueEntry, error) {
	if !timestampColumns[timestampColumn] {
		return models.QueueEntry{}, errors.New("unknown timestamp column " + timestampColumn)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.QueueEntry{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	// The status guard makes invalid transitions match zero rows, so a
	// terminal entry is never mutated.
	row := tx.QueryRow(ctx, `
		UPDATE queue_entries
		SET status = $1, `+timestampColumn+` = $2
		WHERE entry_id = $3 AND restaurant_id = $4 AND status = ANY($5)
		RETURNING `+entryColumns+`
	`, newStatus, occurredAt, input.EntryID, input.RestaurantID, store.AllowedFrom(action))

	var entry models.QueueEntry
	entry, err = scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = s.classifyEntryFailure(ctx, tx, input)
			return models.QueueEntry{}, err
		}
		return models.QueueEntry{}, err
	}

	if err = insertEntryEvent(ctx, tx, eventType, entry); err != nil {
		return models.QueueEntry{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.QueueEntry{}, err
	}
	return entry, nil
}

func (s *Store) classifyEntryFailure(ctx context.Context, tx pgx.Tx, input store.EntryActionInput) error {
	var status string
	row := tx.QueryRow(ctx, `
		SELECT status
		FROM queue_entries
		WHERE entry_id = $1 AND restaurant_id = $2
	`, input.EntryID, input.RestaurantID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrEntryNotFound
		}
		return err
	}
	return store.ErrInvalidState
}

// AutoNoShow flips called entries whose grace period lapsed to no_show.
// Runs from a background ticker; batches are locked with SKIP LOCKED so
// multiple instances do not trip over each other.
func (s *Store) AutoNoShow(ctx context.Context, grace time.Duration, batchSize int) (int, error) {
	if grace <= 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now().UTC()
	cutoff := now.Add(-grace)
	rows, err := tx.Query(ctx, `
		SELECT entry_id, restaurant_id
		FROM queue_entries
		WHERE status = 'called' AND called_at <= $1
		ORDER BY called_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $2
	`, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	type target struct {
		entryID      string
		restaurantID string
	}
	var targets []target
	for rows.Next() {
		var t target
		if err = rows.Scan(&t.entryID, &t.restaurantID); err != nil {
			rows.Close()
			return 0, err
		}
		targets = append(targets, t)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		if err = tx.Commit(ctx); err != nil {
			return 0, err
		}
		return 0, nil
	}

	processed := 0
	for _, t := range targets {
		row := tx.QueryRow(ctx, `
			UPDATE queue_entries
			SET status = 'no_show', cancelled_at = $1
			WHERE entry_id = $2 AND status = 'called'
			RETURNING `+entryColumns+`
		`, now, t.entryID)
		var entry models.QueueEntry
		entry, err = scanEntry(row)
		if err != nil {
			return 0, err
		}
		if err = insertEntryEvent(ctx, tx, "queue.no_show", entry); err != nil {
			return 0, err
		}
		processed++
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return processed, nil
}

func (s *Store) restaurantLocation(ctx context.Context, tx pgx.Tx, restaurantID string) (*time.Location, error) {
	var tzNull sql.NullString
	row := tx.QueryRow(ctx, `
		SELECT timezone
		FROM restaurants
		WHERE restaurant_id = $1
	`, restaurantID)
	if err := row.Scan(&tzNull); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRestaurantNotFound
		}
		return nil, err
	}
	tz := tzNull.String
	if tz == "" {
		tz = s.defaultTimezone
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, nil
	}
	return location, nil
}

// nextQueueNumber increments the daily counter in a single statement. The
// first join of a day seeds the counter from the newest pre-existing code so
// migrated rows keep the sequence monotonic; a malformed or absent last code
// seeds to the first code. The day boundary is the restaurant-local service
// date carried on each entry, never the UTC date.
func nextQueueNumber(ctx context.Context, tx pgx.Tx, restaurantID, serviceDate string) (int64, error) {
	var next int64
	row := tx.QueryRow(ctx, `
		UPDATE queue_code_sequences
		SET next_number = next_number + 1
		WHERE restaurant_id = $1 AND service_date = $2
		RETURNING next_number
	`, restaurantID, serviceDate)
	err := row.Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var lastCode sql.NullString
	row = tx.QueryRow(ctx, `
		SELECT queue_code
		FROM queue_entries
		WHERE restaurant_id = $1 AND service_date = $2
		ORDER BY joined_at DESC
		LIMIT 1
	`, restaurantID, serviceDate)
	if err := row.Scan(&lastCode); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	seed := store.SequenceForCode(lastCode.String)

	row = tx.QueryRow(ctx, `
		INSERT INTO queue_code_sequences (restaurant_id, service_date, next_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (restaurant_id, service_date)
		DO UPDATE SET next_number = queue_code_sequences.next_number + 1
		RETURNING next_number
	`, restaurantID, serviceDate, seed+1)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func localMidnight(at time.Time, location *time.Location) time.Time {
	local := at.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func seatedDurations(ctx context.Context, q queryer, restaurantID string, limit int) ([]time.Duration, error) {
	if limit <= 0 {
		limit = store.SeatedSampleLimit
	}
	rows, err := q.Query(ctx, `
		SELECT joined_at, seated_at
		FROM queue_entries
		WHERE restaurant_id = $1 AND status = 'seated' AND seated_at IS NOT NULL
		ORDER BY seated_at DESC
		LIMIT $2
	`, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var durations []time.Duration
	for rows.Next() {
		var joinedAt, seatedAt time.Time
		if err := rows.Scan(&joinedAt, &seatedAt); err != nil {
			return nil, err
		}
		durations = append(durations, seatedAt.Sub(joinedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return durations, nil
}

func findEntryByRequestID(ctx context.Context, tx pgx.Tx, requestID string) (models.QueueEntry, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM queue_entries
		WHERE request_id = $1
	`, requestID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.QueueEntry{}, false, nil
		}
		return models.QueueEntry{}, false, err
	}
	return entry, true, nil
}

func scanEntry(row pgx.Row) (models.QueueEntry, error) {
	var entry models.QueueEntry
	var phoneNull, notesNull sql.NullString
	var calledAtNull, seatedAtNull, cancelledAtNull sql.NullTime
	err := row.Scan(&entry.EntryID, &entry.RestaurantID, &entry.QueueCode, &entry.CustomerName,
		&phoneNull, &entry.PartySize, &notesNull, &entry.Status, &entry.Position,
		&entry.EstimatedWaitMinutes, &entry.RequestID, &entry.JoinedAt,
		&calledAtNull, &seatedAtNull, &cancelledAtNull)
	if err != nil {
		return models.QueueEntry{}, err
	}
	entry.Phone = phoneNull.String
	entry.Notes = notesNull.String
	entry.CalledAt = nullTimePtr(calledAtNull)
	entry.SeatedAt = nullTimePtr(seatedAtNull)
	entry.CancelledAt = nullTimePtr(cancelledAtNull)
	return entry, nil
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
