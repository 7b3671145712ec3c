package postgres

import (
	"context"
	"errors"
	"time"

	"dinequeue/internal/models"
	"dinequeue/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

func (s *Store) GetBusinessHours(ctx context.Context, restaurantID string) (models.WeekSchedule, bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT day_of_week, open_time, close_time, is_closed
		FROM business_hours
		WHERE restaurant_id = $1
		ORDER BY day_of_week ASC
	`, restaurantID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	schedule := models.WeekSchedule{}
	for rows.Next() {
		var dayOfWeek int
		var day models.DayHours
		if err := rows.Scan(&dayOfWeek, &day.Open, &day.Close, &day.IsClosed); err != nil {
			return nil, false, err
		}
		if dayOfWeek < 0 || dayOfWeek > 6 {
			continue
		}
		schedule[time.Weekday(dayOfWeek)] = day
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(schedule) == 0 {
		return nil, false, nil
	}
	return schedule, true, nil
}

func (s *Store) UpdateBusinessHours(ctx context.Context, restaurantID string, schedule models.WeekSchedule) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		day, ok := schedule[weekday]
		if !ok {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO business_hours (restaurant_id, day_of_week, open_time, close_time, is_closed)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (restaurant_id, day_of_week)
			DO UPDATE SET open_time = $3, close_time = $4, is_closed = $5
		`, restaurantID, int(weekday), day.Open, day.Close, day.IsClosed)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) SaveVisitorBinding(ctx context.Context, binding store.VisitorBinding) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO visitor_bindings (token, entry_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token)
		DO UPDATE SET entry_id = $2, expires_at = $3
	`, binding.Token, binding.EntryID, binding.ExpiresAt)
	if err != nil {
		// Binding an entry that does not exist trips the FK, not a lookup.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return store.ErrEntryNotFound
		}
		return err
	}
	return nil
}

// GetVisitorBinding treats an expired binding as absent and purges it.
func (s *Store) GetVisitorBinding(ctx context.Context, token string, now time.Time) (store.VisitorBinding, error) {
	var binding store.VisitorBinding
	row := s.pool.QueryRow(ctx, `
		SELECT token, entry_id, expires_at
		FROM visitor_bindings
		WHERE token = $1
	`, token)
	if err := row.Scan(&binding.Token, &binding.EntryID, &binding.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.VisitorBinding{}, store.ErrBindingNotFound
		}
		return store.VisitorBinding{}, err
	}
	if !binding.ExpiresAt.After(now) {
		_, _ = s.pool.Exec(ctx, `DELETE FROM visitor_bindings WHERE token = $1`, token)
		return store.VisitorBinding{}, store.ErrBindingNotFound
	}
	return binding, nil
}
