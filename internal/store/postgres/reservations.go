package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dinequeue/internal/models"
	"dinequeue/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reservationColumns = `reservation_id, restaurant_id, reservation_code, customer_name, phone,
	party_size, notes, status, reserved_for, reserved_time, request_id, created_at`

func (s *Store) CreateReservation(ctx context.Context, input store.CreateReservationInput) (models.Reservation, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Reservation{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, found, err := findReservationByRequestID(ctx, tx, input.RequestID)
	if err != nil {
		return models.Reservation{}, false, err
	}
	if found {
		if err = tx.Commit(ctx); err != nil {
			return models.Reservation{}, false, err
		}
		return existing, false, nil
	}

	location, err := s.restaurantLocation(ctx, tx, input.RestaurantID)
	if err != nil {
		return models.Reservation{}, false, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// Reservation codes are scoped to the creation day, independent of the
	// queue's lettering scheme. Numbers simply keep growing past 999.
	seq, err := nextReservationNumber(ctx, tx, input.RestaurantID, createdAt.In(location).Format("2006-01-02"))
	if err != nil {
		return models.Reservation{}, false, err
	}
	code := fmt.Sprintf("R-%03d", seq)

	var reservation models.Reservation
	row := tx.QueryRow(ctx, `
		INSERT INTO reservations (
			reservation_id, request_id, restaurant_id, reservation_code, customer_name, phone,
			party_size, notes, status, reserved_for, reserved_time, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+reservationColumns+`
	`, uuid.NewString(), input.RequestID, input.RestaurantID, code, input.CustomerName,
		nullIfEmpty(input.Phone), input.PartySize, nullIfEmpty(input.Notes),
		models.ReservationBooked, input.ReservedFor, input.ReservedTime, createdAt)
	reservation, err = scanReservation(row)
	if err != nil {
		return models.Reservation{}, false, err
	}

	if err = insertReservationEvent(ctx, tx, "reservation.booked", reservation); err != nil {
		return models.Reservation{}, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Reservation{}, false, err
	}
	return reservation, true, nil
}

func (s *Store) ListReservations(ctx context.Context, restaurantID, day string) ([]models.Reservation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE restaurant_id = $1 AND reserved_for = $2
		ORDER BY reserved_time ASC, created_at ASC
	`, restaurantID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *Store) ConfirmReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	return s.applyReservationAction(ctx, input, "confirm", models.ReservationConfirmed, "reservation.confirmed")
}

func (s *Store) SeatReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	return s.applyReservationAction(ctx, input, "seat", models.ReservationSeated, "reservation.seated")
}

func (s *Store) CancelReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	return s.applyReservationAction(ctx, input, "cancel", models.ReservationCancelled, "reservation.cancelled")
}

func (s *Store) NoShowReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	return s.applyReservationAction(ctx, input, "no_show", models.ReservationNoShow, "reservation.no_show")
}

func (s *Store) applyReservationAction(ctx context.Context, input store.ReservationActionInput, action, newStatus, eventType string) (models.Reservation, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Reservation{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		UPDATE reservations
		SET status = $1
		WHERE reservation_id = $2 AND restaurant_id = $3 AND status = ANY($4)
		RETURNING `+reservationColumns+`
	`, newStatus, input.ReservationID, input.RestaurantID, store.AllowedReservationFrom(action))

	var reservation models.Reservation
	reservation, err = scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = s.classifyReservationFailure(ctx, tx, input)
			return models.Reservation{}, err
		}
		return models.Reservation{}, err
	}

	if err = insertReservationEvent(ctx, tx, eventType, reservation); err != nil {
		return models.Reservation{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Reservation{}, err
	}
	return reservation, nil
}

func (s *Store) classifyReservationFailure(ctx context.Context, tx pgx.Tx, input store.ReservationActionInput) error {
	var status string
	row := tx.QueryRow(ctx, `
		SELECT status
		FROM reservations
		WHERE reservation_id = $1 AND restaurant_id = $2
	`, input.ReservationID, input.RestaurantID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrReservationNotFound
		}
		return err
	}
	return store.ErrInvalidState
}

func nextReservationNumber(ctx context.Context, tx pgx.Tx, restaurantID, serviceDate string) (int64, error) {
	var next int64
	row := tx.QueryRow(ctx, `
		INSERT INTO reservation_code_sequences (restaurant_id, service_date, next_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (restaurant_id, service_date)
		DO UPDATE SET next_number = reservation_code_sequences.next_number + 1
		RETURNING next_number
	`, restaurantID, serviceDate)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func findReservationByRequestID(ctx context.Context, tx pgx.Tx, requestID string) (models.Reservation, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE request_id = $1
	`, requestID)
	reservation, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Reservation{}, false, nil
		}
		return models.Reservation{}, false, err
	}
	return reservation, true, nil
}

func scanReservation(row pgx.Row) (models.Reservation, error) {
	var reservation models.Reservation
	var phoneNull, notesNull sql.NullString
	var reservedFor time.Time
	err := row.Scan(&reservation.ReservationID, &reservation.RestaurantID, &reservation.ReservationCode,
		&reservation.CustomerName, &phoneNull, &reservation.PartySize, &notesNull,
		&reservation.Status, &reservedFor, &reservation.ReservedTime,
		&reservation.RequestID, &reservation.CreatedAt)
	if err != nil {
		return models.Reservation{}, err
	}
	reservation.Phone = phoneNull.String
	reservation.Notes = notesNull.String
	reservation.ReservedFor = reservedFor.Format("2006-01-02")
	return reservation, nil
}
