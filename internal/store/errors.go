package store

import "errors"

var (
	ErrRestaurantNotFound  = errors.New("restaurant not found")
	ErrEntryNotFound       = errors.New("queue entry not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidState        = errors.New("invalid entry state")
	ErrCodesExhausted      = errors.New("queue codes exhausted for today")
	ErrBindingNotFound     = errors.New("visitor binding not found")
)
