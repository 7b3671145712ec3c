package store

import "dinequeue/internal/models"

var entryTransitions = map[string][]string{
	"call":    {models.StatusWaiting},
	"seat":    {models.StatusCalled},
	"cancel":  {models.StatusWaiting, models.StatusCalled},
	"no_show": {models.StatusCalled},
}

var reservationTransitions = map[string][]string{
	"confirm": {models.ReservationBooked},
	"seat":    {models.ReservationConfirmed},
	"cancel":  {models.ReservationBooked, models.ReservationConfirmed},
	"no_show": {models.ReservationConfirmed},
}

func ValidTransition(action, fromStatus string) bool {
	return allowed(entryTransitions, action, fromStatus)
}

func ValidReservationTransition(action, fromStatus string) bool {
	return allowed(reservationTransitions, action, fromStatus)
}

// AllowedFrom lists the entry statuses an action may start from. The postgres
// store interpolates these into guarded UPDATE statements so an invalid
// transition matches zero rows instead of mutating timestamps.
func AllowedFrom(action string) []string {
	return entryTransitions[action]
}

func AllowedReservationFrom(action string) []string {
	return reservationTransitions[action]
}

func allowed(transitions map[string][]string, action, fromStatus string) bool {
	states, ok := transitions[action]
	if !ok {
		return false
	}
	for _, status := range states {
		if status == fromStatus {
			return true
		}
	}
	return false
}
