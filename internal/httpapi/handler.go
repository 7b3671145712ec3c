package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dinequeue/internal/hours"
	"dinequeue/internal/models"
	"dinequeue/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store             store.EntryStore
	defaultTimezone   string
	visitorBindingTTL time.Duration
}

type Options struct {
	DefaultTimezone   string
	VisitorBindingTTL time.Duration
}

func NewHandler(store store.EntryStore, options Options) *Handler {
	tz := options.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}
	ttl := options.VisitorBindingTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Handler{store: store, defaultTimezone: tz, visitorBindingTTL: ttl}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/queue", h.handleQueue)
	mux.HandleFunc("/api/queue/estimate", h.handleEstimate)
	mux.HandleFunc("/api/queue/", h.handleQueueEntry)
	mux.HandleFunc("/api/reservations", h.handleReservations)
	mux.HandleFunc("/api/reservations/", h.handleReservationActions)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/hours", h.handleHours)
	mux.HandleFunc("/api/visit", h.handleVisit)
	mux.HandleFunc("/api/events", h.handleEvents)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type joinQueueRequest struct {
	RequestID    string `json:"request_id"`
	RestaurantID string `json:"restaurant_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	PartySize    int    `json:"party_size"`
	Notes        string `json:"notes"`
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleJoinQueue(w, r)
	case http.MethodGet:
		h.handleListQueue(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	var req joinQueueRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	req.RestaurantID = strings.TrimSpace(req.RestaurantID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Notes = strings.TrimSpace(req.Notes)

	if req.RequestID == "" || req.RestaurantID == "" || req.CustomerName == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id, restaurant_id, and customer_name are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.RestaurantID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and restaurant_id must be UUIDs")
		return
	}
	if req.PartySize < 1 {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "party_size must be at least 1")
		return
	}
	if req.Phone != "" && !isValidPhone(req.Phone) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "phone must be 8-16 digits")
		return
	}

	entry, _, err := h.store.JoinQueue(r.Context(), store.JoinQueueInput{
		RequestID:    req.RequestID,
		RestaurantID: req.RestaurantID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		PartySize:    req.PartySize,
		Notes:        req.Notes,
		JoinedAt:     time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleListQueue(w http.ResponseWriter, r *http.Request) {
	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	if restaurantID == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required")
		return
	}
	if !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id must be a UUID")
		return
	}

	entries, err := h.store.ListActiveQueue(r.Context(), restaurantID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	positionRaw := strings.TrimSpace(r.URL.Query().Get("position"))
	if restaurantID == "" || positionRaw == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id and position are required")
		return
	}
	if !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id must be a UUID")
		return
	}
	position, err := strconv.Atoi(positionRaw)
	if err != nil || position < 1 {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "position must be a positive integer")
		return
	}

	durations, err := h.store.SeatedDurations(r.Context(), restaurantID, store.SeatedSampleLimit)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"position":               position,
		"estimated_wait_minutes": store.EstimateWait(durations, position),
	})
}

func (h *Handler) handleQueueEntry(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/queue/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	entryID := parts[0]
	if !isValidUUID(entryID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "entry_id must be a UUID")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetEntry(w, r, entryID)
	case len(parts) == 2 && parts[1] == "position" && r.Method == http.MethodGet:
		h.handleLivePosition(w, r, entryID)
	case len(parts) == 3 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleEntryAction(w, r, entryID, parts[2])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetEntry(w http.ResponseWriter, r *http.Request, entryID string) {
	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	if restaurantID == "" || !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required and must be a UUID")
		return
	}

	entry, err := h.store.GetEntry(r.Context(), restaurantID, entryID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleLivePosition(w http.ResponseWriter, r *http.Request, entryID string) {
	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	if restaurantID == "" || !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required and must be a UUID")
		return
	}

	position, waiting, err := h.store.LivePosition(r.Context(), restaurantID, entryID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	if !waiting {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"position": position})
}

type entryActionRequest struct {
	RequestID    string `json:"request_id"`
	RestaurantID string `json:"restaurant_id"`
}

func (h *Handler) handleEntryAction(w http.ResponseWriter, r *http.Request, entryID, action string) {
	var req entryActionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	req.RestaurantID = strings.TrimSpace(req.RestaurantID)
	if req.RequestID == "" || req.RestaurantID == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and restaurant_id are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.RestaurantID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and restaurant_id must be UUIDs")
		return
	}

	input := store.EntryActionInput{
		RequestID:    req.RequestID,
		RestaurantID: req.RestaurantID,
		EntryID:      entryID,
		OccurredAt:   time.Now().UTC(),
	}

	var entry models.QueueEntry
	var err error
	switch action {
	case "call":
		entry, err = h.store.CallEntry(r.Context(), input)
	case "seat":
		entry, err = h.store.SeatEntry(r.Context(), input)
	case "cancel":
		entry, err = h.store.CancelEntry(r.Context(), input)
	case "no-show":
		entry, err = h.store.NoShowEntry(r.Context(), input)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type createReservationRequest struct {
	RequestID    string `json:"request_id"`
	RestaurantID string `json:"restaurant_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	PartySize    int    `json:"party_size"`
	Notes        string `json:"notes"`
	ReservedFor  string `json:"reserved_for"`
	ReservedTime string `json:"reserved_time"`
}

func (h *Handler) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateReservation(w, r)
	case http.MethodGet:
		h.handleListReservations(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	req.RestaurantID = strings.TrimSpace(req.RestaurantID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.ReservedFor = strings.TrimSpace(req.ReservedFor)
	req.ReservedTime = strings.TrimSpace(req.ReservedTime)

	if req.RequestID == "" || req.RestaurantID == "" || req.CustomerName == "" || req.ReservedFor == "" || req.ReservedTime == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id, restaurant_id, customer_name, reserved_for, and reserved_time are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.RestaurantID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and restaurant_id must be UUIDs")
		return
	}
	if req.PartySize < 1 {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "party_size must be at least 1")
		return
	}
	if _, err := time.Parse("2006-01-02", req.ReservedFor); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "reserved_for must be YYYY-MM-DD")
		return
	}
	if _, err := time.Parse("15:04", req.ReservedTime); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "reserved_time must be HH:MM")
		return
	}
	if req.Phone != "" && !isValidPhone(req.Phone) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "phone must be 8-16 digits")
		return
	}

	reservation, _, err := h.store.CreateReservation(r.Context(), store.CreateReservationInput{
		RequestID:    req.RequestID,
		RestaurantID: req.RestaurantID,
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		PartySize:    req.PartySize,
		Notes:        req.Notes,
		ReservedFor:  req.ReservedFor,
		ReservedTime: req.ReservedTime,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) handleListReservations(w http.ResponseWriter, r *http.Request) {
	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	day := strings.TrimSpace(r.URL.Query().Get("date"))
	if restaurantID == "" || day == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id and date are required")
		return
	}
	if !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id must be a UUID")
		return
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}

	reservations, err := h.store.ListReservations(r.Context(), restaurantID, day)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

func (h *Handler) handleReservationActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[1] != "actions" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	reservationID := parts[0]
	action := parts[2]
	if !isValidUUID(reservationID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "reservation_id must be a UUID")
		return
	}

	var req entryActionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	req.RestaurantID = strings.TrimSpace(req.RestaurantID)
	if req.RequestID == "" || req.RestaurantID == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and restaurant_id are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.RestaurantID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and restaurant_id must be UUIDs")
		return
	}

	input := store.ReservationActionInput{
		RequestID:     req.RequestID,
		RestaurantID:  req.RestaurantID,
		ReservationID: reservationID,
		OccurredAt:    time.Now().UTC(),
	}

	var reservation models.Reservation
	var err error
	switch action {
	case "confirm":
		reservation, err = h.store.ConfirmReservation(r.Context(), input)
	case "seat":
		reservation, err = h.store.SeatReservation(r.Context(), input)
	case "cancel":
		reservation, err = h.store.CancelReservation(r.Context(), input)
	case "no-show":
		reservation, err = h.store.NoShowReservation(r.Context(), input)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	if restaurantID == "" || !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required and must be a UUID")
		return
	}

	restaurant, found, err := h.store.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	if !found {
		writeError(w, "", http.StatusNotFound, "restaurant_not_found", "restaurant not found")
		return
	}

	schedule, _, err := h.store.GetBusinessHours(r.Context(), restaurantID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	timezone := restaurant.Timezone
	if timezone == "" {
		timezone = h.defaultTimezone
	}

	writeJSON(w, http.StatusOK, hours.Compute(schedule, timezone, h.defaultTimezone, time.Now()))
}

type dayHoursRow struct {
	DayOfWeek int    `json:"day_of_week"`
	Open      string `json:"open"`
	Close     string `json:"close"`
	IsClosed  bool   `json:"is_closed"`
}

type updateHoursRequest struct {
	RestaurantID string        `json:"restaurant_id"`
	Days         []dayHoursRow `json:"days"`
}

func (h *Handler) handleHours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetHours(w, r)
	case http.MethodPut:
		h.handleUpdateHours(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGetHours(w http.ResponseWriter, r *http.Request) {
	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	if restaurantID == "" || !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required and must be a UUID")
		return
	}

	schedule, _, err := h.store.GetBusinessHours(r.Context(), restaurantID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	rows := make([]dayHoursRow, 0, len(schedule))
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		day, ok := schedule[weekday]
		if !ok {
			continue
		}
		rows = append(rows, dayHoursRow{
			DayOfWeek: int(weekday),
			Open:      day.Open,
			Close:     day.Close,
			IsClosed:  day.IsClosed,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleUpdateHours(w http.ResponseWriter, r *http.Request) {
	var req updateHoursRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.RestaurantID = strings.TrimSpace(req.RestaurantID)
	if req.RestaurantID == "" || !isValidUUID(req.RestaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required and must be a UUID")
		return
	}
	if len(req.Days) == 0 {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "days is required")
		return
	}

	schedule := models.WeekSchedule{}
	for _, row := range req.Days {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "day_of_week must be 0-6")
			return
		}
		if !row.IsClosed {
			if _, err := time.Parse("15:04", row.Open); err != nil {
				writeError(w, "", http.StatusBadRequest, "invalid_request", "open must be HH:MM")
				return
			}
			if _, err := time.Parse("15:04", row.Close); err != nil {
				writeError(w, "", http.StatusBadRequest, "invalid_request", "close must be HH:MM")
				return
			}
		}
		schedule[time.Weekday(row.DayOfWeek)] = models.DayHours{
			Open:     row.Open,
			Close:    row.Close,
			IsClosed: row.IsClosed,
		}
	}

	if err := h.store.UpdateBusinessHours(r.Context(), req.RestaurantID, schedule); err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visitBindingRequest struct {
	EntryID string `json:"entry_id"`
}

func (h *Handler) handleVisit(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.Header.Get("X-Visitor-Token"))
	if token == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "X-Visitor-Token header is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		binding, err := h.store.GetVisitorBinding(r.Context(), token, time.Now().UTC())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, binding)
	case http.MethodPut:
		var req visitBindingRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.EntryID = strings.TrimSpace(req.EntryID)
		if req.EntryID == "" || !isValidUUID(req.EntryID) {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "entry_id is required and must be a UUID")
			return
		}
		binding := store.VisitorBinding{
			Token:     token,
			EntryID:   req.EntryID,
			ExpiresAt: time.Now().UTC().Add(h.visitorBindingTTL),
		}
		if err := h.store.SaveVisitorBinding(r.Context(), binding); err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, binding)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	restaurantID := strings.TrimSpace(r.URL.Query().Get("restaurant_id"))
	if restaurantID == "" || !isValidUUID(restaurantID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "restaurant_id is required and must be a UUID")
		return
	}

	afterRaw := strings.TrimSpace(r.URL.Query().Get("after"))
	var after time.Time
	if afterRaw != "" {
		parsed, err := time.Parse(time.RFC3339, afterRaw)
		if err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "after must be RFC3339 timestamp")
			return
		}
		after = parsed
	}

	limit := 100
	if limitRaw := strings.TrimSpace(r.URL.Query().Get("limit")); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events, err := h.store.ListOutboxEvents(r.Context(), restaurantID, after, limit)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func isValidPhone(value string) bool {
	if len(value) < 8 || len(value) > 16 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrRestaurantNotFound):
		return http.StatusNotFound, "restaurant_not_found", "restaurant not found"
	case errors.Is(err, store.ErrEntryNotFound):
		return http.StatusNotFound, "entry_not_found", "queue entry not found"
	case errors.Is(err, store.ErrReservationNotFound):
		return http.StatusNotFound, "reservation_not_found", "reservation not found"
	case errors.Is(err, store.ErrBindingNotFound):
		return http.StatusNotFound, "binding_not_found", "visitor binding not found"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "entry state does not allow this action"
	case errors.Is(err, store.ErrCodesExhausted):
		return http.StatusConflict, "codes_exhausted", "queue codes exhausted for today"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
