package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dinequeue/internal/models"
	"dinequeue/internal/store"
)

type fakeStore struct {
	restaurantFn  func(ctx context.Context, restaurantID string) (models.Restaurant, bool, error)
	joinFn        func(ctx context.Context, input store.JoinQueueInput) (models.QueueEntry, bool, error)
	getEntryFn    func(ctx context.Context, restaurantID, entryID string) (models.QueueEntry, error)
	listQueueFn   func(ctx context.Context, restaurantID string) ([]models.QueueEntry, error)
	positionFn    func(ctx context.Context, restaurantID, entryID string) (int, bool, error)
	durationsFn   func(ctx context.Context, restaurantID string, limit int) ([]time.Duration, error)
	callFn        func(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error)
	seatFn        func(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error)
	cancelFn      func(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error)
	noShowFn      func(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error)
	createResvFn  func(ctx context.Context, input store.CreateReservationInput) (models.Reservation, bool, error)
	listResvFn    func(ctx context.Context, restaurantID, day string) ([]models.Reservation, error)
	confirmResvFn func(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error)
	seatResvFn    func(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error)
	cancelResvFn  func(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error)
	noShowResvFn  func(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error)
	getHoursFn    func(ctx context.Context, restaurantID string) (models.WeekSchedule, bool, error)
	updateHoursFn func(ctx context.Context, restaurantID string, schedule models.WeekSchedule) error
	saveBindingFn func(ctx context.Context, binding store.VisitorBinding) error
	getBindingFn  func(ctx context.Context, token string, now time.Time) (store.VisitorBinding, error)
	outboxFn      func(ctx context.Context, restaurantID string, after time.Time, limit int) ([]store.OutboxEvent, error)
}

func (f fakeStore) GetRestaurant(ctx context.Context, restaurantID string) (models.Restaurant, bool, error) {
	if f.restaurantFn == nil {
		return models.Restaurant{}, false, nil
	}
	return f.restaurantFn(ctx, restaurantID)
}

func (f fakeStore) JoinQueue(ctx context.Context, input store.JoinQueueInput) (models.QueueEntry, bool, error) {
	if f.joinFn == nil {
		return models.QueueEntry{}, false, nil
	}
	return f.joinFn(ctx, input)
}

func (f fakeStore) GetEntry(ctx context.Context, restaurantID, entryID string) (models.QueueEntry, error) {
	if f.getEntryFn == nil {
		return models.QueueEntry{}, store.ErrEntryNotFound
	}
	return f.getEntryFn(ctx, restaurantID, entryID)
}

func (f fakeStore) ListActiveQueue(ctx context.Context, restaurantID string) ([]models.QueueEntry, error) {
	if f.listQueueFn == nil {
		return nil, nil
	}
	return f.listQueueFn(ctx, restaurantID)
}

func (f fakeStore) LivePosition(ctx context.Context, restaurantID, entryID string) (int, bool, error) {
	if f.positionFn == nil {
		return 0, false, nil
	}
	return f.positionFn(ctx, restaurantID, entryID)
}

func (f fakeStore) SeatedDurations(ctx context.Context, restaurantID string, limit int) ([]time.Duration, error) {
	if f.durationsFn == nil {
		return nil, nil
	}
	return f.durationsFn(ctx, restaurantID, limit)
}

func (f fakeStore) CallEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	if f.callFn == nil {
		return models.QueueEntry{}, nil
	}
	return f.callFn(ctx, input)
}

func (f fakeStore) SeatEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	if f.seatFn == nil {
		return models.QueueEntry{}, nil
	}
	return f.seatFn(ctx, input)
}

func (f fakeStore) CancelEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	if f.cancelFn == nil {
		return models.QueueEntry{}, nil
	}
	return f.cancelFn(ctx, input)
}

func (f fakeStore) NoShowEntry(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
	if f.noShowFn == nil {
		return models.QueueEntry{}, nil
	}
	return f.noShowFn(ctx, input)
}

func (f fakeStore) CreateReservation(ctx context.Context, input store.CreateReservationInput) (models.Reservation, bool, error) {
	if f.createResvFn == nil {
		return models.Reservation{}, false, nil
	}
	return f.createResvFn(ctx, input)
}

func (f fakeStore) ListReservations(ctx context.Context, restaurantID, day string) ([]models.Reservation, error) {
	if f.listResvFn == nil {
		return nil, nil
	}
	return f.listResvFn(ctx, restaurantID, day)
}

func (f fakeStore) ConfirmReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	if f.confirmResvFn == nil {
		return models.Reservation{}, nil
	}
	return f.confirmResvFn(ctx, input)
}

func (f fakeStore) SeatReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	if f.seatResvFn == nil {
		return models.Reservation{}, nil
	}
	return f.seatResvFn(ctx, input)
}

func (f fakeStore) CancelReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	if f.cancelResvFn == nil {
		return models.Reservation{}, nil
	}
	return f.cancelResvFn(ctx, input)
}

func (f fakeStore) NoShowReservation(ctx context.Context, input store.ReservationActionInput) (models.Reservation, error) {
	if f.noShowResvFn == nil {
		return models.Reservation{}, nil
	}
	return f.noShowResvFn(ctx, input)
}

func (f fakeStore) GetBusinessHours(ctx context.Context, restaurantID string) (models.WeekSchedule, bool, error) {
	if f.getHoursFn == nil {
		return nil, false, nil
	}
	return f.getHoursFn(ctx, restaurantID)
}

func (f fakeStore) UpdateBusinessHours(ctx context.Context, restaurantID string, schedule models.WeekSchedule) error {
	if f.updateHoursFn == nil {
		return nil
	}
	return f.updateHoursFn(ctx, restaurantID, schedule)
}

func (f fakeStore) SaveVisitorBinding(ctx context.Context, binding store.VisitorBinding) error {
	if f.saveBindingFn == nil {
		return nil
	}
	return f.saveBindingFn(ctx, binding)
}

func (f fakeStore) GetVisitorBinding(ctx context.Context, token string, now time.Time) (store.VisitorBinding, error) {
	if f.getBindingFn == nil {
		return store.VisitorBinding{}, store.ErrBindingNotFound
	}
	return f.getBindingFn(ctx, token, now)
}

func (f fakeStore) ListOutboxEvents(ctx context.Context, restaurantID string, after time.Time, limit int) ([]store.OutboxEvent, error) {
	if f.outboxFn == nil {
		return nil, nil
	}
	return f.outboxFn(ctx, restaurantID, after, limit)
}

const (
	testRestaurantID = "22222222-2222-2222-2222-222222222222"
	testRequestID    = "11111111-1111-1111-1111-111111111111"
	testEntryID      = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func TestJoinQueueSuccess(t *testing.T) {
	joinedAt := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	st := fakeStore{
		joinFn: func(ctx context.Context, input store.JoinQueueInput) (models.QueueEntry, bool, error) {
			return models.QueueEntry{
				EntryID:              testEntryID,
				QueueCode:            "A-001",
				Status:               models.StatusWaiting,
				Position:             1,
				EstimatedWaitMinutes: 10,
				JoinedAt:             joinedAt,
				RequestID:            input.RequestID,
			}, true, nil
		},
	}

	h := NewHandler(st, Options{})

	payload := map[string]interface{}{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
		"customer_name": "Budi",
		"party_size":    4,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/queue", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var entry models.QueueEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.QueueCode != "A-001" || entry.Status != models.StatusWaiting || entry.Position != 1 {
		t.Fatalf("unexpected entry response: %+v", entry)
	}
}

func TestJoinQueueMissingFields(t *testing.T) {
	h := NewHandler(fakeStore{}, Options{})

	payload := map[string]interface{}{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
		"party_size":    2,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/queue", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestJoinQueueBadPartySize(t *testing.T) {
	h := NewHandler(fakeStore{}, Options{})

	payload := map[string]interface{}{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
		"customer_name": "Budi",
		"party_size":    0,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/queue", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSeatEntryInvalidState(t *testing.T) {
	st := fakeStore{
		seatFn: func(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
			return models.QueueEntry{}, store.ErrInvalidState
		},
	}
	h := NewHandler(st, Options{})

	payload := map[string]string{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/queue/"+testEntryID+"/actions/seat", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if errResp.Error.Code != "invalid_state" {
		t.Fatalf("expected invalid_state, got %s", errResp.Error.Code)
	}
}

func TestCallEntrySuccess(t *testing.T) {
	calledAt := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	st := fakeStore{
		callFn: func(ctx context.Context, input store.EntryActionInput) (models.QueueEntry, error) {
			return models.QueueEntry{
				EntryID:   input.EntryID,
				QueueCode: "A-004",
				Status:    models.StatusCalled,
				CalledAt:  &calledAt,
			}, nil
		},
	}
	h := NewHandler(st, Options{})

	payload := map[string]string{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/queue/"+testEntryID+"/actions/call", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var entry models.QueueEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.Status != models.StatusCalled || entry.CalledAt == nil {
		t.Fatalf("unexpected entry response: %+v", entry)
	}
}

func TestLivePositionNotWaiting(t *testing.T) {
	st := fakeStore{
		positionFn: func(ctx context.Context, restaurantID, entryID string) (int, bool, error) {
			return 0, false, nil
		},
	}
	h := NewHandler(st, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/queue/"+testEntryID+"/position?restaurant_id="+testRestaurantID, nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
}

func TestLivePositionWaiting(t *testing.T) {
	st := fakeStore{
		positionFn: func(ctx context.Context, restaurantID, entryID string) (int, bool, error) {
			return 3, true, nil
		},
	}
	h := NewHandler(st, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/queue/"+testEntryID+"/position?restaurant_id="+testRestaurantID, nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["position"] != 3 {
		t.Fatalf("expected position 3, got %d", payload["position"])
	}
}

func TestEstimate(t *testing.T) {
	st := fakeStore{
		durationsFn: func(ctx context.Context, restaurantID string, limit int) ([]time.Duration, error) {
			return []time.Duration{8 * time.Minute, 12 * time.Minute}, nil
		},
	}
	h := NewHandler(st, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/queue/estimate?restaurant_id="+testRestaurantID+"&position=3", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["estimated_wait_minutes"] != 30 {
		t.Fatalf("expected 30 minutes, got %d", payload["estimated_wait_minutes"])
	}
}

func TestStatusOpen(t *testing.T) {
	st := fakeStore{
		restaurantFn: func(ctx context.Context, restaurantID string) (models.Restaurant, bool, error) {
			return models.Restaurant{RestaurantID: restaurantID, Name: "Warung Tekno", Timezone: "UTC"}, true, nil
		},
		getHoursFn: func(ctx context.Context, restaurantID string) (models.WeekSchedule, bool, error) {
			schedule := models.WeekSchedule{}
			for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
				schedule[weekday] = models.DayHours{Open: "00:00", Close: "23:59"}
			}
			return schedule, true, nil
		},
	}
	h := NewHandler(st, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/status?restaurant_id="+testRestaurantID, nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload struct {
		IsOpen bool `json:"is_open"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.IsOpen {
		t.Fatalf("expected restaurant to be open")
	}
}

func TestStatusRestaurantNotFound(t *testing.T) {
	st := fakeStore{
		restaurantFn: func(ctx context.Context, restaurantID string) (models.Restaurant, bool, error) {
			return models.Restaurant{}, false, nil
		},
	}
	h := NewHandler(st, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/status?restaurant_id="+testRestaurantID, nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestCreateReservationSuccess(t *testing.T) {
	st := fakeStore{
		createResvFn: func(ctx context.Context, input store.CreateReservationInput) (models.Reservation, bool, error) {
			return models.Reservation{
				ReservationID:   "55555555-5555-5555-5555-555555555555",
				ReservationCode: "R-001",
				Status:          models.ReservationBooked,
				ReservedFor:     input.ReservedFor,
				ReservedTime:    input.ReservedTime,
			}, true, nil
		},
	}
	h := NewHandler(st, Options{})

	payload := map[string]interface{}{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
		"customer_name": "Sari",
		"party_size":    2,
		"reserved_for":  "2026-03-10",
		"reserved_time": "19:30",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var reservation models.Reservation
	if err := json.NewDecoder(resp.Body).Decode(&reservation); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if reservation.ReservationCode != "R-001" || reservation.Status != models.ReservationBooked {
		t.Fatalf("unexpected reservation response: %+v", reservation)
	}
}

func TestCreateReservationBadDate(t *testing.T) {
	h := NewHandler(fakeStore{}, Options{})

	payload := map[string]interface{}{
		"request_id":    testRequestID,
		"restaurant_id": testRestaurantID,
		"customer_name": "Sari",
		"party_size":    2,
		"reserved_for":  "10-03-2026",
		"reserved_time": "19:30",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUpdateHoursRejectsBadDay(t *testing.T) {
	h := NewHandler(fakeStore{}, Options{})

	payload := map[string]interface{}{
		"restaurant_id": testRestaurantID,
		"days": []map[string]interface{}{
			{"day_of_week": 7, "open": "10:00", "close": "21:00"},
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/api/hours", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestVisitBindingRoundTrip(t *testing.T) {
	var saved store.VisitorBinding
	st := fakeStore{
		saveBindingFn: func(ctx context.Context, binding store.VisitorBinding) error {
			saved = binding
			return nil
		},
		getBindingFn: func(ctx context.Context, token string, now time.Time) (store.VisitorBinding, error) {
			if token != saved.Token {
				return store.VisitorBinding{}, store.ErrBindingNotFound
			}
			return saved, nil
		},
	}
	h := NewHandler(st, Options{VisitorBindingTTL: 8 * time.Hour})

	payload := map[string]string{"entry_id": testEntryID}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/api/visit", bytes.NewReader(body))
	req.Header.Set("X-Visitor-Token", "visitor-token-1")
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if saved.EntryID != testEntryID {
		t.Fatalf("expected binding saved for entry, got %+v", saved)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/visit", nil)
	req.Header.Set("X-Visitor-Token", "visitor-token-1")
	resp = httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestVisitBindingUnknownEntry(t *testing.T) {
	st := fakeStore{
		saveBindingFn: func(ctx context.Context, binding store.VisitorBinding) error {
			return store.ErrEntryNotFound
		},
	}
	h := NewHandler(st, Options{})

	payload := map[string]string{"entry_id": testEntryID}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/api/visit", bytes.NewReader(body))
	req.Header.Set("X-Visitor-Token", "visitor-token-2")
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if errResp.Error.Code != "entry_not_found" {
		t.Fatalf("expected entry_not_found, got %s", errResp.Error.Code)
	}
}

func TestVisitBindingExpired(t *testing.T) {
	st := fakeStore{
		getBindingFn: func(ctx context.Context, token string, now time.Time) (store.VisitorBinding, error) {
			return store.VisitorBinding{}, store.ErrBindingNotFound
		},
	}
	h := NewHandler(st, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/visit", nil)
	req.Header.Set("X-Visitor-Token", "gone-token")
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestListEventsBadAfter(t *testing.T) {
	h := NewHandler(fakeStore{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/events?restaurant_id="+testRestaurantID+"&after=yesterday", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
