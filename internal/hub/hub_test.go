package hub

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		meta Subscription
		want bool
	}{
		{"empty subscription matches all", Subscription{}, Subscription{RestaurantID: "r1"}, true},
		{"restaurant match", Subscription{RestaurantID: "r1"}, Subscription{RestaurantID: "r1"}, true},
		{"restaurant mismatch", Subscription{RestaurantID: "r1"}, Subscription{RestaurantID: "r2"}, false},
		{"code match", Subscription{RestaurantID: "r1", QueueCode: "A-003"}, Subscription{RestaurantID: "r1", QueueCode: "A-003"}, true},
		{"code mismatch", Subscription{RestaurantID: "r1", QueueCode: "A-003"}, Subscription{RestaurantID: "r1", QueueCode: "A-004"}, false},
		{"entry mismatch", Subscription{EntryID: "e1"}, Subscription{EntryID: "e2"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := match(tc.sub, tc.meta); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBroadcastDeliversToMatchingClient(t *testing.T) {
	h := New()
	client := &Client{ID: "c1", Send: make(chan []byte, 1), Subscription: Subscription{RestaurantID: "r1"}}
	other := &Client{ID: "c2", Send: make(chan []byte, 1), Subscription: Subscription{RestaurantID: "r2"}}
	h.Register(client)
	h.Register(other)

	h.Broadcast([]byte(`{"type":"queue.called"}`), Subscription{RestaurantID: "r1"})

	select {
	case msg := <-client.Send:
		if string(msg) != `{"type":"queue.called"}` {
			t.Fatalf("unexpected message: %s", msg)
		}
	default:
		t.Fatalf("expected message for matching client")
	}
	select {
	case msg := <-other.Send:
		t.Fatalf("unexpected message for other restaurant: %s", msg)
	default:
	}
}

func TestParseSubscribe(t *testing.T) {
	msg, ok := ParseSubscribe([]byte(`{"action":"subscribe","restaurant_id":"r1","queue_code":"B-002"}`))
	if !ok || msg.RestaurantID != "r1" || msg.QueueCode != "B-002" {
		t.Fatalf("unexpected parse result: %+v ok=%v", msg, ok)
	}
	if _, ok := ParseSubscribe([]byte(`{"action":"ping"}`)); ok {
		t.Fatalf("expected ping to be rejected")
	}
	if _, ok := ParseSubscribe([]byte(`not json`)); ok {
		t.Fatalf("expected malformed message to be rejected")
	}
}
