package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"dinequeue/internal/config"
	"dinequeue/internal/httpapi"
	"dinequeue/internal/hub"
	"dinequeue/internal/notifier"
	"dinequeue/internal/store"
	"dinequeue/internal/store/postgres"
	"dinequeue/internal/telemetry"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const feedConsumer = "realtime"

type eventEnvelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup("waitlist-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	st := postgres.NewStore(pool, postgres.Options{DefaultTimezone: cfg.DefaultTimezone})
	handler := httpapi.NewHandler(st, httpapi.Options{
		DefaultTimezone:   cfg.DefaultTimezone,
		VisitorBindingTTL: cfg.VisitorBindingTTL,
	})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		IPPerMinute:         cfg.RateLimitPerMinute,
		IPBurst:             cfg.RateLimitBurst,
		RestaurantPerMinute: cfg.RestaurantRateLimitPerMinute,
		RestaurantBurst:     cfg.RestaurantRateLimitBurst,
	})

	h := hub.New()

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/realtime/", newRealtimeHandler(h))
	mux.Handle("/", handler.Routes())

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "waitlist-service")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("waitlist-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	go runFeedPoller(st, h, cfg)

	go func() {
		if cfg.NoShowGrace <= 0 || cfg.NoShowInterval <= 0 {
			return
		}
		ticker := time.NewTicker(cfg.NoShowInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			count, err := st.AutoNoShow(ctx, cfg.NoShowGrace, cfg.NoShowBatchSize)
			cancel()
			if err != nil {
				log.Printf("auto no-show error: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("auto no-show processed %d entries", count)
			}
		}
	}()

	notifierWorker := notifier.New(st, notifier.Config{
		BatchSize: cfg.NotifierBatchSize,
		Provider:  cfg.NotifierProvider,
	})
	notifyCtx, notifyCancel := context.WithCancel(context.Background())
	defer notifyCancel()
	go notifier.Start(notifyCtx, cfg.NotifierPollInterval, notifierWorker)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	notifyCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newRealtimeHandler(h *hub.Hub) http.Handler {
	return sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		h.Register(client)
		defer h.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				h.UpdateSubscription(client, hub.Subscription{})
				continue
			}
			if parsed.RestaurantID == "" {
				_ = session.Close(4001, "restaurant_id required")
				return
			}
			h.UpdateSubscription(client, hub.Subscription{
				RestaurantID: parsed.RestaurantID,
				QueueCode:    parsed.QueueCode,
				EntryID:      parsed.EntryID,
			})
		}
	})
}

// runFeedPoller drains the outbox and fans events out to subscribed
// sockjs clients. Outbox rows are trimmed only up to the slowest
// consumer so the notifier never loses events.
func runFeedPoller(st *postgres.Store, h *hub.Hub, cfg config.Config) {
	interval := cfg.FeedPollInterval
	if interval <= 0 {
		interval = time.Second
	}

	offset, err := st.GetFeedOffset(context.Background(), feedConsumer)
	if err != nil {
		log.Printf("load feed offset error: %v", err)
	}

	var running int32
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		events, err := st.ListFeedEvents(ctx, offset, cfg.FeedBatchSize)
		cancel()
		if err != nil {
			log.Printf("feed poll error: %v", err)
			atomic.StoreInt32(&running, 0)
			continue
		}

		for _, event := range events {
			offset.LastEventTime = event.CreatedAt
			offset.LastEventID = event.EventID
			meta := extractMeta(event.Payload)
			meta.RestaurantID = event.RestaurantID
			envelope, _ := json.Marshal(eventEnvelope{
				Type:      event.Type,
				Payload:   event.Payload,
				CreatedAt: event.CreatedAt,
			})
			h.Broadcast(envelope, meta)
		}

		if len(events) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := st.UpdateFeedOffset(ctx, feedConsumer, offset); err != nil {
				log.Printf("update feed offset error: %v", err)
			}
			cleanupOutbox(ctx, st, offset, cfg.OutboxRetention)
			cancel()
		}
		atomic.StoreInt32(&running, 0)
	}
}

func cleanupOutbox(ctx context.Context, st *postgres.Store, offset store.FeedOffset, retention time.Duration) {
	notifierOffset, err := st.GetFeedOffset(ctx, "notifier")
	if err != nil {
		log.Printf("notifier offset error: %v", err)
		return
	}
	if notifierOffset.LastEventTime.IsZero() {
		return
	}
	cleanupBefore := offset.LastEventTime
	if notifierOffset.LastEventTime.Before(cleanupBefore) {
		cleanupBefore = notifierOffset.LastEventTime
	}
	if retention > 0 {
		retained := time.Now().Add(-retention)
		if retained.Before(cleanupBefore) {
			cleanupBefore = retained
		}
	}
	if err := st.CleanupOutbox(ctx, cleanupBefore); err != nil {
		log.Printf("cleanup outbox error: %v", err)
	}
}

func extractMeta(payload []byte) hub.Subscription {
	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return hub.Subscription{}
	}
	return hub.Subscription{
		RestaurantID: str(data["restaurant_id"]),
		QueueCode:    str(data["queue_code"]),
		EntryID:      str(data["entry_id"]),
	}
}

func str(value interface{}) string {
	if value == nil {
		return ""
	}
	if v, ok := value.(string); ok {
		return v
	}
	return fmt.Sprint(value)
}
