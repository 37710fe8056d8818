package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sleepypillowz/thesis/internal/broadcast"
	"github.com/sleepypillowz/thesis/internal/config"
	"github.com/sleepypillowz/thesis/internal/httpapi"
	"github.com/sleepypillowz/thesis/internal/hub"
	"github.com/sleepypillowz/thesis/internal/snapshot"
	"github.com/sleepypillowz/thesis/internal/store/postgres"
	"github.com/sleepypillowz/thesis/internal/telemetry"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup("queue-service")
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

	queueStore := postgres.NewStore(pool, postgres.Options{
		QueueNumberCeiling: cfg.QueueNumberCeiling,
	})
	builder := snapshot.NewBuilder(queueStore)
	displayHub := hub.New()
	publisher := broadcast.NewPublisher(builder, displayHub, cfg.SnapshotBuffer)
	go publisher.Run()
	defer publisher.Close()

	handler := httpapi.NewHandler(queueStore, builder, publisher)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/realtime/", displayEndpoint(displayHub, cfg.ClientSendBuffer))
	mux.Handle("/", handler.Routes())

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "queue-service")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("queue-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// displayEndpoint connects front-desk displays to the snapshot hub.
// Displays only listen; any inbound message is ignored.
func displayEndpoint(displayHub *hub.Hub, sendBuffer int) http.Handler {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, sendBuffer)}
		displayHub.Register(client)
		defer displayHub.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			if _, err := session.Recv(); err != nil {
				return
			}
		}
	})
}
