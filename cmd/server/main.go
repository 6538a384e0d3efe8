package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusforum/internal/authz"
	authzmetrics "campusforum/internal/authz/metrics"
	"campusforum/internal/identity"
	identityhandler "campusforum/internal/identity/handler"
	"campusforum/internal/jwtauth"
	"campusforum/internal/jwtauth/revocation"
	"campusforum/internal/notification"
	notificationhandler "campusforum/internal/notification/handler"
	notificationmetrics "campusforum/internal/notification/metrics"
	"campusforum/internal/platform/config"
	"campusforum/internal/platform/httpserver"
	"campusforum/internal/platform/logger"
	"campusforum/internal/platform/postgres"
	"campusforum/internal/platform/redis"
	"campusforum/internal/retention"
	retentionhandler "campusforum/internal/retention/handler"
	retentionmetrics "campusforum/internal/retention/metrics"
	"campusforum/internal/subscription"
	subscriptionhandler "campusforum/internal/subscription/handler"
	"campusforum/internal/thread"
	threadhandler "campusforum/internal/thread/handler"
	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/audit"
	auditkafka "campusforum/pkg/platform/audit/store/kafka"
	auditmemory "campusforum/pkg/platform/audit/store/memory"
	auditworker "campusforum/pkg/platform/audit/worker"
	authmw "campusforum/pkg/platform/middleware/auth"
	"campusforum/pkg/platform/middleware/metadata"
	request "campusforum/pkg/platform/middleware/request"
	"campusforum/pkg/platform/tx"
)

// revocationList is what main needs from a token revocation store: the
// middleware checks it, the identity service writes to it.
type revocationList interface {
	authmw.TokenRevocationChecker
	identity.CredentialRevoker
}

// threadSubscribers adapts the subscription store to the fan-out's view of
// the world. Going through the store, not the service, avoids a construction
// cycle between the thread and subscription services.
type threadSubscribers struct {
	store subscription.Store
}

func (s threadSubscribers) SubscribersOf(ctx context.Context, threadID id.ThreadID) ([]id.UserID, error) {
	return s.store.ListByThread(ctx, threadID)
}

// main wires dependencies and owns process lifecycle. Business rules live in
// the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backing stores. Both Postgres and Redis are optional; without them the
	// forum runs on in-memory stores, which is only suitable for development.
	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		fatal(log, "postgres connection failed", err)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.ApplySchema(ctx, db); err != nil {
			fatal(log, "schema application failed", err)
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		fatal(log, "redis connection failed", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Token issuing and revocation.
	jwtService := jwtauth.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.AccessTokenTTL)
	var trl revocationList
	if redisClient != nil {
		trl = revocation.NewRedisTRL(redisClient.Client)
	} else {
		log.Warn("redis not configured, token revocation list is in-process only")
		trl = revocation.NewMemoryTRL()
	}

	// Audit pipeline: handlers emit into an async inbox, a single worker
	// drains it into Kafka (or an in-memory sink when no brokers are set).
	var auditStore audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			fatal(log, "kafka audit store failed", err)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else {
		log.Warn("kafka not configured, audit events stay in process memory")
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditor := audit.NewAsyncPublisher(0, log)
	go func() {
		if err := auditworker.NewWorker(auditStore, auditor.Inbox(), log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	engine := authz.NewEngine(log, authzmetrics.New())

	// Domain stores. Postgres when configured, memory otherwise; the tx
	// runner follows the same split so cascading deletes stay atomic.
	var (
		userStore   identity.UserStore
		threadStore thread.Store
		replyStore  thread.ReplyStore
		subStore    subscription.Store
		notifStore  notification.Store
		runner      tx.Runner
	)
	if db != nil {
		userStore = identity.NewPostgresStore(db)
		threadStore = thread.NewPostgresStore(db)
		replyStore = thread.NewPostgresReplyStore(db)
		subStore = subscription.NewPostgresStore(db)
		notifStore = notification.NewPostgresStore(db)
		runner = tx.NewSQLRunner(db)
	} else {
		userStore = identity.NewInMemoryStore()
		threadStore = thread.NewInMemoryStore()
		replyStore = thread.NewInMemoryReplyStore()
		subStore = subscription.NewInMemoryStore()
		notifStore = notification.NewInMemoryStore()
		runner = tx.NoopRunner{}
	}

	// Services. The fan-out reads subscribers straight from the store; the
	// thread service resolves owner roles through the identity service.
	fanout := notification.NewFanOut(threadSubscribers{store: subStore}, notifStore, log, notificationmetrics.New())
	identityService := identity.NewService(userStore, jwtService, trl, fanout, engine, auditor, log)
	threadService := thread.NewService(threadStore, replyStore, engine, identityService, subStore, fanout, auditor, runner, log)
	subscriptionService := subscription.NewService(subStore, threadService, log)
	notificationService := notification.NewService(notifStore, log)

	// Retention: a sweeper driven by a ticker, threshold re-read from the
	// settings provider so admin updates take effect without a restart.
	var settings retention.SettingsProvider
	if redisClient != nil {
		settings = retention.NewRedisSettings(redisClient.Client)
	} else {
		settings = retention.NewMemorySettings()
	}
	if err := settings.SeedAutoDeleteDays(ctx, cfg.RetentionDays); err != nil {
		fatal(log, "seeding retention settings failed", err)
	}
	sweeper := retention.NewSweeper(threadService, auditor, log, retentionmetrics.New())
	scheduler := retention.NewScheduler(sweeper, settings, cfg.RetentionInterval, log)
	go scheduler.Run(ctx)

	// Handlers and router.
	identityHandler := identityhandler.New(identityService, log)
	threadHandler := threadhandler.New(threadService, log)
	subscriptionHandler := subscriptionhandler.New(subscriptionService, log)
	notificationHandler := notificationhandler.New(notificationService, log)
	retentionHandler := retentionhandler.New(settings, scheduler, log)

	r := chi.NewRouter()
	r.Use(request.WithRequestID)
	r.Use(metadata.WithClientMetadata)

	r.Get("/healthz", healthHandler(db, redisClient))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	identityHandler.RegisterPublic(r)
	threadHandler.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(jwtauth.NewServiceAdapter(jwtService), trl, log))

		identityHandler.Register(r)
		threadHandler.Register(r)
		subscriptionHandler.Register(r)
		notificationHandler.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAdmin(log))
			retentionHandler.Register(r)
		})
	})

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting campusforum", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func healthHandler(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
