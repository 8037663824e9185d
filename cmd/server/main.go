// main wires dependencies and runs the governance service. Business logic
// lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gxpgovern/internal/auditchain"
	"gxpgovern/internal/auditchain/publisher"
	auditstore "gxpgovern/internal/auditchain/store"
	"gxpgovern/internal/draft/models"
	draftstore "gxpgovern/internal/draft/store"
	"gxpgovern/internal/guardrail"
	guardrailhandler "gxpgovern/internal/guardrail/handler"
	"gxpgovern/internal/platform/config"
	"gxpgovern/internal/platform/httpserver"
	"gxpgovern/internal/platform/logger"
	appmetrics "gxpgovern/internal/platform/metrics"
	"gxpgovern/internal/platform/postgres"
	"gxpgovern/internal/platform/redis"
	"gxpgovern/internal/platform/token"
	"gxpgovern/internal/regwatch"
	"gxpgovern/internal/regwatch/dedup"
	regwatchmetrics "gxpgovern/internal/regwatch/metrics"
	"gxpgovern/internal/review"
	reviewhandler "gxpgovern/internal/review/handler"
	reviewmetrics "gxpgovern/internal/review/metrics"
	httptransport "gxpgovern/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		drafts draftstore.DraftStore
		audits auditchain.Store
	)
	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		draftPG := draftstore.NewPostgres(db)
		auditPG := auditstore.NewPostgres(db)
		if err := draftPG.Migrate(ctx); err != nil {
			return err
		}
		if err := auditPG.Migrate(ctx); err != nil {
			return err
		}
		drafts, audits = draftPG, auditPG
		log.Info("using postgres storage")
	} else {
		drafts = draftstore.NewInMemory()
		audits = auditstore.NewInMemory()
		log.Info("using in-memory storage")
	}

	// Dedup index: shared via Redis when configured.
	var index dedup.Index
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		index = dedup.NewRedisIndex(redisClient.Client)
		log.Info("using redis fingerprint index")
	} else {
		index = dedup.NewInMemoryIndex()
	}

	ledgerOpts := []auditchain.LedgerOption{auditchain.WithLedgerLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := publisher.NewKafka(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			return err
		}
		defer kafka.Close()
		ledgerOpts = append(ledgerOpts, auditchain.WithPublisher(kafka))
		log.Info("publishing audit entries to kafka", "topic", cfg.KafkaAuditTopic)
	}
	ledger, err := auditchain.NewLedger(audits, ledgerOpts...)
	if err != nil {
		return err
	}

	evaluator := guardrail.New(guardrail.DefaultConfig())
	service, err := review.New(drafts, evaluator, ledger, index,
		review.WithLogger(log),
		review.WithMetrics(reviewmetrics.New()),
	)
	if err != nil {
		return err
	}

	source := regwatch.NewStaticSource(allowedAuthorities(cfg.RegwatchAuthorities))
	poller, err := regwatch.New(source, service,
		regwatch.WithLogger(log),
		regwatch.WithMetrics(regwatchmetrics.New()),
	)
	if err != nil {
		return err
	}

	tokens, err := token.NewManager(cfg.JWTSigningKey)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(
		reviewhandler.New(service, poller, log),
		guardrailhandler.New(evaluator, log),
		tokens,
		appmetrics.New(),
		log,
	)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.RegwatchEnabled {
		stopPoller := poller.Start(groupCtx, cfg.RegwatchInterval)
		defer stopPoller()
		log.Info("regulatory watcher started", "interval", cfg.RegwatchInterval.String())
	}

	group.Go(func() error {
		log.Info("starting gxpgovern", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// allowedAuthorities maps configured authority names onto the known set. An
// empty or entirely invalid configuration means all authorities.
func allowedAuthorities(names []string) []models.Authority {
	var out []models.Authority
	for _, name := range names {
		if a, err := models.ParseAuthority(name); err == nil {
			out = append(out, a)
		}
	}
	return out
}
