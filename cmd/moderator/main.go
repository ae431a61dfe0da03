package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kindshare/moderation/internal/config"
	"github.com/kindshare/moderation/internal/httpapi"
	"github.com/kindshare/moderation/internal/listing"
	"github.com/kindshare/moderation/internal/messaging"
	"github.com/kindshare/moderation/internal/moderation"
	"github.com/kindshare/moderation/internal/ratelimit"
	"github.com/kindshare/moderation/internal/review"
	"github.com/kindshare/moderation/internal/risk"
)

func main() {
	log.Println("Starting KindShare moderation service...")

	cfg := config.Load()

	// Lexicon.
	lex := moderation.DefaultLexicon()
	if cfg.LexiconPath != "" {
		var err error
		lex, err = moderation.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			log.Fatalf("failed to load lexicon: %v", err)
		}
	}
	moderator, err := moderation.New(lex)
	if err != nil {
		log.Fatalf("failed to build moderator: %v", err)
	}
	for _, rule := range moderator.SpamRules() {
		log.Printf("[moderator] spam rule %-16s weight=%d", rule.Name, rule.Weight)
	}

	// Postgres setup.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := listing.Open(ctx, cfg.DSN())
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	if cfg.RunMigrations {
		if err := listing.Migrate(db); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}
	store := listing.NewStore(db)

	// Redis setup.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()

	assessor := risk.NewAssessor(store, risk.Config{
		Window:  cfg.RiskWindow,
		Timeout: cfg.RiskTimeout,
	}).WithCache(risk.NewRedisCache(rdb, cfg.RiskCacheTTL))

	limiter := ratelimit.NewLimiter(rdb)
	service := review.NewService(review.Dependencies{
		Moderator: moderator,
		Risk:      assessor,
		Recorder:  store,
		Limiter:   limiter,
		Rule:      ratelimit.RuleModerate.WithLimit(cfg.ModerateRateLimit, cfg.ModerateRateWindow),
	})

	// NATS setup.
	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = cfg.NATSURL
	natsConfig.Name = "kindshare-moderator"

	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	if err := natsClient.ServeModerationCheck(func(data []byte) []byte {
		return handleModerationCheck(service, natsClient, data)
	}); err != nil {
		log.Fatalf("failed to subscribe to moderation checks: %v", err)
	}
	if err := natsClient.ServeRiskAssess(func(data []byte) []byte {
		return handleRiskAssess(service, data)
	}); err != nil {
		log.Fatalf("failed to subscribe to risk assessments: %v", err)
	}

	// HTTP setup.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(service).WithRiskLimiter(limiter)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	log.Printf("KindShare moderation service running")
	log.Printf("  http_addr:  %s", cfg.HTTPAddr)
	log.Printf("  redis_addr: %s", cfg.RedisAddr)
	log.Printf("  nats_url:   %s", cfg.NATSURL)
	log.Printf("  risk:       window=%s timeout=%s cache_ttl=%s", cfg.RiskWindow, cfg.RiskTimeout, cfg.RiskCacheTTL)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	shutdownCancel()

	natsClient.Close()
	rdb.Close()
	store.Close()
}

// handleModerationCheck reviews one moderation.check request, broadcasts
// the result for the listing and returns it as the reply.
func handleModerationCheck(service *review.Service, nc *messaging.NATSClient, data []byte) []byte {
	var req review.Request
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("[moderator] failed to unmarshal request: %v", err)
		return marshalReply(review.Result{Error: "invalid request payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := service.Review(ctx, req)
	if err != nil {
		res.Error = err.Error()
	}

	respData := marshalReply(res)
	if err == nil && res.ListingID != "" {
		if err := nc.PublishModerationResult(res.ListingID, respData); err != nil {
			log.Printf("[moderator] failed to publish result: %v", err)
		}
	}
	return respData
}

func handleRiskAssess(service *review.Service, data []byte) []byte {
	var req review.RiskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("[moderator] failed to unmarshal risk request: %v", err)
		return marshalReply(risk.Unknown(""))
	}
	if req.DonorID == "" {
		return marshalReply(risk.Unknown(""))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return marshalReply(service.AssessRisk(ctx, req.DonorID))
}

func marshalReply(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[moderator] failed to marshal reply: %v", err)
		return []byte(`{"error":"internal"}`)
	}
	return data
}
