package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/cache"
	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/config"
	"github.com/SARVESHVARADKAR123/courtroom/internal/handler"
	"github.com/SARVESHVARADKAR123/courtroom/internal/kafka"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
	"github.com/SARVESHVARADKAR123/courtroom/internal/report"
	"github.com/SARVESHVARADKAR123/courtroom/internal/repository"
	grpcserver "github.com/SARVESHVARADKAR123/courtroom/internal/transport/grpc"
	"github.com/SARVESHVARADKAR123/courtroom/internal/websocket"
)

func main() {
	cfg := config.Load()

	observability.InitLogger(cfg.ServiceName)
	log := observability.Log
	defer func() { _ = log.Sync() }()

	if cfg.TracingEnabled {
		tp, err := observability.InitTracer(cfg.ServiceName, cfg.JaegerURL)
		if err != nil {
			log.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error("failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Core
	stages, err := catalog.Load(cfg.StagesFile)
	if err != nil {
		log.Fatal("stage catalog load failed", zap.String("file", cfg.StagesFile), zap.Error(err))
	}
	challenges, err := challenge.Load(cfg.ChallengesFile)
	if err != nil {
		log.Fatal("challenge registry load failed", zap.String("file", cfg.ChallengesFile), zap.Error(err))
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	core := application.New(application.Config{
		EscalateWait:       cfg.EscalateWait,
		ChallengeInterval:  cfg.ChallengeInterval,
		AmbientProbability: cfg.AmbientProbability,
		MaxRetained:        cfg.MaxRetained,
		GateEscalation:     cfg.GateEscalation,
	}, stages, challenges, rand.New(rand.NewSource(seed)), log)

	ready := map[string]observability.Pinger{}

	// Persistence
	var (
		records    *application.RecordService
		recordSync *application.RecordSync
	)
	if cfg.DatabaseURL != "" {
		repo, err := repository.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		defer repo.Close()
		ready["database"] = repo

		var recordCache application.RecordCache
		if cfg.RedisAddr != "" {
			rc := cache.New(cfg.RedisAddr)
			defer rc.Close()
			ready["redis"] = rc
			recordCache = rc
		}

		records = application.NewRecordService(repo, recordCache, log)
		recordSync = application.NewRecordSync(records, log)
		core.Subscribe(recordSync)
	}

	g, gctx := errgroup.WithContext(ctx)

	if recordSync != nil {
		g.Go(func() error { return recordSync.Run(gctx) })
	}

	// Kafka
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()

		publisher := kafka.NewEventPublisher(producer, cfg.KafkaTopicPrefix, log)
		core.Subscribe(publisher)
		g.Go(func() error { return publisher.Run(gctx) })
	}

	// Live viewers
	hub := websocket.NewHub(core)
	core.Subscribe(hub)

	// gRPC health
	grpcSrv := grpcserver.NewServer(core.Locked())
	core.Subscribe(grpcSrv)

	// HTTP
	var renderer report.Renderer = report.Local{}
	if cfg.LambdaFunctionURL != "" {
		renderer = report.NewRemote(cfg.LambdaFunctionURL)
	}

	handlers := handler.Handlers{
		Courtroom: handler.NewCourtroomHandler(core),
		Report:    handler.NewReportHandler(renderer, records, core),
		Live:      websocket.NewHandler(hub),
		Ready:     observability.HealthReadyHandler(ready),
	}
	if records != nil {
		handlers.Records = handler.NewRecordHandler(records)
	}

	srv := &http.Server{
		Addr: cfg.HTTPPort,
		Handler: handler.NewRouter(handlers, handler.RouterConfig{
			ServiceName:       cfg.ServiceName,
			JWTSecret:         cfg.JWTSecret,
			JWTIssuer:         cfg.JWTIssuer,
			JWTAudience:       cfg.JWTAudience,
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateLimitWindow,
			RequestTimeout:    cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		return application.NewScheduler(core, cfg.TickInterval).Run(gctx)
	})

	g.Go(func() error {
		log.Info("courtroom HTTP started", zap.String("addr", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return grpcSrv.Start(cfg.GRPCAddr)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		hub.CloseAll()
		grpcSrv.Stop()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("courtroom stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("courtroom stopped")
}
