package main

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/imtaco/stream-orch-exp/internal/config"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/httputil"
	"github.com/imtaco/stream-orch-exp/internal/jwt"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/internal/otel"
	"github.com/imtaco/stream-orch-exp/internal/redis"
	"github.com/imtaco/stream-orch-exp/internal/retry"
	"github.com/imtaco/stream-orch-exp/internal/workflow"
	"github.com/imtaco/stream-orch-exp/sessions"
	"github.com/imtaco/stream-orch-exp/sessions/events"
	"github.com/imtaco/stream-orch-exp/sessions/liveness"
	"github.com/imtaco/stream-orch-exp/sessions/orchestrator"
	"github.com/imtaco/stream-orch-exp/sessions/registry"
	"github.com/imtaco/stream-orch-exp/sessions/store"
	"github.com/imtaco/stream-orch-exp/sessions/transport"
)

type Config struct {
	App     config.App      `mapstructure:"app"`
	HTTP    httputil.Config `mapstructure:"http"`
	Otel    otel.Config     `mapstructure:"otel"`
	Redis   redis.Config    `mapstructure:"redis"`
	Gateway gateway.Config  `mapstructure:"gateway"`

	JWTSecret     string `mapstructure:"jwt_secret"`
	ServerURL     string `mapstructure:"server_url"`
	PublicBaseURL string `mapstructure:"public_base_url"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	SessionRegistrySize int           `mapstructure:"session_registry_size"`
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	SnapshotPrefix      string        `mapstructure:"snapshot_prefix"`
	SnapshotTTL         time.Duration `mapstructure:"snapshot_ttl"`

	CreateRate  float64 `mapstructure:"create_rate"`
	CreateBurst int     `mapstructure:"create_burst"`
}

func loadConfig() (*Config, error) {
	return config.Load(&Config{}, func(v *viper.Viper) {
		v.SetDefault("jwt_secret", "MY-secret-key-change-in-production")
		v.SetDefault("server_url", "ws://localhost:7880")
		v.SetDefault("public_base_url", "http://localhost:3000")
		v.SetDefault("allowed_origins", []string{"*"})
		v.SetDefault("session_registry_size", 4096)
		v.SetDefault("session_ttl", "2h")
		v.SetDefault("snapshot_prefix", "orch")
		v.SetDefault("snapshot_ttl", "2h")
		v.SetDefault("create_rate", 5.0)
		v.SetDefault("create_burst", 10)

		config.Setup(v, "app")
		otel.Setup(v, "otel")
		redis.Setup(v, "redis")
		gateway.Setup(v, "gateway")
		httputil.Setup(v, "http")

		// override default addrs to ease testing
		v.SetDefault("http.addr", "0.0.0.0:3000")
	})
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}

	logger, err := log.NewLogger(config.App.LogConfigFile)
	if err != nil {
		log.Fatal("Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	// global background context
	ctx := context.Background()

	// Initialize OpenTelemetry
	otelShutdown, err := otel.Init(ctx, &config.Otel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OTEL provider", log.Error(err))
	}

	logger.Info("Starting Session Orchestrator service",
		log.String("addr", config.HTTP.Addr),
		log.String("scheduleUrl", config.Gateway.ScheduleURL),
		log.String("serverUrl", config.ServerURL))

	// Create redis client for the snapshot store; Redis may still be coming
	// up when we are, so give the first ping a little patience.
	redisClient := redis.NewClient(&config.Redis)
	pingRetry := retry.New(logger.Module("RedisPing"), time.Second, 5*time.Second, 30*time.Second)
	if err := pingRetry.Do(ctx, func() error { return redis.Ping(redisClient) }); err != nil {
		logger.Fatal("Failed to connect to Redis", log.Error(err))
	}
	redisForever := redis.NewForever(redisClient, 100*time.Millisecond, 10*time.Second, logger.Module("Redis"))

	// Gateway clients
	scheduleClient := gateway.NewScheduleClient(&config.Gateway, logger.Module("ScheduleGW"))
	tokenClient := gateway.NewTokenClient(&config.Gateway, logger.Module("TokenGW"))
	ingressClient := gateway.NewIngressClient(&config.Gateway, logger.Module("IngressGW"))

	// Core components
	resolver := liveness.NewResolver(scheduleClient, logger.Module("Liveness"))
	hub := events.NewHub(logger.Module("Hub"))
	snapshotStore := store.NewSnapshotStore(
		redisForever,
		config.SnapshotPrefix,
		config.SnapshotTTL,
		logger.Module("SnapStore"),
	)

	deps := orchestrator.Deps{
		Resolver:      resolver,
		Tokens:        tokenClient,
		Sinks:         []sessions.TransitionSink{hub, store.NewSink(snapshotStore, logger.Module("SnapSink"))},
		ServerURL:     config.ServerURL,
		PublicBaseURL: config.PublicBaseURL,
		Logger:        logger.Module("Session"),
	}

	sessionReg := registry.New[*orchestrator.Session](
		config.SessionRegistrySize, config.SessionTTL, logger.Module("SessReg"))
	broadcastReg := registry.New[*orchestrator.BroadcastFlow](
		config.SessionRegistrySize, config.SessionTTL, logger.Module("BcastReg"))
	ingressReg := registry.New[*orchestrator.IngressFlow](
		config.SessionRegistrySize, config.SessionTTL, logger.Module("IngressReg"))

	jwtAuth := jwt.NewAuth(config.JWTSecret)

	// Setup router
	router := transport.NewRouter(
		sessionReg,
		broadcastReg,
		ingressReg,
		deps,
		scheduleClient,
		ingressClient,
		hub,
		snapshotStore,
		jwtAuth,
		transport.Options{
			AllowedOrigins: config.AllowedOrigins,
			CreateRate:     rate.Limit(config.CreateRate),
			CreateBurst:    config.CreateBurst,
		},
		logger.Module("Router"),
	)
	server := httputil.NewServer(&config.HTTP, router.Handler())

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", log.String("addr", config.HTTP.Addr))
		if err := server.Listen(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", log.Error(err))
		}
	}()

	logger.Info("Session Orchestrator started")

	// Setup graceful shutdown
	cleanup := func(ctx context.Context) {
		_ = server.Shutdown(ctx)

		// Close every live session so held credentials are discarded
		sessionReg.Purge()
		broadcastReg.Purge()
		ingressReg.Purge()

		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis client", log.Error(err))
		}
		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shutdown OTEL", log.Error(err))
		}
	}
	workflow.WaitGracefulShutdown(ctx, logger.Module("CleanUp"), cleanup, config.App.ShutdownTimeout)
}
