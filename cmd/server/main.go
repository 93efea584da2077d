package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/agencia-oeste/viajes-api/docs"
	"github.com/agencia-oeste/viajes-api/internal/api"
	"github.com/agencia-oeste/viajes-api/internal/api/handler"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
	"github.com/agencia-oeste/viajes-api/internal/core/service"
	"github.com/agencia-oeste/viajes-api/internal/infrastructure/config"
	"github.com/agencia-oeste/viajes-api/internal/infrastructure/db/jsonfile"
	mongostore "github.com/agencia-oeste/viajes-api/internal/infrastructure/db/mongo"
	redisstore "github.com/agencia-oeste/viajes-api/internal/infrastructure/db/redis"
	"github.com/agencia-oeste/viajes-api/internal/infrastructure/github"
	"github.com/agencia-oeste/viajes-api/pkg/logger"
)

const (
	serviceName     = "viajes-api"
	shutdownTimeout = 15 * time.Second
)

var version = "dev"

// @title                       Agencia de Viajes Oeste API
// @version                     1.0
// @description                 Travel request tracking for agents and clients.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	port := flags.String("port", "", "listen port (overrides PORT)")
	dataDir := flags.String("data-dir", "", "directory of the file store (overrides DATA_DIR)")
	storeDriver := flags.String("store", "", "storage backend: file or mongo (overrides STORE_DRIVER)")
	logLevel := flags.String("log-level", "", "trace, debug, info, warn or error (overrides LOG_LEVEL)")
	showVersion := flags.Bool("version", false, "print the version and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println(serviceName, version)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	override(&cfg.Port, *port)
	override(&cfg.Store.DataDir, *dataDir)
	override(&cfg.Store.Driver, *storeDriver)
	override(&cfg.LogLevel, *logLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Version: version,
	})
	docs.SwaggerInfo.Version = version

	health := map[string]handler.Checker{}
	users, requests, closeStore, err := openStore(ctx, cfg, health)
	if err != nil {
		return err
	}
	defer closeStore()

	var revoker ports.TokenRevoker
	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		store := redisstore.NewRevocationStore(client)
		revoker = store
		health["redis"] = store
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation enabled")
	}

	roles := service.NewAgentAllowList(cfg.Auth.AgentEmails)
	authService := service.NewAuthService(users, roles, revoker, service.AuthConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, logger.Component("auth"))

	var provider ports.IdentityProvider
	if cfg.GitHub.Enabled() {
		provider = github.NewClient(github.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.RedirectURL,
		}, logger.Component("github"))
	} else {
		log.Warn().Msg("GitHub login disabled: GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET missing")
	}

	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Requests:      service.NewTravelRequestService(requests, roles, logger.Component("solicitudes")),
		Federated:     service.NewFederatedAuthService(provider, authService, cfg.HTTP.FrontendURL, logger.Component("oauth")),
		Health:        health,
		Version:       version,
		Logger:        logger.Component("http"),
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		AuthRateLimit: cfg.HTTP.AuthRateLimit,
		SecureCookies: !cfg.IsDevelopment(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStore selects the persistence backend and registers its readiness
// check. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, health map[string]handler.Checker) (ports.UserRepository, ports.TravelRequestRepository, func(), error) {
	log := logger.Component("store")

	switch cfg.Store.Driver {
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		health["mongo"] = handler.CheckerFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}
		return mongostore.NewUserRepository(db), mongostore.NewTravelRequestRepository(db), closeFn, nil

	default:
		store, err := jsonfile.Open(cfg.Store.DataDir, cfg.Store.Encoding, log)
		if err != nil {
			return nil, nil, nil, err
		}
		health["store"] = handler.CheckerFunc(store.Ping)
		log.Info().Str("dir", cfg.Store.DataDir).Str("encoding", cfg.Store.Encoding).Msg("file store ready")
		return store.Users(), store.TravelRequests(), store.Close, nil
	}
}

func override(dst *string, flag string) {
	if flag != "" {
		*dst = flag
	}
}
