package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Concesionario-api/internal/application/catalog"
	"github.com/jhoicas/Concesionario-api/internal/application/resource"
	"github.com/jhoicas/Concesionario-api/internal/application/workshop"
	"github.com/jhoicas/Concesionario-api/internal/domain/repository"
	"github.com/jhoicas/Concesionario-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Concesionario-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Concesionario-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Concesionario-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Concesionario-api/internal/interfaces/http"
	"github.com/jhoicas/Concesionario-api/pkg/config"
	"github.com/jhoicas/Concesionario-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("datastore", cfg.App.Datastore).
		Msg("iniciando aplicación")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("la aplicación terminó con error")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}

// run arma y sirve la API hasta recibir SIGINT/SIGTERM. Los recursos abiertos
// se cierran con defer antes de volver, también cuando el arranque falla.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	registry := resource.NewRegistry()
	if err := catalog.Register(registry); err != nil {
		return fmt.Errorf("configuración de recursos inválida: %w", err)
	}

	var (
		store repository.Datastore
		perms repository.PermissionRepository
		pool  *pgxpool.Pool
		err   error
	)
	switch cfg.App.Datastore {
	case "memory":
		var opts []memstore.Option
		for table, fields := range catalog.UniqueColumns() {
			opts = append(opts, memstore.WithUnique(table, fields...))
		}
		store = memstore.New(registry.Catalog(), opts...)
		perms = memstore.NewPermissionStore(catalog.DefaultGrants())
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()
		store = postgres.NewDatastore(pool, registry.Catalog())
		perms = postgres.NewPermissionRepository(pool)
	}

	var broadcaster resource.Broadcaster = resource.NopBroadcaster{}
	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer redisClient.Close()
		broadcaster = infraredis.NewBroadcaster(redisClient, cfg.Redis.ChannelPrefix, log.Component("broadcaster"))
		if cfg.Redis.PermissionCacheTTL > 0 {
			ttl := time.Duration(cfg.Redis.PermissionCacheTTL) * time.Second
			perms = infraredis.NewPermissionCache(redisClient, perms, ttl, log.Component("permission-cache"))
		}
	} else {
		log.Info().Msg("REDIS_ADDR vacío: la difusión de cambios queda desactivada")
	}

	collector := metrics.NewCollector(cfg.App.Name)
	engineLog := log.Component("resource")
	dispatcher := resource.NewDispatcher(engineLog, collector)
	workshop.Register(dispatcher, store, broadcaster, workshop.Options{
		LowStockThreshold: cfg.Resource.LowStockThreshold,
	}, log.Component("workshop"))

	authz := resource.NewAuthorizer(registry, perms, cfg.Resource.SuperRole)
	svc := resource.NewService(registry, authz, store, dispatcher, broadcaster, collector, engineLog, resource.Options{
		DefaultLimit: cfg.Resource.DefaultLimit,
		MaxLimit:     cfg.Resource.MaxLimit,
	})
	handler := httpRouter.NewResourceHandler(svc, log.Component("http"), cfg.Resource.DefaultLimit, cfg.Resource.ExposeInternalErrors)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(collector.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Concesionario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name, "datastore": cfg.App.Datastore}
		if pool != nil {
			if err := pool.Ping(c.UserContext()); err != nil {
				status["status"] = "degraded"
				status["postgres"] = err.Error()
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(c.UserContext()).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
			}
		}
		return c.JSON(status)
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resources: handler,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
