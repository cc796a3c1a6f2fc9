package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/goliatone/go-loan-auth/activitymap"
	"github.com/goliatone/go-loan-auth/adapters/redisrevocation"
	"github.com/goliatone/go-loan-auth/catalog"
	"github.com/goliatone/go-loan-auth/config"
	"github.com/goliatone/go-loan-auth/metrics"
	"github.com/goliatone/go-loan-auth/middleware/jwtware"
	"github.com/goliatone/go-loan-auth/notifier"
	"github.com/goliatone/go-loan-auth/repository"
	"github.com/goliatone/go-loan-auth/repository/mongostore"
)

// App is the wired service.
type App struct {
	Fiber   *fiber.App
	Auther  *auth.Auther
	Metrics *metrics.Metrics

	logger  auth.Logger
	closers []io.Closer
}

// Close releases every backend opened by NewApp, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewApp opens the configured backends and mounts the routes.
func NewApp(ctx context.Context, cfg config.Config, slogger *slog.Logger) (_ *App, err error) {
	log := auth.NewSlogLogger(slogger)
	app := &App{logger: log, Metrics: metrics.New("loan_auth")}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	users, loans, err := app.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	revocations, err := app.openRevocations(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sender, err := app.openNotifier(cfg)
	if err != nil {
		return nil, err
	}

	activity, err := app.openActivity(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg, auth.WithTokenLogger(log))
	if err != nil {
		return nil, err
	}

	newID := auth.IDGenerator(auth.RandomID)
	if cfg.DeterministicIDs {
		newID = auth.EmailDerivedID
	}

	app.Auther = auth.NewAuthenticator(users, tokens).
		WithLogger(log).
		WithRevocations(revocations).
		WithNotifier(sender).
		WithNotificationTimeout(cfg.NotificationTimeout).
		WithIDGenerator(newID).
		WithActivitySink(activity)

	if cfg.HasAdmin() {
		if _, err := app.Auther.EnsureAdminUser(ctx, auth.AdminAccount{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			CNIC:     cfg.AdminCNIC,
		}); err != nil {
			return nil, err
		}
	}

	app.Fiber = fiber.New(fiber.Config{
		AppName:      "loan-auth",
		ErrorHandler: errorHandler(log),
	})
	app.mount(cfg, tokens, revocations, loans)
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (auth.UserStore, catalog.Store, error) {
	if cfg.Store == config.StoreMongo {
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, mongostore.WithLogger(a.logger))
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store)
		return store.Users(), store.Catalog(), nil
	}

	db, err := repository.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, db)

	group, err := repository.Migrate(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	if !group.IsZero() {
		a.logger.Info("migrations applied", "group", group.String())
	}
	return repository.NewUsers(db), repository.NewCatalog(db), nil
}

func (a *App) openRevocations(ctx context.Context, cfg config.Config) (auth.RevocationRegistry, error) {
	if cfg.Revocation != config.RevocationRedis {
		return auth.NewMemoryRevocations(), nil
	}
	registry, err := redisrevocation.NewFromURL(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, registry)
	return registry, nil
}

func (a *App) openNotifier(cfg config.Config) (auth.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifySMTP:
		return notifier.NewSMTP(notifier.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.SMTPTimeout,
		}, notifier.WithSMTPLogger(a.logger))
	case config.NotifyAMQP:
		q, err := notifier.DialQueue(cfg.AMQPURL, cfg.AMQPQueue, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closerFunc(q.Close))
		return q, nil
	default:
		return notifier.NewLog(a.logger), nil
	}
}

func (a *App) openActivity(cfg config.Config) (auth.ActivitySink, error) {
	sinks := auth.MultiActivitySink{a.Metrics}
	if cfg.ActivityLog {
		sinks = append(sinks, activitymap.NewLogSink(a.logger))
	}
	if cfg.ActivityQueue != "" {
		ch, closeFn, err := notifier.DialChannel(cfg.AMQPURL, cfg.ActivityQueue)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closerFunc(closeFn))
		sinks = append(sinks, activitymap.NewPublishSink(ch, cfg.ActivityQueue))
	}
	return sinks, nil
}

func (a *App) mount(cfg config.Config, tokens *auth.TokenService, revocations auth.RevocationRegistry, loans catalog.Store) {
	app := a.Fiber

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Format: "${method} ${path} ${status} - ${latency}\n"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
	}))
	app.Use(a.Metrics.Middleware())
	app.Use(jwtware.NewBlacklist(jwtware.BlacklistConfig{Revocations: revocations}))

	app.Get("/metrics", a.Metrics.Handler()).Name("metrics")
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true})
	}).Name("health")

	protected := jwtware.New(jwtware.Config{
		TokenValidator:  tokens,
		Revocations:     revocations,
		ContextKey:      auth.DefaultClaimsKey,
		ContextEnricher: auth.ClaimsContextEnricher,
	})

	auth.NewAuthController(
		auth.WithControllerAuther(a.Auther),
		auth.WithControllerLogger(a.logger),
		auth.WithControllerDebug(cfg.Debug),
		auth.WithControllerProtected(protected),
	).RegisterRoutes(app.Group("/auth"))

	var adminOnly fiber.Handler
	if cfg.CatalogRequireAdmin {
		adminOnly = jwtware.New(jwtware.Config{
			TokenValidator:  tokens,
			Revocations:     revocations,
			ContextKey:      auth.DefaultClaimsKey,
			ContextEnricher: auth.ClaimsContextEnricher,
			RequiredRole:    string(auth.RoleAdmin),
			RoleChecker:     auth.RoleAtLeast,
		})
	}
	catalog.NewController(catalog.NewService(loans, catalog.WithLogger(a.logger)), adminOnly).RegisterRoutes(app)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

func errorHandler(log auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"status": false, "message": fe.Message})
		}
		code, body := auth.ErrorResponse(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled request error", "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(body)
	}
}
