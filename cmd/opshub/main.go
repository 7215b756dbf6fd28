package main

import (
	"context"
	"fmt"
	"os"

	"github.com/opshub-io/opshub/internal/admin"
	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/internal/httpx"
	"github.com/opshub-io/opshub/internal/project"
	"github.com/opshub-io/opshub/internal/timesheet"
	"github.com/opshub-io/opshub/internal/workflow"
	"github.com/opshub-io/opshub/pkg/config"
	"github.com/opshub-io/opshub/pkg/cookie"
	"github.com/opshub-io/opshub/pkg/httpserver"
	"github.com/opshub-io/opshub/pkg/logger"
	"github.com/opshub-io/opshub/pkg/pg"
	"github.com/opshub-io/opshub/pkg/redis"
	"github.com/opshub-io/opshub/pkg/requestid"
	"github.com/opshub-io/opshub/pkg/session"
)

type appConfig struct {
	Environment   string   `env:"APP_ENV" envDefault:"production"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	CookieSecrets []string `env:"COOKIE_SECRETS,required"` // comma-separated, newest first
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "opshub: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg     appConfig
		pgCfg      pg.Config
		redisCfg   redis.Config
		sessionCfg session.Config
		httpCfg    httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "opshub"),
		logger.WithLevel(logger.ParseLevel(appCfg.LogLevel)),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	cookieManager, err := cookie.New(appCfg.CookieSecrets)
	if err != nil {
		return fmt.Errorf("cookie manager: %w", err)
	}

	sessions := session.New(
		session.WithConfig(sessionCfg),
		session.WithStore(session.NewRedisStore(redisClient)),
		session.WithCookieManager(cookieManager),
	)

	directory := admin.NewDirectory(pool)
	resolver := auth.NewResolver(directory, directory)
	auditWriter := audit.NewWriter(audit.NewPGStore(pool), log)

	handler := &httpx.Handler{
		Log:        log,
		DB:         pool,
		Sessions:   sessions,
		Resolver:   resolver,
		Directory:  directory,
		Workflows:  workflow.NewService(auditWriter),
		Projects:   project.NewService(auditWriter, directory),
		Timesheets: timesheet.NewService(auditWriter),
		Admin:      admin.NewService(auditWriter),
		Health: httpserver.HealthCheckHandler(ctx, log,
			pg.Healthcheck(pool),
			redis.Healthcheck(redisClient),
		),
	}

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
	)

	log.InfoContext(ctx, "starting server", logger.Component("main"), "addr", httpCfg.Addr)
	return srv.Run(ctx, httpx.NewRouter(handler))
}
