package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	leads "github.com/goliatone/go-leads"
	"github.com/goliatone/go-leads/adapters/gocommand"
	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/dispatch"
	"github.com/goliatone/go-leads/draft"
	"github.com/goliatone/go-leads/httpapi"
	"github.com/goliatone/go-leads/jobs"
	"github.com/goliatone/go-leads/metrics"
	leadsmigrations "github.com/goliatone/go-leads/migrations"
	sqlstore "github.com/goliatone/go-leads/store/sql"
	"github.com/goliatone/go-leads/tenants"
	"github.com/goliatone/go-leads/webhooks"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("leadgate: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("leadgate: no .env file, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configProvider := core.NewCfgxConfigProvider(envConfigLoader{})
	cfg, err := configProvider.Load(ctx, leads.DefaultConfig())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.Webhook.APIKey) == "" {
		log.Println("leadgate: LEADS_WEBHOOK_API_KEY is not set, every delivery will be rejected")
	}

	client, err := openPersistence(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := sqlstore.SeedDemoData(ctx, client.DB()); err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}
	factory, err := sqlstore.NewStoreFactoryFromPersistence(client)
	if err != nil {
		return fmt.Errorf("build store factory: %w", err)
	}

	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = 5 * time.Minute
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		return fmt.Errorf("build tenant cache: %w", err)
	}
	tenantDirectory, err := tenants.NewCachedDirectory(factory.TenantDirectory(), cacheService)
	if err != nil {
		return fmt.Errorf("build tenant directory: %w", err)
	}

	drafter, err := draft.FromConfig(cfg.Drafter, nil)
	if err != nil {
		return fmt.Errorf("build drafter: %w", err)
	}
	sender, err := dispatch.FromConfig(cfg.Mailer)
	if err != nil {
		return fmt.Errorf("build sender: %w", err)
	}
	recorder := metrics.NewPrometheusRecorder()

	service, err := leads.NewService(cfg,
		leads.WithConfigProvider(configProvider),
		leads.WithPersistenceClient(client),
		leads.WithRepositoryFactory(factory),
		leads.WithTenantDirectory(tenantDirectory),
		leads.WithDrafter(drafter),
		leads.WithSender(sender),
		leads.WithMetricsRecorder(recorder),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	facade, err := leads.NewFacade(service)
	if err != nil {
		return fmt.Errorf("build facade: %w", err)
	}
	bus := gocommand.NewRegistryAdapter(nil)
	subscriptions, err := gocommand.MountFacade(bus, facade)
	if err != nil {
		return fmt.Errorf("mount command bus: %w", err)
	}
	defer func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
	}()
	if err := bus.Initialize(); err != nil {
		return fmt.Errorf("initialize command bus: %w", err)
	}

	runner, err := jobs.FromConfig(cfg.Jobs, service.Dependencies().LeadEventLog)
	if err != nil {
		return fmt.Errorf("build digest runner: %w", err)
	}
	if runner != nil {
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("start digest runner: %w", err)
		}
		defer runner.Stop()
	}

	processor := webhooks.NewProcessor(webhooks.NewAPIKeyVerifier(cfg.Webhook.APIKey), service)
	server, err := httpapi.NewServer(processor, httpapi.WithMetricsHandler(recorder.Handler()))
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("leadgate: listening on %s", cfg.HTTP.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func openPersistence(ctx context.Context, cfg core.DatabaseConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(cfg.Driver)
	var (
		dialect          schema.Dialect
		migrationDialect string
	)
	switch driver {
	case "sqlite3":
		dialect = sqlitedialect.New()
		migrationDialect = leadsmigrations.DialectSQLite
	case "postgres":
		dialect = pgdialect.New()
		migrationDialect = leadsmigrations.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{database: cfg}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("persistence client: %w", err)
	}

	err = leadsmigrations.Register(ctx, func(_ context.Context, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrationDialect)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return client, nil
}

type persistenceConfig struct {
	database core.DatabaseConfig
}

func (c persistenceConfig) GetDebug() bool {
	return c.database.Debug
}

func (c persistenceConfig) GetDriver() string {
	return c.database.Driver
}

func (c persistenceConfig) GetServer() string {
	return c.database.DSN
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-leads"
}

// envConfigLoader maps LEADS_* environment variables onto the nested raw
// config shape the provider expects. Unset variables leave the defaults
// untouched.
type envConfigLoader struct{}

func (envConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}

	setString := func(env string, path ...string) {
		if value, ok := os.LookupEnv(env); ok && strings.TrimSpace(value) != "" {
			setRawValue(raw, strings.TrimSpace(value), path...)
		}
	}
	setBool := func(env string, path ...string) error {
		value, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		setRawValue(raw, parsed, path...)
		return nil
	}
	setDuration := func(env string, path ...string) error {
		value, ok := os.LookupEnv(env)
		if !ok || strings.TrimSpace(value) == "" {
			return nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		setRawValue(raw, parsed, path...)
		return nil
	}

	setString("LEADS_SERVICE_NAME", "service_name")
	setString("LEADS_HTTP_ADDR", "http", "addr")
	setString("LEADS_DATABASE_DRIVER", "database", "driver")
	setString("LEADS_DATABASE_DSN", "database", "dsn")
	setString("LEADS_WEBHOOK_API_KEY", "webhook", "api_key")
	setString("LEADS_DRAFTER_BASE_URL", "drafter", "base_url")
	setString("LEADS_DRAFTER_API_KEY", "drafter", "api_key")
	setString("LEADS_DRAFTER_MODEL", "drafter", "model")
	setString("LEADS_MAILER_PROVIDER", "mailer", "provider")
	setString("LEADS_MAILER_SENDGRID_API_KEY", "mailer", "sendgrid_api_key")
	setString("LEADS_MAILER_DEFAULT_FROM", "mailer", "default_from")
	setString("LEADS_JOBS_FALLBACK_DIGEST_SCHEDULE", "jobs", "fallback_digest_schedule")

	if err := setBool("LEADS_DATABASE_DEBUG", "database", "debug"); err != nil {
		return nil, err
	}
	if err := setBool("LEADS_DRAFTER_ENABLED", "drafter", "enabled"); err != nil {
		return nil, err
	}
	if err := setBool("LEADS_JOBS_FALLBACK_DIGEST_ENABLED", "jobs", "fallback_digest_enabled"); err != nil {
		return nil, err
	}
	if err := setDuration("LEADS_DRAFTER_TIMEOUT", "drafter", "timeout"); err != nil {
		return nil, err
	}

	return raw, nil
}

func setRawValue(raw map[string]any, value any, path ...string) {
	if len(path) == 0 {
		return
	}
	current := raw
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}
