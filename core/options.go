package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	leadStore         LeadStore
	tenantDirectory   TenantDirectory
	drafter           Drafter
	sender            Sender
	outreachLog       OutreachLog
	leadEventLog      LeadEventLog
	clock             func() time.Time
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithLeadStore(store LeadStore) Option {
	return func(b *serviceBuilder) {
		b.leadStore = store
	}
}

func WithTenantDirectory(directory TenantDirectory) Option {
	return func(b *serviceBuilder) {
		b.tenantDirectory = directory
	}
}

func WithDrafter(drafter Drafter) Option {
	return func(b *serviceBuilder) {
		b.drafter = drafter
	}
}

func WithSender(sender Sender) Option {
	return func(b *serviceBuilder) {
		b.sender = sender
	}
}

func WithOutreachLog(log OutreachLog) Option {
	return func(b *serviceBuilder) {
		b.outreachLog = log
	}
}

func WithLeadEventLog(log LeadEventLog) Option {
	return func(b *serviceBuilder) {
		b.leadEventLog = log
	}
}

func WithClock(clock func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.clock = clock
	}
}

func defaultServiceBuilder(cfg Config) serviceBuilder {
	return serviceBuilder{
		runtimeConfig:   cfg,
		metricsRecorder: NopMetricsRecorder{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return leadsErrorMapper(err)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	http := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.HTTP.Addr) != "" {
		http["addr"] = cfg.HTTP.Addr
	}
	if len(http) > 0 {
		layer["http"] = http
	}

	database := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Database.Driver) != "" {
		database["driver"] = cfg.Database.Driver
	}
	if includeZero || strings.TrimSpace(cfg.Database.DSN) != "" {
		database["dsn"] = cfg.Database.DSN
	}
	if includeZero || cfg.Database.Debug {
		database["debug"] = cfg.Database.Debug
	}
	if len(database) > 0 {
		layer["database"] = database
	}

	webhook := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Webhook.APIKey) != "" {
		webhook["api_key"] = cfg.Webhook.APIKey
	}
	if len(webhook) > 0 {
		layer["webhook"] = webhook
	}

	drafter := map[string]any{}
	if includeZero || cfg.Drafter.Enabled {
		drafter["enabled"] = cfg.Drafter.Enabled
	}
	if includeZero || strings.TrimSpace(cfg.Drafter.BaseURL) != "" {
		drafter["base_url"] = cfg.Drafter.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.Drafter.APIKey) != "" {
		drafter["api_key"] = cfg.Drafter.APIKey
	}
	if includeZero || strings.TrimSpace(cfg.Drafter.Model) != "" {
		drafter["model"] = cfg.Drafter.Model
	}
	if includeZero || cfg.Drafter.Timeout > 0 {
		drafter["timeout"] = cfg.Drafter.Timeout
	}
	if len(drafter) > 0 {
		layer["drafter"] = drafter
	}

	mailer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Mailer.Provider) != "" {
		mailer["provider"] = cfg.Mailer.Provider
	}
	if includeZero || strings.TrimSpace(cfg.Mailer.SendGridAPIKey) != "" {
		mailer["sendgrid_api_key"] = cfg.Mailer.SendGridAPIKey
	}
	if includeZero || strings.TrimSpace(cfg.Mailer.DefaultFrom) != "" {
		mailer["default_from"] = cfg.Mailer.DefaultFrom
	}
	if len(mailer) > 0 {
		layer["mailer"] = mailer
	}

	jobs := map[string]any{}
	if includeZero || cfg.Jobs.FallbackDigestEnabled {
		jobs["fallback_digest_enabled"] = cfg.Jobs.FallbackDigestEnabled
	}
	if includeZero || strings.TrimSpace(cfg.Jobs.FallbackDigestSchedule) != "" {
		jobs["fallback_digest_schedule"] = cfg.Jobs.FallbackDigestSchedule
	}
	if len(jobs) > 0 {
		layer["jobs"] = jobs
	}

	return layer
}
