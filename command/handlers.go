package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-leads/core"
)

// MutatingService covers the pipeline mutations exposed through the command
// bus. The core service satisfies it directly.
type MutatingService interface {
	IngestLead(ctx context.Context, req core.IngestLeadRequest) (core.IngestLeadResult, error)
}

// ReferenceDataSeeder populates tenants and account mappings when the store
// is empty. It must be a no-op when reference data already exists.
type ReferenceDataSeeder interface {
	SeedReferenceData(ctx context.Context) error
}

type IngestLeadCommand struct {
	service MutatingService
}

func NewIngestLeadCommand(service MutatingService) *IngestLeadCommand {
	return &IngestLeadCommand{service: service}
}

func (c *IngestLeadCommand) Execute(ctx context.Context, msg IngestLeadMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lead ingestion service is required")
	}
	out, err := c.service.IngestLead(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SeedReferenceDataCommand struct {
	seeder ReferenceDataSeeder
}

func NewSeedReferenceDataCommand(seeder ReferenceDataSeeder) *SeedReferenceDataCommand {
	return &SeedReferenceDataCommand{seeder: seeder}
}

func (c *SeedReferenceDataCommand) Execute(ctx context.Context, _ SeedReferenceDataMessage) error {
	if c == nil || c.seeder == nil {
		return commandDependencyError("command: reference data seeder is required")
	}
	return c.seeder.SeedReferenceData(ctx)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
