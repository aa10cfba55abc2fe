package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"

	leads "github.com/goliatone/go-leads"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// RegistryAdapter wraps a go-command registry so lead handlers register
// through one place and resolver hooks stay composable.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into a go-job queue registry
// so queued execution messages resolve to the same handlers.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// MountFacade registers every lead command and query handler on the adapter
// and subscribes them on the process dispatcher. On any failure the
// subscriptions made so far are rolled back. The caller still owns
// Initialize(); resolver hooks added after mounting would otherwise be
// skipped.
func MountFacade(
	adapter *RegistryAdapter,
	facade *leads.Facade,
	runnerOpts ...runner.Option,
) ([]commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if facade == nil {
		return nil, fmt.Errorf("gocommand: facade is required")
	}

	commands := facade.Commands()
	queries := facade.Queries()

	var subscriptions []commanddispatcher.Subscription
	rollback := func() {
		for _, subscription := range subscriptions {
			if subscription != nil {
				subscription.Unsubscribe()
			}
		}
	}

	mountCommand := func(register func() error, subscribe func() commanddispatcher.Subscription) error {
		subscription := subscribe()
		if err := register(); err != nil {
			if subscription != nil {
				subscription.Unsubscribe()
			}
			rollback()
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	if err := mountCommand(
		func() error { return adapter.RegisterCommand(commands.IngestLead) },
		func() commanddispatcher.Subscription {
			return SubscribeCommand(commands.IngestLead, runnerOpts...)
		},
	); err != nil {
		return nil, err
	}
	if err := mountCommand(
		func() error { return adapter.RegisterCommand(commands.SeedReferenceData) },
		func() commanddispatcher.Subscription {
			return SubscribeCommand(commands.SeedReferenceData, runnerOpts...)
		},
	); err != nil {
		return nil, err
	}
	if err := mountCommand(
		func() error { return adapter.RegisterQuery(queries.GetLead) },
		func() commanddispatcher.Subscription {
			return SubscribeQuery(queries.GetLead, runnerOpts...)
		},
	); err != nil {
		return nil, err
	}
	if err := mountCommand(
		func() error { return adapter.RegisterQuery(queries.GetTenant) },
		func() commanddispatcher.Subscription {
			return SubscribeQuery(queries.GetTenant, runnerOpts...)
		},
	); err != nil {
		return nil, err
	}
	if err := mountCommand(
		func() error { return adapter.RegisterQuery(queries.ListLeadEvents) },
		func() commanddispatcher.Subscription {
			return SubscribeQuery(queries.ListLeadEvents, runnerOpts...)
		},
	); err != nil {
		return nil, err
	}
	if err := mountCommand(
		func() error { return adapter.RegisterQuery(queries.CountFallback) },
		func() commanddispatcher.Subscription {
			return SubscribeQuery(queries.CountFallback, runnerOpts...)
		},
	); err != nil {
		return nil, err
	}

	return subscriptions, nil
}
