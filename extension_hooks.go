package leads

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-leads/core"
)

// SenderFactory builds an outbound sender for a mailer provider name.
type SenderFactory func(cfg core.MailerConfig) (core.Sender, error)

// DrafterFactory builds a drafting strategy from drafter config.
type DrafterFactory func(cfg core.DrafterConfig) (core.Drafter, error)

// CommandQueryBundleFactory builds a host-defined bundle of command and query
// handlers around the pipeline service.
type CommandQueryBundleFactory func(service CommandQueryService) (any, error)

// ExtensionHooks lets host applications register additional mailer providers,
// drafting strategies and command/query bundles without patching the module.
type ExtensionHooks struct {
	mu sync.RWMutex

	senders  map[string]SenderFactory
	drafters map[string]DrafterFactory
	bundles  map[string]CommandQueryBundleFactory
}

func NewExtensionHooks() *ExtensionHooks {
	return &ExtensionHooks{
		senders:  map[string]SenderFactory{},
		drafters: map[string]DrafterFactory{},
		bundles:  map[string]CommandQueryBundleFactory{},
	}
}

func (h *ExtensionHooks) RegisterSender(provider string, factory SenderFactory) error {
	if h == nil {
		return fmt.Errorf("leads: extension hooks are nil")
	}
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return fmt.Errorf("leads: sender provider name is required")
	}
	if factory == nil {
		return fmt.Errorf("leads: sender factory for %q is required", provider)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.senders[provider]; exists {
		return fmt.Errorf("leads: sender provider %q already registered", provider)
	}
	h.senders[provider] = factory
	return nil
}

func (h *ExtensionHooks) RegisterDrafter(name string, factory DrafterFactory) error {
	if h == nil {
		return fmt.Errorf("leads: extension hooks are nil")
	}
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return fmt.Errorf("leads: drafter name is required")
	}
	if factory == nil {
		return fmt.Errorf("leads: drafter factory for %q is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.drafters[name]; exists {
		return fmt.Errorf("leads: drafter %q already registered", name)
	}
	h.drafters[name] = factory
	return nil
}

func (h *ExtensionHooks) RegisterCommandQueryBundle(
	name string,
	factory CommandQueryBundleFactory,
) error {
	if h == nil {
		return fmt.Errorf("leads: extension hooks are nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("leads: command/query bundle name is required")
	}
	if factory == nil {
		return fmt.Errorf("leads: command/query bundle %q factory is required", name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.bundles[name]; exists {
		return fmt.Errorf("leads: command/query bundle %q already registered", name)
	}
	h.bundles[name] = factory
	return nil
}

// BuildSender resolves a registered mailer provider. Unregistered providers
// are the caller's problem; the built-in providers never pass through here.
func (h *ExtensionHooks) BuildSender(provider string, cfg core.MailerConfig) (core.Sender, error) {
	if h == nil {
		return nil, fmt.Errorf("leads: extension hooks are nil")
	}
	provider = strings.TrimSpace(strings.ToLower(provider))

	h.mu.RLock()
	factory, ok := h.senders[provider]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("leads: sender provider %q is not registered", provider)
	}
	return factory(cfg)
}

func (h *ExtensionHooks) BuildDrafter(name string, cfg core.DrafterConfig) (core.Drafter, error) {
	if h == nil {
		return nil, fmt.Errorf("leads: extension hooks are nil")
	}
	name = strings.TrimSpace(strings.ToLower(name))

	h.mu.RLock()
	factory, ok := h.drafters[name]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("leads: drafter %q is not registered", name)
	}
	return factory(cfg)
}

func (h *ExtensionHooks) BuildCommandQueryBundles(
	service CommandQueryService,
) (map[string]any, error) {
	if h == nil {
		return map[string]any{}, nil
	}
	if service == nil {
		return nil, fmt.Errorf("leads: command/query service is required")
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	factories := make(map[string]CommandQueryBundleFactory, len(h.bundles))
	for name, factory := range h.bundles {
		factories[name] = factory
	}
	h.mu.RUnlock()

	result := make(map[string]any, len(names))
	for _, name := range names {
		bundle, err := factories[name](service)
		if err != nil {
			return nil, err
		}
		result[name] = bundle
	}
	return result, nil
}

func (h *ExtensionHooks) SenderProviders() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.senders))
	for name := range h.senders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *ExtensionHooks) DrafterNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.drafters))
	for name := range h.drafters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *ExtensionHooks) BundleNames() []string {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.bundles))
	for name := range h.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
