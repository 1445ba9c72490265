package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/config"
)

// host owns the component instances of the process and drives their
// lifecycle: create, initialize, start and reverse-order stop.
type host struct {
	registry   *component.Registry
	deps       component.Dependencies
	components []*component.ManagedComponent
}

func newHost(registry *component.Registry, deps component.Dependencies) *host {
	return &host{registry: registry, deps: deps}
}

// createAll instantiates every enabled component in name order
func (h *host) createAll(cfg *config.Config) error {
	for _, name := range cfg.EnabledComponents() {
		compCfg := cfg.Components[name]
		comp, err := h.registry.CreateComponent(name, compCfg, h.deps)
		if err != nil {
			return fmt.Errorf("create component %s: %w", name, err)
		}
		h.components = append(h.components, &component.ManagedComponent{
			Name:      name,
			Component: comp,
			State:     component.StateCreated,
		})
		slog.Info("Created component", "name", name, "factory", compCfg.Name, "type", compCfg.Type)
	}

	if len(h.components) == 0 {
		slog.Warn("No components enabled", "available", h.registry.ListComponentTypes())
	}
	return nil
}

// startAll initializes and starts components in creation order. The first
// failure aborts; components started before it are stopped by stopAll.
func (h *host) startAll(ctx context.Context) error {
	for i, mc := range h.components {
		lc, ok := component.AsLifecycleComponent(mc.Component)
		if !ok {
			slog.Debug("Component has no lifecycle", "name", mc.Name)
			continue
		}

		if err := lc.Initialize(); err != nil {
			mc.State = component.StateFailed
			mc.LastError = err
			return fmt.Errorf("initialize component %s: %w", mc.Name, err)
		}
		mc.State = component.StateInitialized

		mc.Context, mc.Cancel = context.WithCancel(ctx)
		if err := lc.Start(mc.Context); err != nil {
			mc.Cancel()
			mc.State = component.StateFailed
			mc.LastError = err
			return fmt.Errorf("start component %s: %w", mc.Name, err)
		}
		mc.State = component.StateStarted
		mc.StartOrder = i + 1
	}
	return nil
}

// stopAll stops started components in reverse start order
func (h *host) stopAll(timeout time.Duration) {
	started := slices.DeleteFunc(slices.Clone(h.components), func(mc *component.ManagedComponent) bool {
		return mc.State != component.StateStarted
	})
	slices.SortFunc(started, func(a, b *component.ManagedComponent) int {
		return b.StartOrder - a.StartOrder
	})

	for _, mc := range started {
		lc, _ := component.AsLifecycleComponent(mc.Component)
		if err := lc.Stop(timeout); err != nil {
			mc.State = component.StateFailed
			mc.LastError = err
			slog.Warn("Component stop failed", "name", mc.Name, "error", err)
		} else {
			mc.State = component.StateStopped
			slog.Info("Stopped component", "name", mc.Name)
		}
		if mc.Cancel != nil {
			mc.Cancel()
		}
	}
}

func (h *host) names() []string {
	names := make([]string, 0, len(h.components))
	for _, mc := range h.components {
		names = append(names, mc.Name)
	}
	return names
}
