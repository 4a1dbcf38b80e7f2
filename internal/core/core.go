package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds the total time spent stopping modules.
const shutdownTimeout = 30 * time.Second

// loadedModule is one module under App management.
type loadedModule struct {
	id      ModuleID
	module  Module
	started bool
}

// App drives the module lifecycle: load, start, stop, run until signaled.
type App struct {
	ctx     *AppContext
	modules []loadedModule
	logger  *slog.Logger
}

// NewApp creates an App over ctx with no modules loaded.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// LoadModules instantiates, configures, provisions and validates the named
// modules in order. On failure the already-loaded ones are released and the
// app is left empty.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.unload()
			return fmt.Errorf("loading module %s: %w", id, err)
		}
		a.modules = append(a.modules, loadedModule{id: mod.ModuleInfo().ID, module: mod})
		a.logger.Info("module loaded", "module", id)
	}
	return nil
}

// Module returns the loaded module with the given ID.
func (a *App) Module(id string) (Module, bool) {
	for i := range a.modules {
		if string(a.modules[i].id) == id {
			return a.modules[i].module, true
		}
	}
	return nil, false
}

// AppendModule adds an already-constructed module to the end of the
// lifecycle. It takes part in Start and Stop like a loaded module but skips
// Configure, Provision and Validate.
func (a *App) AppendModule(id string, mod Module) {
	a.modules = append(a.modules, loadedModule{id: ModuleID(id), module: mod})
}

// Start walks the modules in load order, starting every Starter. The first
// failure stops the already-started prefix in reverse and aborts.
func (a *App) Start() error {
	for i := range a.modules {
		mi := &a.modules[i]
		s, ok := mi.module.(Starter)
		if !ok {
			continue
		}
		a.logger.Info("starting module", "module", string(mi.id))
		if err := s.Start(); err != nil {
			a.logger.Error("module start failed", "module", string(mi.id), "error", err)
			a.stopFrom(i - 1)
			return fmt.Errorf("starting module %s: %w", mi.id, err)
		}
		mi.started = true
	}
	a.logger.Info("all modules started")
	return nil
}

// Stop stops every started module in reverse start order.
func (a *App) Stop() {
	a.stopFrom(len(a.modules) - 1)
}

// stopFrom stops started modules from index i down to 0. All of them share
// one shutdown deadline.
func (a *App) stopFrom(i int) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for ; i >= 0; i-- {
		mi := &a.modules[i]
		if !mi.started {
			continue
		}
		mi.started = false
		s, ok := mi.module.(Stopper)
		if !ok {
			continue
		}
		a.logger.Info("stopping module", "module", string(mi.id))
		if err := s.Stop(ctx); err != nil {
			a.logger.Error("module stop error", "module", string(mi.id), "error", err)
		}
	}
}

// unload releases modules after a failed load, before anything started.
func (a *App) unload() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(a.modules) - 1; i >= 0; i-- {
		if s, ok := a.modules[i].module.(Stopper); ok {
			_ = s.Stop(ctx)
		}
	}
	a.modules = nil
}

// Run starts the modules and blocks until SIGINT or SIGTERM arrives, then
// stops them.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	a.logger.Info("shutdown signal received", "signal", sig.String())

	a.Stop()
	a.logger.Info("shutdown complete")
	return nil
}
