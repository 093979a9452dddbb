package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pleimann/marionette/internal/config"
	"github.com/pleimann/marionette/internal/engine"
	"github.com/pleimann/marionette/internal/inject"
	"github.com/pleimann/marionette/internal/logging"
	"github.com/pleimann/marionette/internal/pty"
)

// App holds the pieces every command needs.
type App struct {
	config   *config.Config
	executor *engine.Executor
	recorder *inject.Recorder
}

// loadConfig reads path, falling back to defaults when the file is absent.
func loadConfig(path string) (*config.Config, error) {
	if !config.Exists(path) {
		log.Warn().Str("path", path).Msg("Config file not found, using defaults")
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("macros", len(cfg.Macros)).Msg("Loaded configuration")
	return cfg, nil
}

// openBackend creates the injector named by kind. A dry run always
// records instead of injecting.
func openBackend(ctx context.Context, cfg *config.Config, kind string, dryRun bool) (inject.Injector, error) {
	if dryRun {
		kind = config.BackendRecorder
	}

	switch kind {
	case config.BackendRecorder:
		return inject.NewRecorder(cfg.Backend.Screen.Width, cfg.Backend.Screen.Height), nil

	case config.BackendPTY:
		p := cfg.Backend.PTY
		mgr, err := pty.NewManager(pty.Options{
			Command:    p.Command,
			Args:       p.Args,
			WorkingDir: p.WorkingDir,
			Rows:       p.Rows,
			Cols:       p.Cols,
		})
		if err != nil {
			return nil, err
		}
		if err := mgr.Start(ctx); err != nil {
			return nil, err
		}
		return inject.NewTerminal(mgr), nil

	case config.BackendRobotgo:
		return inject.NewNative()
	}
	return nil, fmt.Errorf("unknown backend kind: %s", kind)
}

func newApp(ctx context.Context, cfg *config.Config, kind string, dryRun bool) (*App, error) {
	if kind == "" {
		kind = cfg.Backend.Kind
	}

	inj, err := openBackend(ctx, cfg, kind, dryRun)
	if err != nil {
		return nil, fmt.Errorf("%w: %s backend: %v", engine.ErrUnavailable, kind, err)
	}

	exec, err := engine.NewExecutor(inj, engine.WithLogger(logging.GetLogger("engine")))
	if err != nil {
		if c, ok := inj.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}

	app := &App{config: cfg, executor: exec}
	if rec, ok := inj.(*inject.Recorder); ok {
		app.recorder = rec
	}
	return app, nil
}

// printRecorded lists what a recorder backend captured.
func (a *App) printRecorded(w io.Writer) {
	if a.recorder == nil {
		return
	}
	for _, e := range a.recorder.Strings() {
		fmt.Fprintln(w, "  "+e)
	}
}

func (a *App) Close() {
	if err := a.executor.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		log.Warn().Err(err).Msg("Backend did not close cleanly")
	}
}
