package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/api"
	"github.com/pleimann/marionette/internal/config"
	"github.com/pleimann/marionette/internal/keymap"
	"github.com/pleimann/marionette/internal/logging"
	"github.com/pleimann/marionette/internal/macro"
	"github.com/pleimann/marionette/internal/ui"
	"github.com/pleimann/marionette/internal/utils"
)

var (
	verbosity  int
	dryRun     bool
	configPath string
	backend    string

	rootCmd = &cobra.Command{
		Use:   utils.ExecutableName(),
		Short: "Declarative keyboard and mouse automation",
		Long: `marionette executes declarative input actions (clicks, drags, hotkeys,
typed text, delays and compositions of them) against the local desktop,
a program running in a pseudo-terminal, or a dry-run recorder.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Record events instead of injecting them")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&backend, "backend", "b", "", "Injection backend: recorder, pty or robotgo (default from config)")

	serveCmd.Flags().String("listen", "", "Address to listen on (default from config)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	macroCmd.AddCommand(macroListCmd, macroRunCmd)
	rootCmd.AddCommand(serveCmd, runCmd, macroCmd, keysCmd, initCmd, versionCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and WebSocket execute API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		var watcher *config.Watcher
		cfg := config.Default()
		if config.Exists(configPath) {
			w, err := config.NewWatcher(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			watcher = w
			cfg = w.Get()
		} else {
			log.Warn().Str("path", configPath).Msg("Config file not found, using defaults")
		}

		app, err := newApp(ctx, cfg, backend, dryRun)
		if err != nil {
			return err
		}
		defer app.Close()

		registry, err := macro.NewRegistry(cfg)
		if err != nil {
			return err
		}

		server := api.NewServer(app.executor, registry, cfg.Server.APIToken)
		if watcher != nil {
			watcher.OnReload(server.ApplyConfig)
			watcher.Start(ctx)
		}

		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = cfg.Server.Listen
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Listening on "+addr))

		return server.ListenAndServe(ctx, addr)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Execute one action document (JSON or YAML)",
	Long: `Execute one action document. The document is read from the named file,
or from stdin when the argument is "-" or omitted.

Example:
  echo '{"type":"Hotkey","params":{"modifiers":["Ctrl"],"key":"S"}}' | marionette run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		a, err := action.Decode(data)
		if err != nil {
			return fmt.Errorf("invalid action: %w", err)
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return executeOnce(cmd.OutOrStdout(), cfg, a)
	},
}

func readDocument(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func executeOnce(out io.Writer, cfg *config.Config, a action.Action) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, err := newApp(ctx, cfg, backend, dryRun)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.executor.Execute(a)
	ui.PrintResult(out, res.Description, res.Duration, err)
	if dryRun {
		app.printRecorded(out)
	}
	if err != nil {
		return errors.New("execution failed")
	}
	return nil
}

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "List or run configured macros",
}

var macroListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured macros",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return err
		}
		ui.PrintMacroList(cmd.OutOrStdout(), registry.List())
		return nil
	},
}

var macroRunCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Run a macro, or pick one interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		registry, err := macro.NewRegistry(cfg)
		if err != nil {
			return err
		}

		var m macro.Macro
		switch {
		case len(args) == 1:
			m, err = registry.Lookup(args[0])
			if err != nil {
				return err
			}
		case term.IsTerminal(int(os.Stdin.Fd())):
			picked, err := ui.SelectMacro(registry.List())
			if err != nil {
				return err
			}
			if picked == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("No macro selected"))
				return nil
			}
			m = *picked
		default:
			return fmt.Errorf("macro name required when stdin is not a terminal")
		}

		return executeOnce(cmd.OutOrStdout(), cfg, m.Action)
	},
}

func loadRegistry() (*macro.Registry, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return macro.NewRegistry(cfg)
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the logical to physical key table",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintKeyTable(cmd.OutOrStdout(), keymap.Table())
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if config.Exists(configPath) && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := config.CreateDefaultConfig(configPath); err != nil {
			return err
		}
		ui.PrintConfigCreated(cmd.OutOrStdout(), configPath)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "marionette version %s\n", Version)
	},
}
