// Package cli implements the storeadmin command-line interface. Invoked
// without a subcommand it opens the interactive shell; the subcommands
// expose the same record operations for scripts.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/storeadmin/internal/catalog"
	"github.com/mesh-intelligence/storeadmin/internal/codec"
	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/internal/logging"
	"github.com/mesh-intelligence/storeadmin/internal/paths"
	"github.com/mesh-intelligence/storeadmin/internal/sqlite"
	"github.com/mesh-intelligence/storeadmin/internal/tui"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// appTitle heads every screen of the interactive shell.
const appTitle = "Online Store Admin"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	database  string
	output    string
	jsonMode  bool
}

// app carries the state one invocation shares between its commands.
type app struct {
	flags  rootFlags
	config types.Config
	logs   io.Closer
}

// NewRootCmd creates the top-level "storeadmin" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "storeadmin",
		Short: "Administer the tables of an online store database",
		Long: "storeadmin browses, searches, adds, edits and deletes the records of an\n" +
			"online store's SQLite database. Run it without a command for the\n" +
			"interactive shell.",
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               a.runShell,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&a.flags.database, "database", "", "database file (overrides config.yaml)")
	root.PersistentFlags().StringVarP(&a.flags.output, "output", "o", string(FormatTable), "output format: table, json or yaml")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newTablesCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newEditCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "storeadmin:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup loads the configuration and starts logging before any command
// other than version runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve config dir: %w", err))
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir)
	if err != nil {
		return systemError(fmt.Errorf("resolve data dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return systemError(err)
	}
	cfg := configFromViper(v, dataDir)
	if a.flags.database != "" {
		cfg.Database = paths.ResolveDatabase(dataDir, a.flags.database)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.config = cfg

	logs, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return systemError(err)
	}
	a.logs = logs
	logging.For("cli").InfoContext(cmd.Context(), "command started", "command", cmd.CommandPath(), "database", cfg.Database)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.logs == nil {
		return nil
	}
	logging.SetRoot(logging.New(io.Discard, ""))
	err := a.logs.Close()
	a.logs = nil
	return err
}

// attach opens the configured database. The caller must Detach the
// returned backend.
func (a *app) attach() (*sqlite.Backend, form.Deps, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(a.config); err != nil {
		return nil, form.Deps{}, fmt.Errorf("attach database: %w", err)
	}
	return b, form.Deps{Store: b, Codec: codec.New(b, codec.SHA256{})}, nil
}

// printer returns a printer for the selected output format.
func (a *app) printer(cmd *cobra.Command) (*Printer, error) {
	f, err := parseFormat(a.flags.output, a.flags.jsonMode)
	if err != nil {
		return nil, err
	}
	return NewPrinter(cmd.OutOrStdout(), f), nil
}

func (a *app) runShell(cmd *cobra.Command, args []string) error {
	b, deps, err := a.attach()
	if err != nil {
		return err
	}
	defer b.Detach()
	return tui.Run(cmd.Context(), deps, catalog.All(), appTitle)
}

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func systemError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps an error to the process exit code. Storage failures are
// system errors; rejected input of any kind is a user error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, types.ErrStorage),
		errors.Is(err, types.ErrDetached),
		errors.Is(err, types.ErrAlreadyAttached):
		return exitSysError
	}
	return exitUserError
}
