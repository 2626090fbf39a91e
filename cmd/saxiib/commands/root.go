package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"saxiib/internal/app"
)

const passphraseEnv = "SAXIIB_PASSPHRASE"

var (
	home       string
	passphrase string
	relayURL   string
	storeKind  string
	logLevel   string

	wire *app.Wire
)

// Execute runs the CLI with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, newRootCmd())
}

// run executes root and closes whatever wire its pre-run hook built, also
// when the command failed.
func run(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if wire != nil {
		err = multierr.Append(err, wire.Close())
		wire = nil
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "saxiib",
		Short:         "Peer-to-peer messaging from the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := app.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cmd.Context(), cfg, logger)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.saxiib)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing the identity at rest (or $"+passphraseEnv+")")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&storeKind, "store", "", "storage backend: file, badger or memory")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		initCmd(),
		whoamiCmd(),
		nameCmd(),
		cardCmd(),
		scanCmd(),
		contactsCmd(),
		sendCmd(),
		sendMediaCmd(),
		historyCmd(),
		listenCmd(),
	)
	return root
}

// resolveConfig layers defaults, <home>/config.yaml and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (app.Config, error) {
	dir := home
	if dir == "" {
		var err error
		if dir, err = app.DefaultHome(); err != nil {
			return app.Config{}, err
		}
	}
	cfg := app.DefaultConfig(dir)
	if err := app.LoadConfigFile(filepath.Join(dir, app.ConfigFile), &cfg); err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("relay") {
		cfg.RelayURL = relayURL
	}
	if flags.Changed("store") {
		cfg.Store = storeKind
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	cfg.Passphrase = passphrase
	if cfg.Passphrase == "" {
		cfg.Passphrase = os.Getenv(passphraseEnv)
	}
	return cfg, cfg.Validate()
}
