package commands

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/extratos/verifier/internal/buildinfo"
	"github.com/extratos/verifier/internal/config"
	"github.com/extratos/verifier/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

// load resolves the effective configuration and builds the logger. Logs go
// to the command's stderr so stdout stays clean for results.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Resolve(g.configPath, g.envFile)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	return cfg, logging.New(cfg.Logging, cmd.ErrOrStderr()), nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "extratos",
		Short:   "Check expected amounts against bank statement exports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ./"+config.FileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&g.envFile, "env-file", "", "env file to load (default ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newInitCommand(),
		newReconcileCommand(g),
		newExtractCommand(g),
		newExpectedCommand(g),
		newServeCommand(g),
		newHistoryCommand(g),
	)

	return rootCmd
}
