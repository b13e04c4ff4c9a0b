// Package cmd implements the microgit command tree.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit/cli/internal/config"
	"github.com/grafana/microgit/cli/internal/logging"
	"github.com/grafana/microgit/cli/internal/output"
	"github.com/grafana/microgit/log"
)

var (
	// cfg is resolved once in the persistent pre-run and read by every
	// command.
	cfg     *config.Config
	printer = output.NewPrinter()
)

var rootCmd = &cobra.Command{
	Use:   "microgit",
	Short: "A minimal smart-HTTP Git client",
	Long: `microgit is a minimal Git client: it initializes local repositories,
reads and writes loose objects, and clones remote repositories over the
HTTP smart transport.

Every flag can also be set via the environment, e.g.
MICROGIT_LOG_LEVEL=debug.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Root().PersistentFlags())
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("user-agent", "microgit/0", "Agent string sent to remotes")
	pf.Duration("http-timeout", 0, "Timeout per HTTP request (0 for none)")
	pf.Int("retries", 3, "Transport attempts for ref discovery")
}

// commandContext returns a context carrying the configured logger.
func commandContext() context.Context {
	return log.ToContext(context.Background(), logging.New(cfg.LogLevel))
}
