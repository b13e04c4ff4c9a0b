package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
	"github.com/grafana/microgit/retry"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [<dir>]",
	Short: "Clone a remote repository over the HTTP smart transport",
	Long: `Clone a remote repository over the HTTP smart transport.

The destination directory defaults to the last path segment of the URL,
minus a trailing ".git". It must not already exist.

Examples:
  microgit clone https://example.com/repos/project.git
  microgit clone https://example.com/repos/project.git /tmp/project`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]

		opts := microgit.CloneOptions{
			UserAgent:  cfg.UserAgent,
			HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		}
		if len(args) == 2 {
			opts.Dir = args[1]
		}

		ctx := commandContext()
		retrier := retry.NewExponentialBackoffRetrier()
		retrier.Attempts = cfg.Retries
		ctx = retry.ToContext(ctx, retrier)

		printer.Progressf("Cloning %s...", url)

		result, err := microgit.Clone(ctx, url, opts)
		if err != nil {
			printer.Failure(err)
			// The printer already reported it; keep cobra's output quiet.
			cmd.SilenceErrors = true
			return err
		}

		printer.CloneResult(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
