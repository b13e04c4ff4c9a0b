package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
)

var initCmd = &cobra.Command{
	Use:   "init [<dir>]",
	Short: "Initialize an empty repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		r, err := microgit.Init(dir)
		if err != nil {
			return err
		}

		printer.Progressf("Initialized empty repository in %s", r.GitDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
