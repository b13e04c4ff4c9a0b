package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
)

var writeTreeCmd = &cobra.Command{
	Use:   "write-tree",
	Short: "Snapshot the working directory as tree objects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := microgit.Open(".")
		if err != nil {
			return err
		}

		id, err := r.WriteTree()
		if err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeTreeCmd)
}
