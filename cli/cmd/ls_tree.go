package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
	"github.com/grafana/microgit/protocol/hash"
)

var lsTreeNameOnly bool

var lsTreeCmd = &cobra.Command{
	Use:   "ls-tree [--name-only] <tree>",
	Short: "List the entries of a tree object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := hash.FromHex(args[0])
		if err != nil {
			return err
		}
		if id.IsZero() {
			return errors.New("a tree id is required")
		}

		r, err := microgit.Open(".")
		if err != nil {
			return err
		}

		if lsTreeNameOnly {
			entries, err := r.LsTree(id)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Println(e.Name)
			}
			return nil
		}

		return printTree(r, id)
	},
}

func init() {
	lsTreeCmd.Flags().BoolVar(&lsTreeNameOnly, "name-only", false, "List only entry names")
	rootCmd.AddCommand(lsTreeCmd)
}
