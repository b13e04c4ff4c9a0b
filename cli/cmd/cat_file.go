package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

var (
	catFilePretty bool
	catFileType   bool
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-p | -t) <object>",
	Short: "Show the contents or type of a stored object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if catFilePretty == catFileType {
			return errors.New("exactly one of -p and -t is required")
		}

		id, err := hash.FromHex(args[0])
		if err != nil {
			return err
		}
		if id.IsZero() {
			return errors.New("an object id is required")
		}

		r, err := microgit.Open(".")
		if err != nil {
			return err
		}

		kind, payload, err := r.ReadObject(id)
		if err != nil {
			return err
		}

		if catFileType {
			fmt.Printf("%s\n", kind.Bytes())
			return nil
		}

		if kind == object.TypeTree {
			return printTree(r, id)
		}
		_, err = os.Stdout.Write(payload)
		return err
	},
}

// printTree renders tree entries the way git does:
// "<mode> <kind> <id>\t<name>".
func printTree(r *microgit.Repository, id hash.Hash) error {
	entries, err := r.LsTree(id)
	if err != nil {
		return err
	}

	for _, e := range entries {
		kind := object.TypeBlob
		if e.IsDir() {
			kind = object.TypeTree
		}
		fmt.Printf("%06o %s %s\t%s\n", e.Mode, kind.Bytes(), e.Hash, e.Name)
	}
	return nil
}

func init() {
	catFileCmd.Flags().BoolVarP(&catFilePretty, "pretty", "p", false, "Pretty-print the object's content")
	catFileCmd.Flags().BoolVarP(&catFileType, "type", "t", false, "Show the object's type")
	rootCmd.AddCommand(catFileCmd)
}
