package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
	"github.com/grafana/microgit/protocol/object"
)

var hashObjectWrite bool

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object [-w] <file>",
	Short: "Compute a blob identity, optionally storing the object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		r, err := microgit.Open(".")
		if err != nil {
			return err
		}

		id, err := r.HashObject(object.TypeBlob, payload, hashObjectWrite)
		if err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

func init() {
	hashObjectCmd.Flags().BoolVarP(&hashObjectWrite, "write", "w", false, "Write the object to the store")
	rootCmd.AddCommand(hashObjectCmd)
}
