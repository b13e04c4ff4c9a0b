package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/grafana/microgit"
	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
)

var (
	commitTreeParents []string
	commitTreeMessage string
)

var commitTreeCmd = &cobra.Command{
	Use:   "commit-tree <tree> [-p <parent>]... -m <message>",
	Short: "Create a commit object for an existing tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if commitTreeMessage == "" {
			return errors.New("a commit message is required")
		}

		tree, err := hash.FromHex(args[0])
		if err != nil {
			return err
		}

		var parents []hash.Hash
		for _, p := range commitTreeParents {
			parent, err := hash.FromHex(p)
			if err != nil {
				return err
			}
			parents = append(parents, parent)
		}

		r, err := microgit.Open(".")
		if err != nil {
			return err
		}

		id, err := r.CommitTree(tree, parents, commitTreeMessage, signatureFromEnv())
		if err != nil {
			return err
		}

		fmt.Println(id)
		return nil
	},
}

// signatureFromEnv builds the author from GIT_AUTHOR_NAME and
// GIT_AUTHOR_EMAIL, with neutral defaults.
func signatureFromEnv() protocol.Signature {
	name := os.Getenv("GIT_AUTHOR_NAME")
	if name == "" {
		name = "microgit"
	}
	email := os.Getenv("GIT_AUTHOR_EMAIL")
	if email == "" {
		email = "microgit@localhost"
	}

	return protocol.Signature{Name: name, Email: email, Time: time.Now()}
}

func init() {
	commitTreeCmd.Flags().StringArrayVarP(&commitTreeParents, "parent", "p", nil, "Parent commit id (repeatable)")
	commitTreeCmd.Flags().StringVarP(&commitTreeMessage, "message", "m", "", "Commit message")
	rootCmd.AddCommand(commitTreeCmd)
}
