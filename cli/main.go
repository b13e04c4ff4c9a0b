package main

import (
	"os"

	"github.com/grafana/microgit/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
