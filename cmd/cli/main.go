package main

import (
	"os"

	"github.com/clusterkit-dev/clusterkit/internal/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
