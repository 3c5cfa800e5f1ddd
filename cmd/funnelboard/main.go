package main

import (
	"os"

	"github.com/meridian-data/funnelboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
