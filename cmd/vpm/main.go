package main

import (
	"os"

	"github.com/vessel-lang/vpm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
