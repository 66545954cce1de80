package main

import (
	"os"

	"github.com/rustyeddy/stakesim/cmd/stakesim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
