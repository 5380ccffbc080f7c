package main

import (
	"os"

	"github.com/podfetch/authgate/cmd/authgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
