package main

import (
	"os"

	"github.com/sprintlens/sprintlens/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
