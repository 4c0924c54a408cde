package main

import (
	"os"

	"github.com/YADRO-KNS/sebastes/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
