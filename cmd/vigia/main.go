package main

import (
	"os"

	"github.com/vigia-dev/vigia/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
