package main

import (
	"os"

	"github.com/mamadbah2/aquaperf/cmd/aquaperf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
