package main

import (
	"os"

	"github.com/spigell/skillsight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
