package main

import (
	"os"

	"saxiib/cmd/saxiib/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
