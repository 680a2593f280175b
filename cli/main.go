// Package main is the entry point for the mango CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mango-db/mango-go/cli/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
