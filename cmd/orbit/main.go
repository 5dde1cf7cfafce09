/*
Package main is the entry point for the orbit CLI.

orbit runs an adaptive interview over HTTP and matches respondents against
reference archetypes.

Usage:
  orbit [command]

Available Commands:
  serve       Start the interview HTTP API
  seed        Load questions and archetypes into the database
  migrate     Create or upgrade the database schema
  questions   Inspect the question catalog
  archetypes  Inspect the archetype set
  version     Show version information
  help        Help about any command

Examples:
  # Prepare a database with the built-in catalog
  orbit seed

  # Serve the API on port 8000
  orbit serve

  # Find archetypes by keyword
  orbit archetypes search outdoor
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/orbit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
