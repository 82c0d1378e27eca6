package main

import (
	"github.com/mlthieu/linkstats/cmd"

	// Blank imports so each subcommand registers itself on the root command.
	_ "github.com/mlthieu/linkstats/cmd/cli"
	_ "github.com/mlthieu/linkstats/cmd/server"
)

func main() {
	cmd.Execute()
}
