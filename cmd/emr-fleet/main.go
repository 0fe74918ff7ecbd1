// Package main is the entry point for the emr-fleet CLI.
//
// emr-fleet compiles a YAML cluster document into an EMR instance-fleet
// cluster request and submits it, mixing spot and on-demand capacity.
//
// Commands: render, create, wait, shutdown, cost.
package main

import (
	"fmt"
	"os"

	"emr-fleet/cmd/emr-fleet/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
