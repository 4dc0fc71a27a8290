// Package main is the entry point for the side-hustle server.
package main

import (
	"fmt"
	"os"

	"github.com/nowyouseeme1234/side-hustle/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
