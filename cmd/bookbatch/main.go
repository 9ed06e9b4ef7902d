// Package main is the entry point for the bookbatch application.
package main

import (
	"os"

	"github.com/inkwhale/bookbatch/cmd/bookbatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
