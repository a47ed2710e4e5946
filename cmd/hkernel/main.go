// Package main provides the hkernel CLI.
package main

import (
	"os"

	"github.com/born-ml/hkernel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
