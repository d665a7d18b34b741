// Package main provides the entry point for authgate.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/safedep/authgate/cli"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}

	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		fmt.Fprint(os.Stderr, coder.Message())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCodeFor(err))
}
