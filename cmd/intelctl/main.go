// Command intelctl runs the intel workflow step by step from the shell:
// build the schema, fetch a company, export it, compare two companies.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
