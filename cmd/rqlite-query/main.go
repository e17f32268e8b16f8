// Command rqlite-query runs single statements against an rqlite node and
// prints the results.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

func main() {
	a := &app{fs: afero.NewOsFs(), stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCommand(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
