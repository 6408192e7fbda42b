// Command dynpage is a small inspection and smoke-test CLI over the
// dynamic-size page store, built as a cobra command tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
