package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every page reachable from the root, tombstones highlighted",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, _, closeFn, err := openTree()
			if err != nil {
				return err
			}
			defer closeFn()

			var buf strings.Builder
			if err := t.Dump(&buf); err != nil {
				return err
			}

			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			dead := color.New(color.FgRed)
			live := color.New(color.FgGreen)
			for _, r := range buf.String() {
				switch r {
				case 'X':
					dead.Fprint(w, "X")
				case '_':
					live.Fprint(w, "_")
				default:
					fmt.Fprint(w, string(r))
				}
			}
			return nil
		},
	}
}
