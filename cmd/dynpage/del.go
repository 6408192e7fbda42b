package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dynpage/pkg/tree"
)

func newDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, _, closeFn, err := openTree()
			if err != nil {
				return err
			}
			defer closeFn()

			err = t.Delete([]byte(args[0]))
			if errors.Is(err, tree.ErrNotFound) {
				fmt.Printf("%q: not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("deleted %q\n", args[0])
			return nil
		},
	}
}
