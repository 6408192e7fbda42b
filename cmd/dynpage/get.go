package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dynpage/pkg/tree"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Look up a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, _, closeFn, err := openTree()
			if err != nil {
				return err
			}
			defer closeFn()

			val, err := t.Get([]byte(args[0]))
			if errors.Is(err, tree.ErrNotFound) {
				fmt.Printf("%q: not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", val)
			return nil
		},
	}
}
