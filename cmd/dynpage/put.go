package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Insert or overwrite a key/value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, _, closeFn, err := openTree()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := t.Insert([]byte(args[0]), []byte(args[1])); err != nil {
				return err
			}
			fmt.Printf("put %q\n", args[0])
			return nil
		},
	}
}
