package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirkon/checkverify/internal/cerrules"
)

func (a *app) checksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List bundled checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range cerrules.All() {
				fmt.Fprintf(a.stdout, "%s - %s\n", r, r.Description())
			}
			return nil
		},
	}
}
