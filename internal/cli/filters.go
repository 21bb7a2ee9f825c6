package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-augment/internal/filter"
)

// FiltersCmd lists the filter names a configuration may use.
func FiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range filter.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
