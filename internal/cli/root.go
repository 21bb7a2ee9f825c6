// Package cli holds the image-augment commands.
package cli

import (
	"github.com/spf13/cobra"
)

// Build information, set by ldflags in cmd/image-augment.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "image-augment",
		Short:         "Randomized image augmentation with COCO bounding boxes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	root.AddCommand(
		RunCmd(),
		PartitionCmd(),
		FiltersCmd(),
		VersionCmd(),
	)
	return root
}

func configPath(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString("config")
}
