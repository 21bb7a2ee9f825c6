package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-augment/internal/config"
)

// PartitionCmd prints the train/valid/test split a run would use.
func PartitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "partition",
		Short: "Print the image split as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			log := newLogger(cfg.Log, cmd.ErrOrStderr())
			if cfg.Seed == nil {
				log.Warn("no seed configured, the split will differ from the next run")
			}
			o, err := newOrchestrator(cfg, log)
			if err != nil {
				return err
			}
			parts, err := o.Partition()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(parts.Map())
		},
	}
}
