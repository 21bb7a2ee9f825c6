package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-augment/internal/augment"
	"github.com/ironsheep/image-augment/internal/config"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Augment every image of the configured directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("variations") {
				if cfg.Variations, err = cmd.Flags().GetInt("variations"); err != nil {
					return fmt.Errorf("failed to get variations flag: %w", err)
				}
				if cfg.Variations < 0 {
					return fmt.Errorf("variations must be >= 0, got %d", cfg.Variations)
				}
			}
			if cmd.Flags().Changed("concurrent") {
				if cfg.Concurrent, err = cmd.Flags().GetBool("concurrent"); err != nil {
					return fmt.Errorf("failed to get concurrent flag: %w", err)
				}
			}

			log := newLogger(cfg.Log, cmd.ErrOrStderr())
			o, err := newOrchestrator(cfg, log)
			if err != nil {
				return err
			}

			log.Info("augmenting", "images", cfg.ImagesDir, "output", cfg.OutputDir,
				"variations", cfg.Variations, "concurrent", cfg.Concurrent, "boxes", cfg.BoxMode())
			var rep augment.Report
			if cfg.Concurrent {
				rep, err = o.RunConcurrent(cfg.Variations)
			} else {
				rep, err = o.RunSequential(cfg.Variations)
			}
			log.Info("done", "units", len(rep.Units), "images", rep.Total.Images,
				"written", rep.Total.Written, "skipped", rep.Total.Skipped,
				"failed", rep.Total.Failed, "annotations", rep.Total.Boxes)
			return err
		},
	}

	cmd.Flags().Int("variations", 0, "variants per image, overriding the configuration")
	cmd.Flags().Bool("concurrent", false, "run units concurrently with staging stores")
	return cmd
}
