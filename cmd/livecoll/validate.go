package main

import (
	"github.com/spf13/cobra"
	"github.com/vango-dev/livecoll/pkg/pipeline"
)

func validateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check livecoll.json",
		Long: `Load livecoll.json, validate it and build the pipeline it describes,
reporting the first problem found with its location.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := pipeline.Build(cfg, pipeline.WithLogger(logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "%s is valid", cfg.Path())
			for _, name := range p.Names() {
				kind, _ := p.Kind(name)
				n, _ := p.Len(name)
				info(w, "%-20s %-8s %d", name, kind, n)
			}
			return nil
		},
	}
}
