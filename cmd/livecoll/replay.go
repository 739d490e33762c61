package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/livecoll/internal/config"
	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/pipeline"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

func replayCmd(configPath *string) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay [script]",
		Short: "Apply an operation script and print the resulting events",
		Long: `Apply a JSON lines operation script to the pipeline and print every
event of the watched collections as one JSON object per line.

Each script line holds one operation or an array of operations.
Blank lines and lines starting with # are ignored. Without a script
argument, or with "-", operations are read from standard input.

Examples:
  livecoll replay ops.jsonl
  livecoll replay ops.jsonl --watch evens --watch labels
  livecoll replay --snapshot < ops.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			script := cmd.InOrStdin()
			if name != "-" {
				f, err := os.Open(name)
				if err != nil {
					if os.IsNotExist(err) {
						return errors.New("E141").WithDetailf("%s does not exist", name)
					}
					return errors.New("E141").Wrap(err)
				}
				defer f.Close()
				script = f
			}

			opts.script = script
			opts.scriptName = name
			return runReplay(cmd.OutOrStdout(), cfg, logger, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.watch, "watch", "w", nil, "Collection to print events of (repeatable, default: all)")
	cmd.Flags().BoolVar(&opts.snapshot, "snapshot", false, "Print a snapshot of every watched collection at the end")

	return cmd
}

type replayOptions struct {
	watch      []string
	snapshot   bool
	script     io.Reader
	scriptName string
}

// runReplay builds the pipeline, watches the requested collections and
// applies the script, writing events and snapshots to w as JSON lines.
func runReplay(w io.Writer, cfg *config.Config, logger *slog.Logger, opts replayOptions) error {
	ops, err := pipeline.ReadScript(opts.script, opts.scriptName)
	if err != nil {
		return err
	}

	p, err := pipeline.Build(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	watch := opts.watch
	if len(watch) == 0 {
		watch = p.Names()
	}

	enc := json.NewEncoder(w)
	var writeErr error
	emit := func(v any) {
		if writeErr == nil {
			if err := enc.Encode(v); err != nil {
				writeErr = errors.New("E143").Wrap(err)
			}
		}
	}

	seqs := make(map[string]uint64, len(watch))
	for _, name := range watch {
		stop, err := p.Watch(name, func(ev protocol.Event) {
			seqs[ev.Collection] = ev.Seq
			emit(&ev)
		})
		if err != nil {
			return err
		}
		defer stop()
	}

	applied, err := p.ApplyAll(ops)
	logger.Debug("script applied", "script", opts.scriptName, "ops", applied, "of", len(ops))
	if err != nil {
		return errors.FromError(err, "E121").
			WithSuggestion(fmt.Sprintf("Operation %d of %s failed; the %d before it were applied", applied+1, opts.scriptName, applied))
	}

	if opts.snapshot {
		for _, name := range watch {
			s, err := p.Snapshot(name)
			if err != nil {
				return err
			}
			s.Seq = seqs[name]
			emit(s)
		}
	}
	return writeErr
}
