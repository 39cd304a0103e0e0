package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gifshuffle/pkg/pipeline"
)

// shuffleCommand creates the shuffle command.
func (c *CLI) shuffleCommand() *cobra.Command {
	var (
		flags   shuffleFlags
		output  string
		noCache bool
		refresh bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "shuffle <file.gif>...",
		Short: "Shuffle the frames of one or more GIFs",
		Long: `Shuffle reorders the frames of each input and writes the result next
to it as <name>-shuffled.gif, or to --output for a single input.

Without --seed a random seed is chosen and printed, so any run can be
reproduced.`,
		Example: `  gifshuffle shuffle cat.gif --seed 42
  gifshuffle shuffle cat.gif -o steady.gif --speed 0.5 --loop 0
  gifshuffle shuffle *.gif --ratio 0.3 --distance 2 -j 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output needs exactly one input, got %d", len(args))
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			scfg, random := flags.resolve(cmd.Flags(), cfg)
			if err := scfg.Validate(); err != nil {
				return err
			}
			if random {
				printInfo("Seed %s", StyleNumber.Render(fmt.Sprint(scfg.Seed)))
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.Options{Config: scfg, Refresh: refresh}
			if len(args) == 1 {
				out := output
				if out == "" {
					out = pipeline.OutputPath(args[0])
				}
				return c.shuffleOne(cmd, runner, args[0], out, opts)
			}

			jobs := make([]pipeline.Job, len(args))
			for i, in := range args {
				jobs[i] = pipeline.Job{Input: in, Output: pipeline.OutputPath(in), Options: opts}
			}
			if workers <= 0 {
				workers = cfg.Server.Workers
			}
			return c.shuffleBatch(cmd, runner, jobs, workers)
		},
	}

	cmd.Flags().AddFlagSet(flags.flagSet())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single input only)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "files processed in parallel")

	return cmd
}

func (c *CLI) shuffleOne(cmd *cobra.Command, runner *pipeline.Runner, in, out string, opts pipeline.Options) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	spin := newSpinnerWithContext(cmd.Context(), "Shuffling "+in)
	spin.Start()
	res, err := runner.ExecuteFile(cmd.Context(), in, out, opts)
	if err != nil {
		spin.StopWithError(err.Error())
		return err
	}
	spin.Stop()

	prog.done(fmt.Sprintf("Shuffled %d frames", res.Stats.Frames))
	printSuccess("Shuffled %s", in)
	printFile(out)
	printStats(res.Stats, res.CacheInfo.Hit)
	printNextStep("Inspect", appName+" inspect "+out)
	return nil
}

func (c *CLI) shuffleBatch(cmd *cobra.Command, runner *pipeline.Runner, jobs []pipeline.Job, workers int) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	spin := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Shuffling %d files", len(jobs)))
	spin.Start()
	results, err := runner.Batch(cmd.Context(), jobs, workers)
	spin.Stop()
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			printError("%s: %v", r.Job.Input, r.Err)
			continue
		}
		printSuccess("%s", r.Job.Input)
		printFile(r.Job.Output)
		printStats(r.Result.Stats, r.Result.CacheInfo.Hit)
	}

	failed := pipeline.Failed(results)
	prog.done(fmt.Sprintf("Shuffled %d of %d files", len(results)-len(failed), len(results)))
	if len(failed) > 0 {
		names := make([]string, len(failed))
		for i, f := range failed {
			names[i] = f.Job.Input
		}
		return fmt.Errorf("%d of %d files failed: %s", len(failed), len(results), strings.Join(names, ", "))
	}
	return nil
}
