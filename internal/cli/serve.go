package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gifshuffle/pkg/envelope"
	"github.com/matzehuels/gifshuffle/pkg/pipeline"
	"github.com/matzehuels/gifshuffle/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   shuffleFlags
		addr    string
		workers int
		maxBody int64
		memory  int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the transform over HTTP:

  POST /v1/shuffle   GIF body in, GIF body out; options as query
                     parameters seed, speed (frame delay in tenths of
                     a second), loop, ratio and distance.
                     An application/cbor body is read as a worker request.
  POST /v1/inspect   GIF body in, JSON layout out
  GET  /healthz      liveness

The shuffle flags set the defaults for requests that omit an option.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			defaults, _ := flags.resolve(cmd.Flags(), cfg)
			if !cmd.Flags().Changed("seed") && cfg.Shuffle.Seed == nil {
				defaults.Seed = 0
			}
			if err := defaults.Validate(); err != nil {
				return err
			}

			sc := server.Config{
				Addr:         cfg.Server.Addr,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				MemoryLimit:  cfg.Server.MemoryLimit,
				Workers:      cfg.Server.Workers,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
				Defaults:     defaults,
			}
			if cmd.Flags().Changed("addr") {
				sc.Addr = addr
			}
			if cmd.Flags().Changed("workers") {
				sc.Workers = workers
			}
			if cmd.Flags().Changed("max-body") {
				sc.MaxBodyBytes = maxBody
			}
			if cmd.Flags().Changed("memory") {
				sc.MemoryLimit = memory
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			return server.New(runner, sc, c.Logger).Serve(cmd.Context())
		},
	}

	cmd.Flags().AddFlagSet(flags.flagSet())
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVarP(&workers, "workers", "j", pipeline.DefaultWorkers, "concurrent transforms")
	cmd.Flags().Int64Var(&maxBody, "max-body", 32<<20, "maximum request body in bytes")
	cmd.Flags().IntVar(&memory, "memory", 256<<20, "maximum bytes held by in-flight outputs")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

// workerCommand creates the worker command.
func (c *CLI) workerCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Answer CBOR transform requests on stdin",
		Long: `Worker reads a stream of CBOR requests from stdin and writes one CBOR
response per request to stdout, in order, until stdin closes. Logs go to
stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			w := &envelope.Worker{Handler: runnerHandler(runner), Logger: c.Logger}
			return w.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

// runnerHandler answers envelope requests through the cached pipeline.
// Outputs are heap allocated, so they stay valid while being encoded.
func runnerHandler(r *pipeline.Runner) envelope.HandlerFunc {
	return func(ctx context.Context, req envelope.Request) envelope.Response {
		res, err := r.Execute(ctx, req.Input, pipeline.Options{Config: req.Config()})
		if err != nil {
			return envelope.Reply(req.ID, nil, err)
		}
		return envelope.Reply(req.ID, res.Output, nil)
	}
}
