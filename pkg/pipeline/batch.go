package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one file in a batch.
type Job struct {
	Input   string
	Output  string
	Options Options
}

// JobResult pairs a job with its outcome. Exactly one of Result and Err
// is set.
type JobResult struct {
	Job    Job
	Result *Result
	Err    error
}

// Batch runs jobs with at most workers in flight and returns one result per
// job, in job order. A failing job does not stop the others; Batch itself
// fails only when ctx is canceled.
func (r *Runner) Batch(ctx context.Context, jobs []Job, workers int) ([]JobResult, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		results[i].Job = job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			res, err := r.ExecuteFile(gctx, job.Input, job.Output, job.Options)
			results[i].Result, results[i].Err = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Failed returns the results that carry an error.
func Failed(results []JobResult) []JobResult {
	var failed []JobResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
