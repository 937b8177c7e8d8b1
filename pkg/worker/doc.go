// Package worker runs simulations off the caller's goroutine.
//
// # Batch jobs
//
// A [Client] owns one request/response channel at a time. [Client.Start]
// supersedes any running job, tags the new one with a fresh request id and
// launches the simulation on its own goroutine. The goroutine sends zero or
// more [Tick] messages and exactly one terminal [End] or [Failed] into a
// buffer sized for the whole run, so it never blocks on a slow consumer.
//
//	c := worker.NewClient(logger)
//	job, err := c.Start(ctx, worker.Start{Document: doc, Width: 800, Height: 600, Config: sim.DefaultConfig()})
//	g, err := job.Wait(ctx, reporter)
//
// Messages of a superseded or cancelled request are never delivered: the
// consumer side checks every message against the client's active request and
// drops the rest, so an old End can never overwrite a newer layout.
//
// There is no implicit retry or timeout. [Job.Wait] honours the context
// deadline and reports TIMEOUT; [Client.Alive] tells a caller whether the
// active job is still producing messages.
//
// # Live simulations
//
// [Live] steps a simulation on a ticker for hosts that draw from another
// goroutine. Interaction calls and [Live.Snapshot] share one mutex with the
// step loop.
package worker
