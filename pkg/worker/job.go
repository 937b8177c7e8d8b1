package worker

import (
	"context"
	"iter"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/progress"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Job is one batch request started by [Client.Start].
type Job struct {
	id     string
	client *Client

	ctx      context.Context
	cancel   context.CancelFunc
	messages chan Message
	done     chan struct{}
}

// ID returns the request id.
func (j *Job) ID() string { return j.id }

// Current reports whether j is still the client's active request.
func (j *Job) Current() bool { return j.client.current(j) }

// Cancel stops j if it is still the active request.
func (j *Job) Cancel() { j.client.release(j) }

// Done is closed when the producing goroutine has exited.
func (j *Job) Done() <-chan struct{} { return j.done }

// Finished reports whether the producing goroutine has exited.
func (j *Job) Finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

func (j *Job) run(cfg sim.Config, doc graph.Document) {
	defer close(j.done)

	hooks := observability.Simulation()
	start := time.Now()
	hooks.OnSimulationStart(j.ctx, j.id, len(doc.Nodes), len(doc.Links))

	s, err := sim.Initialize(doc, cfg)
	if err != nil {
		j.client.logger.Debug("layout job failed", "request", j.id, "err", err)
		j.send(Failed{ID: j.id, Err: err})
		hooks.OnSimulationComplete(j.ctx, j.id, 0, time.Since(start), err)
		return
	}

	for t := range s.Run() {
		if err := j.ctx.Err(); err != nil {
			hooks.OnSimulationComplete(j.ctx, j.id, s.Ticks(), time.Since(start),
				errors.Wrap(errors.ErrCodeCancelled, err, "request %s", j.id))
			return
		}
		if t.Done {
			j.send(End{ID: j.id, Graph: t.Graph, Ticks: s.Ticks(), Alpha: t.Alpha})
			break
		}
		j.send(Tick{ID: j.id, Progress: t.Progress, Alpha: t.Alpha})
	}
	hooks.OnSimulationComplete(j.ctx, j.id, s.Ticks(), time.Since(start), nil)
}

// send never blocks; the buffer is sized for the whole run.
func (j *Job) send(m Message) {
	select {
	case j.messages <- m:
		j.client.touch()
	default:
		j.client.logger.Warn("worker buffer full, dropping message", "request", j.id)
	}
}

// accept drops messages that do not belong to the active request.
func (j *Job) accept(m Message) bool {
	if m.RequestID() == j.id && j.Current() {
		return true
	}
	observability.Simulation().OnStaleMessage(j.ctx, m.RequestID())
	return false
}

// Messages yields j's messages in order through the terminal one. The
// sequence ends early, without the terminal message, once j is superseded
// or cancelled, or when ctx is done.
func (j *Job) Messages(ctx context.Context) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-j.ctx.Done():
				return
			case m := <-j.messages:
				if !j.accept(m) {
					return
				}
				if !yield(m) || Terminal(m) {
					return
				}
			}
		}
	}
}

// Wait drains j to its terminal message, forwarding progress to r, and
// returns the simulated graph. It fails with TIMEOUT when ctx's deadline
// passes, CANCELLED when ctx is cancelled or j is superseded, and with the
// job's own error for a [Failed] message. Wait does not retry.
func (j *Job) Wait(ctx context.Context, r progress.Reporter) (*graph.Graph, error) {
	end, err := j.Result(ctx, r)
	if err != nil {
		return nil, err
	}
	return end.Graph, nil
}

// Result is like [Job.Wait] but returns the whole terminal message.
func (j *Job) Result(ctx context.Context, r progress.Reporter) (End, error) {
	r = progress.OrNop(r)
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return End{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "layout request %s", j.id)
			}
			return End{}, errors.Wrap(errors.ErrCodeCancelled, ctx.Err(), "layout request %s", j.id)
		case <-j.ctx.Done():
			return End{}, errors.New(errors.ErrCodeCancelled, "layout request %s was cancelled or superseded", j.id)
		case m := <-j.messages:
			if !j.accept(m) {
				return End{}, errors.New(errors.ErrCodeCancelled, "layout request %s was superseded", j.id)
			}
			switch m := m.(type) {
			case Tick:
				r.Report(m.Progress)
			case End:
				r.Report(1)
				return m, nil
			case Failed:
				return End{}, m.Err
			}
		}
	}
}
