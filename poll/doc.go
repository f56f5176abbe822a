// Package poll drives submitted AppChains jobs to a terminal status.
//
// A [Poller] re-queries the service at a fixed interval. [Poller.Wait]
// follows a single job; [Poller.WaitBatch] follows any number of jobs that
// were submitted together, sharing one batch status query per round and
// routing each returned status back to the caller's correlation key:
//
//	p, err := poll.New(poll.WithInterval(2 * time.Second))
//	done, err := p.WaitBatch(ctx, submitted, queryBatch)
//	// done["MelanomaDsAppv"] is the terminal status for that chain.
//
// There is no attempt limit. Bound a call with a context deadline; expiry
// is reported as [ErrPollTimeout].
package poll
