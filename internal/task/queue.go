package task

import (
	"context"
	"log/slog"
)

// Queue is a bounded worker pool of Jobs workers draining a shared pending
// channel, reporting results back to a single coordinator goroutine that
// owns the SeenSet. The algorithm follows the coordinator/worker split
// described for every crawl phase: workers never see the seen set, the
// coordinator never does network or disk I/O.
type Queue struct {
	// Jobs is the number of concurrent workers; the number of in-flight
	// handler executions is exactly Jobs.
	Jobs int

	// Handler executes each task. A panicking handler is caught at the
	// worker boundary and logged; the task simply produces no follow-ups.
	Handler Handler
}

// Run drives initial (and whatever those tasks transitively enqueue) to
// completion and returns the SeenSet accumulated over the run. preseeded
// tasks are inserted into the seen set before the run starts without being
// dispatched to a worker -- used to mark objects already materialized
// inside a downloaded pack so they are not re-fetched individually.
//
// Run blocks until the task graph reachable from initial is exhausted.
func (q *Queue) Run(ctx context.Context, initial []Task, preseeded []Task) *SeenSet {
	seen := NewSeenSet()
	for _, t := range preseeded {
		seen.Add(t)
	}

	pending := make(chan Task)
	results := make(chan []Task)

	jobs := q.Jobs
	if jobs < 1 {
		jobs = 1
	}

	done := make(chan struct{})
	for i := 0; i < jobs; i++ {
		go q.worker(ctx, pending, results, done)
	}

	var backlog []Task
	outstanding := 0

	enqueue := func(t Task) {
		if seen.Add(t) {
			backlog = append(backlog, t)
			outstanding++
		}
	}
	for _, t := range initial {
		enqueue(t)
	}

	for outstanding > 0 {
		if len(backlog) == 0 {
			follow := <-results
			outstanding--
			for _, t := range follow {
				enqueue(t)
			}
			continue
		}

		next := backlog[0]
		select {
		case pending <- next:
			backlog = backlog[1:]
		case follow := <-results:
			outstanding--
			for _, t := range follow {
				enqueue(t)
			}
		}
	}

	close(pending)
	for i := 0; i < jobs; i++ {
		<-done
	}

	return seen
}

func (q *Queue) worker(ctx context.Context, pending <-chan Task, results chan<- []Task, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	for t := range pending {
		results <- q.safeExecute(ctx, t)
	}
}

// safeExecute recovers a panicking handler so a single broken task can
// never hang the queue: the failure is logged and treated exactly like a
// handler that returned no follow-ups.
func (q *Queue) safeExecute(ctx context.Context, t Task) (follow []Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "task", string(t), "recovered", r)
			follow = nil
		}
	}()
	return q.Handler.Execute(ctx, t)
}
