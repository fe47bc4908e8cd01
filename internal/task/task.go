// Package task implements the bounded-parallelism work queue that drives
// every crawl phase: a fixed pool of workers pulling from a shared pending
// set, deduplicated against a single coordinator-owned seen set.
package task

import "context"

// Task is an opaque string identifier unique within one queue run. For
// download and ref-discovery tasks it is a repository-relative path (e.g.
// ".git/refs/heads/main"); for object tasks it is a 40-character lowercase
// hex hash. Tasks are compared for equality by string identity.
type Task string

// Handler executes a single task and returns the follow-up tasks it
// discovered. Handlers must never touch the SeenSet directly -- that's the
// coordinator's job -- and must never panic across the worker boundary;
// Queue.Run recovers panics itself so a single broken task can't wedge the
// run, but a handler that can detect its own failure should just return nil.
type Handler interface {
	Execute(ctx context.Context, t Task) []Task
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, t Task) []Task

func (f HandlerFunc) Execute(ctx context.Context, t Task) []Task { return f(ctx, t) }
