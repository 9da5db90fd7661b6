// Package cache provides a small byte-oriented cache used for the post
// listing. Two implementations: a process-local map and a redis-backed
// store; both treat every failure as a miss so callers never depend on
// cache availability.
package cache

import "context"

type Cache interface {
	// Get returns the cached bytes for key; ok is false on a miss.
	Get(ctx context.Context, key string) (val []byte, ok bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, key string)
}
