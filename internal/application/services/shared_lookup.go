package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// sharedLookupTimeout bounds a deduplicated upstream call. The call outlives
// any single caller's context, so it needs its own deadline.
const sharedLookupTimeout = 10 * time.Second

// sharedLookup runs fn once per key for all concurrent callers. fn gets a
// context detached from the first caller's cancellation, and each caller
// stops waiting when its own ctx is done.
func sharedLookup(ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return fn(callCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
