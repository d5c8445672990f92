package model

import (
	"context"
	"sync"
)

// Deferred is a value that becomes available after composition, resolved by
// exactly one producer and read by any number of consumers.
type Deferred[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewDeferred returns an unresolved Deferred.
func NewDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Resolve sets the value. Only the first Resolve or Reject takes effect.
func (d *Deferred[T]) Resolve(v T) bool {
	set := false
	d.once.Do(func() {
		d.val = v
		set = true
		close(d.done)
	})
	return set
}

// Reject fails the value. Only the first Resolve or Reject takes effect.
func (d *Deferred[T]) Reject(err error) bool {
	set := false
	d.once.Do(func() {
		d.err = err
		set = true
		close(d.done)
	})
	return set
}

// Done is closed once the value is resolved or rejected.
func (d *Deferred[T]) Done() <-chan struct{} { return d.done }

// Await blocks until the value is settled or ctx ends.
func (d *Deferred[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryGet returns the value without blocking; ok is false while unsettled or on rejection.
func (d *Deferred[T]) TryGet() (v T, ok bool) {
	select {
	case <-d.done:
		if d.err != nil {
			return v, false
		}
		return d.val, true
	default:
		return v, false
	}
}
