// Package slot allocates a bounded set of tile slots to video streams.
//
// A [Pool] maps [StreamID] values handed out by the session facade to fixed
// slot indices. Slot indices are stable for the lifetime of a binding, so a
// renderer can keep one element per slot and only move it around.
//
// # Allocation
//
// [Pool.Acquire] is idempotent and deterministic: on an empty pool, N
// distinct streams get slots 0, 1, ..., N-1, and a released slot is reused
// before any higher one. When the pool is full Acquire fails with an
// errors.ErrCodeCapacityExceeded error and the caller must refuse the bind.
//
// # Local Slot
//
// The highest index is reserved for the local participant's own camera.
// [Pool.BindLocal] places a stream there directly:
//
//	pool := slot.New()
//	pool.BindLocal(selfStream)     // always slot 16
//	idx, err := pool.Acquire(remote) // slot 0
//
// # Release
//
// [Pool.Release] never fails. Releasing an unknown stream returns
// ([NotFound], false) so unbind notifications that race with rebinding are
// harmless.
package slot
