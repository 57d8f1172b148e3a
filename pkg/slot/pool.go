package slot

import (
	"context"
	"math/bits"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/observability"
)

// DefaultCapacity is the number of slots in a standard pool: 16 ordinary
// slots plus the reserved local slot.
const DefaultCapacity = 17

// NotFound is the index returned by Release for streams that hold no slot.
const NotFound Index = -1

// StreamID identifies a live video stream. It is supplied by the session
// facade and may be reused after the stream is released.
type StreamID int

// Index addresses a slot in [0, capacity).
type Index int

// Pool is a bounded bidirectional mapping between stream ids and slot
// indices. The highest index is reserved for the local participant and is
// only handed out by Acquire once every other slot is taken.
//
// Acquire and Release are O(1): occupancy is kept in a bitmask and the
// lowest free index is found with a trailing-zero count.
//
// Pool is not safe for concurrent use.
type Pool struct {
	capacity int
	full     uint64
	occupied uint64
	streams  []StreamID
	slots    map[StreamID]Index
	local    StreamID
	hasLocal bool
}

// New creates a pool with DefaultCapacity.
func New() *Pool {
	p, _ := NewPool(DefaultCapacity)
	return p
}

// NewPool creates a pool with the given capacity, which must lie in
// [1, errors.MaxCapacity].
func NewPool(capacity int) (*Pool, error) {
	if err := errors.ValidateCapacity(capacity); err != nil {
		return nil, err
	}
	full := ^uint64(0)
	if capacity < 64 {
		full = uint64(1)<<capacity - 1
	}
	return &Pool{
		capacity: capacity,
		full:     full,
		streams:  make([]StreamID, capacity),
		slots:    make(map[StreamID]Index, capacity),
	}, nil
}

// Capacity returns the total number of slots, reserved slot included.
func (p *Pool) Capacity() int { return p.capacity }

// LocalSlot returns the index reserved for the local participant.
func (p *Pool) LocalSlot() Index { return Index(p.capacity - 1) }

// Len returns the number of bound streams.
func (p *Pool) Len() int { return bits.OnesCount64(p.occupied) }

// Acquire binds id to a slot and returns it. An id that is already bound
// keeps its slot. Otherwise the lowest free index is used. Acquire fails
// with errors.ErrCodeCapacityExceeded when every slot is taken.
func (p *Pool) Acquire(id StreamID) (Index, error) {
	if idx, ok := p.slots[id]; ok {
		observability.Pool().OnAcquire(context.Background(), int(idx), true)
		return idx, nil
	}

	free := ^p.occupied & p.full
	if free == 0 {
		observability.Pool().OnCapacityExceeded(context.Background(), p.capacity)
		return NotFound, errors.New(errors.ErrCodeCapacityExceeded,
			"no free slot for stream %d (capacity %d)", id, p.capacity)
	}

	idx := Index(bits.TrailingZeros64(free))
	p.bind(id, idx)
	observability.Pool().OnAcquire(context.Background(), int(idx), false)
	return idx, nil
}

// BindLocal binds the local participant's stream to the reserved slot,
// bypassing the lowest-free scan. A previous local stream on the reserved
// slot is replaced; if id already holds an ordinary slot it moves. It fails
// with errors.ErrCodeSlotOccupied when a remote stream holds the reserved
// slot, which only happens after the pool filled up.
func (p *Pool) BindLocal(id StreamID) (Index, error) {
	local := p.LocalSlot()
	if idx, ok := p.slots[id]; ok && idx == local {
		return local, nil
	}

	if p.isOccupied(local) {
		holder := p.streams[local]
		if !p.hasLocal || holder != p.local {
			return NotFound, errors.New(errors.ErrCodeSlotOccupied,
				"reserved slot %d is held by remote stream %d", local, holder)
		}
		p.unbind(holder, local)
	}

	if idx, ok := p.slots[id]; ok {
		p.unbind(id, idx)
	}

	p.bind(id, local)
	p.local = id
	p.hasLocal = true
	observability.Pool().OnAcquire(context.Background(), int(local), false)
	return local, nil
}

// Release unbinds id and returns the slot it held. Unknown ids yield
// (NotFound, false); this is expected when unbind notifications race with
// rebinding and callers treat it as a no-op.
func (p *Pool) Release(id StreamID) (Index, bool) {
	idx, ok := p.slots[id]
	if !ok {
		return NotFound, false
	}
	p.unbind(id, idx)
	if p.hasLocal && p.local == id {
		p.hasLocal = false
	}
	observability.Pool().OnRelease(context.Background(), int(idx))
	return idx, true
}

// Stream returns the stream bound to idx.
func (p *Pool) Stream(idx Index) (StreamID, bool) {
	if idx < 0 || int(idx) >= p.capacity || !p.isOccupied(idx) {
		return 0, false
	}
	return p.streams[idx], true
}

// SlotOf returns the slot bound to id.
func (p *Pool) SlotOf(id StreamID) (Index, bool) {
	idx, ok := p.slots[id]
	return idx, ok
}

// IsLocal reports whether idx is the reserved slot and holds the local stream.
func (p *Pool) IsLocal(idx Index) bool {
	return p.hasLocal && idx == p.LocalSlot() && p.isOccupied(idx)
}

// Occupied returns the bound slot indices in ascending order.
func (p *Pool) Occupied() []Index {
	out := make([]Index, 0, p.Len())
	for m := p.occupied; m != 0; m &= m - 1 {
		out = append(out, Index(bits.TrailingZeros64(m)))
	}
	return out
}

// Reset releases every binding.
func (p *Pool) Reset() {
	p.occupied = 0
	clear(p.streams)
	clear(p.slots)
	p.local = 0
	p.hasLocal = false
}

func (p *Pool) isOccupied(idx Index) bool {
	return p.occupied&(uint64(1)<<uint(idx)) != 0
}

func (p *Pool) bind(id StreamID, idx Index) {
	p.occupied |= uint64(1) << uint(idx)
	p.streams[idx] = id
	p.slots[id] = idx
}

func (p *Pool) unbind(id StreamID, idx Index) {
	p.occupied &^= uint64(1) << uint(idx)
	p.streams[idx] = 0
	delete(p.slots, id)
}
