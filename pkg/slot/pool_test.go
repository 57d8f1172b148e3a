package slot

import (
	"testing"

	"github.com/matzehuels/tileorg/pkg/errors"
)

func TestNewPoolCapacity(t *testing.T) {
	tests := []struct {
		capacity int
		wantErr  bool
	}{
		{1, false},
		{DefaultCapacity, false},
		{64, false},
		{0, true},
		{65, true},
	}

	for _, tt := range tests {
		p, err := NewPool(tt.capacity)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPool(%d) error = %v, wantErr %v", tt.capacity, err, tt.wantErr)
			continue
		}
		if err == nil && p.Capacity() != tt.capacity {
			t.Errorf("Capacity() = %d, want %d", p.Capacity(), tt.capacity)
		}
	}
}

func TestAcquireDeterministic(t *testing.T) {
	p := New()
	for i := 0; i < DefaultCapacity; i++ {
		idx, err := p.Acquire(StreamID(100 + i))
		if err != nil {
			t.Fatalf("Acquire(%d) error: %v", 100+i, err)
		}
		if idx != Index(i) {
			t.Errorf("Acquire #%d = %d, want %d", i, idx, i)
		}
	}
}

func TestAcquireIdempotent(t *testing.T) {
	p := New()
	first, err := p.Acquire(7)
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if _, err := p.Acquire(8); err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	second, err := p.Acquire(7)
	if err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if first != second {
		t.Errorf("re-acquire = %d, want %d", second, first)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
}

func TestAcquireCapacityExceeded(t *testing.T) {
	p := New()
	for i := 0; i < DefaultCapacity; i++ {
		if _, err := p.Acquire(StreamID(i + 1)); err != nil {
			t.Fatalf("Acquire #%d error: %v", i, err)
		}
	}

	idx, err := p.Acquire(StreamID(999))
	if err == nil {
		t.Fatal("Acquire on a full pool should fail")
	}
	if !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeCapacityExceeded)
	}
	if idx != NotFound {
		t.Errorf("index = %d, want NotFound", idx)
	}

	// Already-bound ids still resolve on a full pool
	if idx, err := p.Acquire(StreamID(1)); err != nil || idx != 0 {
		t.Errorf("Acquire(bound) = %d, %v; want 0, nil", idx, err)
	}
}

func TestReleaseThenReacquireReusesLowest(t *testing.T) {
	p := New()
	for i := 0; i < 5; i++ {
		if _, err := p.Acquire(StreamID(i + 1)); err != nil {
			t.Fatal(err)
		}
	}

	idx, ok := p.Release(StreamID(4)) // slot 3
	if !ok || idx != 3 {
		t.Fatalf("Release = %d, %v; want 3, true", idx, ok)
	}
	if _, ok := p.Release(StreamID(2)); !ok { // slot 1
		t.Fatal("Release(2) should succeed")
	}

	got, err := p.Acquire(StreamID(50))
	if err != nil || got != 1 {
		t.Errorf("Acquire = %d, %v; want 1", got, err)
	}
	got, err = p.Acquire(StreamID(51))
	if err != nil || got != 3 {
		t.Errorf("Acquire = %d, %v; want 3", got, err)
	}
	got, err = p.Acquire(StreamID(52))
	if err != nil || got != 5 {
		t.Errorf("Acquire = %d, %v; want 5", got, err)
	}
}

func TestReleaseUnknown(t *testing.T) {
	p := New()
	idx, ok := p.Release(StreamID(42))
	if ok {
		t.Error("Release of unknown id should report false")
	}
	if idx != NotFound {
		t.Errorf("Release index = %d, want NotFound", idx)
	}

	// Double release is a no-op
	if _, err := p.Acquire(42); err != nil {
		t.Fatal(err)
	}
	p.Release(42)
	if _, ok := p.Release(42); ok {
		t.Error("second Release should report false")
	}
}

func TestInverseMapping(t *testing.T) {
	p := New()
	ops := []struct {
		acquire bool
		id      StreamID
	}{
		{true, 10}, {true, 11}, {true, 12}, {false, 11}, {true, 13},
		{true, 10}, {false, 99}, {true, 14}, {false, 10}, {true, 15},
		{false, 12}, {false, 13}, {true, 16}, {true, 17},
	}

	for _, op := range ops {
		if op.acquire {
			if _, err := p.Acquire(op.id); err != nil {
				t.Fatalf("Acquire(%d) error: %v", op.id, err)
			}
		} else {
			p.Release(op.id)
		}
		assertInverse(t, p)
	}
}

func assertInverse(t *testing.T, p *Pool) {
	t.Helper()
	occupied := p.Occupied()
	if len(occupied) != p.Len() {
		t.Fatalf("Occupied() has %d entries, Len() = %d", len(occupied), p.Len())
	}
	for i, idx := range occupied {
		if i > 0 && occupied[i-1] >= idx {
			t.Fatalf("Occupied() not ascending: %v", occupied)
		}
		id, ok := p.Stream(idx)
		if !ok {
			t.Fatalf("Stream(%d) missing for occupied slot", idx)
		}
		back, ok := p.SlotOf(id)
		if !ok || back != idx {
			t.Fatalf("SlotOf(%d) = %d, %v; want %d", id, back, ok, idx)
		}
	}
}

func TestBindLocal(t *testing.T) {
	p := New()

	idx, err := p.BindLocal(StreamID(1))
	if err != nil {
		t.Fatalf("BindLocal error: %v", err)
	}
	if idx != p.LocalSlot() || idx != 16 {
		t.Errorf("BindLocal = %d, want 16", idx)
	}
	if !p.IsLocal(idx) {
		t.Error("IsLocal(16) should be true")
	}

	// Remote streams start at 0 regardless of the local binding
	if got, _ := p.Acquire(StreamID(2)); got != 0 {
		t.Errorf("Acquire after BindLocal = %d, want 0", got)
	}

	// Idempotent
	if again, err := p.BindLocal(StreamID(1)); err != nil || again != 16 {
		t.Errorf("BindLocal again = %d, %v", again, err)
	}

	// A new local stream replaces the old one
	if _, err := p.BindLocal(StreamID(3)); err != nil {
		t.Fatalf("BindLocal replacement error: %v", err)
	}
	if _, ok := p.SlotOf(StreamID(1)); ok {
		t.Error("replaced local stream should be unbound")
	}
	assertInverse(t, p)
}

func TestBindLocalMovesOrdinaryBinding(t *testing.T) {
	p := New()
	if _, err := p.Acquire(StreamID(5)); err != nil {
		t.Fatal(err)
	}
	idx, err := p.BindLocal(StreamID(5))
	if err != nil || idx != 16 {
		t.Fatalf("BindLocal = %d, %v", idx, err)
	}
	if _, ok := p.Stream(0); ok {
		t.Error("slot 0 should be free after the move")
	}
	assertInverse(t, p)
}

func TestBindLocalReservedHeldByRemote(t *testing.T) {
	p := New()
	for i := 0; i < DefaultCapacity; i++ {
		if _, err := p.Acquire(StreamID(i + 1)); err != nil {
			t.Fatal(err)
		}
	}
	_, err := p.BindLocal(StreamID(100))
	if !errors.Is(err, errors.ErrCodeSlotOccupied) {
		t.Errorf("BindLocal on full pool error = %v, want SLOT_OCCUPIED", err)
	}
}

func TestReleaseLocal(t *testing.T) {
	p := New()
	if _, err := p.BindLocal(StreamID(9)); err != nil {
		t.Fatal(err)
	}
	idx, ok := p.Release(StreamID(9))
	if !ok || idx != 16 {
		t.Errorf("Release(local) = %d, %v; want 16, true", idx, ok)
	}
	if p.IsLocal(16) {
		t.Error("IsLocal should be false after release")
	}
}

func TestStreamOutOfRange(t *testing.T) {
	p := New()
	for _, idx := range []Index{-1, 17, 100} {
		if _, ok := p.Stream(idx); ok {
			t.Errorf("Stream(%d) should report false", idx)
		}
	}
}

func TestReset(t *testing.T) {
	p := New()
	p.BindLocal(1)
	p.Acquire(2)
	p.Acquire(3)

	p.Reset()

	if p.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", p.Len())
	}
	if got, _ := p.Acquire(4); got != 0 {
		t.Errorf("Acquire after Reset = %d, want 0", got)
	}
}

func TestFullWidthPool(t *testing.T) {
	p, err := NewPool(64)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 64; i++ {
		idx, err := p.Acquire(StreamID(i + 1))
		if err != nil || idx != Index(i) {
			t.Fatalf("Acquire #%d = %d, %v", i, idx, err)
		}
	}
	if _, err := p.Acquire(StreamID(1000)); !errors.Is(err, errors.ErrCodeCapacityExceeded) {
		t.Errorf("65th Acquire error = %v, want CAPACITY_EXCEEDED", err)
	}
}
