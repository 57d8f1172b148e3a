package tile

import "testing"

func TestRegistryQueries(t *testing.T) {
	r := NewRegistry()
	r.Put(State{StreamID: 1, AttendeeID: "alice"})
	r.Put(State{StreamID: 2, AttendeeID: "bob"})
	r.Put(State{StreamID: 3, AttendeeID: "bob#content"})
	r.Put(State{StreamID: 4, AttendeeID: "carol", Content: true})

	if id, ok := r.StreamForAttendee("bob"); !ok || id != 2 {
		t.Errorf("StreamForAttendee(bob) = %d, %v; want 2, true", id, ok)
	}
	if _, ok := r.StreamForAttendee("dave"); ok {
		t.Error("StreamForAttendee(dave) should report false")
	}
	if id, ok := r.ContentStream(); !ok || id != 3 {
		t.Errorf("ContentStream() = %d, %v; want 3, true", id, ok)
	}

	r.Delete(3)
	if id, ok := r.ContentStream(); !ok || id != 4 {
		t.Errorf("ContentStream() after delete = %d, %v; want 4, true", id, ok)
	}
}

func TestRegistryPutReplacesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Put(State{StreamID: 1, AttendeeID: "a"})
	r.Put(State{StreamID: 2, AttendeeID: "b"})
	r.Put(State{StreamID: 1, AttendeeID: "a", Paused: true})

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() len = %d, want 2", len(all))
	}
	if all[0].StreamID != 1 || !all[0].Paused {
		t.Errorf("All()[0] = %+v, want paused stream 1", all[0])
	}
}

func TestRegistryDeleteUnknown(t *testing.T) {
	r := NewRegistry()
	if r.Delete(9) {
		t.Error("Delete of unknown stream should report false")
	}
}

func TestStateLabel(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want string
	}{
		{"external id", State{AttendeeID: "a1", ExternalUserID: "x9#Alice"}, "Alice"},
		{"attendee fallback", State{AttendeeID: "a1#content"}, "a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.st.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
