// Package tile holds the state of video tiles reported by the session facade.
//
// A [Registry] answers the two queries the layout core needs from the
// session: which stream belongs to an attendee and which stream is a
// content share. Tiles are kept in bind order so both queries are
// deterministic.
package tile

import (
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/slot"
)

// State is a stream-bound notification from the session facade.
type State struct {
	StreamID       slot.StreamID `json:"stream_id" toml:"stream_id"`
	AttendeeID     string        `json:"attendee_id" toml:"attendee_id"`
	ExternalUserID string        `json:"external_user_id,omitempty" toml:"external_user_id"`
	Local          bool          `json:"local,omitempty" toml:"local"`
	Content        bool          `json:"content,omitempty" toml:"content"`
	Paused         bool          `json:"paused,omitempty" toml:"paused"`
}

// IsContent reports whether the tile carries a content share, either by
// flag or by the attendee id modality.
func (s State) IsContent() bool {
	return s.Content || roster.IsContent(s.AttendeeID)
}

// Label returns the nameplate text for the tile.
func (s State) Label() string {
	if s.ExternalUserID == "" {
		return roster.BaseID(s.AttendeeID)
	}
	return roster.DisplayName(s.ExternalUserID)
}

// Registry stores the latest State per stream in bind order.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	order  []slot.StreamID
	states map[slot.StreamID]State
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[slot.StreamID]State)}
}

// Put records st, replacing an earlier state for the same stream in place.
func (r *Registry) Put(st State) {
	if _, ok := r.states[st.StreamID]; !ok {
		r.order = append(r.order, st.StreamID)
	}
	r.states[st.StreamID] = st
}

// Delete forgets a stream. It reports whether the stream was known.
func (r *Registry) Delete(id slot.StreamID) bool {
	if _, ok := r.states[id]; !ok {
		return false
	}
	delete(r.states, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Tile returns the state of a stream.
func (r *Registry) Tile(id slot.StreamID) (State, bool) {
	st, ok := r.states[id]
	return st, ok
}

// StreamForAttendee returns the first stream bound to the attendee id.
func (r *Registry) StreamForAttendee(attendeeID string) (slot.StreamID, bool) {
	for _, id := range r.order {
		if r.states[id].AttendeeID == attendeeID {
			return id, true
		}
	}
	return 0, false
}

// ContentStream returns the first content-share stream.
func (r *Registry) ContentStream() (slot.StreamID, bool) {
	for _, id := range r.order {
		if r.states[id].IsContent() {
			return id, true
		}
	}
	return 0, false
}

// Len returns the number of tiles.
func (r *Registry) Len() int { return len(r.order) }

// All returns the tile states in bind order.
func (r *Registry) All() []State {
	out := make([]State, len(r.order))
	for i, id := range r.order {
		out[i] = r.states[id]
	}
	return out
}
