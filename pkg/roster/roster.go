// Package roster tracks meeting attendees and whether they are speaking.
//
// A [Roster] preserves insertion order: activity selection scans attendees
// in the order they joined, so the earliest speaker wins ties.
package roster

import (
	"github.com/matzehuels/tileorg/pkg/errors"
)

// Attendee is the activity record of one meeting participant.
type Attendee struct {
	ID     string `json:"id" toml:"id"`
	Active bool   `json:"active" toml:"active"`
}

// Roster is an insertion-ordered set of attendees keyed by ID.
// The zero value is not usable; call New.
type Roster struct {
	order   []string
	entries map[string]*Attendee
}

// New creates an empty roster.
func New() *Roster {
	return &Roster{entries: make(map[string]*Attendee)}
}

// FromAttendees builds a roster from attendees in the given order.
// A repeated ID updates the earlier entry in place.
func FromAttendees(attendees []Attendee) (*Roster, error) {
	r := New()
	for _, a := range attendees {
		if err := r.Set(a.ID, a.Active); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Set inserts or updates an attendee. New attendees go to the end.
func (r *Roster) Set(id string, active bool) error {
	if err := errors.ValidateAttendeeID(id); err != nil {
		return err
	}
	if a, ok := r.entries[id]; ok {
		a.Active = active
		return nil
	}
	r.entries[id] = &Attendee{ID: id, Active: active}
	r.order = append(r.order, id)
	return nil
}

// Remove drops an attendee. It reports whether the attendee was present.
func (r *Roster) Remove(id string) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the attendee with the given ID.
func (r *Roster) Get(id string) (Attendee, bool) {
	if r == nil {
		return Attendee{}, false
	}
	a, ok := r.entries[id]
	if !ok {
		return Attendee{}, false
	}
	return *a, true
}

// Len returns the number of attendees.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Attendees returns a copy of the attendees in insertion order.
func (r *Roster) Attendees() []Attendee {
	if r == nil {
		return nil
	}
	out := make([]Attendee, len(r.order))
	for i, id := range r.order {
		out[i] = *r.entries[id]
	}
	return out
}

// Each calls fn for each attendee in insertion order until fn returns false.
// A nil roster has no attendees.
func (r *Roster) Each(fn func(Attendee) bool) {
	if r == nil {
		return
	}
	for _, id := range r.order {
		if !fn(*r.entries[id]) {
			return
		}
	}
}

// Clone returns an independent copy of the roster.
func (r *Roster) Clone() *Roster {
	c := New()
	r.Each(func(a Attendee) bool {
		c.entries[a.ID] = &Attendee{ID: a.ID, Active: a.Active}
		c.order = append(c.order, a.ID)
		return true
	})
	return c
}
