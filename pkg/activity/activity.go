// Package activity picks the stream that should be foregrounded in a layout
// pass.
//
// Selection follows a fixed precedence:
//
//  1. Content share: the first visible slot whose stream is a content tile.
//  2. Active speaker: the first attendee in roster order that is speaking and
//     whose stream is bound to a slot.
//  3. None.
//
// Attendees that are speaking but not yet tiled are skipped, so a later
// speaker with a bound stream can still win.
package activity

import (
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/slot"
	"github.com/matzehuels/tileorg/pkg/tile"
)

// Reason explains why a stream was selected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonContent
	ReasonSpeaker
)

func (r Reason) String() string {
	switch r {
	case ReasonContent:
		return "content"
	case ReasonSpeaker:
		return "speaker"
	default:
		return "none"
	}
}

// SlotLookup resolves bindings between streams and slots. *slot.Pool
// satisfies it.
type SlotLookup interface {
	Stream(idx slot.Index) (slot.StreamID, bool)
	SlotOf(id slot.StreamID) (slot.Index, bool)
}

// TileLookup answers tile queries from the session facade. *tile.Registry
// satisfies it.
type TileLookup interface {
	Tile(id slot.StreamID) (tile.State, bool)
	StreamForAttendee(attendeeID string) (slot.StreamID, bool)
}

// Input is the state a selection reads. Roster may be nil.
type Input struct {
	Visible []slot.Index
	Slots   SlotLookup
	Tiles   TileLookup
	Roster  *roster.Roster
}

// Select returns the active stream, or false when nothing qualifies.
func Select(in Input) (slot.StreamID, bool) {
	id, reason := SelectWithReason(in)
	return id, reason != ReasonNone
}

// SelectWithReason is like Select but also reports which rule matched.
func SelectWithReason(in Input) (slot.StreamID, Reason) {
	if id, ok := contentStream(in); ok {
		return id, ReasonContent
	}
	if id, ok := speakerStream(in); ok {
		return id, ReasonSpeaker
	}
	return 0, ReasonNone
}

func contentStream(in Input) (slot.StreamID, bool) {
	if in.Slots == nil || in.Tiles == nil {
		return 0, false
	}
	for _, idx := range in.Visible {
		id, ok := in.Slots.Stream(idx)
		if !ok {
			continue
		}
		if st, ok := in.Tiles.Tile(id); ok && st.IsContent() {
			return id, true
		}
	}
	return 0, false
}

func speakerStream(in Input) (slot.StreamID, bool) {
	if in.Slots == nil || in.Tiles == nil {
		return 0, false
	}
	var (
		found slot.StreamID
		ok    bool
	)
	in.Roster.Each(func(a roster.Attendee) bool {
		if !a.Active {
			return true
		}
		id, bound := in.Tiles.StreamForAttendee(a.ID)
		if !bound {
			return true
		}
		if _, has := in.Slots.SlotOf(id); !has {
			return true
		}
		found, ok = id, true
		return false
	})
	return found, ok
}
