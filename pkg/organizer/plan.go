package organizer

import (
	"github.com/matzehuels/tileorg/pkg/activity"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/slot"
)

// PlanInput is everything a layout pass reads.
type PlanInput struct {
	Width, Height float64

	// Visible lists the shown slots in display order.
	Visible []slot.Index

	Slots  activity.SlotLookup
	Tiles  activity.TileLookup
	Roster *roster.Roster

	// ActiveSpeakerLayout enables the active-speaker mode.
	ActiveSpeakerLayout bool

	// LocalSlot is the reserved slot of the local participant, or
	// slot.NotFound when there is none.
	LocalSlot slot.Index
}

// Plan computes the frame for one layout pass. It does not assign an ID.
func Plan(in PlanInput) layout.Frame {
	visible := bound(in)
	active := activeSlot(in, visible)

	frame := layout.Frame{
		Mode:   layout.ModeGrid,
		Width:  in.Width,
		Height: in.Height,
		Active: slot.NotFound,
	}

	tiles := make([]layout.Tile, 0, len(visible))
	for _, idx := range visible {
		tiles = append(tiles, tileFor(in, idx))
	}

	if in.ActiveSpeakerLayout && active != slot.NotFound {
		frame.Mode = layout.ModeActiveSpeaker
		frame.Active = active
		frame.Placements = layout.ActiveSpeaker(in.Width, in.Height, tiles, active)
		return frame
	}
	frame.Placements = layout.Grid(in.Width, in.Height, tiles)
	return frame
}

// bound filters the visible slots down to those holding a stream.
func bound(in PlanInput) []slot.Index {
	if in.Slots == nil {
		return nil
	}
	out := make([]slot.Index, 0, len(in.Visible))
	for _, idx := range in.Visible {
		if _, ok := in.Slots.Stream(idx); ok {
			out = append(out, idx)
		}
	}
	return out
}

// activeSlot returns the visible slot of the active stream, or
// slot.NotFound.
func activeSlot(in PlanInput, visible []slot.Index) slot.Index {
	if len(visible) == 2 && in.LocalSlot != slot.NotFound && contains(visible, in.LocalSlot) {
		if visible[0] == in.LocalSlot {
			return visible[1]
		}
		return visible[0]
	}

	id, ok := activity.Select(activity.Input{
		Visible: visible,
		Slots:   in.Slots,
		Tiles:   in.Tiles,
		Roster:  in.Roster,
	})
	if !ok {
		return slot.NotFound
	}
	idx, ok := in.Slots.SlotOf(id)
	if !ok || !contains(visible, idx) {
		return slot.NotFound
	}
	return idx
}

func tileFor(in PlanInput, idx slot.Index) layout.Tile {
	id, _ := in.Slots.Stream(idx)
	t := layout.Tile{Slot: idx, Stream: id}
	if in.Tiles == nil {
		return t
	}
	if st, ok := in.Tiles.Tile(id); ok {
		t.Content = st.IsContent()
		t.Label = st.Label()
	}
	return t
}

func contains(s []slot.Index, idx slot.Index) bool {
	for _, v := range s {
		if v == idx {
			return true
		}
	}
	return false
}
