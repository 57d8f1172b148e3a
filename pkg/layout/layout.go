package layout

import (
	"github.com/matzehuels/tileorg/pkg/slot"
)

const (
	// AspectRatio is the width-to-height ratio of every tile.
	AspectRatio = 16.0 / 9.0

	// MaxOthersRatio caps the height of the others row relative to the
	// active tile in the active-speaker layout.
	MaxOthersRatio = 0.3

	// MaxColumns is the widest grid tried before accepting overflow.
	MaxColumns = 17
)

// Mode names the algorithm that produced a frame.
type Mode string

const (
	ModeActiveSpeaker Mode = "active_speaker"
	ModeGrid          Mode = "grid"
)

// Rect is an axis-aligned rectangle in surface units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Inset shrinks r by dx on the left and right and dy on the top and bottom.
// The result never has a negative size.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{
		X:      r.X + dx,
		Y:      r.Y + dy,
		Width:  max(0, r.Width-2*dx),
		Height: max(0, r.Height-2*dy),
	}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Tile is a visible slot as seen by the layout algorithms.
type Tile struct {
	Slot    slot.Index
	Stream  slot.StreamID
	Content bool
	Label   string
}

// Placement is the computed rectangle for one visible tile.
type Placement struct {
	Slot    slot.Index    `json:"slot"`
	Stream  slot.StreamID `json:"stream"`
	Rect    Rect          `json:"rect"`
	Content bool          `json:"content,omitempty"`
	Label   string        `json:"label,omitempty"`
}

func place(t Tile, x, y, w, h float64) Placement {
	return Placement{
		Slot:    t.Slot,
		Stream:  t.Stream,
		Rect:    Rect{X: x, Y: y, Width: max(0, w), Height: max(0, h)},
		Content: t.Content,
		Label:   t.Label,
	}
}

// Frame is the complete result of one layout pass. Renderers apply a frame
// as a unit.
type Frame struct {
	ID         string      `json:"id,omitempty"`
	Mode       Mode        `json:"mode"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Active     slot.Index  `json:"active"` // slot.NotFound in grid mode
	Placements []Placement `json:"placements"`
}

// HasActive reports whether the frame foregrounds a tile.
func (f Frame) HasActive() bool { return f.Active != slot.NotFound }

// Placement returns the placement of a slot.
func (f Frame) Placement(idx slot.Index) (Placement, bool) {
	for _, p := range f.Placements {
		if p.Slot == idx {
			return p, true
		}
	}
	return Placement{}, false
}

// Slots returns the placed slot indices in placement order.
func (f Frame) Slots() []slot.Index {
	out := make([]slot.Index, len(f.Placements))
	for i, p := range f.Placements {
		out[i] = p.Slot
	}
	return out
}
