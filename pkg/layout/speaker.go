package layout

import (
	"github.com/matzehuels/tileorg/pkg/slot"
)

// ActiveSpeaker lays out visible tiles with the active slot spanning the full
// width and the remaining tiles in one row below it, in visible order.
//
// Each of the n other tiles starts at width/n wide and the full-width tile
// height, then is capped at MaxOthersRatio of the active height while keeping
// the aspect ratio. Both rows are centered vertically as one block and the others row is
// centered horizontally. The block may extend past the surface height.
//
// It returns nil when visible is empty or active is not among the visible
// slots.
func ActiveSpeaker(width, height float64, visible []Tile, active slot.Index) []Placement {
	if len(visible) == 0 || !contains(visible, active) {
		return nil
	}
	width, height = max(0, width), max(0, height)

	activeW := width
	activeH := width / AspectRatio

	n := len(visible) - 1
	var othersW, othersH float64
	if n > 0 {
		othersW = width / float64(n)
		othersH = width / AspectRatio
		if activeH > 0 && othersH/activeH > MaxOthersRatio {
			othersH = activeH * MaxOthersRatio
			othersW = othersH * AspectRatio
		}
	}

	totalH := activeH + othersH
	othersX := width/2 - othersW*float64(n)/2
	activeY := height/2 - totalH/2
	othersY := activeY + activeH

	out := make([]Placement, 0, len(visible))
	i := 0
	for _, t := range visible {
		if t.Slot == active {
			out = append(out, place(t, 0, activeY, activeW, activeH))
			continue
		}
		out = append(out, place(t, othersX+float64(i)*othersW, othersY, othersW, othersH))
		i++
	}
	return out
}

func contains(visible []Tile, idx slot.Index) bool {
	for _, t := range visible {
		if t.Slot == idx {
			return true
		}
	}
	return false
}
