package layout

import "math"

// Columns returns the column count Grid uses for count tiles: the smallest
// value in [1, MaxColumns] whose rows fit within height, or MaxColumns when
// none fits. It also returns the unrounded row height.
func Columns(width, height float64, count int) (columns int, rowHeight float64) {
	width, height = max(0, width), max(0, height)
	for columns = 1; columns <= MaxColumns; columns++ {
		rows := (count + columns - 1) / columns
		rowHeight = width / float64(columns) / AspectRatio
		if float64(rows)*rowHeight <= height {
			return columns, rowHeight
		}
	}
	return MaxColumns, rowHeight
}

// Grid lays out visible tiles row-major in uniform cells pinned to the
// top-left corner. Cell sizes are floored to whole units. Tiles overflow the
// bottom edge when even MaxColumns columns do not fit.
func Grid(width, height float64, visible []Tile) []Placement {
	if len(visible) == 0 {
		return nil
	}
	columns, rowHeight := Columns(width, height, len(visible))
	w := math.Floor(max(0, width) / float64(columns))
	h := math.Floor(rowHeight)

	out := make([]Placement, len(visible))
	for i, t := range visible {
		x := float64(i%columns) * w
		y := float64(i/columns) * h
		out[i] = place(t, x, y, w, h)
	}
	return out
}
