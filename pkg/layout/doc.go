// Package layout computes tile rectangles for a video surface.
//
// Two algorithms are provided, both pure functions of the surface size and
// the ordered list of visible tiles:
//
//   - [ActiveSpeaker] gives the active tile the full surface width and puts
//     the other tiles in a single centered row beneath it. The others row is
//     capped at [MaxOthersRatio] of the active tile's height.
//   - [Grid] finds the fewest columns for which the rows fit vertically and
//     pins uniform tiles to the top-left corner.
//
// Every tile keeps the [AspectRatio] of 16:9. Degenerate inputs never fail:
// an empty visible list yields no placements and a zero-sized surface yields
// zero-sized rectangles.
//
// Choosing which algorithm to run, and which tile is active, is the job of
// the organizer package.
package layout
