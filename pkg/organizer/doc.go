// Package organizer assigns video tiles to slots and lays them out.
//
// [Plan] is the layout policy: a pure function from the visible slots, the
// tile and roster state and the surface size to a [layout.Frame]. It picks
// the active stream with package activity, foregrounds the remote party in a
// two-person call, and runs the active-speaker algorithm only when it is
// enabled and the active stream is visible. Every other pass uses the grid.
//
// [Organizer] is the event-driven coordinator around Plan. It reacts to tile
// notifications from a video session, owns the [slot.Pool], tells a
// [Renderer] which slots to show or hide, and hands each computed frame to
// the renderer in a single Apply call.
//
// An Organizer is not safe for concurrent use. Callers serialize events the
// way a UI event loop does.
package organizer
