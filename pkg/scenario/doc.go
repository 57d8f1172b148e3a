// Package scenario decodes meeting scenarios and tool configuration from
// TOML.
//
// A scenario is a scripted session: a surface, the initial roster and a
// list of events (tiles binding and leaving, attendees speaking, the surface
// resizing). Replaying it against an organizer yields one frame per event
// that triggers a layout pass.
//
//	name = "standup"
//	self = "me"
//	width = 1600
//	height = 900
//
//	[[attendees]]
//	id = "bob"
//
//	[[events]]
//	type = "bind"
//	stream = 1
//	attendee = "bob"
//	external_user = "u-17#Bob"
//
//	[[events]]
//	type = "speak"
//	attendee = "bob"
//	active = true
package scenario
