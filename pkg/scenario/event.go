package scenario

import (
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/slot"
	"github.com/matzehuels/tileorg/pkg/tile"
)

// EventType names a scenario step.
type EventType string

const (
	EventBind         EventType = "bind"
	EventRemove       EventType = "remove"
	EventSpeak        EventType = "speak"
	EventResize       EventType = "resize"
	EventLayoutMode   EventType = "layout_mode"
	EventPause        EventType = "pause"
	EventAvailability EventType = "availability"
)

// Event is one scenario step. Only the fields of its type are read.
type Event struct {
	Type EventType `toml:"type" json:"type"`

	// bind, remove
	Stream       slot.StreamID `toml:"stream" json:"stream,omitempty"`
	Attendee     string        `toml:"attendee" json:"attendee,omitempty"`
	ExternalUser string        `toml:"external_user" json:"external_user,omitempty"`
	Local        bool          `toml:"local" json:"local,omitempty"`
	Content      bool          `toml:"content" json:"content,omitempty"`
	Paused       bool          `toml:"paused" json:"paused,omitempty"`

	// speak
	Active bool `toml:"active" json:"active,omitempty"`

	// resize
	Width  float64 `toml:"width" json:"width,omitempty"`
	Height float64 `toml:"height" json:"height,omitempty"`

	// layout_mode, availability
	Enabled bool `toml:"enabled" json:"enabled,omitempty"`

	// pause
	Slot int `toml:"slot" json:"slot,omitempty"`
}

// Validate checks the fields required by the event type.
func (e Event) Validate() error {
	switch e.Type {
	case EventBind:
		return errors.ValidateAttendeeID(e.Attendee)
	case EventRemove, EventLayoutMode, EventAvailability:
		return nil
	case EventSpeak:
		return errors.ValidateAttendeeID(e.Attendee)
	case EventResize:
		return errors.ValidateSurface(e.Width, e.Height)
	case EventPause:
		if e.Slot < 0 {
			return errors.New(errors.ErrCodeInvalidSlot, "slot must be non-negative, got %d", e.Slot)
		}
		return nil
	case "":
		return errors.New(errors.ErrCodeInvalidScenario, "event type is required")
	default:
		return errors.New(errors.ErrCodeInvalidScenario, "unknown event type %q", e.Type)
	}
}

// Apply feeds the event to o. It reports whether the event ran a layout
// pass.
func (e Event) Apply(o *organizer.Organizer) (bool, error) {
	switch e.Type {
	case EventBind:
		before := o.Frame().ID
		err := o.TileDidUpdate(e.State())
		return o.Frame().ID != before, err
	case EventRemove:
		before := o.Frame().ID
		o.TileWasRemoved(e.Stream)
		return o.Frame().ID != before, nil
	case EventSpeak:
		return true, o.SetAttendeeActive(e.Attendee, e.Active)
	case EventResize:
		return true, o.Resize(e.Width, e.Height)
	case EventLayoutMode:
		o.SetActiveSpeakerLayout(e.Enabled)
		return true, nil
	case EventPause:
		return false, o.TogglePause(slot.Index(e.Slot))
	case EventAvailability:
		o.AvailabilityDidChange(e.Enabled)
		return false, nil
	default:
		return false, e.Validate()
	}
}

// State converts a bind event to a tile notification.
func (e Event) State() tile.State {
	return tile.State{
		StreamID:       e.Stream,
		AttendeeID:     e.Attendee,
		ExternalUserID: e.ExternalUser,
		Local:          e.Local,
		Content:        e.Content,
		Paused:         e.Paused,
	}
}
