package scenario

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/roster"
)

// Scenario is a scripted meeting session.
type Scenario struct {
	Name string `toml:"name" json:"name"`

	// Self is the local attendee id.
	Self string `toml:"self" json:"self,omitempty"`

	Width    float64 `toml:"width" json:"width"`
	Height   float64 `toml:"height" json:"height"`
	Capacity int     `toml:"capacity" json:"capacity,omitempty"`

	// ActiveSpeakerLayout defaults to true when omitted.
	ActiveSpeakerLayout *bool `toml:"active_speaker_layout" json:"active_speaker_layout,omitempty"`

	Attendees []roster.Attendee `toml:"attendees" json:"attendees,omitempty"`
	Events    []Event           `toml:"events" json:"events"`
}

// Decode reads a scenario from TOML and validates it.
func Decode(r io.Reader) (*Scenario, error) {
	var s Scenario
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode scenario")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Parse decodes a scenario from TOML bytes.
func Parse(data []byte) (*Scenario, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Validate checks the surface, capacity, roster and every event.
func (s *Scenario) Validate() error {
	if err := errors.ValidateSurface(s.Width, s.Height); err != nil {
		return err
	}
	if s.Capacity != 0 {
		if err := errors.ValidateCapacity(s.Capacity); err != nil {
			return err
		}
	}
	for _, a := range s.Attendees {
		if err := errors.ValidateAttendeeID(a.ID); err != nil {
			return err
		}
	}
	for i, e := range s.Events {
		if err := e.Validate(); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInvalidScenario
			}
			return errors.Wrap(code, err, "event %d (%s)", i, e.Type)
		}
	}
	return nil
}

// Config returns the organizer configuration for the scenario.
func (s *Scenario) Config() organizer.Config {
	cfg := organizer.Config{
		SelfAttendeeID:      s.Self,
		Width:               s.Width,
		Height:              s.Height,
		ActiveSpeakerLayout: true,
		Capacity:            s.Capacity,
	}
	if s.ActiveSpeakerLayout != nil {
		cfg.ActiveSpeakerLayout = *s.ActiveSpeakerLayout
	}
	return cfg
}

// Roster builds the initial roster.
func (s *Scenario) Roster() *roster.Roster {
	r, err := roster.FromAttendees(s.Attendees)
	if err != nil {
		return roster.New()
	}
	return r
}

// Encode writes the scenario as TOML.
func (s *Scenario) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}
