package pipeline

import (
	"github.com/matzehuels/tileorg/pkg/scenario"
)

// Parse loads the scenario named by opts and applies the replay overrides.
// A scenario passed in opts is copied so the caller's value is left as is.
func Parse(opts Options) (*scenario.Scenario, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}

	var (
		s   *scenario.Scenario
		err error
	)
	switch {
	case opts.ScenarioPath != "":
		s, err = scenario.Load(opts.ScenarioPath)
	case opts.ScenarioTOML != "":
		s, err = scenario.Parse([]byte(opts.ScenarioTOML))
	default:
		c := *opts.Scenario
		c.Events = append([]scenario.Event(nil), opts.Scenario.Events...)
		c.Attendees = append(c.Attendees[:0:0], opts.Scenario.Attendees...)
		s = &c
	}
	if err != nil {
		return nil, err
	}

	opts.Apply(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
