package pipeline

import (
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/scenario"
	"github.com/matzehuels/tileorg/pkg/sink"
)

// Replay feeds every event of s to a fresh organizer and returns the frame of
// each layout pass in order, together with the number of binds that were
// refused for lack of a slot.
//
// Refused binds are logged and skipped so the rest of the scenario still
// runs; any other event error stops the replay.
func Replay(s *scenario.Scenario, opts Options) ([]layout.Frame, int, error) {
	if s == nil {
		return nil, 0, errors.New(errors.ErrCodeInvalidInput, "scenario is required")
	}
	logger := opts.logger()

	collector := sink.NewCollector()
	orgOpts := []organizer.Option{
		organizer.WithLogger(logger),
		organizer.WithRoster(s.Roster()),
	}
	if opts.FrameIDs != nil {
		orgOpts = append(orgOpts, organizer.WithFrameIDs(opts.FrameIDs))
	}
	o, err := organizer.New(s.Config(), collector, orgOpts...)
	if err != nil {
		return nil, 0, err
	}

	dropped := 0
	for i, e := range s.Events {
		ran, err := e.Apply(o)
		switch {
		case err == nil:
		case droppedBind(err):
			dropped++
			logger.Warn("bind refused", "event", i, "stream", e.Stream, "attendee", e.Attendee, "err", err)
			continue
		default:
			return nil, dropped, errors.Wrap(codeOr(err, errors.ErrCodeInvalidScenario), err, "event %d (%s)", i, e.Type)
		}
		logger.Debug("applied event", "event", i, "type", e.Type, "pass", ran)
	}
	return collector.Frames, dropped, nil
}

func droppedBind(err error) bool {
	return errors.Is(err, errors.ErrCodeCapacityExceeded) || errors.Is(err, errors.ErrCodeSlotOccupied)
}

func codeOr(err error, fallback errors.Code) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return fallback
}
