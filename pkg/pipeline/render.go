package pipeline

import (
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/sink"
)

// Render produces the requested artifacts from a replay.
//
// JSON covers every frame. SVG draws the single frame picked by opts.Frame;
// negative values count from the last frame.
func Render(name string, frames []layout.Frame, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := sink.RenderJSON(frames, sink.WithJSONScenario(name), sink.WithJSONInset())
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render json")
			}
			artifacts[format] = data
		case FormatSVG:
			f, err := SelectFrame(frames, opts.Frame)
			if err != nil {
				return nil, err
			}
			artifacts[format] = sink.RenderSVG(f, svgOptions(opts)...)
		}
	}
	return artifacts, nil
}

// SelectFrame returns frames[i], counting from the end when i is negative.
func SelectFrame(frames []layout.Frame, i int) (layout.Frame, error) {
	if len(frames) == 0 {
		return layout.Frame{}, errors.New(errors.ErrCodeNotFound, "scenario produced no frames")
	}
	idx := i
	if idx < 0 {
		idx = len(frames) + i
	}
	if idx < 0 || idx >= len(frames) {
		return layout.Frame{}, errors.New(errors.ErrCodeNotFound, "frame %d out of range (%d frames)", i, len(frames))
	}
	return frames[idx], nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.NoLabels {
		out = append(out, sink.WithoutLabels())
	}
	if opts.SlotNumbers {
		out = append(out, sink.WithSlotNumbers())
	}
	return out
}
