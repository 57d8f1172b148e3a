package sink

import (
	"encoding/json"

	"github.com/matzehuels/tileorg/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	scenario string
	inset    bool
}

// WithJSONScenario records the scenario name in the output.
func WithJSONScenario(name string) JSONOption {
	return func(r *jsonRenderer) { r.scenario = name }
}

// WithJSONInset adds the inset content rectangle of every tile.
func WithJSONInset() JSONOption {
	return func(r *jsonRenderer) { r.inset = true }
}

type jsonOutput struct {
	Scenario string      `json:"scenario,omitempty"`
	Frames   []jsonFrame `json:"frames"`
}

type jsonFrame struct {
	ID         string          `json:"id,omitempty"`
	Seq        int             `json:"seq"`
	Mode       layout.Mode     `json:"mode"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Active     *int            `json:"active,omitempty"`
	Placements []jsonPlacement `json:"placements"`
}

type jsonPlacement struct {
	Slot    int          `json:"slot"`
	Stream  int          `json:"stream"`
	Label   string       `json:"label,omitempty"`
	Content bool         `json:"content,omitempty"`
	Rect    layout.Rect  `json:"rect"`
	Inset   *layout.Rect `json:"inset,omitempty"`
}

// RenderJSON exports frames as a pretty-printed JSON document. Frames keep
// their order and are numbered from zero; the active slot is omitted when a
// frame has none.
func RenderJSON(frames []layout.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Scenario: r.scenario, Frames: make([]jsonFrame, len(frames))}
	for i, f := range frames {
		out.Frames[i] = r.frame(i, f)
	}
	return json.MarshalIndent(out, "", "  ")
}

func (r jsonRenderer) frame(seq int, f layout.Frame) jsonFrame {
	jf := jsonFrame{
		ID:         f.ID,
		Seq:        seq,
		Mode:       f.Mode,
		Width:      f.Width,
		Height:     f.Height,
		Placements: make([]jsonPlacement, len(f.Placements)),
	}
	if f.HasActive() {
		active := int(f.Active)
		jf.Active = &active
	}
	for i, p := range f.Placements {
		jp := jsonPlacement{
			Slot:    int(p.Slot),
			Stream:  int(p.Stream),
			Label:   p.Label,
			Content: p.Content,
			Rect:    p.Rect,
		}
		if r.inset {
			in := p.Rect.Inset(TileInsetX, TileInsetY)
			jp.Inset = &in
		}
		jf.Placements[i] = jp
	}
	return jf
}
