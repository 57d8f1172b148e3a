package sink

import (
	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/slot"
)

// Collector records organizer output in memory.
type Collector struct {
	Frames  []layout.Frame
	visible map[slot.Index]bool
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{visible: make(map[slot.Index]bool)}
}

// ShowSlot marks a slot visible.
func (c *Collector) ShowSlot(idx slot.Index) { c.visible[idx] = true }

// HideSlot marks a slot hidden.
func (c *Collector) HideSlot(idx slot.Index) { delete(c.visible, idx) }

// Apply records a frame.
func (c *Collector) Apply(f layout.Frame) { c.Frames = append(c.Frames, f) }

// Visible reports whether a slot is currently shown.
func (c *Collector) Visible(idx slot.Index) bool { return c.visible[idx] }

// Last returns the most recent frame.
func (c *Collector) Last() (layout.Frame, bool) {
	if len(c.Frames) == 0 {
		return layout.Frame{}, false
	}
	return c.Frames[len(c.Frames)-1], true
}
