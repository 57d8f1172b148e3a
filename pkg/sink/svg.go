package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/tileorg/pkg/layout"
)

// Tile gutters and nameplate metrics in surface units.
const (
	TileInsetX = 4.0
	TileInsetY = TileInsetX / layout.AspectRatio

	nameplateSize    = 24.0
	nameplatePadding = 10.0
	cornerRadius     = 8.0
)

const (
	colorSurface = "#1b1d21"
	colorVideo   = "#3a3f47"
	colorContent = "#24445c"
	colorActive  = "#f0b429"
	colorText    = "#ffffff"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels bool
	slots  bool
	inset  bool
}

// WithoutLabels omits the nameplates.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithSlotNumbers prints each tile's slot index in its top-left corner.
func WithSlotNumbers() SVGOption { return func(r *svgRenderer) { r.slots = true } }

// WithoutInset draws tiles edge to edge.
func WithoutInset() SVGOption { return func(r *svgRenderer) { r.inset = false } }

// RenderSVG draws one frame. The viewBox is the frame's surface; tiles that
// overflow it are clipped.
func RenderSVG(f layout.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true, inset: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Width, f.Height, f.Width, f.Height)
	fmt.Fprintf(&buf, `  <rect class="surface" width="%.1f" height="%.1f" fill="%s"/>`+"\n", f.Width, f.Height, colorSurface)

	for _, p := range f.Placements {
		r.renderTile(&buf, p, f.HasActive() && p.Slot == f.Active)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderTile(buf *bytes.Buffer, p layout.Placement, active bool) {
	rect := p.Rect
	if r.inset {
		rect = rect.Inset(TileInsetX, TileInsetY)
	}
	class, fill := "video-tile", colorVideo
	if p.Content {
		class, fill = "content-share-tile", colorContent
	}

	fmt.Fprintf(buf, `  <g id="tile-%d" class="%s" data-stream="%d">`+"\n", p.Slot, class, p.Stream)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s"`,
		rect.X, rect.Y, rect.Width, rect.Height, cornerRadius, fill)
	if active {
		fmt.Fprintf(buf, ` stroke="%s" stroke-width="3"`, colorActive)
	}
	buf.WriteString("/>\n")

	if r.slots {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="monospace" font-size="12" fill="%s">%d</text>`+"\n",
			rect.X+6, rect.Y+16, colorText, p.Slot)
	}
	if r.labels && p.Label != "" && rect.Height > nameplateSize+nameplatePadding {
		fmt.Fprintf(buf, `    <text class="nameplate" x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.0f" letter-spacing="0.1em" fill="%s">%s</text>`+"\n",
			rect.X+nameplatePadding, rect.Bottom()-nameplatePadding, nameplateSize-6, colorText, html.EscapeString(p.Label))
	}
	buf.WriteString("  </g>\n")
}
