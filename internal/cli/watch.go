package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tileorg/pkg/layout"
	"github.com/matzehuels/tileorg/pkg/organizer"
	"github.com/matzehuels/tileorg/pkg/roster"
	"github.com/matzehuels/tileorg/pkg/sink"
	"github.com/matzehuels/tileorg/pkg/slot"
	"github.com/matzehuels/tileorg/pkg/tile"
)

// Minimap size in terminal cells.
const (
	minimapCols = 64
	minimapRows = 18
)

// contentStreamID is the stream of the content share toggled by "c".
const contentStreamID = slot.StreamID(900)

var (
	watchHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	watchErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	watchMapStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// watchCommand creates the interactive live preview command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		width  float64
		height float64
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Preview layouts interactively",
		Long: `Preview layouts interactively.

Keys:
  a    add a remote tile
  x    remove the most recent remote tile
  l    toggle the local tile
  c    toggle a content share from the first remote attendee
  1-9  toggle whether that remote attendee is speaking
  g    toggle between active-speaker and grid layout
  r    remove every tile
  q    quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig()
			if err != nil {
				return err
			}
			orgCfg := cfg.Organizer()
			orgCfg.SelfAttendeeID = selfAttendeeID
			if cmd.Flags().Changed("width") {
				orgCfg.Width = width
			}
			if cmd.Flags().Changed("height") {
				orgCfg.Height = height
			}
			return c.runWatch(cmd.Context(), orgCfg)
		},
	}

	cmd.Flags().Float64Var(&width, "width", organizer.DefaultWidth, "surface width")
	cmd.Flags().Float64Var(&height, "height", organizer.DefaultHeight, "surface height")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, cfg organizer.Config) error {
	m, err := newWatchModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// watchModel - Interactive layout preview
// =============================================================================

// watchModel owns an organizer and mutates it from key presses. Every
// mutation runs a layout pass whose frame is shown.
type watchModel struct {
	org     *organizer.Organizer
	remotes []slot.StreamID
	next    slot.StreamID
	local   bool
	err     error
}

func newWatchModel(cfg organizer.Config) (watchModel, error) {
	o, err := organizer.New(cfg, sink.NewCollector())
	if err != nil {
		return watchModel{}, err
	}
	o.Layout()
	return watchModel{org: o, next: 1}, nil
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil

	switch k := key.String(); k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "a":
		m.addRemote()
	case "x":
		m.removeRemote()
	case "l":
		m.toggleLocal()
	case "c":
		m.toggleContent()
	case "g":
		m.org.SetActiveSpeakerLayout(!m.org.ActiveSpeakerLayout())
	case "r":
		m.org.Reset()
		m.remotes, m.local = nil, false
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			m.toggleSpeaker(int(k[0] - '0'))
		}
	}
	return m, nil
}

func (m *watchModel) addRemote() {
	id := m.next
	err := m.org.TileDidUpdate(tile.State{
		StreamID:       id,
		AttendeeID:     remoteAttendee(int(id)),
		ExternalUserID: fmt.Sprintf("#Attendee %d", id),
	})
	if err != nil {
		m.err = err
		return
	}
	m.remotes = append(m.remotes, id)
	m.next++
}

func (m *watchModel) removeRemote() {
	if len(m.remotes) == 0 {
		return
	}
	last := m.remotes[len(m.remotes)-1]
	m.remotes = m.remotes[:len(m.remotes)-1]
	m.org.TileWasRemoved(last)
}

func (m *watchModel) toggleLocal() {
	if m.local {
		m.org.TileWasRemoved(localStreamID)
		m.local = false
		return
	}
	err := m.org.TileDidUpdate(tile.State{
		StreamID:       localStreamID,
		AttendeeID:     selfAttendeeID,
		ExternalUserID: "#Me",
		Local:          true,
	})
	if err != nil {
		m.err = err
		return
	}
	m.local = true
}

func (m *watchModel) toggleContent() {
	if id, ok := m.org.Tiles().ContentStream(); ok {
		m.org.TileWasRemoved(id)
		return
	}
	if len(m.remotes) == 0 {
		m.err = fmt.Errorf("add a remote tile before sharing content")
		return
	}
	owner := remoteAttendee(int(m.remotes[0]))
	err := m.org.TileDidUpdate(tile.State{
		StreamID:       contentStreamID,
		AttendeeID:     roster.ContentID(owner),
		ExternalUserID: fmt.Sprintf("#Attendee %d", m.remotes[0]),
	})
	if err != nil {
		m.err = err
	}
}

func (m *watchModel) toggleSpeaker(n int) {
	if n > len(m.remotes) {
		return
	}
	id := remoteAttendee(int(m.remotes[n-1]))
	a, _ := m.org.Roster().Get(id)
	if err := m.org.SetAttendeeActive(id, !a.Active); err != nil {
		m.err = err
	}
}

func (m watchModel) View() string {
	f := m.org.Frame()
	var b strings.Builder

	b.WriteString(StyleTitle.Render("tileorg watch"))
	b.WriteString("  ")
	b.WriteString(frameHeader(f))
	b.WriteString("\n")
	b.WriteString(watchMapStyle.Render(minimap(f, minimapCols, minimapRows)))
	b.WriteString("\n")
	if len(f.Placements) > 0 {
		b.WriteString(frameTable(f))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(watchErrorStyle.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(watchHelpStyle.Render("a add  x remove  l local  c content  1-9 speaker  g layout  r reset  q quit"))
	return b.String()
}

// minimap draws the frame on a cols x rows character canvas. Each tile is
// filled with its slot number in base 36 and the active tile gets a "#"
// border.
func minimap(f layout.Frame, cols, rows int) string {
	canvas := make([][]rune, rows)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat("·", cols))
	}
	if f.Width <= 0 || f.Height <= 0 {
		return joinRows(canvas)
	}
	sx := float64(cols) / f.Width
	sy := float64(rows) / f.Height

	for _, p := range f.Placements {
		x0, x1 := clampCell(p.Rect.X*sx, cols), clampCell(p.Rect.Right()*sx, cols)
		y0, y1 := clampCell(p.Rect.Y*sy, rows), clampCell(p.Rect.Bottom()*sy, rows)
		fill := base36(int(p.Slot))
		active := f.HasActive() && p.Slot == f.Active
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				r := fill
				edge := y == y0 || y == y1-1 || x == x0 || x == x1-1
				if active && edge {
					r = '#'
				}
				canvas[y][x] = r
			}
		}
	}
	return joinRows(canvas)
}

func clampCell(v float64, n int) int {
	i := int(v + 0.5)
	return max(0, min(n, i))
}

func base36(n int) rune {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n < 0 || n >= len(digits) {
		return '?'
	}
	return rune(digits[n])
}

func joinRows(canvas [][]rune) string {
	lines := make([]string, len(canvas))
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}
