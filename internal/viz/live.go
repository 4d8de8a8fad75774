package viz

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hopalong/internal/engine"
	"github.com/san-kum/hopalong/internal/orbit"
	"github.com/san-kum/hopalong/internal/settings"
)

const (
	// Nominal terminal cell size, used to turn cell positions into pointer pixels.
	cellWidthPx  = 8
	cellHeightPx = 16

	panelWidth      = 42
	extentCapacity  = 120
	defaultCanvasW  = 80
	defaultCanvasH  = 24
	fpsSmoothing    = 0.1
	pendingBarWidth = 16
)

type FrameMsg time.Time

type RegenMsg time.Time

type Options struct {
	FrameEvery time.Duration
	RegenEvery time.Duration
	Saturation float64
	Lightness  float64
	Theme      string
}

var keyCommands = map[string]engine.Command{
	"up":    engine.SpeedUp,
	"k":     engine.SpeedUp,
	"down":  engine.SpeedDown,
	"j":     engine.SpeedDown,
	"left":  engine.RotateLeft,
	"h":     engine.RotateLeft,
	"right": engine.RotateRight,
	"l":     engine.RotateRight,
	"r":     engine.Reset,
	"p":     engine.TogglePointerLock,
	"c":     engine.Recenter,
	"m":     engine.ToggleMode,
}

// Model drives the engine from bubbletea messages. Frame and regeneration
// ticks arrive on the same update loop as input, so the engine is only ever
// touched from one goroutine.
type Model struct {
	eng      *engine.Engine
	opts     Options
	canvas   *Canvas
	renderer *Renderer
	theme    Theme
	styles   Styles

	width, height int
	extents       []float64
	mouseX        int
	mouseY        int
	mouseSeen     bool
	plotted       int
	lastFrame     time.Time
	fps           float64
	showHelp      bool
	err           error
}

func NewModel(eng *engine.Engine, opts Options) Model {
	if opts.FrameEvery <= 0 {
		opts.FrameEvery = time.Second / 60
	}
	if opts.RegenEvery <= 0 {
		opts.RegenEvery = 3 * time.Second
	}
	if opts.Saturation == 0 {
		opts.Saturation = orbit.DefaultSaturation
	}
	if opts.Lightness == 0 {
		opts.Lightness = orbit.DefaultLightness
	}
	theme := GetTheme(opts.Theme)
	cfg := eng.Config()

	m := Model{
		eng:      eng,
		opts:     opts,
		renderer: NewRenderer(NewProjector(eng.Settings().FieldOfView, cfg.Scale), opts.Saturation, opts.Lightness),
		theme:    theme,
		styles:   NewStyles(theme),
		extents:  make([]float64, 0, extentCapacity),
	}
	m.resize(defaultCanvasW+panelWidth+2, defaultCanvasH+1)

	r := m.renderer
	eng.OnSettingsChange(func(s settings.Snapshot) {
		r.FOV = s.FieldOfView
		log.Printf("viz: settings speed=%.1f rotation=%.4f fov=%.0f locked=%v curated=%v",
			s.Speed, s.RotationSpeed, s.FieldOfView, s.PointerLocked, s.CuratedMode)
	})
	if cur := eng.Cycler().Current(); cur != nil {
		m.recordExtent(cur.Orbit)
	}
	return m
}

func frameTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func regenTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return RegenMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameTick(m.opts.FrameEvery), regenTick(m.opts.RegenEvery))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		default:
			if cmd, ok := keyCommands[key]; ok {
				m.eng.Command(cmd)
				if cmd == engine.TogglePointerLock {
					m.mouseSeen = false
				}
			}
		}

	case tea.MouseMsg:
		m.pointer(msg.X, msg.Y)

	case FrameMsg:
		m.frame(time.Time(msg))
		return m, frameTick(m.opts.FrameEvery)

	case RegenMsg:
		gen, err := m.eng.Regenerate()
		if err != nil {
			m.err = err
			log.Printf("viz: regenerate: %v", err)
		} else {
			m.err = nil
			m.recordExtent(gen.Orbit)
		}
		return m, regenTick(m.opts.RegenEvery)
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw := w - panelWidth - 2
	ch := h - 1
	m.canvas = NewCanvas(cw, ch)
	m.eng.Resize(m.canvas.Width*cellWidthPx, m.canvas.Height*cellHeightPx)
}

// pointer forwards a mouse position. While locked only the motion since the
// previous event is used.
func (m *Model) pointer(x, y int) {
	if m.eng.Settings().PointerLocked {
		if m.mouseSeen {
			m.eng.PointerMove(float64((x-m.mouseX)*cellWidthPx), float64((y-m.mouseY)*cellHeightPx))
		}
	} else {
		m.eng.PointerAt(float64(x*cellWidthPx), float64(y*cellHeightPx))
	}
	m.mouseX, m.mouseY, m.mouseSeen = x, y, true
}

func (m *Model) frame(now time.Time) {
	m.eng.Frame()

	if !m.lastFrame.IsZero() {
		if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
			m.fps += (1/dt - m.fps) * fpsSmoothing
		}
	}
	m.lastFrame = now

	cam := m.eng.Camera()
	m.plotted = m.renderer.Draw(m.canvas, m.eng.Cycler().Groups(), Vec3{cam.X, cam.Y, cam.Z})
}

func (m *Model) recordExtent(o *orbit.Orbit) {
	w, h := o.Extent()
	m.extents = append(m.extents, w*h)
	if len(m.extents) > extentCapacity {
		m.extents = m.extents[1:]
	}
}

func (m Model) View() string {
	canvasView := m.canvas.Render(m.renderer.Palette())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, " ", m.panel())
	if m.showHelp {
		return m.help() + "\n" + main
	}
	return main
}

func (m Model) panel() string {
	st := m.styles
	set := m.eng.Settings()
	stats := m.eng.Stats()

	var s strings.Builder
	s.WriteString(st.Title.Render(GradientText("HOPALONG", m.theme.Title, m.theme.Accent)) + "\n")

	mode := "RANDOM"
	if set.CuratedMode {
		mode = "CURATED"
	}
	status := st.Active.Render(mode)
	if set.PointerLocked {
		status += "  " + st.Warning.Render("LOCKED")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Speed", fmt.Sprintf("%.1f", set.Speed))
	row("Rotation", fmt.Sprintf("%+.3f", set.RotationSpeed))
	row("FOV", fmt.Sprintf("%.0f°", set.FieldOfView))
	row("FPS", fmt.Sprintf("%.0f", m.fps))
	row("Dots", fmt.Sprintf("%d", m.plotted))
	row("Frames", fmt.Sprintf("%d", stats.Frames))
	row("Regens", fmt.Sprintf("%d", stats.Regenerations))

	total := m.eng.Cycler().Len()
	adopted := 1.0
	if total > 0 {
		adopted = float64(total-stats.Pending) / float64(total)
	}
	row("Adopted", ProgressBar(adopted, pendingBarWidth, st.Active)+fmt.Sprintf(" %d/%d", total-stats.Pending, total))
	if v, ok := stats.Metrics["repaint_rate"]; ok {
		row("Repaints", fmt.Sprintf("%.2f/frame", v))
	}

	if p, ok := m.eng.CurrentParams(); ok {
		s.WriteString("\nPARAMETERS\n")
		row("a b c", fmt.Sprintf("%.2f %.2f %.2f", p.A, p.B, p.C))
		row("d e", fmt.Sprintf("%.2f %.2f", p.D, p.E))
		row("branch", p.Branch().String())
		row("id", shortID(p.ID))
	}
	if cur := m.eng.Cycler().Current(); cur != nil {
		row("hues", Swatch(cur.Hues, m.opts.Saturation, m.opts.Lightness))
	}

	if len(m.extents) > 1 {
		chart := asciigraph.Plot(m.extents,
			asciigraph.Height(4),
			asciigraph.Width(panelWidth-14),
			asciigraph.Caption("orbit area"))
		s.WriteString("\n" + st.Graph.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + st.Warning.Render(m.err.Error()) + "\n")
	}

	s.WriteString(st.Help.Render("↑↓ speed  ←→ spin  r reset\np lock  c centre  m mode\nt theme  ? help  q quit"))
	return st.Panel.Render(s.String())
}

func (m Model) help() string {
	lines := []string{
		"Up/K     speed up        Down/J   slow down",
		"Left/H   rotate left     Right/L  rotate right",
		"R        reset settings  P        pointer lock",
		"C        recenter        M        curated/random",
		"T        cycle themes    Q        quit",
	}
	return m.styles.Panel.Width(0).Render(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
