package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/schrodsim/internal/config"
	"github.com/san-kum/schrodsim/internal/experiment"
	"github.com/san-kum/schrodsim/internal/metrics"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/shooting"
	"github.com/san-kum/schrodsim/internal/store"
)

const tickInterval = 100 * time.Millisecond

type (
	outcomeMsg experiment.Outcome
	tickMsg    time.Time
)

// App is the interactive front end. Calculations run on the Runner's worker;
// the App only reads the store.
type App struct {
	runner  *experiment.Runner
	base    *config.Config
	stats   *metrics.Stats
	shapes  []string
	cursor  int
	scheme  shooting.Scheme
	curve   int // -1 is the potential, otherwise an eigenstate index
	overlay bool
	running bool
	cancel  context.CancelFunc
	status  string
	failed  bool
	frame   int
	theme   int
	styles  Styles

	width, height int
}

func NewApp(runner *experiment.Runner, base *config.Config) App {
	if base == nil {
		base = config.DefaultConfig()
	}
	scheme, err := base.SchemeValue()
	if err != nil {
		scheme = shooting.RK4
	}
	stats := metrics.NewStats(base.Search)
	runner.AddObserver(stats)

	a := App{
		runner: runner,
		base:   base,
		stats:  stats,
		shapes: potential.Shapes(),
		scheme: scheme,
		curve:  -1,
		styles: NewStyles(Themes[0]),
		width:  100,
		height: 30,
	}
	for i, name := range a.shapes {
		if name == base.Shape().Name() {
			a.cursor = i
		}
	}
	return a
}

func (a App) Init() tea.Cmd { return nil }

// Selected returns the shape under the cursor.
func (a App) Selected() string { return a.shapes[a.cursor] }

// Status returns the last status line.
func (a App) Status() string { return a.status }

func (a App) Running() bool { return a.running }

func (a App) Curve() int { return a.curve }

// request builds the calculation for the selected shape: the base config if it
// names that shape, otherwise the shape's first preset.
func (a App) request() (experiment.Request, error) {
	name := a.Selected()
	cfg := *a.base
	if a.base.Shape().Name() != name {
		if presets := config.ListPresets(name); len(presets) > 0 {
			cfg = *config.GetPreset(name, presets[0])
		} else {
			cfg.Potential = name
		}
	}
	cfg.Scheme = a.scheme.String()
	return experiment.RequestFromConfig(&cfg)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil
	case tickMsg:
		if !a.running {
			return a, nil
		}
		a.frame++
		return a, tick()
	case outcomeMsg:
		return a.finish(experiment.Outcome(msg)), nil
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.shapes)-1 {
			a.cursor++
		}
	case "enter", "c":
		return a.calculate()
	case "left", "h":
		if a.curve > -1 {
			a.curve--
		}
	case "right", "l":
		if a.curve < len(a.runner.Store().EnergyLabels())-1 {
			a.curve++
		}
	case "o":
		a.overlay = !a.overlay
	case "s":
		a.scheme = shooting.Scheme((int(a.scheme) + 1) % len(shooting.Schemes()))
		a.status = "scheme: " + a.scheme.String()
	case "x":
		if a.running {
			a.status = "busy, please wait"
			return a, nil
		}
		a.runner.Store().Clear()
		a.curve = -1
		a.status, a.failed = "cleared", false
	case "t":
		a.theme = (a.theme + 1) % len(Themes)
		a.styles = NewStyles(Themes[a.theme])
		a.status = "theme: " + Themes[a.theme].Name
	case "esc":
		if a.running && a.cancel != nil {
			a.cancel()
			a.status = "canceling..."
		}
	}
	return a, nil
}

func (a App) calculate() (App, tea.Cmd) {
	if a.runner.Busy() {
		a.status = "busy, please wait"
		return a, nil
	}
	req, err := a.request()
	if err != nil {
		a.status, a.failed = "calculation failed: "+err.Error(), true
		return a, nil
	}

	a.stats.Reset(req.Sweep)
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := a.runner.Start(ctx, req)
	if err != nil {
		cancel()
		if errors.Is(err, experiment.ErrBusy) {
			a.status = "busy, please wait"
		} else {
			a.status, a.failed = "calculation failed: "+err.Error(), true
		}
		return a, nil
	}

	a.running, a.cancel, a.failed = true, cancel, false
	a.status = fmt.Sprintf("calculating %s with %s...", a.Selected(), req.Scheme)
	return a, tea.Batch(wait(ch), tick())
}

func (a App) finish(o experiment.Outcome) App {
	if a.cancel != nil {
		a.cancel()
	}
	a.running, a.cancel, a.curve = false, nil, -1
	switch {
	case o.Err != nil:
		a.status, a.failed = "calculation failed: "+o.Err.Error(), true
	case len(o.Result.Solutions) == 0:
		a.status, a.failed = "no bound states in range", false
	default:
		a.status, a.failed = fmt.Sprintf("found %d states in %s", len(o.Result.Solutions), o.Result.Elapsed.Round(time.Millisecond)), false
	}
	return a
}

func wait(ch <-chan experiment.Outcome) tea.Cmd {
	return func() tea.Msg { return outcomeMsg(<-ch) }
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a App) View() string {
	s := a.styles
	var b strings.Builder

	b.WriteString("\n  " + s.Title.Render("SCHRODSIM") + "  " + s.Subtitle.Render("1D Schrödinger shooting solver") + "\n\n")

	left := a.viewShapes()
	right := a.viewResult()
	b.WriteString(joinColumns(left, right, 34))

	b.WriteString("\n  " + a.viewStatus() + "\n")
	b.WriteString("  " + KeyHints(s, "j/k", "potential", "enter", "calculate", "h/l", "curve", "o", "overlay", "s", "scheme", "x", "clear", "t", "theme", "q", "quit") + "\n")
	return b.String()
}

func (a App) viewShapes() string {
	s := a.styles
	var b strings.Builder
	b.WriteString(s.Header.Render("Potential") + "\n")
	for i, name := range a.shapes {
		if i == a.cursor {
			b.WriteString(s.Cursor.Render("▸ ") + s.Selected.Render(name) + "\n")
		} else {
			b.WriteString("  " + s.Item.Render(name) + "\n")
		}
	}
	b.WriteString("\n" + s.Label.Render("scheme ") + s.Value.Render(a.scheme.String()) + "\n")
	b.WriteString(s.Hint.Render(potential.Describe(a.Selected())) + "\n")
	return b.String()
}

func (a App) viewResult() string {
	s := a.styles
	st := a.runner.Store()
	snap := st.Snapshot()
	if snap == nil {
		return s.Subtitle.Render("no result, press enter to calculate")
	}

	var b strings.Builder
	b.WriteString(s.Header.Render(fmt.Sprintf("%s · %s", snap.Shape, snap.Scheme)) + "\n")

	plotW := max(a.width-50, 20)
	plotH := max(a.height/3, 6)

	var curve store.Curve
	var err error
	if a.curve < 0 {
		curve, err = st.SelectPotential()
		if err == nil {
			curve = ClipCurve(curve, minFloat(curve.Y), displayCeiling(snap))
		}
	} else {
		curve, err = st.SelectEigenstate(a.curve)
	}
	switch {
	case err != nil:
	case a.overlay:
		v := ClipCurve(store.Curve{X: snap.X, Y: snap.Potential}, minFloat(snap.Potential), displayCeiling(snap))
		var psi []float64
		if a.curve >= 0 {
			psi = curve.Y
		}
		b.WriteString(Overlay(snap.X, v.Y, psi, plotW/2, plotH/2+1))
	default:
		b.WriteString(PlotCurve(curve, plotW, plotH) + "\n")
	}

	labels := st.EnergyLabels()
	if len(labels) == 0 {
		b.WriteString(s.Warning.Render("no bound states in range") + "\n")
		return b.String()
	}
	b.WriteString(s.Label.Render("E "))
	for i, l := range labels {
		if i == a.curve {
			b.WriteString(s.Value.Render("["+l+"]") + " ")
		} else {
			b.WriteString(s.Item.Render(l) + " ")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (a App) viewStatus() string {
	s := a.styles
	if a.running {
		snap := a.stats.Snapshot()
		return s.Running.Render(AnimatedSpinner(a.frame)) + " " +
			ProgressBar(a.stats.Progress(), 24, s) + " " +
			s.Label.Render(fmt.Sprintf("E=%.3f  brackets %d", snap.LastEnergy, snap.Accepted+snap.Duplicates))
	}
	if a.failed {
		return s.Error.Render(a.status)
	}
	return s.Subtitle.Render(a.status)
}

// displayCeiling caps the plotted potential a little above the sweep range.
func displayCeiling(r *store.Result) float64 {
	ceil := r.Sweep.EMax
	for _, e := range r.Energies() {
		ceil = max(ceil, e)
	}
	return ceil * 1.2
}

func minFloat(v []float64) float64 {
	m := 0.0
	for i, x := range v {
		if i == 0 || x < m {
			m = x
		}
	}
	return m
}

func joinColumns(left, right string, leftWidth int) string {
	l := strings.Split(strings.TrimRight(left, "\n"), "\n")
	r := strings.Split(strings.TrimRight(right, "\n"), "\n")
	var b strings.Builder
	for i := 0; i < max(len(l), len(r)); i++ {
		var lc, rc string
		if i < len(l) {
			lc = l[i]
		}
		if i < len(r) {
			rc = r[i]
		}
		pad := leftWidth - lipgloss.Width(lc)
		b.WriteString("  " + lc + strings.Repeat(" ", max(pad, 1)) + rc + "\n")
	}
	return b.String()
}

// RunApp starts the interactive program.
func RunApp(runner *experiment.Runner, base *config.Config) error {
	_, err := tea.NewProgram(NewApp(runner, base), tea.WithAltScreen()).Run()
	return err
}
