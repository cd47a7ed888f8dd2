package game

import (
	"fmt"
	"image/color"
	"log"

	"github.com/Garsondee/Fireworks/internal/host"
	"github.com/Garsondee/Fireworks/internal/shells"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// tickDT is the fixed simulation step; speed changes run more or fewer steps
// per frame rather than stretching dt.
const tickDT = 1.0 / 60

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// reportWindowTicks bounds the rolling HUD statistics.
const reportWindowTicks = 600

var (
	skyColor    = color.RGBA{R: 6, G: 8, B: 18, A: 255}
	groundColor = color.RGBA{R: 30, G: 36, B: 30, A: 255}
)

type Game struct {
	cfg      host.Config
	sim      *shells.Sim
	store    *host.Store
	feed     *host.EventLog
	palette  host.Palette
	reporter *shells.SimReporter
	recipes  []string
	recipe   int // index into recipes

	simSpeed  float64
	tickAccum float64
	showHUD   bool
	hudBuf    *ebiten.Image
}

// New builds the interactive host from cfg. The configured recipe must exist
// in the default catalog.
func New(cfg host.Config) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		store:    host.NewStore(cfg.TraceTrails),
		feed:     host.NewEventLog(),
		palette:  host.DefaultPalette(),
		simSpeed: cfg.Speed,
		showHUD:  true,
	}
	g.resetSim()
	g.recipes = g.sim.Catalog().Names()
	g.recipe = -1
	for i, name := range g.recipes {
		if name == cfg.Recipe {
			g.recipe = i
		}
	}
	if g.recipe < 0 {
		return nil, fmt.Errorf("%w: %q", shells.ErrUnknownRecipe, cfg.Recipe)
	}
	w, h := g.Layout(0, 0)
	g.hudBuf = ebiten.NewImage(w/hudScale, h/hudScale)
	return g, nil
}

func (g *Game) resetSim() {
	g.sim = shells.NewSim(shells.WithSeed(g.cfg.Seed))
	g.store.Clear()
	g.reporter = shells.NewSimReporter(reportWindowTicks)
	g.tickAccum = 0
}

func (g *Game) Update() error {
	g.handleInput()

	if g.simSpeed <= 0 {
		return nil
	}
	// For speeds > 1 run multiple sim ticks per frame.
	// For speeds < 1 accumulate fractions.
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	return nil
}

// simTick runs one simulation tick and mirrors the result into the store.
func (g *Game) simTick() {
	res := g.sim.Tick(tickDT)
	g.store.Apply(res)
	g.store.Sync(g.sim.ActiveStates())
	g.feed.RecordTick(g.sim.CurrentTick(), res)

	if g.sim.CurrentTick()%60 == 0 {
		g.reporter.Collect(g.sim)
	}
}

// launch fires the selected recipe from world position (x, y).
func (g *Game) launch(x, y float64) {
	name := g.recipes[g.recipe]
	st, err := g.sim.Launch(name, shells.Vec2{X: x, Y: y})
	if err != nil {
		log.Printf("launch %s: %v", name, err)
		return
	}
	g.store.Admit(st)
	g.feed.Add(g.sim.CurrentTick(), st.Tag, fmt.Sprintf("launch %s %s", name, st.ID))
}

// handleInput processes keyboard and mouse input (edge-triggered).
func (g *Game) handleInput() {
	// Left click: launch from the cursor, ignoring clicks on the feed panel.
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if mx < g.cfg.Width {
			g.launch(g.cfg.ToWorld(float64(mx), float64(my)))
		}
	}
	// Space: launch from the centre of the ground line.
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.launch(0, g.groundY())
	}

	// Recipe selection: 1..9.
	recipeKeys := []ebiten.Key{
		ebiten.Key1, ebiten.Key2, ebiten.Key3,
		ebiten.Key4, ebiten.Key5, ebiten.Key6,
		ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	for i := range g.recipes {
		if i >= len(recipeKeys) {
			break
		}
		if inpututil.IsKeyJustPressed(recipeKeys[i]) {
			g.recipe = i
			g.cfg.Recipe = g.recipes[i]
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.resetSim()
		g.feed.Add(0, "", "reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		report := host.DebugReport(g.cfg, g.sim, g.store, g.feed, 0)
		if err := clipboard.WriteAll(report); err != nil {
			log.Printf("copy debug report: %v", err)
		} else {
			g.feed.Add(g.sim.CurrentTick(), "", "debug report copied")
		}
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.25, 0.5, 1, 2, 4}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		for _, s := range speeds {
			if s > g.simSpeed {
				g.simSpeed = s
				break
			}
		}
	}
	g.cfg.Speed = g.simSpeed
}

// groundY is the world height of the launch line.
func (g *Game) groundY() float64 {
	return -float64(g.cfg.Height)/2 + 24
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)

	// Ground strip.
	_, gy := g.cfg.ToScreen(0, g.groundY())
	vector.FillRect(screen, 0, float32(gy), float32(g.cfg.Width), float32(g.cfg.Height)-float32(gy), groundColor, false)

	g.drawBodies(screen)
	drawFeedPanel(screen, g.feed, g.palette, g.cfg.Width, g.cfg.Height)

	if g.showHUD {
		g.drawHUD(screen)
	}
}

// drawBodies renders every live projectile with its trail.
func (g *Game) drawBodies(screen *ebiten.Image) {
	g.store.Each(func(b *host.BodyData, trail *host.TrailData) {
		if trail != nil {
			pts := trail.Points()
			for i := 1; i < len(pts); i++ {
				x0, y0 := g.cfg.ToScreen(pts[i-1].X, pts[i-1].Y)
				x1, y1 := g.cfg.ToScreen(pts[i].X, pts[i].Y)
				c := g.palette.Faded(b.Tag, 0.6*float64(i)/float64(len(pts)))
				vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 1.5, c, true)
			}
		}
		radius := float32(2)
		if b.Tag == "rocket" {
			radius = 3
		}
		x, y := g.cfg.ToScreen(b.Position.X, b.Position.Y)
		vector.FillCircle(screen, float32(x), float32(y), radius, g.palette.Color(b.Tag), true)
	})
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	speedStr := "1x"
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	} else if g.simSpeed != 1 {
		speedStr = fmt.Sprintf("%.2gx", g.simSpeed)
	}

	st := g.sim.Stats()
	lines := []string{
		fmt.Sprintf("SIM: %s  T=%d  P=pause  ,/. speed", speedStr, st.Tick),
		fmt.Sprintf("active=%d peak=%d launched=%d bursts=%d", st.Active, st.PeakActive, st.Launched, st.Exploded),
	}
	for i, name := range g.recipes {
		on := " "
		if i == g.recipe {
			on = "*"
		}
		lines = append(lines, fmt.Sprintf("  [%d]%s %s", i+1, on, name))
	}
	if rep := g.reporter.Latest(); rep != nil {
		lines = append(lines, fmt.Sprintf("avg speed %.0f  max height %.0f", rep.AvgSpeed, rep.MaxHeight))
	}
	lines = append(lines, "click/space=launch  R=reset  C=copy report  H=hide")

	// Render into hudBuf at 1x, then scale up.
	const lineH = 12 // debug font line height at 1x
	const charW = 6  // debug font char width at 1x
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(4)
	by := float32(4)

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 8, G: 8, B: 20, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 70, G: 70, B: 120, A: 180}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Width + feedPanelWidth, g.cfg.Height
}
