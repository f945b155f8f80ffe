// Package render draws unfolded 2D event displays as PNG files using
// gonum/plot: a black detector silhouette (barrel strip plus two cap disks)
// with the projected hits scattered on top, colored by charge or time.
package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/wcd-data/eventdisplay/internal/geometry"
	"github.com/wcd-data/eventdisplay/internal/projection"
)

// capOutlineSegments is the number of line segments approximating each cap
// disk outline.
const capOutlineSegments = 128

// EventPlot renders unfolded events for one detector configuration.
type EventPlot struct {
	cfg geometry.DetectorConfig

	// Title is the plot title; the detector name is used when empty.
	Title string
	// ColorLabel names the quantity the hits are colored by, e.g.
	// "charge (p.e.)" or "time (ns)".
	ColorLabel string
}

// NewEventPlot returns a renderer for the given detector.
func NewEventPlot(cfg geometry.DetectorConfig) *EventPlot {
	return &EventPlot{cfg: cfg}
}

// Render draws the projected hits and writes a PNG to path. colorData maps
// each hit to the colored quantity and must be index-aligned with the hits;
// pass nil for uniform coloring.
func (ep *EventPlot) Render(hits projection.ProjectedHitSet, colorData []float64, path string) error {
	if colorData != nil && len(colorData) != hits.Len() {
		return &geometry.ErrShapeMismatch{What: "color data vs hits", Want: hits.Len(), Got: len(colorData)}
	}

	p := plot.New()
	p.Title.Text = ep.Title
	if p.Title.Text == "" {
		p.Title.Text = fmt.Sprintf("%s event display", ep.cfg.Name)
	}
	p.X.Label.Text = "unfolded x (cm)"
	p.Y.Label.Text = "unfolded y (cm)"

	if err := ep.addOutline(p); err != nil {
		return err
	}
	if err := ep.addHits(p, hits, colorData); err != nil {
		return err
	}

	if err := p.Save(12*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save event display: %w", err)
	}
	return nil
}

// addOutline draws the unfolded detector silhouette: the barrel rectangle
// and the two cap circles above and below it.
func (ep *EventPlot) addOutline(p *plot.Plot) error {
	half := ep.cfg.Detector.HalfHeight()
	radius := ep.cfg.Detector.CylinderRadius
	halfStrip := math.Pi * radius

	barrel := plotter.XYs{
		{X: -halfStrip, Y: -half},
		{X: halfStrip, Y: -half},
		{X: halfStrip, Y: half},
		{X: -halfStrip, Y: half},
		{X: -halfStrip, Y: -half},
	}
	line, err := plotter.NewLine(barrel)
	if err != nil {
		return err
	}
	line.Color = color.Gray{Y: 64}
	p.Add(line)

	for _, centerY := range []float64{half + radius, -half - radius} {
		circle := make(plotter.XYs, capOutlineSegments+1)
		for i := range circle {
			theta := 2 * math.Pi * float64(i) / capOutlineSegments
			circle[i] = plotter.XY{
				X: radius * math.Cos(theta),
				Y: centerY + radius*math.Sin(theta),
			}
		}
		capLine, err := plotter.NewLine(circle)
		if err != nil {
			return err
		}
		capLine.Color = color.Gray{Y: 64}
		p.Add(capLine)
	}

	return nil
}

// addHits scatters the projected hits, colored by colorData on a
// plasma-like ramp.
func (ep *EventPlot) addHits(p *plot.Plot, hits projection.ProjectedHitSet, colorData []float64) error {
	if hits.Len() == 0 {
		return nil
	}

	pts := make(plotter.XYs, hits.Len())
	for i := range pts {
		pts[i] = plotter.XY{X: hits.X2D[i], Y: hits.Y2D[i]}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}

	markerRadius := markerSize(ep.cfg.Detector)
	lo, hi := 0.0, 1.0
	if colorData != nil {
		lo, hi = minMax(colorData)
	}

	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c := color.RGBA{R: 240, G: 200, B: 60, A: 255}
		if colorData != nil {
			c = rampColor(normalize(colorData[i], lo, hi))
		}
		return draw.GlyphStyle{
			Color:  c,
			Radius: markerRadius,
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(scatter)

	if ep.ColorLabel != "" && colorData != nil {
		p.Title.Text += fmt.Sprintf(" (%s: %.3g..%.3g)", ep.ColorLabel, lo, hi)
	}
	return nil
}

// markerSize scales the PMT radius to a reasonable glyph size for the plot.
// Large detectors get proportionally smaller markers so dense hit patterns
// stay readable.
func markerSize(d geometry.Detector) vg.Length {
	frac := d.SensorRadius / d.CylinderRadius
	r := vg.Points(400 * frac)
	if r < vg.Points(1) {
		r = vg.Points(1)
	}
	if r > vg.Points(6) {
		r = vg.Points(6)
	}
	return r
}

func normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// rampColor maps t in [0,1] onto a dark-violet to yellow ramp, close to the
// matplotlib plasma colormap the physics displays conventionally use.
func rampColor(t float64) color.RGBA {
	stops := []struct {
		t       float64
		r, g, b uint8
	}{
		{0.00, 13, 8, 135},
		{0.25, 126, 3, 168},
		{0.50, 204, 71, 120},
		{0.75, 248, 149, 64},
		{1.00, 240, 249, 33},
	}
	for i := 0; i < len(stops)-1; i++ {
		a, b := stops[i], stops[i+1]
		if t > b.t {
			continue
		}
		f := (t - a.t) / (b.t - a.t)
		return color.RGBA{
			R: uint8(float64(a.r) + f*(float64(b.r)-float64(a.r))),
			G: uint8(float64(a.g) + f*(float64(b.g)-float64(a.g))),
			B: uint8(float64(a.b) + f*(float64(b.b)-float64(a.b))),
			A: 255,
		}
	}
	last := stops[len(stops)-1]
	return color.RGBA{R: last.r, G: last.g, B: last.b, A: 255}
}
