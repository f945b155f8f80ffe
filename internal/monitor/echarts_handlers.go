package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wcd-data/eventdisplay/internal/projection"
)

// echartsAssetsPrefix is where the rendered pages load the echarts JS from.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// plasmaRamp mirrors the colormap the offline PNG renderer uses.
var plasmaRamp = []string{
	"#0d0887", "#41049d", "#6a00a8", "#8f0da4", "#b12a90",
	"#cc4778", "#e16462", "#f2844b", "#fca636", "#fcce25", "#f0f921",
}

// handleEventDisplay renders the current event as an unfolded-cylinder
// scatter (HTML). Debugging view: it trades fidelity for zero build steps.
// Query params:
//
//	color_by (optional; "charge" or "time", default "charge")
//	max_points (optional; default 8000)
func (ws *WebServer) handleEventDisplay(w http.ResponseWriter, r *http.Request) {
	event := ws.currentEvent()
	if event == nil || event.Len() == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no event loaded")
		return
	}
	if ws.table == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no sensor table loaded")
		return
	}

	colorBy := r.URL.Query().Get("color_by")
	if colorBy != "time" {
		colorBy = "charge"
	}
	colorData := event.Charge
	if colorBy == "time" {
		colorData = event.Time
	}

	hits, err := event.HitSet(ws.table)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("resolve hits: %v", err))
		return
	}
	proj, err := ws.projector.Project(hits)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("project hits: %v", err))
		return
	}

	title := fmt.Sprintf("%s Event Display", ws.cfg.Name)
	subtitle := fmt.Sprintf("hits=%d color=%s", proj.Len(), colorBy)
	ws.renderScatter(w, r, title, subtitle, colorBy, proj, colorData)
}

// handleSensorMap renders the full unfolded sensor layout, colored by
// surface region, so margin tuning can be checked by eye.
func (ws *WebServer) handleSensorMap(w http.ResponseWriter, r *http.Request) {
	if ws.table == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no sensor table loaded")
		return
	}

	x, y, z := ws.table.Positions()
	proj, err := ws.projector.Project(projection.HitSet{X: x, Y: y, Z: z})
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("project sensors: %v", err))
		return
	}

	regions := make([]float64, proj.Len())
	for i, reg := range proj.Regions {
		regions[i] = float64(reg)
	}

	title := fmt.Sprintf("%s Sensor Map", ws.cfg.Name)
	subtitle := fmt.Sprintf("sensors=%d", proj.Len())
	ws.renderScatter(w, r, title, subtitle, "region", proj, regions)
}

// renderScatter draws projected points with a visual map over colorData.
// Downsamples by stride to stay within max_points, like the other debug
// chart endpoints.
func (ws *WebServer) renderScatter(w http.ResponseWriter, r *http.Request, title, subtitle, colorName string, proj projection.ProjectedHitSet, colorData []float64) {
	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	stride := 1
	if proj.Len() > maxPoints {
		stride = int(math.Ceil(float64(proj.Len()) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, proj.Len()/stride+1)
	maxAbsX, maxAbsY := 0.0, 0.0
	cLo, cHi := math.Inf(1), math.Inf(-1)
	for i := 0; i < proj.Len(); i += stride {
		x, y := proj.X2D[i], proj.Y2D[i]
		if math.Abs(x) > maxAbsX {
			maxAbsX = math.Abs(x)
		}
		if math.Abs(y) > maxAbsY {
			maxAbsY = math.Abs(y)
		}
		c := 0.0
		if colorData != nil {
			c = colorData[i]
		}
		if c < cLo {
			cLo = c
		}
		if c > cHi {
			cHi = c
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y, c}})
	}

	padX := maxAbsX * 1.05
	if padX == 0 {
		padX = 1.0
	}
	padY := maxAbsY * 1.05
	if padY == 0 {
		padY = 1.0
	}
	if cHi <= cLo {
		cHi = cLo + 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -padX, Max: padX, Name: "unfolded x (cm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -padY, Max: padY, Name: "unfolded y (cm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(cLo),
			Max:        float32(cHi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: plasmaRamp},
		}),
	)

	scatter.AddSeries(colorName, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
