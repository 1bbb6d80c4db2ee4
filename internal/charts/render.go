package charts

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
	panelHeight = 3 * vg.Inch
)

// FileName is the PNG name of a chart for a report type.
func FileName(k Kind, reportType string) string {
	return fmt.Sprintf("%s_%s.png", k, reportType)
}

// SaveAll renders every successful result into dir and returns the written
// paths by kind. Rendering failures are recorded on the result.
func SaveAll(results []Result, dir, reportType string) (map[Kind]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	paths := make(map[Kind]string)
	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Chart == nil {
			continue
		}
		path := filepath.Join(dir, FileName(r.Kind, reportType))
		if err := Render(r.Chart, path); err != nil {
			r.Err = err
			continue
		}
		paths[r.Kind] = path
	}
	return paths, nil
}

// Render draws ch as a PNG at path.
func Render(ch *Chart, path string) error {
	switch {
	case len(ch.Histograms) > 0:
		return renderHistograms(ch, path)
	case ch.Matrix != nil:
		return savePlot(heatmapPlot(ch), chartWidth, chartHeight, path)
	case len(ch.Boxes) > 0:
		p, err := boxPlot(ch)
		if err != nil {
			return err
		}
		return savePlot(p, chartWidth, chartHeight, path)
	case len(ch.Series) > 0:
		p, err := linePlot(ch)
		if err != nil {
			return err
		}
		return savePlot(p, chartWidth, chartHeight, path)
	case ch.Stack != nil:
		p, err := stackPlot(ch)
		if err != nil {
			return err
		}
		return savePlot(p, chartWidth, chartHeight, path)
	case len(ch.Violins) > 0:
		p, err := violinPlot(ch)
		if err != nil {
			return err
		}
		return savePlot(p, chartWidth, chartHeight, path)
	}
	return fmt.Errorf("render %s: %w", ch.Kind, ErrNoData)
}

func savePlot(p *plot.Plot, w, h vg.Length, path string) error {
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// renderHistograms stacks one panel per histogram vertically.
func renderHistograms(ch *Chart, path string) error {
	plots := make([][]*plot.Plot, len(ch.Histograms))
	for i, h := range ch.Histograms {
		p := plot.New()
		p.Title.Text = h.Column
		p.X.Label.Text = ch.XLabel
		p.Y.Label.Text = ch.YLabel
		hist := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, len(h.Bins)),
			FillColor: plotutil.Color(i),
			LineStyle: plotter.DefaultLineStyle,
		}
		for j, b := range h.Bins {
			hist.Bins[j] = plotter.HistogramBin{Min: b.Lo, Max: b.Hi, Weight: b.Count}
		}
		if len(h.Bins) > 0 {
			hist.Width = h.Bins[0].Hi - h.Bins[0].Lo
		}
		p.Add(hist)
		plots[i] = []*plot.Plot{p}
	}

	height := panelHeight * vg.Length(len(plots))
	img := vgimg.New(chartWidth, height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: len(plots), Cols: 1, PadX: vg.Millimeter, PadY: vg.Millimeter, PadTop: vg.Points(4), PadBottom: vg.Points(4), PadLeft: vg.Points(4), PadRight: vg.Points(4)}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// matrixGrid adapts a Matrix to plotter.GridXYZ with rows on the Y axis.
type matrixGrid struct{ m *Matrix }

func (g matrixGrid) Dims() (c, r int)   { return len(g.m.Cols), len(g.m.Rows) }
func (g matrixGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

func heatmapPlot(ch *Chart) *plot.Plot {
	p := plot.New()
	p.Title.Text = ch.Title
	hm := plotter.NewHeatMap(matrixGrid{ch.Matrix}, palette.Heat(12, 1))
	if ch.Kind == VariableCorrelation {
		hm.Min, hm.Max = -1, 1
	} else {
		hm.Min, hm.Max = 0, 1
	}
	p.Add(hm)
	p.NominalX(ch.Matrix.Cols...)
	if len(ch.Matrix.Rows) <= 50 {
		p.NominalY(ch.Matrix.Rows...)
	}
	return p
}

func boxPlot(ch *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ch.Title
	p.Y.Label.Text = ch.YLabel
	labels := make([]string, len(ch.Boxes))
	for i, b := range ch.Boxes {
		bp, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(b.values))
		if err != nil {
			return nil, fmt.Errorf("box %s: %w", b.Label, err)
		}
		bp.FillColor = plotutil.Color(i)
		p.Add(bp)
		labels[i] = b.Label
	}
	p.NominalX(labels...)
	return p, nil
}

func linePlot(ch *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ch.Title
	p.X.Label.Text = ch.XLabel
	p.Y.Label.Text = ch.YLabel
	if ch.TimeAxis {
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	}
	for i, s := range ch.Series {
		pts := make(plotter.XYs, len(s.X))
		for j := range s.X {
			pts[j].X, pts[j].Y = s.X[j], s.Y[j]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	return p, nil
}

func stackPlot(ch *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ch.Title
	p.X.Label.Text = ch.XLabel
	p.Y.Label.Text = ch.YLabel
	var below *plotter.BarChart
	for g, name := range ch.Stack.Groups {
		vals := make(plotter.Values, len(ch.Stack.Categories))
		for c := range vals {
			if c < len(ch.Stack.Counts[g]) {
				vals[c] = float64(ch.Stack.Counts[g][c])
			}
		}
		bar, err := plotter.NewBarChart(vals, vg.Points(20))
		if err != nil {
			return nil, fmt.Errorf("stack %s: %w", name, err)
		}
		bar.Color = plotutil.Color(g)
		if below != nil {
			bar.StackOn(below)
		}
		p.Add(bar)
		p.Legend.Add(name, bar)
		below = bar
	}
	p.NominalX(ch.Stack.Categories...)
	return p, nil
}

// violinPlot draws each density mirrored around its column position.
func violinPlot(ch *Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ch.Title
	p.Y.Label.Text = ch.YLabel
	labels := make([]string, len(ch.Violins))
	for i, v := range ch.Violins {
		peak := 0.0
		for _, d := range v.Density {
			if d > peak {
				peak = d
			}
		}
		scale := 0.0
		if peak > 0 {
			scale = 0.4 / peak
		}
		left := make(plotter.XYs, len(v.Y))
		right := make(plotter.XYs, len(v.Y))
		for j := range v.Y {
			w := v.Density[j] * scale
			left[j] = plotter.XY{X: float64(i) - w, Y: v.Y[j]}
			right[j] = plotter.XY{X: float64(i) + w, Y: v.Y[j]}
		}
		for _, side := range []plotter.XYs{left, right} {
			l, err := plotter.NewLine(side)
			if err != nil {
				return nil, fmt.Errorf("violin %s: %w", v.Label, err)
			}
			l.Color = plotutil.Color(i)
			p.Add(l)
		}
		labels[i] = v.Label
	}
	p.NominalX(labels...)
	return p, nil
}
