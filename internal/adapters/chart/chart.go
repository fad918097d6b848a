// Package chart renders the discovery history as a dual axis SVG line chart
package chart

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ecotrack/internal/core/ledger"
	perr "ecotrack/internal/platform/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrNotEnoughPoints is returned when fewer than two samples exist
var ErrNotEnoughPoints = errors.New("chart: need at least two samples")

const (
	projectsName = "Projects"
	sourcesName  = "Source files"
)

// Render writes the SVG for pts to w. Projects use the left axis and source
// file matches the right one
func Render(w io.Writer, pts []ledger.Point) error {
	if len(pts) < 2 {
		return ErrNotEnoughPoints
	}
	xs := make([]time.Time, len(pts))
	projects := make([]float64, len(pts))
	sources := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.Date
		projects[i] = float64(p.Projects)
		sources[i] = float64(p.Sources)
	}

	graph := gochart.Chart{
		Width:  1024,
		Height: 512,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 24, Left: 24, Right: 24, Bottom: 24},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name:           projectsName,
			ValueFormatter: intFormatter,
		},
		YAxisSecondary: gochart.YAxis{
			Name:           sourcesName,
			ValueFormatter: intFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    projectsName,
				XValues: xs,
				YValues: projects,
			},
			gochart.TimeSeries{
				Name:    sourcesName,
				YAxis:   gochart.YAxisSecondary,
				XValues: xs,
				YValues: sources,
			},
		},
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.SVG, w); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "render chart")
	}
	return nil
}

// WriteFile renders pts into path, creating parent directories. The file is
// left alone when rendering fails
func WriteFile(path string, pts []ledger.Point) error {
	var buf bytes.Buffer
	if err := Render(&buf, pts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "write %s", path)
	}
	return nil
}

func intFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return ""
}
