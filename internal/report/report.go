// Package report renders HTML timing reports for captured commands using
// go-echarts. The charts make classification results reviewable at a
// glance: how the raw durations clustered, and how far normalization moved
// each interval.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/ircodec/internal/ir"
)

// WriteCommandReport renders an HTML report for a normalized command. A raw
// command (never normalized) is rejected because there is nothing to show.
func WriteCommandReport(w io.Writer, cmd *ir.Command) error {
	if !cmd.IsNormalized() {
		return fmt.Errorf("command %q has no classification to report", cmd.Name)
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("ircodec report: %s", cmd.Name)
	page.AddCharts(
		classChart(cmd),
		timelineChart(cmd),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report for %q: %w", cmd.Name, err)
	}
	return nil
}

// classChart is a bar chart of class intervals: one bar per class showing
// member count, labeled with the interval bounds.
func classChart(cmd *ir.Command) components.Charter {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: signal classes", cmd.Name),
			Subtitle: "member count per class, labels show interval bounds in microseconds",
		}),
	)

	var (
		labels []string
		pulses []opts.BarData
		gaps   []opts.BarData
	)
	appendClass := func(c *ir.SignalClass) {
		labels = append(labels, fmt.Sprintf("%s %d\n[%d..%d]", c.Kind, c.ID, c.Min, c.Max))
		if c.Kind == ir.Pulse {
			pulses = append(pulses, opts.BarData{Value: c.Count})
			gaps = append(gaps, opts.BarData{Value: 0})
		} else {
			pulses = append(pulses, opts.BarData{Value: 0})
			gaps = append(gaps, opts.BarData{Value: c.Count})
		}
	}
	for _, c := range cmd.PulseClasses {
		appendClass(c)
	}
	for _, c := range cmd.GapClasses {
		appendClass(c)
	}

	bar.SetXAxis(labels).
		AddSeries("pulse classes", pulses).
		AddSeries("gap classes", gaps)
	return bar
}

// timelineChart overlays raw and normalized durations per position.
func timelineChart(cmd *ir.Command) components.Charter {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: raw vs normalized timing", cmd.Name),
			Subtitle: "interval length in microseconds by position",
		}),
	)

	var (
		positions  []string
		raw        []opts.LineData
		normalized []opts.LineData
	)
	for i, s := range cmd.Raw {
		positions = append(positions, fmt.Sprintf("%d %s", i, s.Kind))
		raw = append(raw, opts.LineData{Value: s.Length})
		normalized = append(normalized, opts.LineData{Value: cmd.Normalized[i].Length})
	}

	line.SetXAxis(positions).
		AddSeries("raw", raw).
		AddSeries("normalized", normalized)
	return line
}
