package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/contactkeval/option-heatmap/internal/pricing"
	"github.com/contactkeval/option-heatmap/internal/scale"
)

// HeatmapOptions controls terminal rendering.
type HeatmapOptions struct {
	// ProfitLoss shows signed values instead of flooring prices at $0.00.
	ProfitLoss bool
	// Color enables 24-bit background colours.
	Color bool
}

var printer = message.NewPrinter(language.English)

// Money formats a cell the way the heatmap labels it. Price cells that are
// not positive are rounding artifacts and show as $0.00.
func Money(v float64, profitLoss bool) string {
	if profitLoss {
		return fmt.Sprintf("$%.2f", v)
	}
	if v > 0 {
		return "$" + printer.Sprintf("%.2f", v)
	}
	return "$0.00"
}

// RenderHeatmap draws g as a table with spots down the side and strikes
// across the top, each cell coloured by palette through d.
func RenderHeatmap(out io.Writer, title string, g pricing.Grid, d scale.Descriptor, palette scale.Palette, opts HeatmapOptions) error {
	if title != "" {
		if _, err := fmt.Fprintln(out, title); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	headers := []string{"Spot \\ Strike"}
	for _, k := range g.Strikes {
		headers = append(headers, fmt.Sprintf("%.2f", k))
	}
	table.SetHeader(headers)

	for i, s := range g.Spots {
		row := []string{fmt.Sprintf("%.2f", s)}
		for j := range g.Strikes {
			v := g.At(i, j)
			label := Money(v, opts.ProfitLoss)
			if opts.Color {
				label = paint(label, palette.Color(v, d))
			}
			row = append(row, label)
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

func paint(text string, bg scale.RGB) string {
	c := color.BgRGB(int(bg.R), int(bg.G), int(bg.B))
	if luminance(bg) > 0.55 {
		c.AddRGB(0, 0, 0)
	} else {
		c.AddRGB(255, 255, 255)
	}
	c.EnableColor()
	return c.Sprint(" " + text + " ")
}

// luminance is the Rec. 709 relative brightness in [0, 1].
func luminance(c scale.RGB) float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
}
