// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render draws a RenderPlan to the terminal with pterm. Image
// payloads cannot be drawn inline, so figure panels print a caption line and
// are optionally written to files via an output directory.
package render

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"pyrun/cli/internal/interpret"
)

// Renderer draws render plans to the terminal.
type Renderer struct {
	// FigureDir, when set, receives decoded figure/image payloads as files.
	FigureDir string
}

// NewRenderer creates a renderer with default settings.
func NewRenderer() *Renderer { return &Renderer{} }

// Render draws every panel of the plan in order.
func (r *Renderer) Render(plan interpret.RenderPlan) {
	for _, p := range plan.Panels {
		r.renderPanel(p)
	}
}

func (r *Renderer) renderPanel(p interpret.Panel) {
	switch p.Type {
	case interpret.PanelError:
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Error")).
			WithBoxStyle(pterm.NewStyle(pterm.FgRed)).
			Println(p.Text)

	case interpret.PanelVisualization:
		r.renderImage(p, fmt.Sprintf("figure_%d", p.Figure))

	case interpret.PanelStdout:
		if p.Text != "" {
			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Output")).
				Println(strings.TrimRight(p.Text, "\n"))
		} else {
			pterm.Println(pterm.Gray("(" + p.Caption + ")"))
		}

	case interpret.PanelTable:
		r.renderTable(p)

	case interpret.PanelList:
		r.renderList(p)

	case interpret.PanelImage:
		r.renderImage(p, "result")

	case interpret.PanelRepr:
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgYellow).Sprint(p.Caption)).
			Println(p.Text)

	case interpret.PanelJSON:
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Result")).
			Println(p.Text)

	case interpret.PanelText:
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Result")).
			Println(p.Text)

	case interpret.PanelNotice:
		pterm.Info.Println(p.Text)

	case interpret.PanelMetrics:
		r.renderMetrics(p.Metrics)
	}
}

func (r *Renderer) renderTable(p interpret.Panel) {
	header := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		if c.Dtype != "" {
			header[i] = fmt.Sprintf("%s (%s)", c.Name, c.Dtype)
		} else {
			header[i] = c.Name
		}
	}
	data := pterm.TableData{header}
	for _, row := range p.Rows {
		data = append(data, row)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		// Fall back to plain rows rather than dropping the result.
		for _, row := range data {
			pterm.Println(strings.Join(row, "\t"))
		}
	}
	if p.Summary != "" {
		pterm.Println(pterm.Gray("… " + p.Summary))
	}
}

func (r *Renderer) renderList(p interpret.Panel) {
	if p.Caption != "" {
		pterm.Println(pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint(p.Caption))
	}
	items := make([]pterm.BulletListItem, 0, len(p.Items))
	for _, kv := range p.Items {
		items = append(items, pterm.BulletListItem{
			Level: 0,
			Text:  fmt.Sprintf("%s: %s", kv.Key, kv.Value),
		})
	}
	if err := pterm.DefaultBulletList.WithItems(items).Render(); err != nil {
		for _, kv := range p.Items {
			pterm.Printf("%s: %s\n", kv.Key, kv.Value)
		}
	}
	if p.Summary != "" {
		pterm.Println(pterm.Gray("… " + p.Summary))
	}
}

func (r *Renderer) renderImage(p interpret.Panel, name string) {
	caption := p.Caption
	if caption == "" {
		caption = name
	}
	if r.FigureDir == "" {
		pterm.Info.Printf("%s: %d bytes encoded, pass --save-figures to write it to disk\n",
			caption, len(p.ImageData))
		return
	}
	path, err := SaveImage(r.FigureDir, name, p.ImageFormat, p.ImageData)
	if err != nil {
		pterm.Warning.Printf("%s: could not save: %v\n", caption, err)
		return
	}
	pterm.Info.Printf("%s: saved to %s\n", caption, path)
}

func (r *Renderer) renderMetrics(m *interpret.Metrics) {
	if m == nil {
		return
	}
	parts := []string{
		fmt.Sprintf("time %.3fs", m.ExecutionTime),
		fmt.Sprintf("cpu %.3fs", m.CPUTime),
		fmt.Sprintf("peak mem %.1f MB", m.MemoryPeak),
		fmt.Sprintf("%d lines", m.CodeLines),
		fmt.Sprintf("%s output", formatBytes(m.OutputBytes)),
		fmt.Sprintf("%d libraries", m.Libraries),
	}
	pterm.Println(pterm.Gray(strings.Join(parts, " · ")))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
