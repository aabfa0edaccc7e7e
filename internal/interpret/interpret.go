// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package interpret classifies an ExecutionResponse into an ordered plan of
// display panels. The plan is deterministic for a given response and carries
// no terminal or HTML concerns; internal/render and internal/webui consume
// it independently.
package interpret

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"pyrun/cli/internal/protocol"
)

// PanelType enumerates the panel variants a plan can contain.
type PanelType string

const (
	// PanelError shows the backend's error text verbatim.
	PanelError PanelType = "error"
	// PanelVisualization is one captured figure.
	PanelVisualization PanelType = "visualization"
	// PanelStdout shows captured standard output verbatim.
	PanelStdout PanelType = "stdout"
	// PanelTable is a dataframe rendered as rows and dtype-annotated columns.
	PanelTable PanelType = "table"
	// PanelList is a series rendered as ordered index→value pairs.
	PanelList PanelType = "list"
	// PanelImage is an encoded image result.
	PanelImage PanelType = "image"
	// PanelRepr is the monospace string repr of an unserializable value.
	PanelRepr PanelType = "repr"
	// PanelJSON is a pretty-printed generic JSON result.
	PanelJSON PanelType = "json"
	// PanelText is a scalar result rendered as its plain string form.
	PanelText PanelType = "text"
	// PanelNotice is an informational indicator ("no output" and friends).
	PanelNotice PanelType = "notice"
	// PanelMetrics is the fixed-field performance strip.
	PanelMetrics PanelType = "metrics"
)

// DisplayLimit caps the rows/items shown for tabular and series results.
const DisplayLimit = 10

// Column is a table column annotated with its declared dtype.
type Column struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype,omitempty"`
}

// Pair is one index→value entry of a list panel.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metrics is the fixed field set of the performance strip.
type Metrics struct {
	ExecutionTime float64 `json:"execution_time"`
	CPUTime       float64 `json:"cpu_time"`
	MemoryPeak    float64 `json:"memory_peak"`
	CodeLines     int     `json:"code_lines"`
	OutputBytes   int     `json:"output_bytes"`
	Libraries     int     `json:"libraries"`
}

// Panel is one display unit of a render plan. Only the fields matching Type
// are set, mirroring how UI events are modeled elsewhere in the codebase.
type Panel struct {
	Type    PanelType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Caption string    `json:"caption,omitempty"`

	// Table fields
	Columns []Column   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Summary string     `json:"summary,omitempty"`

	// List fields (Summary shared with tables)
	Items []Pair `json:"items,omitempty"`

	// Image / visualization fields
	ImageFormat string `json:"image_format,omitempty"`
	ImageData   string `json:"image_data,omitempty"`
	Figure      int    `json:"figure,omitempty"`

	// Metrics fields
	Metrics *Metrics `json:"metrics,omitempty"`
}

// RenderPlan is the ordered set of panels derived from one response.
type RenderPlan struct {
	Panels []Panel `json:"panels"`
}

// Interpret builds the render plan for a response. It never fails: malformed
// or unrecognized result shapes degrade to generic JSON rendering.
func Interpret(resp *protocol.ExecutionResponse) RenderPlan {
	var plan RenderPlan

	hasOutcome := resp.Error != "" || len(resp.Visualizations) > 0 ||
		resp.Stdout != "" || resp.Result != nil

	if !hasOutcome {
		plan.Panels = append(plan.Panels, Panel{
			Type: PanelNotice,
			Text: "executed with no output",
		})
		appendMetrics(&plan, resp.Performance)
		return plan
	}

	// Error first. It never suppresses the other panels: partial stdout or a
	// result produced before the failure is still shown below it.
	if resp.Error != "" {
		plan.Panels = append(plan.Panels, Panel{Type: PanelError, Text: resp.Error})
	}

	for i, v := range resp.Visualizations {
		figure := v.Figure
		if figure == 0 {
			figure = i + 1
		}
		plan.Panels = append(plan.Panels, Panel{
			Type:        PanelVisualization,
			Caption:     fmt.Sprintf("Figure %d (%s)", figure, v.Type),
			ImageFormat: v.Format,
			ImageData:   v.Data,
			Figure:      figure,
		})
	}

	if resp.Stdout != "" {
		plan.Panels = append(plan.Panels, Panel{Type: PanelStdout, Text: resp.Stdout})
	} else {
		plan.Panels = append(plan.Panels, Panel{
			Type:    PanelStdout,
			Caption: "no standard output",
		})
	}

	if resp.Result != nil {
		plan.Panels = append(plan.Panels, resultPanel(resp.Result))
	}

	appendMetrics(&plan, resp.Performance)
	return plan
}

func appendMetrics(plan *RenderPlan, perf *protocol.PerformanceMetrics) {
	if perf == nil {
		return
	}
	plan.Panels = append(plan.Panels, Panel{
		Type: PanelMetrics,
		Metrics: &Metrics{
			ExecutionTime: perf.ExecutionTime,
			CPUTime:       perf.CPUTime,
			MemoryPeak:    perf.MemoryPeak,
			CodeLines:     perf.CodeLines,
			OutputBytes:   perf.OutputSize,
			Libraries:     len(perf.LibrariesUsed),
		},
	})
}

// resultPanel dispatches on the result discriminator. The generic JSON arm is
// the fallback for unknown tags and malformed tagged payloads.
func resultPanel(r *protocol.Result) Panel {
	switch r.Kind {
	case protocol.KindDataFrame:
		return dataframePanel(r.DataFrame)
	case protocol.KindSeries:
		return seriesPanel(r.Series)
	case protocol.KindImage:
		img := r.Image
		return Panel{
			Type:        PanelImage,
			Caption:     fmt.Sprintf("%dx%d pixels, %s", img.Size[0], img.Size[1], img.Mode),
			ImageFormat: img.Format,
			ImageData:   img.Data,
		}
	case protocol.KindUnserializable:
		return Panel{
			Type:    PanelRepr,
			Text:    r.Unserializable.Value,
			Caption: r.Unserializable.Type,
		}
	default:
		return genericPanel(r.Raw)
	}
}

func dataframePanel(df *protocol.DataFrame) Panel {
	columns := make([]Column, len(df.Columns))
	for i, name := range df.Columns {
		columns[i] = Column{Name: name, Dtype: df.Dtypes[name]}
	}

	shown := df.Data
	if len(shown) > DisplayLimit {
		shown = shown[:DisplayLimit]
	}
	rows := make([][]string, len(shown))
	for i, row := range shown {
		cells := make([]string, len(df.Columns))
		for j, name := range df.Columns {
			cells[j] = formatValue(row[name])
		}
		rows[i] = cells
	}

	panel := Panel{Type: PanelTable, Columns: columns, Rows: rows}
	if hidden := df.RowCount() - len(rows); hidden > 0 {
		panel.Summary = fmt.Sprintf("%d more rows", hidden)
	}
	return panel
}

func seriesPanel(s *protocol.Series) Panel {
	pairs := s.Pairs()
	total := len(pairs)
	if total > DisplayLimit {
		pairs = pairs[:DisplayLimit]
	}
	items := make([]Pair, len(pairs))
	for i, p := range pairs {
		items[i] = Pair{Key: p.Index, Value: formatValue(p.Value)}
	}

	caption := s.Name
	if s.Dtype != "" {
		if caption != "" {
			caption += ", "
		}
		caption += s.Dtype
	}

	panel := Panel{Type: PanelList, Caption: caption, Items: items}
	if hidden := total - len(items); hidden > 0 {
		panel.Summary = fmt.Sprintf("%d more items", hidden)
	}
	return panel
}

// genericPanel pretty-prints structured values and renders scalars as their
// plain string form.
func genericPanel(raw json.RawMessage) Panel {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var buf bytes.Buffer
		if err := json.Indent(&buf, trimmed, "", "  "); err == nil {
			return Panel{Type: PanelJSON, Text: buf.String()}
		}
		return Panel{Type: PanelJSON, Text: string(trimmed)}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return Panel{Type: PanelText, Text: string(trimmed)}
	}
	return Panel{Type: PanelText, Text: formatValue(v)}
}

// formatValue renders a decoded JSON value as a display cell.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
