// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package interpret

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"pyrun/cli/internal/protocol"
)

// response builds an ExecutionResponse from a JSON literal so the tests
// exercise the same decoding path as real backend traffic.
func response(t *testing.T, body string) *protocol.ExecutionResponse {
	t.Helper()
	var resp protocol.ExecutionResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return &resp
}

func panelsOfType(plan RenderPlan, typ PanelType) []Panel {
	var out []Panel
	for _, p := range plan.Panels {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out
}

func TestInterpretDataFrameCapsRows(t *testing.T) {
	var rows []string
	for i := 0; i < 15; i++ {
		rows = append(rows, fmt.Sprintf(`{"n": %d}`, i))
	}
	body := fmt.Sprintf(`{
		"stdout": "",
		"result": {
			"_type": "dataframe",
			"data": [%s],
			"columns": ["n"],
			"index": [],
			"shape": [15, 1],
			"dtypes": {"n": "int64"}
		}
	}`, strings.Join(rows, ","))

	plan := Interpret(response(t, body))
	tables := panelsOfType(plan, PanelTable)
	if len(tables) != 1 {
		t.Fatalf("table panels = %d, want 1", len(tables))
	}
	tbl := tables[0]
	if len(tbl.Rows) != DisplayLimit {
		t.Errorf("rendered rows = %d, want %d", len(tbl.Rows), DisplayLimit)
	}
	if tbl.Summary != "5 more rows" {
		t.Errorf("summary = %q, want %q", tbl.Summary, "5 more rows")
	}
	if tbl.Columns[0].Dtype != "int64" {
		t.Errorf("column dtype = %q, want int64", tbl.Columns[0].Dtype)
	}
}

func TestInterpretSeriesCapsItems(t *testing.T) {
	entries := make([]string, 0, 12)
	index := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		entries = append(entries, fmt.Sprintf(`"%d": %d`, i, i*i))
		index = append(index, fmt.Sprintf("%d", i))
	}
	body := fmt.Sprintf(`{
		"stdout": "",
		"result": {
			"_type": "series",
			"data": {%s},
			"name": "squares",
			"dtype": "int64",
			"index": [%s]
		}
	}`, strings.Join(entries, ","), strings.Join(index, ","))

	plan := Interpret(response(t, body))
	lists := panelsOfType(plan, PanelList)
	if len(lists) != 1 {
		t.Fatalf("list panels = %d, want 1", len(lists))
	}
	if len(lists[0].Items) != DisplayLimit {
		t.Errorf("items = %d, want %d", len(lists[0].Items), DisplayLimit)
	}
	if lists[0].Summary != "2 more items" {
		t.Errorf("summary = %q, want %q", lists[0].Summary, "2 more items")
	}
}

func TestInterpretErrorDoesNotSuppressStdout(t *testing.T) {
	plan := Interpret(response(t, `{
		"stdout": "partial output\n",
		"error": "ZeroDivisionError: division by zero"
	}`))

	errs := panelsOfType(plan, PanelError)
	if len(errs) != 1 || errs[0].Text != "ZeroDivisionError: division by zero" {
		t.Fatalf("error panel missing or altered: %+v", errs)
	}
	outs := panelsOfType(plan, PanelStdout)
	if len(outs) != 1 || outs[0].Text != "partial output\n" {
		t.Fatalf("stdout panel missing or altered: %+v", outs)
	}
	// Error comes first.
	if plan.Panels[0].Type != PanelError {
		t.Errorf("first panel = %s, want error", plan.Panels[0].Type)
	}
}

func TestInterpretUnknownTagFallsBackToJSON(t *testing.T) {
	plan := Interpret(response(t, `{
		"stdout": "",
		"result": {"_type": "mystery", "payload": 7}
	}`))
	jsons := panelsOfType(plan, PanelJSON)
	if len(jsons) != 1 {
		t.Fatalf("json panels = %d, want 1 (generic fallback)", len(jsons))
	}
	if !strings.Contains(jsons[0].Text, `"mystery"`) {
		t.Errorf("fallback must pretty-print the original value, got %q", jsons[0].Text)
	}
}

func TestInterpretEmptyStdoutIndicator(t *testing.T) {
	plan := Interpret(response(t, `{"stdout": "", "result": {"a": 1}}`))
	outs := panelsOfType(plan, PanelStdout)
	if len(outs) != 1 {
		t.Fatalf("stdout panels = %d, want 1", len(outs))
	}
	if outs[0].Text != "" || outs[0].Caption != "no standard output" {
		t.Errorf("want explicit no-output indicator, got %+v", outs[0])
	}
	if len(panelsOfType(plan, PanelJSON)) != 1 {
		t.Error("result panel missing")
	}
}

func TestInterpretNothingAtAll(t *testing.T) {
	plan := Interpret(response(t, `{"stdout": ""}`))
	if len(plan.Panels) != 1 || plan.Panels[0].Type != PanelNotice {
		t.Fatalf("want a single notice panel, got %+v", plan.Panels)
	}
	if plan.Panels[0].Text != "executed with no output" {
		t.Errorf("notice = %q", plan.Panels[0].Text)
	}
}

func TestInterpretVisualizationFigureDefaults(t *testing.T) {
	plan := Interpret(response(t, `{
		"stdout": "",
		"visualizations": [
			{"type": "matplotlib", "format": "png", "data": "AAAA"},
			{"type": "matplotlib", "format": "png", "data": "BBBB", "figure": 7}
		]
	}`))
	vis := panelsOfType(plan, PanelVisualization)
	if len(vis) != 2 {
		t.Fatalf("visualization panels = %d, want 2", len(vis))
	}
	if vis[0].Figure != 1 {
		t.Errorf("first figure index = %d, want positional default 1", vis[0].Figure)
	}
	if vis[1].Figure != 7 {
		t.Errorf("second figure index = %d, want declared 7", vis[1].Figure)
	}
}

func TestInterpretImageResult(t *testing.T) {
	plan := Interpret(response(t, `{
		"stdout": "",
		"result": {"_type": "image", "format": "png", "data": "AAAA", "size": [640, 480], "mode": "RGB"}
	}`))
	imgs := panelsOfType(plan, PanelImage)
	if len(imgs) != 1 {
		t.Fatalf("image panels = %d, want 1", len(imgs))
	}
	if imgs[0].Caption != "640x480 pixels, RGB" {
		t.Errorf("caption = %q", imgs[0].Caption)
	}
}

func TestInterpretUnserializableResult(t *testing.T) {
	plan := Interpret(response(t, `{
		"stdout": "",
		"result": {"_type": "unserializable", "value": "<function main at 0x7f>", "type": "function"}
	}`))
	reprs := panelsOfType(plan, PanelRepr)
	if len(reprs) != 1 {
		t.Fatalf("repr panels = %d, want 1", len(reprs))
	}
	if reprs[0].Text != "<function main at 0x7f>" || reprs[0].Caption != "function" {
		t.Errorf("repr panel = %+v", reprs[0])
	}
}

func TestInterpretMetricsStrip(t *testing.T) {
	plan := Interpret(response(t, `{
		"stdout": "hi\n",
		"performance": {
			"execution_time": 0.5,
			"cpu_time": 0.25,
			"memory_peak": 12.5,
			"memory_start": 8.0,
			"libraries_used": ["numpy", "pandas"],
			"code_lines": 3,
			"output_size": 3
		}
	}`))
	ms := panelsOfType(plan, PanelMetrics)
	if len(ms) != 1 || ms[0].Metrics == nil {
		t.Fatalf("metrics panels = %+v, want exactly one", ms)
	}
	m := ms[0].Metrics
	if m.Libraries != 2 || m.CodeLines != 3 || m.ExecutionTime != 0.5 {
		t.Errorf("metrics = %+v", m)
	}
	// Metrics are independent: the panel comes last.
	if plan.Panels[len(plan.Panels)-1].Type != PanelMetrics {
		t.Error("metrics strip must trail the other panels")
	}
}

func TestInterpretScalarResult(t *testing.T) {
	plan := Interpret(response(t, `{"stdout": "", "result": 42}`))
	texts := panelsOfType(plan, PanelText)
	if len(texts) != 1 || texts[0].Text != "42" {
		t.Fatalf("scalar panel = %+v", texts)
	}
}
