// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package protocol

import (
	"encoding/json"
	"testing"
)

func decodeResponse(t *testing.T, body string) *ExecutionResponse {
	t.Helper()
	var resp ExecutionResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return &resp
}

func TestResultDecodeDataFrame(t *testing.T) {
	resp := decodeResponse(t, `{
		"stdout": "",
		"result": {
			"_type": "dataframe",
			"data": [{"a": 1, "b": "x"}, {"a": 2, "b": "y"}],
			"columns": ["a", "b"],
			"index": [0, 1],
			"shape": [2, 2],
			"dtypes": {"a": "int64", "b": "object"}
		}
	}`)
	r := resp.Result
	if r == nil || r.Kind != KindDataFrame || r.DataFrame == nil {
		t.Fatalf("expected dataframe result, got %+v", r)
	}
	if got := r.DataFrame.RowCount(); got != 2 {
		t.Errorf("RowCount() = %d, want 2", got)
	}
	if r.DataFrame.Dtypes["a"] != "int64" {
		t.Errorf("dtype a = %q, want int64", r.DataFrame.Dtypes["a"])
	}
}

func TestResultDecodeSeriesPairsFollowIndexOrder(t *testing.T) {
	resp := decodeResponse(t, `{
		"stdout": "",
		"result": {
			"_type": "series",
			"data": {"2": 30, "0": 10, "1": 20},
			"name": "counts",
			"dtype": "int64",
			"index": [0, 1, 2]
		}
	}`)
	r := resp.Result
	if r == nil || r.Kind != KindSeries {
		t.Fatalf("expected series result, got %+v", r)
	}
	pairs := r.Series.Pairs()
	if len(pairs) != 3 {
		t.Fatalf("len(pairs) = %d, want 3", len(pairs))
	}
	wantKeys := []string{"0", "1", "2"}
	wantVals := []float64{10, 20, 30}
	for i, p := range pairs {
		if p.Index != wantKeys[i] {
			t.Errorf("pair %d index = %q, want %q", i, p.Index, wantKeys[i])
		}
		if v, ok := p.Value.(float64); !ok || v != wantVals[i] {
			t.Errorf("pair %d value = %v, want %v", i, p.Value, wantVals[i])
		}
	}
}

func TestResultUnknownTagFallsBackToGeneric(t *testing.T) {
	resp := decodeResponse(t, `{
		"stdout": "",
		"result": {"_type": "mystery", "payload": [1, 2, 3]}
	}`)
	r := resp.Result
	if r == nil {
		t.Fatal("expected a result")
	}
	if r.Kind != KindGeneric {
		t.Errorf("Kind = %q, want generic fallback", r.Kind)
	}
	if len(r.Raw) == 0 {
		t.Error("Raw must keep the original payload")
	}
}

func TestResultMalformedTaggedPayloadFallsBackToGeneric(t *testing.T) {
	// Declared dataframe with a data field of the wrong shape.
	resp := decodeResponse(t, `{
		"stdout": "",
		"result": {"_type": "dataframe", "data": "not-rows"}
	}`)
	r := resp.Result
	if r.Kind != KindGeneric || r.DataFrame != nil {
		t.Errorf("malformed dataframe must degrade to generic, got kind %q", r.Kind)
	}
}

func TestResultNullIsAbsent(t *testing.T) {
	resp := decodeResponse(t, `{"stdout": "hi", "result": null}`)
	if resp.Result != nil {
		t.Errorf("null result must decode as absent, got %+v", resp.Result)
	}
}

func TestResultScalarAndArrayAreGeneric(t *testing.T) {
	for _, body := range []string{
		`{"stdout": "", "result": 42}`,
		`{"stdout": "", "result": [1, 2]}`,
		`{"stdout": "", "result": "text"}`,
	} {
		resp := decodeResponse(t, body)
		if resp.Result == nil || resp.Result.Kind != KindGeneric {
			t.Errorf("body %s: want generic result, got %+v", body, resp.Result)
		}
	}
}

func TestResultMarshalRoundTripsRaw(t *testing.T) {
	resp := decodeResponse(t, `{"stdout": "", "result": {"a": 1}}`)
	out, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a": 1}` && string(out) != `{"a":1}` {
		t.Errorf("marshal = %s, want original value", out)
	}
}
