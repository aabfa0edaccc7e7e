// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ResultKind discriminates the specialized result payloads the backend can
// return inside the "result" field.
type ResultKind string

const (
	// KindGeneric is any plain JSON value without a recognized _type tag.
	KindGeneric ResultKind = "generic"
	// KindDataFrame is a pandas DataFrame serialized row-wise.
	KindDataFrame ResultKind = "dataframe"
	// KindSeries is a pandas Series serialized as index→value pairs.
	KindSeries ResultKind = "series"
	// KindImage is an encoded image (e.g. a PIL image).
	KindImage ResultKind = "image"
	// KindUnserializable is the string repr of a value the backend could not
	// convert to JSON.
	KindUnserializable ResultKind = "unserializable"
)

// Result is the tagged union carried in ExecutionResponse.Result. The backend
// discriminates specialized payloads with a "_type" field; anything else, and
// any tagged payload that fails to decode, lands in the generic arm. Decoding
// never fails on an unknown tag.
type Result struct {
	Kind ResultKind
	// Raw is always the original JSON value, kept for generic rendering and
	// for re-serialization.
	Raw json.RawMessage

	DataFrame      *DataFrame
	Series         *Series
	Image          *Image
	Unserializable *Unserializable
}

// DataFrame mirrors the backend's row-wise DataFrame serialization.
type DataFrame struct {
	Data    []map[string]any  `json:"data"`
	Columns []string          `json:"columns"`
	Index   []any             `json:"index"`
	Shape   [2]int            `json:"shape"`
	Dtypes  map[string]string `json:"dtypes"`
}

// RowCount returns the total row count of the underlying frame, preferring
// the declared shape when the serialized data was truncated by the backend.
func (d *DataFrame) RowCount() int {
	if d.Shape[0] > len(d.Data) {
		return d.Shape[0]
	}
	return len(d.Data)
}

// Series mirrors the backend's Series serialization.
type Series struct {
	Data  map[string]any `json:"data"`
	Name  string         `json:"name"`
	Dtype string         `json:"dtype"`
	Index []any          `json:"index"`
}

// SeriesPair is one index→value entry of a Series in index order.
type SeriesPair struct {
	Index string
	Value any
}

// Pairs returns the series entries ordered by the declared index. When the
// index is absent the map keys are used in sorted order.
func (s *Series) Pairs() []SeriesPair {
	if len(s.Index) > 0 {
		out := make([]SeriesPair, 0, len(s.Index))
		for _, idx := range s.Index {
			key := indexKey(idx)
			out = append(out, SeriesPair{Index: key, Value: s.Data[key]})
		}
		return out
	}
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]SeriesPair, 0, len(keys))
	for _, k := range keys {
		out = append(out, SeriesPair{Index: k, Value: s.Data[k]})
	}
	return out
}

// indexKey renders an index value the way JSON object keys are written, so it
// can be used to look up the data map.
func indexKey(idx any) string {
	switch v := idx.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; integer indices must not grow a
		// trailing ".0" or the map lookup misses.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Image mirrors the backend's encoded-image serialization.
type Image struct {
	Format string `json:"format"`
	Data   string `json:"data"`
	Size   [2]int `json:"size"` // width, height in pixels
	Mode   string `json:"mode"` // color mode, e.g. "RGB"
}

// Unserializable carries the string repr of a value the backend could not
// serialize, together with its Python type name.
type Unserializable struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// typeTag is used to peek at the discriminator before committing to a shape.
type typeTag struct {
	Type string `json:"_type"`
}

// UnmarshalJSON decodes the tagged union. Unknown tags and malformed tagged
// payloads degrade to the generic arm instead of returning an error, so a
// backend newer than this client never breaks rendering.
func (r *Result) UnmarshalJSON(data []byte) error {
	r.Raw = append(r.Raw[:0], data...)
	r.Kind = KindGeneric

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var tag typeTag
	if err := json.Unmarshal(trimmed, &tag); err != nil {
		return nil
	}

	switch ResultKind(tag.Type) {
	case KindDataFrame:
		var df DataFrame
		if json.Unmarshal(trimmed, &df) == nil {
			r.Kind = KindDataFrame
			r.DataFrame = &df
		}
	case KindSeries:
		var s Series
		if json.Unmarshal(trimmed, &s) == nil {
			r.Kind = KindSeries
			r.Series = &s
		}
	case KindImage:
		var img Image
		if json.Unmarshal(trimmed, &img) == nil {
			r.Kind = KindImage
			r.Image = &img
		}
	case KindUnserializable:
		var u Unserializable
		if json.Unmarshal(trimmed, &u) == nil {
			r.Kind = KindUnserializable
			r.Unserializable = &u
		}
	}
	return nil
}

// MarshalJSON writes back the original JSON value untouched.
func (r Result) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}
