// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package protocol defines the wire contract between the CLI and the remote
// Python execution backend. The backend is an external sandboxed service; the
// only thing shared with it is the JSON shapes in this package.
package protocol

// ExecutionRequest is the JSON body sent to POST /execute.
// Script carries the fully prepared source text (after wrapping decisions),
// never the raw user input unless script mode applied with no wrapping.
type ExecutionRequest struct {
	Script string `json:"script"`
}

// ExecutionResponse is the backend's reply to an execution request.
//
// Error being set means the backend reported a failure (syntax, runtime or
// timeout in user code) regardless of HTTP status. Error and Stdout/Result may
// coexist when the script produced output before failing. Once received the
// response is treated as immutable view state until the next submission.
type ExecutionResponse struct {
	Stdout         string              `json:"stdout"`
	Result         *Result             `json:"result,omitempty"`
	Error          string              `json:"error,omitempty"`
	Visualizations []Visualization     `json:"visualizations,omitempty"`
	Performance    *PerformanceMetrics `json:"performance,omitempty"`

	// Raw holds the undecoded response body for --json output.
	Raw []byte `json:"-"`
}

// Failed reports whether the backend flagged the execution as unsuccessful.
func (r *ExecutionResponse) Failed() bool {
	return r.Error != ""
}

// Visualization is one rendered figure captured by the backend, typically a
// matplotlib plot encoded as base64 or a data URI.
type Visualization struct {
	Type   string `json:"type"`
	Format string `json:"format"`
	Data   string `json:"data"`
	// Figure is the 1-based figure index; 0 means the backend did not send
	// one and the position in the sequence is used instead.
	Figure int `json:"figure,omitempty"`
}

// PerformanceMetrics describes resource usage of a single execution.
// Times are seconds, memory values are megabytes.
type PerformanceMetrics struct {
	ExecutionTime float64        `json:"execution_time"`
	CPUTime       float64        `json:"cpu_time"`
	MemoryPeak    float64        `json:"memory_peak"`
	MemoryStart   float64        `json:"memory_start"`
	LibrariesUsed []string       `json:"libraries_used,omitempty"`
	CodeLines     int            `json:"code_lines"`
	OutputSize    int            `json:"output_size"`
	DebugInfo     map[string]any `json:"debug_info,omitempty"`
}
