// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package prepare turns raw user-authored Python source into the exact script
// text sent to the execution backend.
//
// The backend's contract for function mode is "call main() and capture its
// return value", so function mode wraps the code in a main() definition. The
// return-statement auto-detection in script mode is a lexical token scan, not
// a parse: a "return" inside a string literal or comment is a known false
// positive and deliberately left as such.
package prepare

import (
	"regexp"
	"strings"
)

// Mode selects how submitted code is prepared.
type Mode string

const (
	// ModeScript sends code as-is unless a return statement forces wrapping.
	ModeScript Mode = "script"
	// ModeFunction wraps code in a main() definition whose return value the
	// backend captures.
	ModeFunction Mode = "function"
)

// ParseMode validates a mode string from a flag or config value.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeScript:
		return ModeScript, true
	case ModeFunction:
		return ModeFunction, true
	}
	return "", false
}

// header is the function-definition line prepended when wrapping.
const header = "def main():"

// indent is one Python indentation level.
const indent = "    "

// noopProgram is sent instead of blank input so the backend never receives a
// degenerate empty request.
const noopProgram = header + "\n" + indent + "pass"

// returnToken matches a return token anywhere in the source. Word boundaries
// keep identifiers like "returned" from matching; string and comment contents
// still do (see the package comment).
var returnToken = regexp.MustCompile(`\breturn\b`)

// WrapOffset is the number of lines wrapping adds above the user's code.
// Backend-reported line numbers translate back to original source lines by
// subtracting it when Wraps reported true for the submission.
const WrapOffset = 1

// Prepare produces the script text for a submission. It is total: blank or
// whitespace-only input degrades to a no-op program, everything else yields
// either the input verbatim or its wrapped form.
func Prepare(rawCode string, mode Mode) string {
	if strings.TrimSpace(rawCode) == "" {
		return noopProgram
	}
	if Wraps(rawCode, mode) {
		return wrap(rawCode)
	}
	return rawCode
}

// Wraps reports whether Prepare will apply function-mode wrapping to rawCode.
// Callers use it to translate backend error line numbers afterwards.
func Wraps(rawCode string, mode Mode) bool {
	if strings.TrimSpace(rawCode) == "" {
		return false
	}
	if mode == ModeFunction {
		return true
	}
	return returnToken.MatchString(rawCode)
}

// wrap indents every line by one level under a main() header. Exactly one
// line is added and nothing is appended, preserving the line-offset contract.
func wrap(code string) string {
	lines := strings.Split(code, "\n")
	var b strings.Builder
	b.Grow(len(code) + len(header) + 1 + len(lines)*len(indent))
	b.WriteString(header)
	for _, line := range lines {
		b.WriteByte('\n')
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

// OriginalLine maps a backend-reported line number in wrapped code back to
// the line number in the user's source.
func OriginalLine(reported int) int {
	if reported <= WrapOffset {
		return reported
	}
	return reported - WrapOffset
}

// lineRef finds "line N" references in backend error text.
var lineRef = regexp.MustCompile(`\bline (\d+)\b`)

// FirstLineRef extracts the first backend-reported line number from an error
// message, returning 0 when none is present.
func FirstLineRef(errText string) int {
	m := lineRef.FindStringSubmatch(errText)
	if m == nil {
		return 0
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	return n
}
