// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

package render

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SaveImage decodes a base64 or data-URI image payload and writes it under
// dir as name.format, returning the written path.
func SaveImage(dir, name, format, data string) (string, error) {
	payload := data
	// data:image/png;base64,AAAA…
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return "", fmt.Errorf("malformed data URI")
		}
		payload = payload[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decoding image payload: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	if ext == "" {
		ext = "png"
	}
	path := filepath.Join(dir, name+"."+ext)
	if err := os.WriteFile(path, decoded, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
