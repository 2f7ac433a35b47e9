package utils

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalIndent encodes v and indents the result, including the output of
// nested MarshalJSON methods that jsoniter writes through verbatim.
func MarshalIndent(v any, indent string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := stdjson.Indent(&out, data, "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteJSONFile writes v as indented JSON to path, creating parent directories.
func WriteJSONFile(path string, v any) error {
	data, err := MarshalIndent(v, "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
