package io

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveJSON writes v as indented JSON
func SaveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("[SaveJSON] failed to encode %s: %w", path, err)
	}

	if err := ensureParent(path); err != nil {
		return err
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("[SaveJSON] failed to write %s: %w", path, err)
	}

	return nil
}
