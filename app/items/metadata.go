package items

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// EncodeMetadata returns nil for an empty or nil mapping so that no "{}" is ever stored
func EncodeMetadata(metadata map[string]string) (*string, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	encoded := string(data)
	return &encoded, nil
}

// DecodeMetadata never fails: unreadable stored metadata is reported as absent
func DecodeMetadata(raw *string) map[string]string {
	if raw == nil || *raw == "" {
		return nil
	}

	var metadata map[string]string
	if err := json.Unmarshal([]byte(*raw), &metadata); err != nil {
		slog.Debug("Ignoring unreadable item metadata", "error", err)
		return nil
	}

	return metadata
}
