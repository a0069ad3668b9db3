package api

import (
	"encoding/json"
	"fmt"
)

// JSONCodec marshals the plain Go messages in this package for Connect.
// It registers under the name "json", replacing Connect's protobuf JSON
// codec, so requests travel as application/json.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	// Connect sends an empty body for messages with no fields set.
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
