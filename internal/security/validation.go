package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Validation limits for inbound payloads.
const (
	DefaultMaxPayloadSize = 1 << 20 // 1 MiB
	DefaultMaxJSONDepth   = 32
)

// Validation errors.
var (
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
	ErrJSONTooDeep     = errors.New("JSON nesting exceeds maximum depth")
	ErrInvalidJSON     = errors.New("invalid JSON")
)

// ValidatePayloadSize checks that data does not exceed limit bytes.
// If limit is <= 0, DefaultMaxPayloadSize is used.
func ValidatePayloadSize(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxPayloadSize
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(data), limit)
	}
	return nil
}

// ValidateJSONDepth checks that the JSON in data does not nest deeper than
// limit levels, which guards the update decoder against JSON bombs. If limit
// is <= 0, DefaultMaxJSONDepth is used.
func ValidateJSONDepth(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxJSONDepth
	}
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}

		d, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		switch d {
		case '{', '[':
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case '}', ']':
			depth--
		}
	}
}
