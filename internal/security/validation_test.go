package security

import (
	"errors"
	"strings"
	"testing"
)

// nested builds n levels of array nesting around a single number.
func nested(n int) string {
	return strings.Repeat("[", n) + "1" + strings.Repeat("]", n)
}

func TestValidatePayloadSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		limit   int
		wantErr error
	}{
		{name: "small body", size: 64, limit: 1024, wantErr: nil},
		{name: "exactly at limit", size: 1024, limit: 1024, wantErr: nil},
		{name: "one byte over", size: 1025, limit: 1024, wantErr: ErrPayloadTooLarge},
		{name: "empty body", size: 0, limit: 16, wantErr: nil},
		{name: "zero limit falls back to default", size: 4096, limit: 0, wantErr: nil},
		{name: "default limit still enforced", size: DefaultMaxPayloadSize + 1, limit: 0, wantErr: ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePayloadSize(make([]byte, tt.size), tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePayloadSize(size=%d, limit=%d) = %v, want %v",
					tt.size, tt.limit, err, tt.wantErr)
			}
		})
	}
}

func TestValidateJSONDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		limit   int
		wantErr error
	}{
		{name: "flat update", payload: `{"update_id": 1}`, limit: 2, wantErr: nil},
		{name: "inline query shape", payload: `{"update_id": 1, "inline_query": {"from": {"id": 7}}}`, limit: 3, wantErr: nil},
		{name: "one level too deep", payload: nested(4), limit: 3, wantErr: ErrJSONTooDeep},
		{name: "at the limit", payload: nested(3), limit: 3, wantErr: nil},
		{name: "empty body", payload: "", limit: 1, wantErr: nil},
		{name: "bare scalar", payload: `"hello"`, limit: 1, wantErr: nil},
		{name: "zero limit falls back to default", payload: nested(32), limit: 0, wantErr: nil},
		{name: "default limit still enforced", payload: nested(33), limit: 0, wantErr: ErrJSONTooDeep},
		{name: "truncated body", payload: `{"update_id":`, limit: 8, wantErr: ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateJSONDepth([]byte(tt.payload), tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateJSONDepth(%q, %d) = %v, want %v",
					tt.payload, tt.limit, err, tt.wantErr)
			}
		})
	}
}

func TestValidateJSONDepth_ObjectBomb(t *testing.T) {
	t.Parallel()

	// 50 levels of {"a": ...} against the default limit of 32.
	payload := strings.Repeat(`{"a":`, 50) + "1" + strings.Repeat("}", 50)
	if err := ValidateJSONDepth([]byte(payload), 0); !errors.Is(err, ErrJSONTooDeep) {
		t.Errorf("ValidateJSONDepth(bomb) = %v, want %v", err, ErrJSONTooDeep)
	}
}

func BenchmarkValidateJSONDepth(b *testing.B) {
	// The shape of a typical inline query update.
	data := []byte(`{"update_id": 1, "inline_query": {"id": "q1", "from": {"id": 7, "first_name": "A"}, "query": "+100", "offset": ""}}`)
	b.ResetTimer()
	for range b.N {
		_ = ValidateJSONDepth(data, 32)
	}
}

func BenchmarkValidatePayloadSize(b *testing.B) {
	data := make([]byte, 4096)
	b.ResetTimer()
	for range b.N {
		_ = ValidatePayloadSize(data, DefaultMaxPayloadSize)
	}
}
