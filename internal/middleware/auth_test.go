package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/tipsplit/internal/auth"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer abc.def", want: "abc.def"},
		{name: "missing", header: "", wantErr: auth.ErrMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantErr: auth.ErrInvalidToken},
		{name: "no token", header: "Bearer", wantErr: auth.ErrInvalidToken},
		{name: "extra parts", header: "Bearer a b", wantErr: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionIDContext(t *testing.T) {
	ctx := context.Background()
	if id := GetSessionID(ctx); id != "" {
		t.Errorf("GetSessionID on empty context = %q", id)
	}
	if id := GetSessionID(WithSessionID(ctx, "s-1")); id != "s-1" {
		t.Errorf("GetSessionID = %q, want s-1", id)
	}
}
