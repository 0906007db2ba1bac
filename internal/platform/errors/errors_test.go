package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "error with cause",
			err: Wrap(KindToken, "read", "failed to read token",
				errors.New("port closed")),
			contains: []string{"[token:read]", "failed to read token", "port closed"},
		},
		{
			name:     "error without cause",
			err:      New(KindAuth, "verify", "biometric factor rejected"),
			contains: []string{"[auth:verify]", "biometric factor rejected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errStr, substr) {
					t.Errorf("error string %q does not contain %q", errStr, substr)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(KindConfig, "test", "wrapped", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Unwrap should return the original error")
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{
			name:     "direct error kind match",
			err:      New(KindSpeech, "capture", "no input"),
			kind:     KindSpeech,
			expected: true,
		},
		{
			name:     "kind mismatch",
			err:      New(KindSpeech, "capture", "no input"),
			kind:     KindToken,
			expected: false,
		},
		{
			name:     "plain error never matches",
			err:      errors.New("plain"),
			kind:     KindUnknown,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			kind:     KindAuth,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.expected {
				t.Errorf("IsKind() = %v, want %v", got, tt.expected)
			}
		})
	}
}
