package domain

import (
	"errors"
	"testing"
)

func TestFloodWaitSeconds(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"floodwait wait 5 seconds", 5},
		{"FloodWaitError: A wait of 1234 seconds is required", 1234},
		{"floodwait", 60},
		{"floodwait without digits", 60},
		{"rpc error 420: FLOOD_WAIT (17)", 420},
	}

	for _, tt := range tests {
		if got := FloodWaitSeconds(tt.text, 60); got != tt.want {
			t.Errorf("FloodWaitSeconds(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestContainsAny(t *testing.T) {
	if !ContainsAny("You are BANNED here", "banned") {
		t.Error("expected case-insensitive match")
	}
	if ContainsAny("all good", "banned", "not allowed") {
		t.Error("unexpected match")
	}
}

func TestPlatformErrorMessageAgreesWithKind(t *testing.T) {
	tests := []struct {
		err    *PlatformError
		needle string
	}{
		{NewFloodWaitError(5, nil), "floodwait"},
		{NewPlatformError(ErrorKindAlreadyMember, nil), "already a participant"},
		{NewPlatformError(ErrorKindBanned, nil), "banned"},
		{NewPlatformError(ErrorKindPending, nil), "successfully requested to join"},
	}

	for _, tt := range tests {
		if !ContainsAny(tt.err.Error(), tt.needle) {
			t.Errorf("%v: message %q lacks %q", tt.err.Kind, tt.err.Error(), tt.needle)
		}
	}

	if got := FloodWaitSeconds(NewFloodWaitError(42, nil).Error(), 60); got != 42 {
		t.Errorf("flood wait text parses to %d, want 42", got)
	}
}

func TestAsPlatformError(t *testing.T) {
	cause := errors.New("USER_BANNED_IN_CHANNEL")
	wrapped := errors.Join(errors.New("join"), NewPlatformError(ErrorKindBanned, cause))

	pe, ok := AsPlatformError(wrapped)
	if !ok || pe.Kind != ErrorKindBanned {
		t.Fatalf("AsPlatformError() = %v, %v", pe, ok)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause in chain")
	}

	if _, ok := AsPlatformError(NewPlatformError(ErrorKindUnknown, cause)); ok {
		t.Error("unknown kind should not count as structured")
	}
	if _, ok := AsPlatformError(cause); ok {
		t.Error("plain error should not match")
	}
}
