package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"validation", Validation("bad input"), http.StatusBadRequest, CodeInvalidParam},
		{"duplicate", DuplicateIdentity(), http.StatusBadRequest, CodeDuplicate},
		{"credentials", InvalidCredentials(), http.StatusUnauthorized, CodeAuth},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized, CodeAuth},
		{"not found", NotFound("requisition"), http.StatusNotFound, CodeNotFound},
		{"server", Server("boom", errors.New("cause")), http.StatusInternalServerError, CodeServerErr},
		{"unknown error", errors.New("plain"), http.StatusInternalServerError, CodeServerErr},
	}

	for _, tc := range testCases {
		if got := Status(tc.err); got != tc.wantStatus {
			t.Errorf("%s: Status() = %d, want %d", tc.name, got, tc.wantStatus)
		}
		if got := Code(tc.err); got != tc.wantCode {
			t.Errorf("%s: Code() = %d, want %d", tc.name, got, tc.wantCode)
		}
	}
}

func TestMessage_NeverLeaksCause(t *testing.T) {
	err := Server("save order", errors.New("disk full at /var/db"))

	if msg := Message(err); msg != "save order" {
		t.Errorf("Message() = %q, want %q", msg, "save order")
	}
	// the cause stays available for logging
	if err.Unwrap() == nil {
		t.Error("Unwrap() = nil, want wrapped cause")
	}
}

func TestMessage_UnknownError(t *testing.T) {
	if msg := Message(errors.New("sql: connection refused")); msg != "internal server error" {
		t.Errorf("Message() = %q, want generic message", msg)
	}
}

func TestInvalidCredentials_SameMessageAlways(t *testing.T) {
	// unknown identity and wrong password must be indistinguishable
	a := InvalidCredentials()
	b := InvalidCredentials()
	if a.Msg != b.Msg {
		t.Errorf("messages differ: %q vs %q", a.Msg, b.Msg)
	}
}

func TestFieldErrors(t *testing.T) {
	fields := map[string]string{"email": "invalid email address"}
	err := ValidationFields(fields)

	got := FieldErrors(err)
	if got["email"] != fields["email"] {
		t.Errorf("FieldErrors() = %v, want %v", got, fields)
	}
	if FieldErrors(errors.New("plain")) != nil {
		t.Error("FieldErrors(plain error) != nil, want nil")
	}
}

func TestErrorString_IncludesCause(t *testing.T) {
	err := Server("save order", errors.New("disk full"))
	want := fmt.Sprintf("%s: %v", "save order", "disk full")
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
