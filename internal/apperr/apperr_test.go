package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIErrStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		detail   string
		expected string
	}{
		{http.StatusUnauthorized, "ignored", "Session expired. Please login again."},
		{http.StatusForbidden, "ignored", "You don't have permission to do this. Admin access required."},
		{http.StatusUnprocessableEntity, "price: not a valid float", "price: not a valid float"},
		{http.StatusUnprocessableEntity, "", "The backend rejected the submitted fields."},
		{http.StatusBadGateway, "upstream down", "upstream down"},
		{http.StatusInternalServerError, "", "Request failed with status 500"},
	}

	for _, test := range tests {
		err := APIErr(test.status, test.detail)
		if err.PublicMsg != test.expected {
			t.Errorf("APIErr(%d, %q).PublicMsg = %q, expected %q", test.status, test.detail, err.PublicMsg, test.expected)
		}
		if err.StatusCode != test.status {
			t.Errorf("APIErr(%d).StatusCode = %d", test.status, err.StatusCode)
		}
	}
}

func TestValidationErrJoinsViolations(t *testing.T) {
	err := ValidationErr([]string{"Product name is required", "Valid price is required"})
	if err.PublicMsg != "Product name is required. Valid price is required" {
		t.Errorf("PublicMsg = %q", err.PublicMsg)
	}
	if len(err.Violations) != 2 {
		t.Errorf("Violations = %v", err.Violations)
	}
}

func TestKindHelpers(t *testing.T) {
	base := NetworkErr(errors.New("dial tcp: connection refused"))
	wrapped := fmt.Errorf("fetch failed: %w", base)

	if !IsKind(wrapped, Network) {
		t.Error("IsKind should see through wrapping")
	}
	if IsKind(wrapped, Auth) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(errors.New("plain"), Network) {
		t.Error("IsKind matched a non-app error")
	}

	ae, ok := As(wrapped)
	if !ok || ae.Kind != Network {
		t.Errorf("As() = %+v, %v", ae, ok)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{ValidationErr([]string{"x"}), http.StatusBadRequest},
		{AuthErr("login again"), http.StatusUnauthorized},
		{APIErr(http.StatusUnprocessableEntity, "bad"), http.StatusUnprocessableEntity},
		{UploadErr("upload failed", nil), http.StatusBadGateway},
		{NetworkErr(errors.New("down")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, test := range tests {
		if got := HTTPStatus(test.err); got != test.expected {
			t.Errorf("HTTPStatus(%v) = %d, expected %d", test.err, got, test.expected)
		}
	}
}

func TestPublicMessageFallback(t *testing.T) {
	if got := PublicMessage(errors.New("internal details")); got != "Something went wrong. Please try again." {
		t.Errorf("PublicMessage = %q", got)
	}
	if got := PublicMessage(AuthErr("Please login")); got != "Please login" {
		t.Errorf("PublicMessage = %q", got)
	}
}
