package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"breadit/internal/services"
	"breadit/internal/testutil"

	"github.com/gin-gonic/gin"
)

func TestRenderError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized},
		{"wrapped not found", fmt.Errorf("post x: %w", services.ErrNotFound), http.StatusNotFound},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"conflict", fmt.Errorf("vote on x: %w", services.ErrConflict), http.StatusConflict},
		{"already subscribed", services.ErrAlreadySubscribed, http.StatusConflict},
		{"username taken", services.ErrUsernameTaken, http.StatusConflict},
		{"own subreddit", services.ErrOwnSubreddit, http.StatusBadRequest},
		{"empty comment", services.ErrEmptyText, http.StatusUnprocessableEntity},
		{"bad login", services.ErrInvalidLogin, http.StatusUnauthorized},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RenderError(c, tt.err, "Something went wrong")
			testutil.AssertStatus(t, w, tt.expectedStatus)

			var body map[string]string
			testutil.AssertJSON(t, w, &body)
			if body["error"] == "" {
				t.Error("Expected an error message")
			}
			if tt.expectedStatus == http.StatusInternalServerError && body["error"] != "Something went wrong" {
				t.Errorf("Unexpected errors must not leak, got %q", body["error"])
			}
		})
	}
}

func TestRenderErrorConflictIsRetryable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPatch, "/", nil)

	RenderError(c, services.ErrConflict, "")
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Expected Retry-After 1, got %q", got)
	}
}

func TestMsg(t *testing.T) {
	if got := msg(services.ErrUsernameTaken); got != "Username already taken" {
		t.Errorf("Unexpected message %q", got)
	}
	if got := msg(nil); got != "" {
		t.Errorf("Expected empty message, got %q", got)
	}
}
