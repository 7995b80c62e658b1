package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/auth"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

func TestErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		code           string
		detail         string
		expectedStatus int
	}{
		{name: "BadRequest", status: http.StatusBadRequest, code: ErrCodeInvalidRequest, detail: "invalid request", expectedStatus: http.StatusBadRequest},
		{name: "NotFound", status: http.StatusNotFound, code: ErrCodeProductNotFound, detail: "product not found", expectedStatus: http.StatusNotFound},
		{name: "InternalError", status: http.StatusInternalServerError, code: ErrCodeInternalError, detail: "internal server error", expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponse(c, tt.status, tt.code, tt.detail)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected the context to be aborted")
			}

			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Code)
			}
			if response.Detail != tt.detail {
				t.Errorf("expected detail %s, got %s", tt.detail, response.Detail)
			}
		})
	}
}

func TestShortcutFunctions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Unauthorized(c, ErrCodeUnauthorized, "authentication required")

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
		if w.Header().Get("WWW-Authenticate") == "" {
			t.Error("expected a WWW-Authenticate challenge")
		}
	})

	t.Run("Forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Forbidden(c, "insufficient permissions")

		if w.Code != http.StatusForbidden {
			t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
		}
	})

	t.Run("ServiceUnavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ServiceUnavailable(c, "store unavailable")

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}
	})

	t.Run("MissingField", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		MissingField(c, "price")

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var response APIError
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if response.Code != ErrCodeMissingField {
			t.Errorf("expected code %s, got %s", ErrCodeMissingField, response.Code)
		}
		if response.Fields["price"] != "required" {
			t.Errorf("expected price field detail, got %v", response.Fields)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		InvalidPayload(c, errors.New("unexpected EOF"))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{name: "duplicate", err: service.ErrDuplicateIdentity, expectedStatus: http.StatusBadRequest, expectedCode: ErrCodeDuplicateIdentity},
		{name: "invalid input", err: fmt.Errorf("%w: price", service.ErrInvalidInput), expectedStatus: http.StatusBadRequest, expectedCode: ErrCodeInvalidRequest},
		{name: "self", err: service.ErrCannotModifySelf, expectedStatus: http.StatusBadRequest, expectedCode: ErrCodeCannotModifySelf},
		{name: "credentials", err: service.ErrInvalidCredentials, expectedStatus: http.StatusUnauthorized, expectedCode: ErrCodeInvalidCredentials},
		{name: "expired", err: auth.ErrTokenExpired, expectedStatus: http.StatusUnauthorized, expectedCode: ErrCodeTokenExpired},
		{name: "bad token", err: fmt.Errorf("%w: signature", auth.ErrInvalidToken), expectedStatus: http.StatusUnauthorized, expectedCode: ErrCodeInvalidToken},
		{name: "disabled", err: service.ErrUserDisabled, expectedStatus: http.StatusForbidden, expectedCode: ErrCodeUserDisabled},
		{name: "forbidden", err: auth.Authorize("customer", "admin"), expectedStatus: http.StatusForbidden, expectedCode: ErrCodeForbidden},
		{name: "product", err: service.ErrProductNotFound, expectedStatus: http.StatusNotFound, expectedCode: ErrCodeProductNotFound},
		{name: "user", err: service.ErrUserNotFound, expectedStatus: http.StatusNotFound, expectedCode: ErrCodeUserNotFound},
		{name: "too large", err: service.ErrMediaTooLarge, expectedStatus: http.StatusRequestEntityTooLarge, expectedCode: ErrCodeMediaTooLarge},
		{name: "unknown", err: errors.New("disk on fire"), expectedStatus: http.StatusInternalServerError, expectedCode: ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			var response APIError
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
			if tt.expectedCode == ErrCodeInternalError && response.Detail == tt.err.Error() {
				t.Error("internal errors must not leak their message")
			}
		})
	}
}
