package api

import (
	"errors"
	"net/http"
	"strings"

	"marketplace/internal/auth"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Error codes returned in APIError.Code.
const (
	// generic
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeMissingField       = "ERR_MISSING_FIELD"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// authentication
	ErrCodeDuplicateIdentity  = "ERR_DUPLICATE_IDENTITY"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "ERR_INVALID_TOKEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"

	// resources
	ErrCodeUserNotFound    = "ERR_USER_NOT_FOUND"
	ErrCodeProductNotFound = "ERR_PRODUCT_NOT_FOUND"

	// business rules
	ErrCodeCannotModifySelf = "ERR_CANNOT_MODIFY_SELF"
	ErrCodeMediaTooLarge    = "ERR_MEDIA_TOO_LARGE"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorResponse aborts the request with the unified error body.
func ErrorResponse(c *gin.Context, status int, code string, detail string) {
	c.AbortWithStatusJSON(status, APIError{
		Code:   code,
		Detail: detail,
	})
}

// ErrorResponseWithFields adds per-field messages to the error body.
func ErrorResponseWithFields(c *gin.Context, status int, code string, detail string, fields map[string]string) {
	c.AbortWithStatusJSON(status, APIError{
		Code:   code,
		Detail: detail,
		Fields: fields,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, code string, detail string) {
	ErrorResponse(c, http.StatusBadRequest, code, detail)
}

// Unauthorized 401 with a Bearer challenge.
func Unauthorized(c *gin.Context, code string, detail string) {
	c.Header("WWW-Authenticate", `Bearer realm="marketplace"`)
	ErrorResponse(c, http.StatusUnauthorized, code, detail)
}

// Forbidden 403
func Forbidden(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, detail)
}

// NotFound 404
func NotFound(c *gin.Context, code string, detail string) {
	ErrorResponse(c, http.StatusNotFound, code, detail)
}

// InternalError 500
func InternalError(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, detail)
}

// ServiceUnavailable 503
func ServiceUnavailable(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, detail)
}

// MissingField reports a single absent field.
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithFields(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", map[string]string{field: "required"})
}

// InvalidPayload reports a body that failed to decode or validate. Validator
// failures are listed per field; a missing required field takes precedence
// and is reported as ERR_MISSING_FIELD.
func InvalidPayload(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
		return
	}

	fields := make(map[string]string, len(validationErrs))
	code := ErrCodeInvalidRequest
	for _, fe := range validationErrs {
		name := strings.ToLower(fe.Field())
		fields[name] = fe.Tag()
		if fe.Tag() == "required" {
			code = ErrCodeMissingField
		}
	}
	ErrorResponseWithFields(c, http.StatusBadRequest, code, "request validation failed", fields)
}

// respondError translates a service or auth error into the HTTP taxonomy.
// Anything unrecognised is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateIdentity):
		BadRequest(c, ErrCodeDuplicateIdentity, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrCannotModifySelf):
		BadRequest(c, ErrCodeCannotModifySelf, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, ErrCodeInvalidCredentials, "invalid username/email or password")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(c, ErrCodeTokenExpired, "token has expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(c, ErrCodeInvalidToken, "invalid token")
	case errors.Is(err, service.ErrUserDisabled):
		ErrorResponse(c, http.StatusForbidden, ErrCodeUserDisabled, "user is disabled")
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(c, "insufficient permissions")
	case errors.Is(err, service.ErrProductNotFound):
		NotFound(c, ErrCodeProductNotFound, "product not found")
	case errors.Is(err, service.ErrUserNotFound):
		NotFound(c, ErrCodeUserNotFound, "user not found")
	case errors.Is(err, service.ErrMediaTooLarge):
		ErrorResponse(c, http.StatusRequestEntityTooLarge, ErrCodeMediaTooLarge, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(requestIDContextKey),
		}).Error("request failed")
		InternalError(c, "internal server error")
	}
}
