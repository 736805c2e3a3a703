package oauth2

import (
	"fmt"
	"net/http"
)

// Error codes from RFC 6749, RFC 6750 and RFC 7009.
const (
	CodeInvalidRequest          = "invalid_request"
	CodeInvalidClient           = "invalid_client"
	CodeInvalidGrant            = "invalid_grant"
	CodeInvalidScope            = "invalid_scope"
	CodeUnauthorizedClient      = "unauthorized_client"
	CodeUnsupportedGrantType    = "unsupported_grant_type"
	CodeUnsupportedResponseType = "unsupported_response_type"
	CodeUnsupportedTokenType    = "unsupported_token_type"
	CodeAccessDenied            = "access_denied"
	CodeInvalidToken            = "invalid_token"
	CodeInsufficientScope       = "insufficient_scope"
	CodeServerError             = "server_error"
)

// Error is a protocol failure. The server renders it as the standard error
// body; any other error is left for the transport to handle.
type Error struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func newError(status int, code, format string, args ...any) *Error {
	return &Error{StatusCode: status, Code: code, Description: fmt.Sprintf(format, args...)}
}

func InvalidRequest(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeInvalidRequest, format, args...)
}

func InvalidClient(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeInvalidClient, format, args...)
}

func InvalidGrant(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeInvalidGrant, format, args...)
}

func InvalidScope(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeInvalidScope, format, args...)
}

func UnauthorizedClient(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeUnauthorizedClient, format, args...)
}

func UnsupportedGrantType(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeUnsupportedGrantType, format, args...)
}

func UnsupportedResponseType(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeUnsupportedResponseType, format, args...)
}

func UnsupportedTokenType(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeUnsupportedTokenType, format, args...)
}

func AccessDenied(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeAccessDenied, format, args...)
}

// InvalidToken is the RFC 6750 error for a missing, unknown or expired
// bearer token.
func InvalidToken(format string, args ...any) *Error {
	return newError(http.StatusUnauthorized, CodeInvalidToken, format, args...)
}

// InsufficientScope is the RFC 6750 error for a valid token that lacks a
// required scope.
func InsufficientScope(format string, args ...any) *Error {
	return newError(http.StatusForbidden, CodeInsufficientScope, format, args...)
}

// Response renders the error as a JSON error body. Bearer errors also carry
// a WWW-Authenticate challenge.
func (e *Error) Response() *Response {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusBadRequest
	}

	resp := jsonResponse(status, e)
	if e.Code == CodeInvalidToken || e.Code == CodeInsufficientScope {
		resp.Header.Set("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q, error_description=%q`, e.Code, e.Description))
	}
	return resp
}

// Write sends the error straight to w.
func (e *Error) Write(w http.ResponseWriter) {
	e.Response().Write(w)
}
