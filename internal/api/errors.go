package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/esstool/pkg/ess"
)

type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Offset  *int64 `json:"offset,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, errorEnvelope{Error: ErrorBody{Type: errType, Message: msg}})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context) error {
	return writeError(c, http.StatusNotFound, "not_found_error", "save not found")
}

// writeDecodeError reports a rejected save. Anything that is not a
// *ess.DecodeError is a problem with the request body itself.
func writeDecodeError(c *echo.Context, err error) error {
	var de *ess.DecodeError
	if !errors.As(err, &de) {
		return writeBadRequest(c, err.Error())
	}
	off := de.Offset
	return c.JSON(http.StatusUnprocessableEntity, errorEnvelope{Error: ErrorBody{
		Type:    "decode_error",
		Message: de.Error(),
		Kind:    de.Kind.String(),
		Field:   de.Field,
		Offset:  &off,
	}})
}
